// Copyright 2024 The RANPerf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openran/ranperf/internal/scenario"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenarios in the suite",
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := selectScenarios(listCategory)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tSCENARIO\tDURATION\tTOLERANCE")
		for _, p := range scenarios {
			fmt.Fprintf(w, "%s\t%s\t%v\t%.2f\n", p.Category, p.Name(), p.Duration, p.BitrateTolerance)
		}
		return w.Flush()
	},
}

// selectScenarios resolves a category name to its family, or the whole
// suite for the empty string.
func selectScenarios(category string) ([]scenario.Parameters, error) {
	if category == "" {
		return scenario.All(), nil
	}
	got := scenario.Select(scenario.Category(category))
	if len(got) == 0 {
		return nil, fmt.Errorf("no scenarios in category %q", category)
	}
	return got, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only list scenarios of this category (smoke, simulated, android, rf)")
}
