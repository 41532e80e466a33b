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
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/openran/ranperf/internal/metrics"
	"github.com/openran/ranperf/internal/sequencer"
)

var runCategory string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run throughput scenarios against the configured test bed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scenarios, err := selectScenarios(runCategory)
		if err != nil {
			return err
		}

		collector := metrics.NewCollector(nil)
		if cfg.MetricsListen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			go func() {
				if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
					glog.Errorf("metrics listener: %v", err)
				}
			}()
		}

		var failed, errored int
		for _, params := range scenarios {
			bed, err := cfg.buildTestbed(params)
			if err != nil {
				return err
			}
			out := sequencer.Run(cmd.Context(), params, bed)
			collector.Observe(out)
			for _, w := range out.TeardownWarnings {
				glog.Warningf("%s: teardown: %s", params.Name(), w)
			}
			switch out.Verdict {
			case sequencer.Pass:
				fmt.Printf("PASS  %s (%v)\n", params.Name(), out.Elapsed.Round(10*time.Millisecond))
			case sequencer.Fail:
				failed++
				fmt.Printf("FAIL  %s (%v)\n", params.Name(), out.Elapsed.Round(10*time.Millisecond))
				for _, v := range out.Traffic.Violations {
					fmt.Printf("      %s\n", v)
				}
				for _, leg := range out.Traffic.Legs {
					if leg.TransportErr != nil {
						fmt.Printf("      %v\n", leg.TransportErr)
					}
				}
			case sequencer.Error:
				errored++
				fmt.Printf("ERROR %s: %v\n", params.Name(), out.Err)
			}
		}

		fmt.Printf("%d scenarios: %d failed, %d errored\n", len(scenarios), failed, errored)
		if failed > 0 || errored > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runCategory, "category", "", "Only run scenarios of this category (smoke, simulated, android, rf)")
}
