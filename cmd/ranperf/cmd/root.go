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

// Package cmd implements the ranperf CLI.
package cmd

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ranperf",
	Short: "Run RAN data-plane throughput scenarios",
	Long: `ranperf drives the throughput scenario suite against a test bed:
configure the radio, attach every endpoint, run bounded traffic
sessions, validate the measured bitrate, and always tear the bed down.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Make glog's -v/-logtostderr reachable through the CLI.
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Testbed configuration file (YAML)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}
