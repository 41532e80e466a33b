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

// Package args defines suite-level flags shared by every throughput
// test package, so a CI pipeline can shape the whole suite without
// per-test configuration.
package args

import "flag"

// Global suite flags.
var (
	ArtifactDir = flag.String("arg_artifact_dir", "", "Directory where run artifacts are collected. Empty collects into a per-test temporary directory.")
	NumUEs      = flag.Int("arg_num_ues", 4, "Number of user endpoints in the simulated radio families. The android family always uses one handset.")
	SoakRuns    = flag.Bool("arg_soak_runs", true, "Run the long-duration real-radio soak scenarios. Disable to keep a pipeline short.")
)
