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

// Package artifacts collects test bed logs and a run summary into a
// per-run directory after teardown.
package artifacts

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/openran/ranperf/internal/binding"
)

// errorMarkers are the log signatures searched for when a failed run
// has SearchLogs set.
var errorMarkers = []string{"error", "failed", "critical", "assert"}

// Collector writes run artifacts under Dir, one subdirectory per run.
type Collector struct {
	Dir string
}

type summary struct {
	RunID       string    `yaml:"run_id"`
	Scenario    string    `yaml:"scenario"`
	Category    string    `yaml:"category"`
	Passed      bool      `yaml:"passed"`
	CollectedAt time.Time `yaml:"collected_at"`
	LogFindings []string  `yaml:"log_findings,omitempty"`
}

// Collect implements binding.ArtifactCollector.
func (c *Collector) Collect(ctx context.Context, run binding.RunArtifacts) error {
	if c.Dir == "" {
		return fmt.Errorf("artifact directory not configured")
	}
	dir := filepath.Join(c.Dir, run.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}

	names := make([]string, 0, len(run.Logs))
	for name := range run.Logs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name+".log")
		if err := os.WriteFile(path, run.Logs[name], 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	s := summary{
		RunID:       run.RunID,
		Scenario:    run.Scenario.Name(),
		Category:    string(run.Scenario.Category),
		Passed:      run.Passed,
		CollectedAt: time.Now().UTC(),
	}
	if !run.Passed && run.Scenario.Artifacts.SearchLogs {
		for _, name := range names {
			s.LogFindings = append(s.LogFindings, SearchLogs(name, run.Logs[name])...)
		}
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	glog.Infof("run %s: artifacts collected under %s", run.RunID, dir)
	return nil
}

// SearchLogs scans one element's log for error signatures and returns
// a "<element>:<line-number>: <line>" finding per hit.
func SearchLogs(name string, log []byte) []string {
	var findings []string
	sc := bufio.NewScanner(bytes.NewReader(log))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		lower := strings.ToLower(text)
		for _, marker := range errorMarkers {
			if strings.Contains(lower, marker) {
				findings = append(findings, fmt.Sprintf("%s:%d: %s", name, line, text))
				break
			}
		}
	}
	return findings
}
