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

// Package sequencer drives the ordered lifecycle of one throughput
// scenario: configure, attach every endpoint, measure, and tear down.
// Teardown runs exactly once on every exit path; that guarantee is the
// central correctness property of this package, since test beds are
// shared across invocations and leaked registrations poison later runs.
package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
	"github.com/openran/ranperf/internal/traffic"
)

// teardownTimeout bounds the cleanup of a bed whose run may have been
// canceled; teardown uses its own context so a dead parent context
// cannot skip it.
const teardownTimeout = 2 * time.Minute

// Verdict is the test outcome a run surfaces to its caller.
type Verdict int

const (
	// Pass: transport succeeded and every checked direction met its
	// tolerance.
	Pass Verdict = iota
	// Fail: a measured failure (transport error or threshold
	// violation).
	Fail
	// Error: an infrastructure problem (configuration rejected,
	// attach failure, measurement overrun); not a measured failure.
	Error
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Outcome is everything a run produced.
type Outcome struct {
	RunID    string
	Scenario scenario.Parameters
	Verdict  Verdict
	// Attached holds the registration metadata of every endpoint that
	// attached, in endpoint order.
	Attached []binding.AttachInfo
	// Traffic carries per-direction measurements and violations when
	// the measurement phase ran.
	Traffic traffic.Result
	// Err is set when Verdict is Error.
	Err error
	// TeardownWarnings records best-effort cleanup failures.  They
	// never change the verdict.
	TeardownWarnings []string
	Elapsed          time.Duration
}

// Run executes the scenario lifecycle against the bed and returns its
// outcome.  The bed is treated as exclusively owned until Run returns.
func Run(ctx context.Context, params scenario.Parameters, bed *binding.Testbed) (out Outcome) {
	start := time.Now()
	out.RunID = uuid.NewString()
	out.Scenario = params
	defer func() { out.Elapsed = time.Since(start) }()

	if err := params.Validate(); err != nil {
		out.Verdict = Error
		out.Err = fmt.Errorf("invalid scenario: %w", err)
		return out
	}
	if len(bed.UEs) == 0 {
		out.Verdict = Error
		out.Err = fmt.Errorf("testbed has no endpoints")
		return out
	}
	glog.Infof("run %s: scenario %s", out.RunID, params.Name())

	// Teardown is scheduled before any element is touched so that it
	// runs exactly once on every exit path, including panics out of
	// the phases below.
	var attached []binding.AttachInfo
	attachedUEs := make(map[string]binding.UserEndpoint)
	defer func() {
		out.TeardownWarnings = teardown(ctx, bed, attachedUEs, &out)
	}()

	// Phase 1: configure.  Rejection is fatal and never retried;
	// configuration is idempotent within one invocation.
	if err := bed.Config.Apply(ctx, params); err != nil {
		out.Verdict = Error
		out.Err = &binding.ConfigError{Err: err}
		return out
	}

	// Phase 2: attach, an all-or-nothing barrier.  Endpoints attach
	// in set order; any failure aborts the sequence, and only the
	// endpoints that made it are detached.
	for _, ue := range bed.UEs {
		info, err := ue.Attach(ctx, bed.BaseStation, bed.Core)
		if err != nil {
			out.Verdict = Error
			out.Err = &binding.AttachError{UE: ue.Name(), Err: err}
			return out
		}
		glog.V(1).Infof("run %s: %s attached as %s in %v", out.RunID, ue.Name(), info.IPv4, info.AttachTime)
		attached = append(attached, info)
		attachedUEs[ue.Name()] = ue
	}
	out.Attached = attached

	// Phase 3: measure.
	res, err := traffic.Measure(ctx, params, attached, bed.Traffic)
	if err != nil {
		out.Verdict = Error
		out.Err = err
		return out
	}
	out.Traffic = res
	if res.Passed() {
		out.Verdict = Pass
	} else {
		out.Verdict = Fail
	}
	return out
}

// teardown detaches every attached endpoint, stops the base station and
// core, and triggers artifact collection per policy.  Failures are
// returned as warnings; they never override the outcome already
// determined by the phases.
func teardown(ctx context.Context, bed *binding.Testbed, attached map[string]binding.UserEndpoint, out *Outcome) []string {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()

	var mu sync.Mutex
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		glog.Warningf("run %s: %s", out.RunID, msg)
		mu.Lock()
		warnings = append(warnings, msg)
		mu.Unlock()
	}

	// Detach is order independent and parallel across endpoints; all
	// detaches complete before the elements are stopped.
	var wg sync.WaitGroup
	for name, ue := range attached {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ue.Detach(tctx); err != nil {
				warn("detach of %s failed: %v", name, err)
			}
		}()
	}
	wg.Wait()

	if err := bed.BaseStation.Stop(tctx); err != nil {
		warn("stopping base station %s failed: %v", bed.BaseStation.Name(), err)
	}
	if err := bed.Core.Stop(tctx); err != nil {
		warn("stopping core %s failed: %v", bed.Core.Name(), err)
	}

	policy := out.Scenario.Artifacts
	passed := out.Verdict == Pass
	if bed.Artifacts != nil && (policy.AlwaysDownload || (!passed && policy.SearchLogs)) {
		run := binding.RunArtifacts{
			RunID:    out.RunID,
			Scenario: out.Scenario,
			Passed:   passed,
			Logs:     gatherLogs(bed),
		}
		if err := bed.Artifacts.Collect(tctx, run); err != nil {
			warn("artifact collection failed: %v", err)
		}
	}
	return warnings
}

// gatherLogs pulls logs from every bed element that exposes them.
func gatherLogs(bed *binding.Testbed) map[string][]byte {
	logs := make(map[string][]byte)
	add := func(name string, v any) {
		if src, ok := v.(binding.LogSource); ok {
			logs[name] = src.Logs()
		}
	}
	for _, ue := range bed.UEs {
		add(ue.Name(), ue)
	}
	add(bed.BaseStation.Name(), bed.BaseStation)
	add(bed.Core.Name(), bed.Core)
	return logs
}
