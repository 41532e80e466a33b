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

// Package traffic runs the measurement phase of a throughput scenario:
// one bounded traffic session per exercised direction, reduced to a
// pass/fail verdict against the scenario's bitrate tolerance.
package traffic

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// GraceMargin is how far past the scenario duration the whole
// measurement may run before it is treated as an infrastructure error
// rather than a bitrate failure.
var GraceMargin = 30 * time.Second

// LegResult records what one directional session achieved.
type LegResult struct {
	Direction   scenario.Direction
	Measurement binding.Measurement
	// Shortfall is (target - measured) / target.  Negative when the
	// session exceeded its target.
	Shortfall float64
	// Checked is false when the scenario's tolerance is zero and the
	// shortfall was recorded for observability only.
	Checked bool
	// TransportErr is the transport-level failure of this leg, if any.
	TransportErr error
}

// Violation is one direction whose shortfall exceeded the tolerance.
type Violation struct {
	Direction scenario.Direction
	Shortfall float64
	Tolerance float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s shortfall %.3f exceeds tolerance %.3f", v.Direction, v.Shortfall, v.Tolerance)
}

// Result is the reduced outcome of a measurement phase.
type Result struct {
	Legs       []LegResult
	Violations []Violation
}

// Passed reports whether every leg completed without transport error
// and within tolerance.
func (r Result) Passed() bool {
	if len(r.Violations) > 0 {
		return false
	}
	for _, leg := range r.Legs {
		if leg.TransportErr != nil {
			return false
		}
	}
	return true
}

// Measure runs the scenario's traffic sessions against the attached
// endpoints and validates the outcome.  Bidirectional scenarios run
// both legs concurrently over the same window; validation waits for
// both.  The returned error is non-nil only for infrastructure
// problems (cancellation, or the session overrunning the duration plus
// GraceMargin); transport failures and threshold violations are
// reported through the Result.
func Measure(ctx context.Context, params scenario.Parameters, attached []binding.AttachInfo, gen binding.TrafficGenerator) (Result, error) {
	legs := params.Direction.Legs()
	results := make([]LegResult, len(legs))

	ctx, cancel := context.WithTimeout(ctx, params.Duration+GraceMargin)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range legs {
		g.Go(func() error {
			spec := binding.TrafficSpec{
				Protocol:         params.Protocol,
				Direction:        dir,
				TargetBitrateBps: params.TargetBitrateBps,
				Duration:         params.Duration,
				Endpoints:        attached,
			}
			m, err := gen.Run(gctx, spec)
			results[i] = LegResult{Direction: dir, Measurement: m}
			if err != nil {
				if !binding.IsTransport(err) {
					return fmt.Errorf("%s session: %w", dir, err)
				}
				results[i].TransportErr = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("measurement exceeded %v: %w", params.Duration+GraceMargin, err)
		}
		return Result{}, err
	}

	res := Result{Legs: results}
	for i := range res.Legs {
		leg := &res.Legs[i]
		if leg.TransportErr != nil {
			// The leg already failed at the transport level; its
			// (empty) measurement is not held against the threshold.
			continue
		}
		leg.Shortfall = shortfall(params.TargetBitrateBps, leg.Measurement.BitsPerSecond)
		if params.BitrateTolerance == 0 {
			// Liveness-only scenario: the measured bitrate is logged
			// but never gates the verdict.
			glog.Infof("%s: %s measured %.0f bit/s (target %d, check disabled)",
				params.Name(), leg.Direction, leg.Measurement.BitsPerSecond, params.TargetBitrateBps)
			continue
		}
		leg.Checked = true
		glog.Infof("%s: %s measured %.0f bit/s (target %d, shortfall %.3f)",
			params.Name(), leg.Direction, leg.Measurement.BitsPerSecond, params.TargetBitrateBps, leg.Shortfall)
		// The tolerance is a closed upper bound: a shortfall exactly
		// at the tolerance passes.
		if leg.Shortfall > params.BitrateTolerance {
			res.Violations = append(res.Violations, Violation{
				Direction: leg.Direction,
				Shortfall: leg.Shortfall,
				Tolerance: params.BitrateTolerance,
			})
		}
	}
	return res, nil
}

func shortfall(targetBps int64, measuredBps float64) float64 {
	return (float64(targetBps) - measuredBps) / float64(targetBps)
}
