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

package traffic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// fakeGen returns a fraction of the requested target per direction and
// optionally injects transport errors or blocks until cancellation.
type fakeGen struct {
	mu        sync.Mutex
	fractions map[scenario.Direction]float64
	errs      map[scenario.Direction]error
	block     bool
	specs     []binding.TrafficSpec
}

func (g *fakeGen) Run(ctx context.Context, spec binding.TrafficSpec) (binding.Measurement, error) {
	g.mu.Lock()
	g.specs = append(g.specs, spec)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return binding.Measurement{}, ctx.Err()
	}
	if err := g.errs[spec.Direction]; err != nil {
		return binding.Measurement{}, err
	}
	f, ok := g.fractions[spec.Direction]
	if !ok {
		f = 1.0
	}
	bps := f * float64(spec.TargetBitrateBps)
	return binding.Measurement{
		BitsPerSecond: bps,
		Bytes:         int64(bps * spec.Duration.Seconds() / 8),
		Elapsed:       spec.Duration,
	}, nil
}

func baseParams() scenario.Parameters {
	return scenario.Parameters{
		Band:                     3,
		SubcarrierSpacingKHz:     15,
		BandwidthMHz:             20,
		Protocol:                 scenario.UDP,
		Direction:                scenario.Downlink,
		Duration:                 scenario.TinyDuration,
		TargetBitrateBps:         15_000_000,
		BitrateTolerance:         scenario.DefaultTolerance,
		TimeAlignmentCalibration: scenario.AutoCalibration,
	}
}

func attachedUEs(n int) []binding.AttachInfo {
	var out []binding.AttachInfo
	for i := 0; i < n; i++ {
		out = append(out, binding.AttachInfo{UE: "ue", IPv4: "10.45.0.2"})
	}
	return out
}

func TestMeasureVerdicts(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*scenario.Parameters)
		gen        *fakeGen
		wantPass   bool
		wantViol   int
		wantChecks []bool
	}{{
		name:       "full rate passes",
		mutate:     func(p *scenario.Parameters) {},
		gen:        &fakeGen{},
		wantPass:   true,
		wantChecks: []bool{true},
	}, {
		// A 15 Mbit/s target measured at 12 Mbit/s is a 0.2 shortfall,
		// over the 0.1 tolerance.
		name:       "shortfall over tolerance fails",
		mutate:     func(p *scenario.Parameters) {},
		gen:        &fakeGen{fractions: map[scenario.Direction]float64{scenario.Downlink: 0.8}},
		wantPass:   false,
		wantViol:   1,
		wantChecks: []bool{true},
	}, {
		name:       "shortfall exactly at tolerance passes",
		mutate:     func(p *scenario.Parameters) {},
		gen:        &fakeGen{fractions: map[scenario.Direction]float64{scenario.Downlink: 0.9}},
		wantPass:   true,
		wantChecks: []bool{true},
	}, {
		name:       "exceeding the target passes",
		mutate:     func(p *scenario.Parameters) {},
		gen:        &fakeGen{fractions: map[scenario.Direction]float64{scenario.Downlink: 1.2}},
		wantPass:   true,
		wantChecks: []bool{true},
	}, {
		// Zero tolerance disables the check: a trickle of traffic at a
		// fraction of the target still passes.
		name: "zero tolerance records without judging",
		mutate: func(p *scenario.Parameters) {
			p.TargetBitrateBps = 1_000_000
			p.BitrateTolerance = 0
		},
		gen:        &fakeGen{fractions: map[scenario.Direction]float64{scenario.Downlink: 0.2}},
		wantPass:   true,
		wantChecks: []bool{false},
	}, {
		name:   "transport error fails",
		mutate: func(p *scenario.Parameters) {},
		gen: &fakeGen{errs: map[scenario.Direction]error{
			scenario.Downlink: &binding.TransportError{Direction: scenario.Downlink, Err: errors.New("no route")},
		}},
		wantPass:   false,
		wantChecks: []bool{false},
	}, {
		name:   "bidirectional single bad leg fails",
		mutate: func(p *scenario.Parameters) { p.Direction = scenario.Bidirectional },
		gen: &fakeGen{fractions: map[scenario.Direction]float64{
			scenario.Downlink: 1.0,
			scenario.Uplink:   0.5,
		}},
		wantPass:   false,
		wantViol:   1,
		wantChecks: []bool{true, true},
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := baseParams()
			tc.mutate(&params)
			res, err := Measure(context.Background(), params, attachedUEs(1), tc.gen)
			if err != nil {
				t.Fatalf("Measure() error: %v", err)
			}
			if got := res.Passed(); got != tc.wantPass {
				t.Errorf("Passed() = %t, want %t (legs %+v, violations %v)", got, tc.wantPass, res.Legs, res.Violations)
			}
			if len(res.Violations) != tc.wantViol {
				t.Errorf("got %d violations %v, want %d", len(res.Violations), res.Violations, tc.wantViol)
			}
			if len(res.Legs) != len(tc.wantChecks) {
				t.Fatalf("got %d legs, want %d", len(res.Legs), len(tc.wantChecks))
			}
			for i, want := range tc.wantChecks {
				if res.Legs[i].Checked != want {
					t.Errorf("leg %d Checked = %t, want %t", i, res.Legs[i].Checked, want)
				}
			}
		})
	}
}

func TestMeasureBidirectionalRunsLegsConcurrently(t *testing.T) {
	params := baseParams()
	params.Direction = scenario.Bidirectional
	gen := &fakeGen{}
	res, err := Measure(context.Background(), params, attachedUEs(2), gen)
	if err != nil {
		t.Fatalf("Measure() error: %v", err)
	}
	if len(res.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(res.Legs))
	}
	dirs := map[scenario.Direction]bool{}
	for _, spec := range gen.specs {
		dirs[spec.Direction] = true
		if len(spec.Endpoints) != 2 {
			t.Errorf("%s spec has %d endpoints, want 2", spec.Direction, len(spec.Endpoints))
		}
	}
	if !dirs[scenario.Downlink] || !dirs[scenario.Uplink] {
		t.Errorf("sessions ran for %v, want both downlink and uplink", gen.specs)
	}
}

func TestMeasureOverrunIsInfrastructureError(t *testing.T) {
	old := GraceMargin
	GraceMargin = 50 * time.Millisecond
	defer func() { GraceMargin = old }()

	params := baseParams()
	params.Duration = 10 * time.Millisecond
	gen := &fakeGen{block: true}
	_, err := Measure(context.Background(), params, attachedUEs(1), gen)
	if err == nil {
		t.Fatal("Measure() = nil error, want overrun error")
	}
	if !strings.Contains(err.Error(), "exceeded") {
		t.Errorf("Measure() error = %v, want overrun message", err)
	}
}

func TestMeasureNonTransportErrorPropagates(t *testing.T) {
	params := baseParams()
	boom := errors.New("session crashed")
	gen := &fakeGen{errs: map[scenario.Direction]error{scenario.Downlink: boom}}
	_, err := Measure(context.Background(), params, attachedUEs(1), gen)
	if !errors.Is(err, boom) {
		t.Errorf("Measure() error = %v, want wrapped %v", err, boom)
	}
}
