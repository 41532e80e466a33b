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

package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func validParams() Parameters {
	return Parameters{
		Band:                     3,
		SubcarrierSpacingKHz:     15,
		BandwidthMHz:             20,
		Protocol:                 UDP,
		Direction:                Downlink,
		Duration:                 ShortDuration,
		TargetBitrateBps:         LowBitrate,
		TimeAlignmentCalibration: AutoCalibration,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Parameters)
		wantErr string
	}{{
		name:   "valid",
		mutate: func(p *Parameters) {},
	}, {
		name:   "valid numeric calibration",
		mutate: func(p *Parameters) { p.TimeAlignmentCalibration = "0" },
	}, {
		name:   "valid auto timing advance",
		mutate: func(p *Parameters) { p.TimingAdvance = AutoTimingAdvance },
	}, {
		name:    "unknown band",
		mutate:  func(p *Parameters) { p.Band = 7 },
		wantErr: "unsupported band",
	}, {
		name:    "scs mismatch",
		mutate:  func(p *Parameters) { p.SubcarrierSpacingKHz = 30 },
		wantErr: "unsupported band",
	}, {
		name:    "bandwidth not offered",
		mutate:  func(p *Parameters) { p.BandwidthMHz = 100 },
		wantErr: "does not support",
	}, {
		name:    "negative sample rate",
		mutate:  func(p *Parameters) { p.SampleRateHz = -1 },
		wantErr: "sample rate",
	}, {
		name:    "zero duration",
		mutate:  func(p *Parameters) { p.Duration = 0 },
		wantErr: "duration",
	}, {
		name:    "zero bitrate",
		mutate:  func(p *Parameters) { p.TargetBitrateBps = 0 },
		wantErr: "bitrate",
	}, {
		name:    "tolerance above one",
		mutate:  func(p *Parameters) { p.BitrateTolerance = 1.5 },
		wantErr: "tolerance",
	}, {
		name:    "timing advance below sentinel",
		mutate:  func(p *Parameters) { p.TimingAdvance = -2 },
		wantErr: "timing advance",
	}, {
		name:    "bad calibration",
		mutate:  func(p *Parameters) { p.TimeAlignmentCalibration = "sideways" },
		wantErr: "calibration",
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestName(t *testing.T) {
	p := validParams()
	p.TargetBitrateBps = 1_000_000
	p.Artifacts.AlwaysDownload = true
	got := p.Name()
	want := "band:3-scs:15-bandwidth:20-bitrate:1000000-artifacts:true-udp-downlink"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestLegs(t *testing.T) {
	cases := []struct {
		dir  Direction
		want []Direction
	}{
		{Downlink, []Direction{Downlink}},
		{Uplink, []Direction{Uplink}},
		{Bidirectional, []Direction{Downlink, Uplink}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, tc.dir.Legs()); diff != "" {
			t.Errorf("%v.Legs() diff (-want +got):\n%s", tc.dir, diff)
		}
	}
}

func TestTables(t *testing.T) {
	cases := []struct {
		name   string
		got    []Parameters
		want   int
		checks func(t *testing.T, ps []Parameters)
	}{{
		name: "smoke",
		got:  SmokeScenarios(),
		want: 2 * 2 * 3,
		checks: func(t *testing.T, ps []Parameters) {
			for _, p := range ps {
				if p.BitrateTolerance != 0 {
					t.Errorf("%s: smoke scenario has tolerance %v, want 0", p.Name(), p.BitrateTolerance)
				}
				if !p.Artifacts.SearchLogs {
					t.Errorf("%s: smoke scenario without log search", p.Name())
				}
			}
		},
	}, {
		name: "simulated",
		got:  SimulatedRadioScenarios(),
		want: 7 * 2 * 3,
		checks: func(t *testing.T, ps []Parameters) {
			for _, p := range ps {
				if p.BitrateTolerance != DefaultTolerance {
					t.Errorf("%s: tolerance %v, want %v", p.Name(), p.BitrateTolerance, DefaultTolerance)
				}
			}
		},
	}, {
		name: "android",
		got:  AndroidScenarios(),
		want: 2 * 2 * 3,
		checks: func(t *testing.T, ps []Parameters) {
			for _, p := range ps {
				if p.SampleRateHz == 0 {
					t.Errorf("%s: android scenario without explicit sample rate", p.Name())
				}
				if p.TimingAdvance != AutoTimingAdvance || p.TimeAlignmentCalibration != AutoCalibration {
					t.Errorf("%s: android scenario without automatic synchronization", p.Name())
				}
			}
		},
	}, {
		name: "rf",
		got:  RealRadioScenarios(),
		want: 2 * 1 * 3,
		checks: func(t *testing.T, ps []Parameters) {
			for _, p := range ps {
				if p.Protocol != UDP {
					t.Errorf("%s: rf scenario with protocol %v, want udp", p.Name(), p.Protocol)
				}
				if p.Duration != LongDuration {
					t.Errorf("%s: rf scenario duration %v, want %v", p.Name(), p.Duration, LongDuration)
				}
			}
		},
	}}
	total := 0
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.got) != tc.want {
				t.Fatalf("got %d scenarios, want %d", len(tc.got), tc.want)
			}
			for _, p := range tc.got {
				if err := p.Validate(); err != nil {
					t.Errorf("%s: invalid table entry: %v", p.Name(), err)
				}
			}
			tc.checks(t, tc.got)
		})
		total += tc.want
	}

	if got := len(All()); got != total {
		t.Errorf("All() returned %d scenarios, want %d", got, total)
	}
	for _, c := range []Category{Smoke, SimulatedRadio, Android, RealRadio} {
		for _, p := range Select(c) {
			if p.Category != c {
				t.Errorf("Select(%s) returned %s scenario %s", c, p.Category, p.Name())
			}
		}
	}
}

func TestDurationTiers(t *testing.T) {
	if TinyDuration >= ShortDuration || ShortDuration >= LongDuration {
		t.Errorf("duration tiers not increasing: %v, %v, %v", TinyDuration, ShortDuration, LongDuration)
	}
	if LongDuration != 5*time.Minute {
		t.Errorf("LongDuration = %v, want 5m", LongDuration)
	}
}
