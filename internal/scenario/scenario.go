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

// Package scenario defines the immutable parameter set describing one
// throughput test case, together with the declarative tables enumerating
// the scenarios the suite runs.  A scenario is fully determined before
// any network element is touched and is read-only context for every
// phase of the run.
package scenario

import (
	"fmt"
	"strconv"
	"time"
)

// Protocol selects the transport used by the traffic tool.
type Protocol int

// Supported traffic protocols.
const (
	UDP Protocol = iota
	TCP
)

func (p Protocol) String() string {
	switch p {
	case UDP:
		return "udp"
	case TCP:
		return "tcp"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

// Direction selects which way traffic flows relative to the endpoint.
type Direction int

// Supported traffic directions.
const (
	Downlink Direction = iota
	Uplink
	Bidirectional
)

func (d Direction) String() string {
	switch d {
	case Downlink:
		return "downlink"
	case Uplink:
		return "uplink"
	case Bidirectional:
		return "bidirectional"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Legs returns the individual directions exercised by d.  Bidirectional
// expands to both legs, which the measurement phase runs concurrently.
func (d Direction) Legs() []Direction {
	if d == Bidirectional {
		return []Direction{Downlink, Uplink}
	}
	return []Direction{d}
}

// Category tags a scenario with the pipeline family that selects it.
type Category string

// Scenario families mirroring the CI pipelines that run them.
const (
	Smoke          Category = "smoke"
	SimulatedRadio Category = "simulated"
	RealRadio      Category = "rf"
	Android        Category = "android"
)

// ArtifactPolicy controls what the reporter does after the run.
type ArtifactPolicy struct {
	// AlwaysDownload collects run artifacts regardless of verdict.
	AlwaysDownload bool
	// SearchLogs scans collected logs for error signatures when the
	// run did not pass.
	SearchLogs bool
}

// AutoCalibration is the TimeAlignmentCalibration value that lets the
// test bed pick its own calibration.
const AutoCalibration = "auto"

// AutoTimingAdvance is the TimingAdvance sentinel for automatic timing
// advance.
const AutoTimingAdvance = -1

// Duration tiers used by the scenario tables.
const (
	TinyDuration  = 5 * time.Second
	ShortDuration = 20 * time.Second
	LongDuration  = 5 * time.Minute
)

// Bitrate tiers used by the scenario tables.
const (
	LowBitrate  int64 = 1_000_000
	HighBitrate int64 = 15_000_000
)

// DefaultTolerance is the relative shortfall allowed between measured
// and target bitrate unless a scenario overrides it.
const DefaultTolerance = 0.1

// Parameters describes one throughput test case.  The zero value is not
// a valid scenario; construct them through the tables in this package
// or populate every radio and traffic field explicitly.
type Parameters struct {
	// Radio configuration.  Band, subcarrier spacing and channel
	// bandwidth are mutually constrained; see Validate.
	Band                 int
	SubcarrierSpacingKHz int
	BandwidthMHz         int

	// SampleRateHz overrides the test bed's sample rate.  Zero lets
	// the bed choose its default.
	SampleRateHz int

	Protocol  Protocol
	Direction Direction

	Duration         time.Duration
	TargetBitrateBps int64

	// BitrateTolerance is the maximum allowed relative shortfall
	// between measured and target bitrate, in [0, 1].  Zero disables
	// the bitrate check entirely: only transport-level success gates
	// the verdict.
	BitrateTolerance float64

	// Radio synchronization hints, passed opaquely to the
	// configurator.  TimingAdvance of AutoTimingAdvance and
	// TimeAlignmentCalibration of AutoCalibration select automatic
	// behavior.
	TimingAdvance            int
	TimeAlignmentCalibration string

	// PacketCapture enables pcap collection on the test bed.
	PacketCapture bool

	Artifacts ArtifactPolicy
	Category  Category
}

// Name returns the scenario identifier used in logs, test names and
// artifact paths, e.g.
// "band:3-scs:15-bandwidth:20-bitrate:1000000-artifacts:true-udp-downlink".
func (p Parameters) Name() string {
	return fmt.Sprintf("band:%d-scs:%d-bandwidth:%d-bitrate:%d-artifacts:%t-%s-%s",
		p.Band, p.SubcarrierSpacingKHz, p.BandwidthMHz, p.TargetBitrateBps,
		p.Artifacts.AlwaysDownload, p.Protocol, p.Direction)
}

// radioCombos lists the valid channel bandwidths per (band, scs) pair.
var radioCombos = map[[2]int][]int{
	{3, 15}:  {5, 10, 15, 20, 50},
	{41, 30}: {10, 20, 50, 100},
	{78, 30}: {10, 20, 50, 100},
}

// Validate checks the radio combination and the traffic fields.  It is
// called by the sequencer before any network element is touched.
func (p Parameters) Validate() error {
	bws, ok := radioCombos[[2]int{p.Band, p.SubcarrierSpacingKHz}]
	if !ok {
		return fmt.Errorf("unsupported band %d with %d kHz subcarrier spacing", p.Band, p.SubcarrierSpacingKHz)
	}
	found := false
	for _, bw := range bws {
		if bw == p.BandwidthMHz {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("band %d does not support %d MHz channel bandwidth", p.Band, p.BandwidthMHz)
	}
	if p.SampleRateHz < 0 {
		return fmt.Errorf("negative sample rate %d", p.SampleRateHz)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("non-positive duration %v", p.Duration)
	}
	if p.TargetBitrateBps <= 0 {
		return fmt.Errorf("non-positive target bitrate %d", p.TargetBitrateBps)
	}
	if p.BitrateTolerance < 0 || p.BitrateTolerance > 1 {
		return fmt.Errorf("bitrate tolerance %v outside [0, 1]", p.BitrateTolerance)
	}
	if p.TimingAdvance < AutoTimingAdvance {
		return fmt.Errorf("invalid timing advance %d", p.TimingAdvance)
	}
	if p.TimeAlignmentCalibration != AutoCalibration {
		if _, err := strconv.Atoi(p.TimeAlignmentCalibration); err != nil {
			return fmt.Errorf("time alignment calibration %q is neither %q nor an integer", p.TimeAlignmentCalibration, AutoCalibration)
		}
	}
	return nil
}
