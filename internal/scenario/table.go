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

import "github.com/openran/ranperf/internal/rates"

// allProtocols and allDirections are the axes every family is crossed
// with.  Keeping them here makes each table below pure radio data.
var (
	allProtocols  = []Protocol{UDP, TCP}
	allDirections = []Direction{Downlink, Uplink, Bidirectional}
)

// cross expands a base scenario over every protocol/direction pair.
func cross(base Parameters, protocols []Protocol, directions []Direction) []Parameters {
	var out []Parameters
	for _, proto := range protocols {
		for _, dir := range directions {
			p := base
			p.Protocol = proto
			p.Direction = dir
			out = append(out, p)
		}
	}
	return out
}

// AndroidScenarios exercises a single handset endpoint over the air with
// an explicit minimum sample rate and automatic radio synchronization.
func AndroidScenarios() []Parameters {
	var out []Parameters
	for _, radio := range []struct{ band, scs, bw int }{
		{3, 15, 10},
		{78, 30, 20},
	} {
		out = append(out, cross(Parameters{
			Band:                     radio.band,
			SubcarrierSpacingKHz:     radio.scs,
			BandwidthMHz:             radio.bw,
			SampleRateHz:             rates.MinimumSampleRate(radio.bw),
			Duration:                 ShortDuration,
			TargetBitrateBps:         HighBitrate,
			BitrateTolerance:         DefaultTolerance,
			TimingAdvance:            AutoTimingAdvance,
			TimeAlignmentCalibration: AutoCalibration,
			Artifacts:                ArtifactPolicy{AlwaysDownload: true},
			Category:                 Android,
		}, allProtocols, allDirections)...)
	}
	return out
}

// SmokeScenarios are liveness-only checks on the simulated radio: the
// bitrate threshold is disabled, so only transport success matters.
func SmokeScenarios() []Parameters {
	var out []Parameters
	for _, radio := range []struct{ band, scs, bw int }{
		{3, 15, 20},
		{41, 30, 20},
	} {
		out = append(out, cross(Parameters{
			Band:                     radio.band,
			SubcarrierSpacingKHz:     radio.scs,
			BandwidthMHz:             radio.bw,
			Duration:                 ShortDuration,
			TargetBitrateBps:         LowBitrate,
			BitrateTolerance:         0,
			TimingAdvance:            0,
			TimeAlignmentCalibration: "0",
			Artifacts:                ArtifactPolicy{AlwaysDownload: true, SearchLogs: true},
			Category:                 Smoke,
		}, allProtocols, allDirections)...)
	}
	return out
}

// SimulatedRadioScenarios are the regression matrix on the simulated
// radio: full bandwidth sweep at the high bitrate with the default
// tolerance.  Artifacts are only kept for the widest channels, where
// failures are hardest to reproduce.
func SimulatedRadioScenarios() []Parameters {
	var out []Parameters
	for _, radio := range []struct {
		band, scs, bw int
		artifacts     bool
	}{
		{3, 15, 5, false},
		{3, 15, 10, false},
		{3, 15, 20, false},
		{3, 15, 50, true},
		{41, 30, 10, false},
		{41, 30, 20, false},
		{41, 30, 50, true},
	} {
		out = append(out, cross(Parameters{
			Band:                     radio.band,
			SubcarrierSpacingKHz:     radio.scs,
			BandwidthMHz:             radio.bw,
			Duration:                 ShortDuration,
			TargetBitrateBps:         HighBitrate,
			BitrateTolerance:         DefaultTolerance,
			TimingAdvance:            0,
			TimeAlignmentCalibration: "0",
			Artifacts:                ArtifactPolicy{AlwaysDownload: radio.artifacts, SearchLogs: true},
			Category:                 SimulatedRadio,
		}, allProtocols, allDirections)...)
	}
	return out
}

// RealRadioScenarios are UDP soak runs over real RF hardware.
func RealRadioScenarios() []Parameters {
	var out []Parameters
	for _, radio := range []struct{ band, scs, bw int }{
		{3, 15, 10},
		{41, 30, 10},
	} {
		out = append(out, cross(Parameters{
			Band:                     radio.band,
			SubcarrierSpacingKHz:     radio.scs,
			BandwidthMHz:             radio.bw,
			Duration:                 LongDuration,
			TargetBitrateBps:         HighBitrate,
			BitrateTolerance:         DefaultTolerance,
			TimingAdvance:            AutoTimingAdvance,
			TimeAlignmentCalibration: AutoCalibration,
			Artifacts:                ArtifactPolicy{AlwaysDownload: true},
			Category:                 RealRadio,
		}, []Protocol{UDP}, allDirections)...)
	}
	return out
}

// All returns every scenario in the suite, in table order.
func All() []Parameters {
	var out []Parameters
	out = append(out, SmokeScenarios()...)
	out = append(out, SimulatedRadioScenarios()...)
	out = append(out, AndroidScenarios()...)
	out = append(out, RealRadioScenarios()...)
	return out
}

// Select returns the scenarios tagged with the given category.
func Select(c Category) []Parameters {
	var out []Parameters
	for _, p := range All() {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}
