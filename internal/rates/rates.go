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

// Package rates maps channel bandwidths to the minimum sample rate an
// SDR front end must run at to carry them.
package rates

// minimumSampleRate holds the smallest standard sample rate able to
// carry each supported channel bandwidth, in Hz.  The rates are the
// usual 3GPP-derived multiples of 1.92 MHz.
var minimumSampleRate = map[int]int{
	5:   7_680_000,
	10:  15_360_000,
	15:  23_040_000,
	20:  30_720_000,
	50:  61_440_000,
	100: 122_880_000,
}

// MinimumSampleRate returns the minimum sample rate in Hz for the given
// channel bandwidth in MHz, or 0 if the bandwidth has no table entry
// (callers treat 0 as "let the test bed choose").
func MinimumSampleRate(bandwidthMHz int) int {
	return minimumSampleRate[bandwidthMHz]
}
