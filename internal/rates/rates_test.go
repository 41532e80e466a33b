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

package rates

import "testing"

func TestMinimumSampleRate(t *testing.T) {
	cases := []struct {
		bandwidthMHz int
		want         int
	}{
		{5, 7_680_000},
		{10, 15_360_000},
		{15, 23_040_000},
		{20, 30_720_000},
		{50, 61_440_000},
		{100, 122_880_000},
		{7, 0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := MinimumSampleRate(tc.bandwidthMHz); got != tc.want {
			t.Errorf("MinimumSampleRate(%d) = %d, want %d", tc.bandwidthMHz, got, tc.want)
		}
	}
}

func TestRatesCoverAllBandwidths(t *testing.T) {
	// Every rate must be a multiple of the base 1.92 MHz LTE rate.
	for bw, rate := range minimumSampleRate {
		if rate%1_920_000 != 0 {
			t.Errorf("rate for %d MHz = %d, not a multiple of 1.92 MHz", bw, rate)
		}
	}
}
