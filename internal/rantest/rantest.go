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

// Package rantest adapts sequencer outcomes to the go test runner: an
// infrastructure error becomes a fatal test error, a measured failure
// becomes a test failure, and teardown warnings are logged without
// affecting the result.
package rantest

import (
	"context"
	"testing"

	"github.com/kr/pretty"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
	"github.com/openran/ranperf/internal/sequencer"
)

// RunScenario executes one scenario against the bed and reports the
// verdict through t.  It returns the outcome for further assertions.
func RunScenario(t testing.TB, params scenario.Parameters, bed *binding.Testbed) sequencer.Outcome {
	t.Helper()
	out := sequencer.Run(context.Background(), params, bed)
	for _, w := range out.TeardownWarnings {
		t.Logf("teardown warning: %s", w)
	}
	switch out.Verdict {
	case sequencer.Error:
		t.Fatalf("scenario %s: %v", params.Name(), out.Err)
	case sequencer.Fail:
		t.Errorf("scenario %s failed:\n%s", params.Name(), pretty.Sprint(out.Traffic))
	}
	return out
}
