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

package binding

import (
	"errors"
	"fmt"

	"github.com/openran/ranperf/internal/scenario"
)

// ConfigError marks a rejected test bed configuration.  It is fatal
// and pre-attach: no endpoint teardown is needed when it occurs.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("configuration rejected: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// AttachError marks a failed or timed-out endpoint registration.
type AttachError struct {
	UE  string
	Err error
}

func (e *AttachError) Error() string { return fmt.Sprintf("attach of %s failed: %v", e.UE, e.Err) }
func (e *AttachError) Unwrap() error { return e.Err }

// TransportError marks a transport-level failure reported by the
// traffic tool.  It yields a measured failure, not an infrastructure
// error.
type TransportError struct {
	Direction scenario.Direction
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failed: %v", e.Direction, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
