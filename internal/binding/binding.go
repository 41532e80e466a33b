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

// Package binding declares the capability contracts through which the
// orchestration core drives a test bed.  The core never constructs or
// destroys the underlying network elements; it only calls the
// operations declared here.  Concrete beds (simulated, OTG hardware,
// iperf hosts) live in sibling packages.
package binding

import (
	"context"
	"time"

	"github.com/openran/ranperf/internal/scenario"
)

// AttachInfo is the registration metadata the attach procedure yields
// for one endpoint, consumed by the measurement phase.
type AttachInfo struct {
	// UE names the endpoint the info belongs to.
	UE string
	// IPv4 is the address assigned during registration; traffic
	// sessions target it.
	IPv4 string
	// AttachTime is how long registration took.
	AttachTime time.Duration
}

// Measurement is the raw result of one traffic session.  It is
// consumed exactly once by the validation step and not persisted.
type Measurement struct {
	// BitsPerSecond is the goodput observed at the receiver.
	BitsPerSecond float64
	// Bytes is the total payload delivered.
	Bytes int64
	// Elapsed is the wall time the session ran for.
	Elapsed time.Duration
}

// TrafficSpec describes one traffic session for a single direction.
// Bidirectional scenarios are expanded into two concurrent specs by the
// measurement phase, never passed through here.
type TrafficSpec struct {
	Protocol         scenario.Protocol
	Direction        scenario.Direction
	TargetBitrateBps int64
	Duration         time.Duration
	// Endpoints are the attached endpoints the session targets.
	Endpoints []AttachInfo
}

// Configurator pushes a scenario's radio and test bed configuration to
// the base station and core network.  Apply must be idempotent within a
// single invocation; the sequencer never retries it.
type Configurator interface {
	Apply(ctx context.Context, params scenario.Parameters) error
}

// BaseStation is the handle for the radio access element.
type BaseStation interface {
	Name() string
	// Stop shuts the element down at teardown.  Best effort.
	Stop(ctx context.Context) error
}

// CoreNetwork is the handle for the mobility/session management
// element that routes endpoint traffic.
type CoreNetwork interface {
	Name() string
	Stop(ctx context.Context) error
}

// UserEndpoint is the handle for one UE.  Attach registers the
// endpoint against the given base station and core; Detach releases
// the registration and is best effort.
type UserEndpoint interface {
	Name() string
	Attach(ctx context.Context, bs BaseStation, core CoreNetwork) (AttachInfo, error)
	Detach(ctx context.Context) error
}

// TrafficGenerator runs one traffic session and reports what the
// receiver saw.  A TransportError return marks a transport-level
// failure as opposed to an infrastructure problem.
type TrafficGenerator interface {
	Run(ctx context.Context, spec TrafficSpec) (Measurement, error)
}

// LogSource is optionally implemented by bed elements that can hand
// over their logs for artifact collection.
type LogSource interface {
	Logs() []byte
}

// ArtifactCollector receives the run summary and any element logs
// after teardown, per the scenario's artifact policy.
type ArtifactCollector interface {
	Collect(ctx context.Context, run RunArtifacts) error
}

// RunArtifacts bundles what the collector receives for one run.
type RunArtifacts struct {
	RunID    string
	Scenario scenario.Parameters
	// Passed reports the provisional verdict at collection time.
	Passed bool
	// Logs maps element names to their captured logs.
	Logs map[string][]byte
}

// Testbed bundles the handles for one exclusively-owned test bed.  The
// fixture layer that builds it guarantees exclusive ownership for the
// duration of one invocation.
type Testbed struct {
	// UEs is the ordered, non-empty endpoint set.
	UEs         []UserEndpoint
	BaseStation BaseStation
	Core        CoreNetwork
	Config      Configurator
	Traffic     TrafficGenerator
	// Artifacts may be nil when no collection is wanted.
	Artifacts ArtifactCollector
}
