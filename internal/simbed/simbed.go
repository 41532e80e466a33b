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

// Package simbed is an in-process test bed: endpoints, base station,
// core and traffic generator simulated behind the binding contracts.
// It is what CI pipelines run the suite against, and it doubles as the
// fault-injection bed for the framework's own tests, so every element
// counts its capability calls.
package simbed

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// Bed owns the simulated elements and hands out a binding.Testbed over
// them.
type Bed struct {
	UEs    []*UE
	BS     *Node
	Core   *Node
	Config *Configurator
	Gen    *Generator
	// Collector may be set by the caller; Testbed passes it through.
	Collector binding.ArtifactCollector
}

// Option adjusts the simulated bed's behavior.
type Option func(*Bed)

// WithAttachDelay makes endpoint i take d to register.
func WithAttachDelay(i int, d time.Duration) Option {
	return func(b *Bed) { b.UEs[i].attachDelay = d }
}

// WithAttachError makes endpoint i fail registration.
func WithAttachError(i int, err error) Option {
	return func(b *Bed) { b.UEs[i].attachErr = err }
}

// WithDetachError makes endpoint i fail detaching.
func WithDetachError(i int, err error) Option {
	return func(b *Bed) { b.UEs[i].detachErr = err }
}

// WithApplyError makes the configurator reject configuration.
func WithApplyError(err error) Option {
	return func(b *Bed) { b.Config.err = err }
}

// WithStopErrors makes the base station and core fail their stop calls.
func WithStopErrors(err error) Option {
	return func(b *Bed) {
		b.BS.stopErr = err
		b.Core.stopErr = err
	}
}

// WithAchievedFraction scales the measured bitrate of a direction to
// fraction * target.  Directions default to achieving their target.
func WithAchievedFraction(dir scenario.Direction, fraction float64) Option {
	return func(b *Bed) { b.Gen.fraction[dir] = fraction }
}

// WithTransportError injects a transport-level failure on a direction.
func WithTransportError(dir scenario.Direction, err error) Option {
	return func(b *Bed) { b.Gen.transportErr[dir] = err }
}

// WithSessionDelay makes every traffic session block for d (subject to
// context cancellation) before reporting.
func WithSessionDelay(d time.Duration) Option {
	return func(b *Bed) { b.Gen.sessionDelay = d }
}

// New builds a simulated bed with n endpoints.
func New(n int, opts ...Option) *Bed {
	b := &Bed{
		BS:     &Node{name: "gnb"},
		Core:   &Node{name: "core"},
		Config: &Configurator{},
		Gen: &Generator{
			fraction:     make(map[scenario.Direction]float64),
			transportErr: make(map[scenario.Direction]error),
		},
	}
	for i := 0; i < n; i++ {
		b.UEs = append(b.UEs, &UE{
			name: fmt.Sprintf("ue%d", i+1),
			addr: fmt.Sprintf("10.45.0.%d", i+2),
		})
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Testbed exposes the simulated elements behind the binding contracts.
func (b *Bed) Testbed() *binding.Testbed {
	tb := &binding.Testbed{
		BaseStation: b.BS,
		Core:        b.Core,
		Config:      b.Config,
		Traffic:     b.Gen,
		Artifacts:   b.Collector,
	}
	for _, ue := range b.UEs {
		tb.UEs = append(tb.UEs, ue)
	}
	return tb
}

// UE is a simulated user endpoint.
type UE struct {
	name        string
	addr        string
	attachDelay time.Duration
	attachErr   error
	detachErr   error

	mu          sync.Mutex
	attachCalls int
	detachCalls int
	log         bytes.Buffer
}

// Name implements binding.UserEndpoint.
func (u *UE) Name() string { return u.name }

// Attach implements binding.UserEndpoint.  It honors the context while
// simulating the registration delay.
func (u *UE) Attach(ctx context.Context, bs binding.BaseStation, core binding.CoreNetwork) (binding.AttachInfo, error) {
	u.mu.Lock()
	u.attachCalls++
	fmt.Fprintf(&u.log, "attach request via %s/%s\n", bs.Name(), core.Name())
	u.mu.Unlock()

	if u.attachDelay > 0 {
		t := time.NewTimer(u.attachDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return binding.AttachInfo{}, ctx.Err()
		case <-t.C:
		}
	}
	if u.attachErr != nil {
		u.logf("attach failed: %v", u.attachErr)
		return binding.AttachInfo{}, u.attachErr
	}
	u.logf("attached with address %s", u.addr)
	return binding.AttachInfo{UE: u.name, IPv4: u.addr, AttachTime: u.attachDelay}, nil
}

// Detach implements binding.UserEndpoint.
func (u *UE) Detach(ctx context.Context) error {
	u.mu.Lock()
	u.detachCalls++
	u.mu.Unlock()
	if u.detachErr != nil {
		u.logf("detach failed: %v", u.detachErr)
		return u.detachErr
	}
	u.logf("detached")
	return nil
}

// AttachCalls reports how many attach requests the endpoint received.
func (u *UE) AttachCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.attachCalls
}

// DetachCalls reports how many detach requests the endpoint received.
func (u *UE) DetachCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.detachCalls
}

// Logs implements binding.LogSource.
func (u *UE) Logs() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]byte(nil), u.log.Bytes()...)
}

func (u *UE) logf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(&u.log, format+"\n", args...)
}

// Node simulates the base station or core network handle.
type Node struct {
	name    string
	stopErr error

	mu        sync.Mutex
	stopCalls int
	log       bytes.Buffer
}

// Name implements binding.BaseStation and binding.CoreNetwork.
func (n *Node) Name() string { return n.name }

// Stop implements binding.BaseStation and binding.CoreNetwork.
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	n.stopCalls++
	fmt.Fprintf(&n.log, "stop requested\n")
	n.mu.Unlock()
	return n.stopErr
}

// StopCalls reports how many stop requests the node received.
func (n *Node) StopCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopCalls
}

// Logs implements binding.LogSource.
func (n *Node) Logs() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]byte(nil), n.log.Bytes()...)
}

// Configurator records applied scenario configuration.  Applying the
// same parameters twice leaves the same resulting configuration; only
// the call count grows.
type Configurator struct {
	err error

	mu         sync.Mutex
	applyCalls int
	current    scenario.Parameters
	hasConfig  bool
}

// Apply implements binding.Configurator.
func (c *Configurator) Apply(ctx context.Context, params scenario.Parameters) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyCalls++
	if c.err != nil {
		return c.err
	}
	c.current = params
	c.hasConfig = true
	return nil
}

// Current returns the configuration resulting from the apply calls so
// far.
func (c *Configurator) Current() (scenario.Parameters, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasConfig
}

// ApplyCalls reports how many apply requests were made.
func (c *Configurator) ApplyCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyCalls
}

// Generator simulates the traffic tool.  Each direction achieves
// fraction * target bits per second, defaulting to the full target.
type Generator struct {
	fraction     map[scenario.Direction]float64
	transportErr map[scenario.Direction]error
	sessionDelay time.Duration

	mu   sync.Mutex
	runs []binding.TrafficSpec
}

// Run implements binding.TrafficGenerator.
func (g *Generator) Run(ctx context.Context, spec binding.TrafficSpec) (binding.Measurement, error) {
	g.mu.Lock()
	g.runs = append(g.runs, spec)
	g.mu.Unlock()

	if g.sessionDelay > 0 {
		t := time.NewTimer(g.sessionDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return binding.Measurement{}, ctx.Err()
		case <-t.C:
		}
	}
	if err := g.transportErr[spec.Direction]; err != nil {
		return binding.Measurement{}, &binding.TransportError{Direction: spec.Direction, Err: err}
	}
	f, ok := g.fraction[spec.Direction]
	if !ok {
		f = 1.0
	}
	bps := f * float64(spec.TargetBitrateBps)
	return binding.Measurement{
		BitsPerSecond: bps,
		Bytes:         int64(bps / 8 * spec.Duration.Seconds()),
		Elapsed:       spec.Duration,
	}, nil
}

// Runs returns the traffic sessions issued so far.
func (g *Generator) Runs() []binding.TrafficSpec {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]binding.TrafficSpec(nil), g.runs...)
}
