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

// Package staticbed binds the suite to a bed whose endpoints are
// registered out of band: attach hands back the provisioned address
// and configuration is applied by the operator, not the runner.  It
// pairs with a real traffic driver (otg, iperf) for lab runs where
// ranperf only orchestrates traffic and validation.
package staticbed

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// UE describes one pre-provisioned endpoint.
type UE struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// New bundles static endpoints with the given traffic driver.
func New(ues []UE, traffic binding.TrafficGenerator, collector binding.ArtifactCollector) (*binding.Testbed, error) {
	if len(ues) == 0 {
		return nil, fmt.Errorf("static bed needs at least one endpoint")
	}
	tb := &binding.Testbed{
		BaseStation: &node{name: "gnb"},
		Core:        &node{name: "core"},
		Config:      configurator{},
		Traffic:     traffic,
		Artifacts:   collector,
	}
	for _, ue := range ues {
		if ue.Address == "" {
			return nil, fmt.Errorf("endpoint %q has no address", ue.Name)
		}
		tb.UEs = append(tb.UEs, &endpoint{name: ue.Name, addr: ue.Address})
	}
	return tb, nil
}

type endpoint struct {
	name string
	addr string
}

func (e *endpoint) Name() string { return e.name }

func (e *endpoint) Attach(ctx context.Context, bs binding.BaseStation, core binding.CoreNetwork) (binding.AttachInfo, error) {
	// Registration happened out of band; attach only hands the
	// provisioned address to the measurement phase.
	return binding.AttachInfo{UE: e.name, IPv4: e.addr}, nil
}

func (e *endpoint) Detach(ctx context.Context) error { return nil }

type node struct {
	name string
}

func (n *node) Name() string { return n.name }

func (n *node) Stop(ctx context.Context) error {
	glog.V(1).Infof("static bed: leaving %s running", n.name)
	return nil
}

type configurator struct{}

func (configurator) Apply(ctx context.Context, params scenario.Parameters) error {
	glog.Infof("static bed: operator-applied configuration assumed for %s", params.Name())
	return nil
}
