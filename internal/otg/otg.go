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

// Package otg is a traffic generator backed by an Open Traffic
// Generator controller.  The generator owns two test ports: one on the
// core-network side of the bed and one behind the air interface.
// Downlink flows transmit from the core port toward each attached
// endpoint's address; uplink flows are the reverse.
package otg

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"github.com/open-traffic-generator/snappi/gosnappi"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// pollInterval is how often flow metrics are read while a session is
// transmitting.
const pollInterval = 2 * time.Second

// Config locates the OTG controller and the two test ports.
type Config struct {
	// Controller is the HTTPS location of the OTG API.
	Controller string
	// CorePortLocation and UEPortLocation are the OTG port locations
	// on the core-network side and the air-interface side.
	CorePortLocation string
	UEPortLocation   string
	// CoreIP is the traffic source/sink address on the core side.
	CoreIP string
	// CoreMAC and UEMAC are the port MAC addresses used in flow
	// headers.
	CoreMAC string
	UEMAC   string
}

// Generator drives an OTG controller through gosnappi.
type Generator struct {
	cfg Config
	api gosnappi.Api
}

// New dials the configured OTG controller.
func New(cfg Config) *Generator {
	api := gosnappi.NewApi()
	api.NewHttpTransport().SetLocation(cfg.Controller).SetVerify(false)
	return &Generator{cfg: cfg, api: api}
}

// Run implements binding.TrafficGenerator: it pushes a flow per
// attached endpoint, starts transmit, and polls flow metrics until
// every flow stops.
func (g *Generator) Run(ctx context.Context, spec binding.TrafficSpec) (binding.Measurement, error) {
	cfg, flowNames := g.buildConfig(spec)
	if _, err := g.api.SetConfig(cfg); err != nil {
		return binding.Measurement{}, fmt.Errorf("pushing OTG config: %w", err)
	}

	cs := gosnappi.NewControlState()
	cs.Traffic().FlowTransmit().SetState(gosnappi.StateTrafficFlowTransmitState.START)
	start := time.Now()
	if _, err := g.api.SetControlState(cs); err != nil {
		return binding.Measurement{}, fmt.Errorf("starting transmit: %w", err)
	}

	metrics, err := g.awaitFlows(ctx, flowNames)
	if err != nil {
		return binding.Measurement{}, err
	}
	elapsed := time.Since(start)

	var rxBytes, rxFrames uint64
	for _, fm := range metrics {
		rxBytes += fm.BytesRx()
		rxFrames += fm.FramesRx()
		glog.V(1).Infof("flow %s: tx %d rx %d frames, rx %d bytes", fm.Name(), fm.FramesTx(), fm.FramesRx(), fm.BytesRx())
	}
	if rxFrames == 0 {
		return binding.Measurement{}, &binding.TransportError{
			Direction: spec.Direction,
			Err:       fmt.Errorf("no frames received on %d flows", len(flowNames)),
		}
	}
	return binding.Measurement{
		BitsPerSecond: float64(rxBytes) * 8 / spec.Duration.Seconds(),
		Bytes:         int64(rxBytes),
		Elapsed:       elapsed,
	}, nil
}

// buildConfig assembles the gosnappi config for one directional
// session: one fixed-duration flow per endpoint at an even share of
// the target bitrate.
func (g *Generator) buildConfig(spec binding.TrafficSpec) (gosnappi.Config, []string) {
	cfg := gosnappi.NewConfig()
	corePort := cfg.Ports().Add().SetName("core").SetLocation(g.cfg.CorePortLocation)
	uePort := cfg.Ports().Add().SetName("ue").SetLocation(g.cfg.UEPortLocation)

	perFlowBps := uint64(spec.TargetBitrateBps) / uint64(len(spec.Endpoints))
	var names []string
	for _, ep := range spec.Endpoints {
		name := fmt.Sprintf("%s-%s", ep.UE, spec.Direction)
		names = append(names, name)
		flow := cfg.Flows().Add().SetName(name)
		flow.Metrics().SetEnable(true)
		flow.Rate().SetBps(perFlowBps)
		flow.Duration().FixedSeconds().SetSeconds(float32(spec.Duration.Seconds()))

		eth := flow.Packet().Add().Ethernet()
		ip := flow.Packet().Add().Ipv4()
		switch spec.Direction {
		case scenario.Downlink:
			flow.TxRx().Port().SetTxName(corePort.Name()).SetRxNames([]string{uePort.Name()})
			eth.Src().SetValue(g.cfg.CoreMAC)
			eth.Dst().SetValue(g.cfg.UEMAC)
			ip.Src().SetValue(g.cfg.CoreIP)
			ip.Dst().SetValue(ep.IPv4)
		default:
			flow.TxRx().Port().SetTxName(uePort.Name()).SetRxNames([]string{corePort.Name()})
			eth.Src().SetValue(g.cfg.UEMAC)
			eth.Dst().SetValue(g.cfg.CoreMAC)
			ip.Src().SetValue(ep.IPv4)
			ip.Dst().SetValue(g.cfg.CoreIP)
		}
		switch spec.Protocol {
		case scenario.TCP:
			tcp := flow.Packet().Add().Tcp()
			tcp.SrcPort().SetValue(5201)
			tcp.DstPort().SetValue(5201)
		default:
			udp := flow.Packet().Add().Udp()
			udp.SrcPort().SetValue(5201)
			udp.DstPort().SetValue(5201)
		}
	}
	return cfg, names
}

// awaitFlows polls flow metrics until every named flow reports its
// transmit stopped, or the context expires.
func (g *Generator) awaitFlows(ctx context.Context, names []string) ([]gosnappi.FlowMetric, error) {
	var metrics []gosnappi.FlowMetric
	op := func() error {
		req := gosnappi.NewMetricsRequest()
		req.Flow().SetFlowNames(names)
		resp, err := g.api.GetMetrics(req)
		if err != nil {
			return err
		}
		items := resp.FlowMetrics().Items()
		for _, fm := range items {
			if fm.Transmit() != gosnappi.FlowMetricTransmit.STOPPED {
				return fmt.Errorf("flow %s still transmitting", fm.Name())
			}
		}
		metrics = items
		return nil
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(pollInterval), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("waiting for flows to stop: %w", err)
	}
	return metrics, nil
}
