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

// Package iperf runs traffic sessions with the iperf3 tool.  The
// client runs on the core-network side against an iperf3 server on
// each attached endpoint, one subprocess per endpoint, splitting the
// target bitrate evenly.
package iperf

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/scenario"
)

// DefaultPort is the iperf3 server port on the endpoints.
const DefaultPort = 5201

// connectRetryWindow bounds how long a session keeps retrying while
// the endpoint's server side is not yet accepting connections.
const connectRetryWindow = 10 * time.Second

// result mirrors the iperf3 -J output fields the driver consumes.
type result struct {
	End struct {
		SumSent struct {
			Seconds       float64 `json:"seconds"`
			Bytes         int64   `json:"bytes"`
			BitsPerSecond float64 `json:"bits_per_second"`
		} `json:"sum_sent"`
		SumReceived struct {
			Seconds       float64 `json:"seconds"`
			Bytes         int64   `json:"bytes"`
			BitsPerSecond float64 `json:"bits_per_second"`
		} `json:"sum_received"`
	} `json:"end"`
	Error string `json:"error"`
}

// Generator runs iperf3 client subprocesses.
type Generator struct {
	// Path is the iperf3 binary; empty means "iperf3" on PATH.
	Path string
	// Port is the server port on the endpoints; zero means
	// DefaultPort.
	Port int

	// run is swapped out by tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func (g *Generator) binary() string {
	if g.Path != "" {
		return g.Path
	}
	return "iperf3"
}

func (g *Generator) port() int {
	if g.Port != 0 {
		return g.Port
	}
	return DefaultPort
}

func (g *Generator) exec(ctx context.Context, args ...string) ([]byte, error) {
	if g.run != nil {
		return g.run(ctx, g.binary(), args...)
	}
	// iperf3 writes its JSON report to stdout even on failure.
	out, err := exec.CommandContext(ctx, g.binary(), args...).Output()
	return out, err
}

// Run implements binding.TrafficGenerator.
func (g *Generator) Run(ctx context.Context, spec binding.TrafficSpec) (binding.Measurement, error) {
	perEndpoint := spec.TargetBitrateBps / int64(len(spec.Endpoints))

	var mu sync.Mutex
	total := binding.Measurement{}
	start := time.Now()

	grp, gctx := errgroup.WithContext(ctx)
	for _, ep := range spec.Endpoints {
		grp.Go(func() error {
			m, err := g.session(gctx, spec, ep, perEndpoint)
			if err != nil {
				return err
			}
			mu.Lock()
			total.BitsPerSecond += m.BitsPerSecond
			total.Bytes += m.Bytes
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return binding.Measurement{}, err
	}
	total.Elapsed = time.Since(start)
	return total, nil
}

// session runs one iperf3 client against one endpoint and parses its
// report.  Connection refusals are retried briefly while the server
// side comes up; any other failure is surfaced immediately.
func (g *Generator) session(ctx context.Context, spec binding.TrafficSpec, ep binding.AttachInfo, bitrateBps int64) (binding.Measurement, error) {
	args := []string{
		"-c", ep.IPv4,
		"-p", strconv.Itoa(g.port()),
		"-t", strconv.Itoa(int(spec.Duration.Seconds())),
		"-b", strconv.FormatInt(bitrateBps, 10),
		"-J",
	}
	if spec.Protocol == scenario.UDP {
		args = append(args, "-u")
	}
	// The client sits on the core side, so plain mode sends downlink;
	// uplink reverses the stream.
	if spec.Direction == scenario.Uplink {
		args = append(args, "-R")
	}

	var res result
	op := func() error {
		res = result{}
		out, execErr := g.exec(ctx, args...)
		if jsonErr := json.Unmarshal(out, &res); jsonErr != nil {
			if execErr != nil {
				return backoff.Permanent(fmt.Errorf("iperf3 against %s: %w", ep.IPv4, execErr))
			}
			return backoff.Permanent(fmt.Errorf("parsing iperf3 report for %s: %w", ep.IPv4, jsonErr))
		}
		if res.Error != "" && strings.Contains(res.Error, "unable to connect") {
			glog.V(1).Infof("iperf3 server on %s not ready: %s", ep.IPv4, res.Error)
			return fmt.Errorf("connect to %s: %s", ep.IPv4, res.Error)
		}
		return nil
	}
	b := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(connectRetryWindow)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return binding.Measurement{}, err
	}
	if res.Error != "" {
		return binding.Measurement{}, &binding.TransportError{
			Direction: spec.Direction,
			Err:       fmt.Errorf("iperf3 against %s: %s", ep.IPv4, res.Error),
		}
	}
	return binding.Measurement{
		BitsPerSecond: res.End.SumReceived.BitsPerSecond,
		Bytes:         res.End.SumReceived.Bytes,
		Elapsed:       time.Duration(res.End.SumReceived.Seconds * float64(time.Second)),
	}, nil
}
