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

// Package metrics exports Prometheus metrics about scenario runs for
// the CLI runner.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openran/ranperf/internal/sequencer"
)

// Collector bundles the run metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	MeasuredBitrate *prometheus.HistogramVec
}

// NewCollector registers the run metrics against reg, defaulting to
// the global registry when reg is nil.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ranperf_runs_total",
			Help: "Scenario runs, labeled by category and verdict.",
		}, []string{"category", "verdict"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ranperf_run_duration_seconds",
			Help:    "Wall time of one scenario run including teardown.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		MeasuredBitrate: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ranperf_measured_bitrate_bps",
			Help:    "Measured goodput per traffic direction.",
			Buckets: prometheus.ExponentialBuckets(100_000, 4, 10),
		}, []string{"direction"}),
	}
	reg.MustRegister(c.Runs, c.RunDuration, c.MeasuredBitrate)
	return c
}

// Observe records one finished run.
func (c *Collector) Observe(out sequencer.Outcome) {
	c.Runs.WithLabelValues(string(out.Scenario.Category), out.Verdict.String()).Inc()
	c.RunDuration.Observe(out.Elapsed.Seconds())
	for _, leg := range out.Traffic.Legs {
		c.MeasuredBitrate.WithLabelValues(leg.Direction.String()).Observe(leg.Measurement.BitsPerSecond)
	}
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
