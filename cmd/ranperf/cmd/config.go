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

package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/openran/ranperf/internal/artifacts"
	"github.com/openran/ranperf/internal/binding"
	"github.com/openran/ranperf/internal/iperf"
	"github.com/openran/ranperf/internal/otg"
	"github.com/openran/ranperf/internal/scenario"
	"github.com/openran/ranperf/internal/simbed"
	"github.com/openran/ranperf/internal/staticbed"
)

// Config is the testbed configuration file.
type Config struct {
	// Bed selects "simulated" (default) or "static".
	Bed string
	// NumUEs sizes the simulated bed; the android family always uses
	// one handset.
	NumUEs int
	// UEs lists the pre-provisioned endpoints of a static bed.
	UEs []staticbed.UE

	Traffic struct {
		// Driver selects "sim" (default), "otg" or "iperf".  The
		// simulated bed only supports "sim".
		Driver string
		OTG    otg.Config
		Iperf  struct {
			Path string
			Port int
		}
	}

	Artifacts struct {
		Dir string
	}

	// MetricsListen exposes Prometheus run metrics when non-empty,
	// e.g. ":9090".
	MetricsListen string
}

// loadConfig reads the file named by the --config flag, or returns the
// all-defaults config when the flag is unset.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	path := viper.GetString("config")
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if cfg.Bed == "" {
		cfg.Bed = "simulated"
	}
	if cfg.NumUEs == 0 {
		cfg.NumUEs = 4
	}
	if cfg.Traffic.Driver == "" {
		cfg.Traffic.Driver = "sim"
	}
	return cfg, nil
}

func (cfg *Config) collector() binding.ArtifactCollector {
	if cfg.Artifacts.Dir == "" {
		return nil
	}
	return &artifacts.Collector{Dir: cfg.Artifacts.Dir}
}

// buildTestbed realizes the configured bed for one scenario.
func (cfg *Config) buildTestbed(params scenario.Parameters) (*binding.Testbed, error) {
	switch cfg.Bed {
	case "simulated":
		if cfg.Traffic.Driver != "sim" {
			return nil, fmt.Errorf("simulated bed does not support the %q traffic driver", cfg.Traffic.Driver)
		}
		n := cfg.NumUEs
		if params.Category == scenario.Android {
			n = 1
		}
		bed := simbed.New(n)
		bed.Collector = cfg.collector()
		return bed.Testbed(), nil
	case "static":
		gen, err := cfg.trafficDriver()
		if err != nil {
			return nil, err
		}
		return staticbed.New(cfg.UEs, gen, cfg.collector())
	default:
		return nil, fmt.Errorf("unknown bed kind %q", cfg.Bed)
	}
}

func (cfg *Config) trafficDriver() (binding.TrafficGenerator, error) {
	switch cfg.Traffic.Driver {
	case "otg":
		if cfg.Traffic.OTG.Controller == "" {
			return nil, fmt.Errorf("otg driver needs a controller location")
		}
		return otg.New(cfg.Traffic.OTG), nil
	case "iperf":
		return &iperf.Generator{Path: cfg.Traffic.Iperf.Path, Port: cfg.Traffic.Iperf.Port}, nil
	default:
		return nil, fmt.Errorf("static bed needs an \"otg\" or \"iperf\" traffic driver, got %q", cfg.Traffic.Driver)
	}
}
