package main

import (
	"errors"
	"fmt"

	"github.com/example/epidemic_sim/epidemic"
	"github.com/example/epidemic_sim/telemetry"
)

// ValidateConfig applies structural checks to Config and populates defaults
// where required. Out-of-range probabilities fail fast here rather than
// corrupting a run mid-step.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if cfg.Population < 0 {
		return fmt.Errorf("Population must be non-negative, got %d", cfg.Population)
	}
	if err := cfg.Rates.Validate(); err != nil {
		return err
	}
	if cfg.InitialInfected < 0 {
		return fmt.Errorf("InitialInfected must be non-negative, got %d", cfg.InitialInfected)
	}
	if cfg.Degree.Min < 0 || cfg.Degree.Max < cfg.Degree.Min {
		return fmt.Errorf("degree range [%d,%d] is invalid", cfg.Degree.Min, cfg.Degree.Max)
	}

	switch cfg.Topology {
	case "", TopologyRandom, TopologyScaleFree:
	default:
		return fmt.Errorf("unknown topology %q", cfg.Topology)
	}

	if cfg.Topology == "" {
		cfg.Topology = TopologyRandom
	}
	if cfg.Degree == (epidemic.DegreeRange{}) {
		cfg.Degree = epidemic.DefaultDegreeRange
	}
	if cfg.Attachment <= 0 {
		cfg.Attachment = 2
	}
	if cfg.InitialInfected == 0 {
		cfg.InitialInfected = DefaultInitialInfected
	}
	if cfg.TelemetryWindow <= 0 {
		cfg.TelemetryWindow = telemetry.DefaultWindowSize
	}
	if cfg.TotalSteps <= 0 {
		cfg.TotalSteps = 100
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	return nil
}
