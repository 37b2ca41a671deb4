package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/epidemic_sim/epidemic"
)

// Config holds the full simulation configuration.
type Config struct {
	// Population and topology.
	Population int                  `yaml:"population"`
	Degree     epidemic.DegreeRange `yaml:"degree"`
	Topology   string               `yaml:"topology"` // "random" | "scale_free"
	Attachment int                  `yaml:"attachment"`
	// DatasetPath points at a "u v" edge list (optionally .gz); when set it
	// overrides the synthetic generators, falling back to them on failure.
	DatasetPath string `yaml:"dataset_path"`

	// Transition probabilities and seeding.
	Rates           epidemic.Rates `yaml:"rates"`
	InitialInfected int            `yaml:"initial_infected"`

	// Pacing. StepIntervalMs of 0 picks the default 1000ms cadence.
	StepIntervalMs int `yaml:"step_interval_ms"`
	TotalSteps     int `yaml:"total_steps"` // headless run length

	// Telemetry window length; 0 picks the default of 100.
	TelemetryWindow int `yaml:"telemetry_window"`

	// RemoteURL addresses the external simulation service; empty means
	// local-only. The reachability probe at startup decides the driver.
	RemoteURL string `yaml:"remote_url"`

	// Presentation.
	Addr     string `yaml:"addr"`
	Headless bool   `yaml:"headless"`

	// Seed of 0 means unseeded (time-based) randomness.
	Seed int64 `yaml:"seed"`
}

// Topology kinds accepted by Config.Topology.
const (
	TopologyRandom    = "random"
	TopologyScaleFree = "scale_free"
)

// DefaultConfig is the baseline scenario parameterization.
func DefaultConfig() *Config {
	return &Config{
		Population:      DefaultPopulation,
		Degree:          epidemic.DefaultDegreeRange,
		Topology:        TopologyRandom,
		Attachment:      2,
		Rates:           epidemic.DefaultRates(),
		InitialInfected: DefaultInitialInfected,
		TotalSteps:      100,
		Addr:            "127.0.0.1:8080",
	}
}

// LoadConfigFile reads a YAML config, layering it over the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ScenarioConfig is a named, predefined simulation setup.
type ScenarioConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Config      *Config `json:"-"`
}

// GetPredefinedConfigs returns the built-in scenarios.
func GetPredefinedConfigs() []ScenarioConfig {
	baseline := DefaultConfig()

	aggressive := DefaultConfig()
	aggressive.Rates = epidemic.Rates{Infection: 0.6, Recovery: 0.05, Death: 0.05, Quarantine: 0.1}
	aggressive.InitialInfected = 10

	scaleFree := DefaultConfig()
	scaleFree.Topology = TopologyScaleFree

	drill := DefaultConfig()
	drill.Population = 200
	drill.Rates = epidemic.Rates{Infection: 0.4, Recovery: 0.15, Death: 0.01, Quarantine: 0.8}
	drill.Headless = true
	drill.TotalSteps = 60

	return []ScenarioConfig{
		{
			Name:        "baseline",
			Description: "Baseline outbreak: 500 individuals, random 3-5 contact topology",
			Config:      baseline,
		},
		{
			Name:        "aggressive_spread",
			Description: "High transmission, slow recovery, weak quarantine uptake",
			Config:      aggressive,
		},
		{
			Name:        "scale_free",
			Description: "Baseline rates on a preferential-attachment contact network",
			Config:      scaleFree,
		},
		{
			Name:        "quarantine_drill",
			Description: "Headless 60-step run with strong quarantine compliance",
			Config:      drill,
		},
	}
}

// GetConfigByName returns the named scenario config, or nil.
func GetConfigByName(name string) *Config {
	for _, sc := range GetPredefinedConfigs() {
		if sc.Name == name {
			return sc.Config
		}
	}
	return nil
}
