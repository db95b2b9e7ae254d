package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Retry bounds a polling loop against an external service.
type Retry struct {
	MaxAttempts uint64        `yaml:"maxAttempts"`
	Interval    time.Duration `yaml:"interval"`
}

// Harness carries the tunables of a verification run. Transient-error
// behavior is deliberately a config knob rather than a hardcoded policy.
type Harness struct {
	Retry Retry `yaml:"retry"`
	// PhasePause is the settle time between a source mutation and the
	// following sink read, so in-flight events reach the stream first.
	PhasePause time.Duration `yaml:"phasePause"`
}

// Emulated endpoints answer quickly, real AWS takes its time. Mirrors the
// budgets the sample has always used against localstack vs. a live account.
func DefaultHarness(local bool) Harness {
	if local {
		return Harness{
			Retry:      Retry{MaxAttempts: 10, Interval: time.Second},
			PhasePause: time.Second,
		}
	}
	return Harness{
		Retry:      Retry{MaxAttempts: 100, Interval: 5 * time.Second},
		PhasePause: 2 * time.Second,
	}
}

// LoadHarness returns defaults overridden by the YAML file at path, if any.
func LoadHarness(path string, local bool) (Harness, error) {
	cfg := DefaultHarness(local)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Harness{}, fmt.Errorf("read harness config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Harness{}, fmt.Errorf("parse harness config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Harness{}, err
	}
	return cfg, nil
}

func (h Harness) validate() error {
	if h.Retry.MaxAttempts == 0 {
		return fmt.Errorf("retry.maxAttempts must be positive")
	}
	if h.Retry.Interval <= 0 {
		return fmt.Errorf("retry.interval must be positive")
	}
	if h.PhasePause < 0 {
		return fmt.Errorf("phasePause must not be negative")
	}
	return nil
}
