// Package config handles loading and validating planner configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the ladder planner.
type Config struct {
	App   AppConfig   `yaml:"app" validate:"required"`
	Asset AssetConfig `yaml:"asset" validate:"required"`
	Plan  PlanConfig  `yaml:"plan" validate:"required"`
	Sweep SweepConfig `yaml:"sweep" validate:"required"`
	API   APIConfig   `yaml:"api"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string `yaml:"env" validate:"required,oneof=dev staging prod"`
	LogLevel string `yaml:"logLevel" validate:"required,oneof=debug info warn error"`
	LogFile  string `yaml:"logFile"`
}

// AssetConfig identifies the asset being planned.
type AssetConfig struct {
	Name string `yaml:"name" validate:"required"`
	Unit string `yaml:"unit" validate:"required"`
}

// PlanConfig holds the capital plan parameters.
type PlanConfig struct {
	TargetPrice float64   `yaml:"targetPrice" validate:"gt=0"`
	TargetDate  string    `yaml:"targetDate"`
	TotalSize   float64   `yaml:"totalSize" validate:"gt=0"`
	PriceLevels []float64 `yaml:"priceLevels" validate:"required,min=1"`
	CustomBase  float64   `yaml:"customBase"`
}

// SweepConfig defines the bottom-price simulation range.
type SweepConfig struct {
	Min  float64 `yaml:"min" validate:"gt=0"`
	Max  float64 `yaml:"max" validate:"gt=0"`
	Step float64 `yaml:"step" validate:"gt=0"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	ListenAddress string `yaml:"listenAddress"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults applies sensible defaults for optional fields.
func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFile == "" {
		c.App.LogFile = "logs/ladderplan.log"
	}
	if c.Plan.CustomBase == 0 {
		c.Plan.CustomBase = 1.8
	}
	if c.API.ListenAddress == "" {
		c.API.ListenAddress = ":8090"
	}
	if addr := os.Getenv("LADDERPLAN_LISTEN_ADDRESS"); addr != "" {
		c.API.ListenAddress = addr
	}
}

// Validate enforces the numeric invariants the engine itself assumes:
// positive target and size, a well-defined sweep range, and at least one
// active price level.
func (c *Config) Validate() error {
	if c.Plan.TargetPrice <= 0 {
		return fmt.Errorf("plan.targetPrice must be > 0, got %v", c.Plan.TargetPrice)
	}
	if c.Plan.TotalSize <= 0 {
		return fmt.Errorf("plan.totalSize must be > 0, got %v", c.Plan.TotalSize)
	}
	if c.Sweep.Step <= 0 {
		return fmt.Errorf("sweep.step must be > 0, got %v", c.Sweep.Step)
	}
	if c.Sweep.Min >= c.Sweep.Max {
		return fmt.Errorf("sweep.min must be below sweep.max, got %v >= %v", c.Sweep.Min, c.Sweep.Max)
	}
	active := 0
	for _, p := range c.Plan.PriceLevels {
		if p > 0 {
			active++
		}
	}
	if active == 0 {
		return fmt.Errorf("plan.priceLevels needs at least one level above 0")
	}
	return nil
}
