package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/orderbook-recorder/internal/market"
)

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*RecorderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg RecorderConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*RecorderConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*RecorderConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Registry builds the subscription registry from the inline instruments or
// from instruments_file.
func (c *RecorderConfig) Registry() (*market.Registry, error) {
	if c.InstrumentsFile != "" {
		return market.LoadFile(c.InstrumentsFile)
	}
	return market.NewRegistry(c.Instruments)
}
