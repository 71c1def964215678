package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives one assembly run. Flags override file values.
type Config struct {
	Trace     string `yaml:"trace"`     // trace URL
	Locations string `yaml:"locations"` // location registry URL
	Output    string `yaml:"output"`    // output URL, empty for stdout
	Format    string `yaml:"format"`    // "yaml" (forest) or "flat" (node/edge export)
	Verbose   bool   `yaml:"verbose"`
}

// loadConfig reads a yaml config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

// merge overlays non-zero flag values on top of the file config.
func (c *Config) merge(flags *Config) {
	if flags.Trace != "" {
		c.Trace = flags.Trace
	}
	if flags.Locations != "" {
		c.Locations = flags.Locations
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Verbose {
		c.Verbose = true
	}
}

// validate checks the merged config is runnable.
func (c *Config) validate() error {
	if c.Trace == "" {
		return fmt.Errorf("trace URL is required")
	}
	if c.Locations == "" {
		return fmt.Errorf("locations URL is required")
	}
	switch c.Format {
	case "", "yaml", "flat":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
