// Package config loads the ggcapture YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level ggcapture configuration.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Start  int          `yaml:"start"`
	Steps  []Step       `yaml:"steps"`
}

// RenderConfig controls the compositor.
type RenderConfig struct {
	Backend      string `yaml:"backend"` // empty selects automatically
	Power        string `yaml:"power"`   // low | high
	Antialiasing bool   `yaml:"antialiasing"`
	Width        uint32 `yaml:"width"`
	Height       uint32 `yaml:"height"`
}

// OutputConfig controls where results go.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	GoldenDir string `yaml:"golden_dir"`
	Ledger    string `yaml:"ledger"`
}

// Step is one trace step. Exactly one field must be set.
type Step struct {
	Send    string        `yaml:"send"`
	Wait    time.Duration `yaml:"wait"`
	Expect  *int          `yaml:"expect"`
	Set     *int          `yaml:"set"`
	Capture string        `yaml:"capture"`
}

// Power preference names.
const (
	PowerLow  = "low"
	PowerHigh = "high"
)

var errStep = errors.New("config: invalid step")

// Default returns the configuration used without a file: increment twice,
// check the value and capture the result.
func Default() *Config {
	two := 2
	cfg := &Config{
		Steps: []Step{
			{Send: "increment"},
			{Send: "increment"},
			{Expect: &two},
			{Capture: "counter"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Render.Power == "" {
		c.Render.Power = PowerLow
	}
	if c.Render.Width == 0 {
		c.Render.Width = 1024
	}
	if c.Render.Height == 0 {
		c.Render.Height = 768
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

// Validate checks that every step sets exactly one action and that the
// power preference is known.
func (c *Config) Validate() error {
	if c.Render.Power != PowerLow && c.Render.Power != PowerHigh {
		return fmt.Errorf("config: power %q: want %q or %q", c.Render.Power, PowerLow, PowerHigh)
	}
	for i, s := range c.Steps {
		n := 0
		if s.Send != "" {
			n++
		}
		if s.Wait != 0 {
			n++
		}
		if s.Expect != nil {
			n++
		}
		if s.Set != nil {
			n++
		}
		if s.Capture != "" {
			n++
		}
		if n != 1 {
			return fmt.Errorf("%w %d: %d actions set, want 1", errStep, i, n)
		}
		if s.Wait < 0 {
			return fmt.Errorf("%w %d: negative wait", errStep, i)
		}
	}
	return nil
}
