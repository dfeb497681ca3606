package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/i2y/bridle/provider"
	"github.com/i2y/bridle/retry"
)

// Config is the on-disk CLI configuration. Flags take precedence.
type Config struct {
	Family      string   `yaml:"family"`
	Model       string   `yaml:"model"`
	System      string   `yaml:"system"`
	BaseURL     string   `yaml:"base_url"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Thinking    int      `yaml:"thinking_budget"`
	ModelsFile  string   `yaml:"models_file"`

	Vertex struct {
		Project string `yaml:"project"`
		Region  string `yaml:"region"`
	} `yaml:"vertex"`

	Retry struct {
		MaxAttempts int   `yaml:"max_attempts"`
		StatusCodes []int `yaml:"status_codes"`
	} `yaml:"retry"`
}

// defaultConfigPath returns ~/.config/bridle/config.yaml or the platform
// equivalent.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bridle", "config.yaml")
}

// loadConfig reads the config at path. A missing file is only an error when
// the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := Config{Family: "anthropic"}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// retryPolicy overlays the configured retry settings on the default policy.
func (c Config) retryPolicy() *retry.Policy {
	p := retry.Default()
	if c.Retry.MaxAttempts > 0 {
		p.MaxAttempts = c.Retry.MaxAttempts
	}
	if len(c.Retry.StatusCodes) > 0 {
		p.StatusCodes = make(map[int]bool, len(c.Retry.StatusCodes))
		for _, code := range c.Retry.StatusCodes {
			p.StatusCodes[code] = true
		}
	}
	return &p
}

// providerOptions builds handler options from the config.
func (c Config) providerOptions() provider.Options {
	return provider.Options{
		APIModelID:           c.Model,
		BaseURL:              c.BaseURL,
		VertexProjectID:      c.Vertex.Project,
		VertexRegion:         c.Vertex.Region,
		Retry:                c.retryPolicy(),
		ThinkingBudgetTokens: c.Thinking,
	}
}
