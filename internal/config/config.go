package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Agent  AgentConfig  `json:"agent" yaml:"agent"`
	Memory MemoryConfig `json:"memory" yaml:"memory"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

type AgentConfig struct {
	Name        string `json:"name" yaml:"name"`
	Personality string `json:"personality" yaml:"personality"`
	Builtins    *bool  `json:"builtins,omitempty" yaml:"builtins,omitempty"`
}

type MemoryConfig struct {
	ContextWindow int `json:"context_window" yaml:"context_window"`
	RecentCount   int `json:"recent_count" yaml:"recent_count"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // console or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	builtins := true
	return &Config{
		Agent: AgentConfig{
			Name:        "Agent",
			Personality: "helpful assistant",
			Builtins:    &builtins,
		},
		Memory: MemoryConfig{
			ContextWindow: 10,
			RecentCount:   5,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// BuiltinsEnabled reports whether the default actions should be registered.
func (c *Config) BuiltinsEnabled() bool {
	return c.Agent.Builtins == nil || *c.Agent.Builtins
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Agent.Name != "" {
		c.Agent.Name = source.Agent.Name
	}
	if source.Agent.Personality != "" {
		c.Agent.Personality = source.Agent.Personality
	}
	if source.Agent.Builtins != nil {
		c.Agent.Builtins = source.Agent.Builtins
	}
	if source.Memory.ContextWindow != 0 {
		c.Memory.ContextWindow = source.Memory.ContextWindow
	}
	if source.Memory.RecentCount != 0 {
		c.Memory.RecentCount = source.Memory.RecentCount
	}
	if source.Log.Level != "" {
		c.Log.Level = source.Log.Level
	}
	if source.Log.Format != "" {
		c.Log.Format = source.Log.Format
	}
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the values a running agent depends on.
func (c *Config) Validate() error {
	if c.Memory.ContextWindow <= 0 {
		return fmt.Errorf("%w: memory.context_window must be positive, got %d", ErrInvalidConfig, c.Memory.ContextWindow)
	}
	if c.Memory.RecentCount <= 0 {
		return fmt.Errorf("%w: memory.recent_count must be positive, got %d", ErrInvalidConfig, c.Memory.RecentCount)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON or YAML config file, substitutes environment variable
// references, and merges the result over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var file Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal([]byte(resolved), &file)
	default:
		err = json.Unmarshal([]byte(resolved), &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	cfg.Merge(&file)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
