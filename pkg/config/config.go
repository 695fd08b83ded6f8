// Package config provides the configuration surface of the column engine's
// tooling. A single EngineConfig structure carries the logging, dump and
// memory sections; YAML files load with ${ENV} substitution.
package config

import "fmt"

// EngineConfig is the configuration structure shared by the engine's
// diagnostics tooling and by embedding pipelines.
type EngineConfig struct {
	// Logging controls the structured logger.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Dump controls the human-readable column listing.
	Dump DumpConfig `yaml:"dump" json:"dump"`

	// Memory carries allocation hints.
	Memory MemoryConfig `yaml:"memory" json:"memory"`
}

// LoggingConfig selects level, encoding and development mode for zap.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Encoding is json or console.
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colored, stack-heavy output.
	Development bool `yaml:"development" json:"development"`
}

// DumpConfig controls the debug dump of columns.
type DumpConfig struct {
	// MaxRows caps the number of value rows a dump prints; 0 means all.
	MaxRows int `yaml:"max_rows" json:"max_rows"`
	// InvalidPlaceholder is printed in place of invalid elements.
	InvalidPlaceholder string `yaml:"invalid_placeholder" json:"invalid_placeholder"`
}

// MemoryConfig carries allocation hints for embedding pipelines.
type MemoryConfig struct {
	// DefaultCapacity is the initial element capacity hint for new columns
	// created by tooling that grows columns incrementally.
	DefaultCapacity int `yaml:"default_capacity" json:"default_capacity"`
}

// NewEngineConfig returns a config with defaults applied.
func NewEngineConfig() *EngineConfig {
	cfg := &EngineConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with sensible defaults.
func (c *EngineConfig) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "console"
	}
	if c.Dump.InvalidPlaceholder == "" {
		c.Dump.InvalidPlaceholder = "-"
	}
	if c.Memory.DefaultCapacity <= 0 {
		c.Memory.DefaultCapacity = 1024
	}
}

// Validate checks the configuration for structural errors.
func (c *EngineConfig) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log encoding %q", c.Logging.Encoding)
	}
	if c.Dump.MaxRows < 0 {
		return fmt.Errorf("dump.max_rows must be >= 0, got %d", c.Dump.MaxRows)
	}
	if c.Memory.DefaultCapacity < 0 {
		return fmt.Errorf("memory.default_capacity must be >= 0, got %d", c.Memory.DefaultCapacity)
	}
	return nil
}
