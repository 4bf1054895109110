package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError reports an invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LoadConfig loads and parses a configuration file. The format is chosen by
// extension: .yaml/.yml or .toml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseConfigYAML(data)
	case ".toml":
		cfg, err = ParseConfigTOML(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q for %s (use .yaml, .yml or .toml)", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("%s (must be debug, info, warn, or error)", cfg.LogLevel)}
	}

	if strings.TrimSpace(cfg.Output) == "" {
		return &ValidationError{Field: "output", Message: "path cannot be empty"}
	}

	// Validate seeds
	seen := make(map[int]bool)
	for _, seed := range cfg.Seeds {
		if seed < 0 {
			return &ValidationError{Field: "seeds", Message: fmt.Sprintf("seed cannot be negative, got %d", seed)}
		}
		if seen[seed] {
			return &ValidationError{Field: "seeds", Message: fmt.Sprintf("duplicate seed %d", seed)}
		}
		seen[seed] = true
	}

	// Validate trial budgets
	budgets := []struct {
		name  string
		value int
	}{
		{"trials.default", cfg.Trials.Default},
		{"trials.extended", cfg.Trials.Extended},
		{"trials.enqueued", cfg.Trials.Enqueued},
	}
	for _, b := range budgets {
		if b.value <= 0 {
			return &ValidationError{Field: b.name, Message: fmt.Sprintf("must be positive, got %d", b.value)}
		}
	}

	if cfg.Parallelism < 1 {
		return &ValidationError{Field: "parallelism", Message: fmt.Sprintf("must be at least 1, got %d", cfg.Parallelism)}
	}

	names := make(map[string]bool)
	for _, name := range cfg.Scenarios {
		if name == "" {
			return &ValidationError{Field: "scenarios", Message: "scenario name cannot be empty"}
		}
		if names[name] {
			return &ValidationError{Field: "scenarios", Message: fmt.Sprintf("duplicate scenario %s", name)}
		}
		names[name] = true
	}

	return nil
}
