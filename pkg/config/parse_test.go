package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParseConfigYAMLString(t *testing.T) {
	yamlText := `
log_level: debug
output: out/golden.json
seeds: [0, 7]
trials:
  default: 20
  extended: 12
  enqueued: 4
parallelism: 3
scenarios: [core_single_objective]
`

	cfg, err := ParseConfigYAMLString(yamlText)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.Output != "out/golden.json" {
		t.Errorf("expected output out/golden.json, got %q", cfg.Output)
	}
	if len(cfg.Seeds) != 2 || cfg.Seeds[1] != 7 {
		t.Errorf("expected seeds [0 7], got %v", cfg.Seeds)
	}
	if cfg.Trials.Default != 20 || cfg.Trials.Extended != 12 || cfg.Trials.Enqueued != 4 {
		t.Errorf("unexpected trials %+v", cfg.Trials)
	}
	if cfg.Parallelism != 3 {
		t.Errorf("expected parallelism 3, got %d", cfg.Parallelism)
	}
	if !cfg.Wants("core_single_objective") || cfg.Wants("multi_objective_group") {
		t.Errorf("unexpected scenario filter %v", cfg.Scenarios)
	}
}

func TestParseConfigYAMLDefaults(t *testing.T) {
	cfg, err := ParseConfigYAMLString(`log_level: warn`)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("expected default output, got %q", cfg.Output)
	}
	if len(cfg.Seeds) != 5 || cfg.Seeds[0] != 0 || cfg.Seeds[4] != 4 {
		t.Errorf("expected seeds 0..4, got %v", cfg.Seeds)
	}
	if cfg.Trials.Default != 200 || cfg.Trials.Extended != 120 || cfg.Trials.Enqueued != 8 {
		t.Errorf("unexpected default trials %+v", cfg.Trials)
	}
	if cfg.Parallelism != 1 {
		t.Errorf("expected parallelism 1, got %d", cfg.Parallelism)
	}
	if !cfg.Wants("anything") {
		t.Error("expected empty filter to accept every scenario")
	}
}

func TestParseConfigTOML(t *testing.T) {
	tomlText := `
log_level = "error"
seeds = [3]
journal = "journal.db"
metrics_output = "metrics.prom"

[trials]
default = 10
`
	cfg, err := ParseConfigTOML([]byte(tomlText))
	if err != nil {
		t.Fatalf("ParseConfigTOML failed: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected log_level error, got %q", cfg.LogLevel)
	}
	if len(cfg.Seeds) != 1 || cfg.Seeds[0] != 3 {
		t.Errorf("expected seeds [3], got %v", cfg.Seeds)
	}
	if cfg.Trials.Default != 10 || cfg.Trials.Extended != ExtendedTrialBudget {
		t.Errorf("unexpected trials %+v", cfg.Trials)
	}
	if cfg.Journal != "journal.db" || cfg.MetricsOutput != "metrics.prom" {
		t.Errorf("unexpected side outputs %q %q", cfg.Journal, cfg.MetricsOutput)
	}
}

func TestParseConfigTOMLUnknownKey(t *testing.T) {
	_, err := ParseConfigTOML([]byte(`colour = "blue"`))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("expected error to name the key, got %v", err)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		field    string
	}{
		{"Bad log level", `log_level: loud`, "log_level"},
		{"Negative seed", `seeds: [-1]`, "seeds"},
		{"Duplicate seed", `seeds: [1, 1]`, "seeds"},
		{"Negative budget", "trials:\n  default: -5", "trials.default"},
		{"Negative parallelism", `parallelism: -2`, "parallelism"},
		{"Duplicate scenario", `scenarios: [a, a]`, "scenarios"},
		{"Empty scenario", `scenarios: [""]`, "scenarios"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAMLString(tt.yamlText)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestParseConfigYAMLMalformed(t *testing.T) {
	if _, err := ParseConfigYAMLString("seeds: [1, 2"); err == nil {
		t.Error("expected yaml syntax error")
	}
}

func TestValidateAfterOverride(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	cfg.Parallelism = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero parallelism")
	}
}
