// Package fixture assembles, persists, validates and compares golden
// fixtures.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// TimestampLayout is UTC ISO-8601 with microseconds and a literal Z
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// NewMeta builds the fixture header for a library at a point in time
func NewMeta(library, version string, now time.Time) models.Meta {
	return models.Meta{
		GeneratedAt: now.UTC().Format(TimestampLayout),
		Library:     library,
		Version:     version,
	}
}

// Build assembles a fixture from a header and scenarios
func Build(meta models.Meta, scenarios []models.Scenario) *models.Fixture {
	if scenarios == nil {
		scenarios = []models.Scenario{}
	}
	return &models.Fixture{Meta: meta, Scenarios: scenarios}
}

// Marshal encodes f as two-space indented JSON with a trailing newline.
// Non-finite numbers are rejected with a *NonFiniteError naming the field.
func Marshal(f *models.Fixture) ([]byte, error) {
	if err := checkFinite(f); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}
	return append(data, '\n'), nil
}

// Write marshals f and replaces path atomically. It returns the number of
// bytes written.
func Write(path string, f *models.Fixture) (int, error) {
	data, err := Marshal(f)
	if err != nil {
		return 0, err
	}
	return len(data), WriteData(path, data)
}

// WriteData replaces path with data through a temp file and rename,
// creating parent directories as needed.
func WriteData(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Load reads a fixture file, checks it against the schema and decodes it
func Load(path string) (*models.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Parse checks data against the schema and decodes it
func Parse(data []byte) (*models.Fixture, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var f models.Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}
