package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TrialState is the final state of a recorded trial
type TrialState string

const (
	TrialStateComplete TrialState = "complete"
	TrialStatePruned   TrialState = "pruned"
)

// Direction is an objective optimization direction
type Direction string

const (
	Minimize Direction = "minimize"
	Maximize Direction = "maximize"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == Minimize || d == Maximize
}

// IntermediateValue is one (step, value) observation, encoded as [step, value].
type IntermediateValue struct {
	Step  int
	Value float64
}

// MarshalJSON encodes the pair as a two-element array
func (iv IntermediateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(iv.Step), iv.Value})
}

// UnmarshalJSON decodes a two-element [step, value] array
func (iv *IntermediateValue) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("intermediate value must be a [step, value] pair, got %d elements", len(pair))
	}
	iv.Step = int(pair[0])
	iv.Value = pair[1]
	return nil
}

// IntermediateValues is ordered by increasing step. Encodes as [] when empty.
type IntermediateValues []IntermediateValue

// MarshalJSON never encodes null
func (ivs IntermediateValues) MarshalJSON() ([]byte, error) {
	if ivs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]IntermediateValue(ivs))
}

// TrialRecord is the immutable snapshot of one finished trial
type TrialRecord struct {
	Number             int                `json:"number"`
	Params             Params             `json:"params"`
	State              TrialState         `json:"state"`
	Value              *float64           `json:"value"`
	Values             []float64          `json:"values"`
	IntermediateValues IntermediateValues `json:"intermediate_values"`
	Constraint         []float64          `json:"constraint"`
}

// ScenarioRun holds the records produced under one seed, in ask order
type ScenarioRun struct {
	Seed   int           `json:"seed"`
	Trials []TrialRecord `json:"trials"`
}

// Scenario is one catalogue entry and its runs
type Scenario struct {
	Name                string        `json:"name"`
	TellLag             int           `json:"tellLag"`
	ObjectiveDirections []Direction   `json:"objectiveDirections"`
	Runs                []ScenarioRun `json:"runs"`
}

// Meta is the fixture header. The version key is named after the library,
// e.g. {"generated_at": "...", "tpe_version": "1.0.0"}.
type Meta struct {
	GeneratedAt string
	Library     string
	Version     string
}

// VersionKey returns the JSON key carrying the library version
func (m Meta) VersionKey() string {
	return m.Library + "_version"
}

// MarshalJSON writes generated_at first, then the library version key
func (m Meta) MarshalJSON() ([]byte, error) {
	if m.Library == "" {
		return nil, fmt.Errorf("meta: library name is empty")
	}
	var buf bytes.Buffer
	ts, _ := json.Marshal(m.GeneratedAt)
	key, _ := json.Marshal(m.VersionKey())
	ver, _ := json.Marshal(m.Version)
	buf.WriteString(`{"generated_at":`)
	buf.Write(ts)
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(ver)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads generated_at and the single "<library>_version" key
func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Meta{}
	if ts, ok := raw["generated_at"]; ok {
		if err := json.Unmarshal(ts, &out.GeneratedAt); err != nil {
			return fmt.Errorf("meta.generated_at: %w", err)
		}
	}
	for k, v := range raw {
		if k == "generated_at" || !strings.HasSuffix(k, "_version") {
			continue
		}
		if out.Library != "" {
			return fmt.Errorf("meta: more than one library version key")
		}
		out.Library = strings.TrimSuffix(k, "_version")
		if err := json.Unmarshal(v, &out.Version); err != nil {
			return fmt.Errorf("meta.%s: %w", k, err)
		}
	}
	if out.Library == "" {
		return fmt.Errorf("meta: missing <library>_version key")
	}
	*m = out
	return nil
}

// Fixture is the full persisted artifact
type Fixture struct {
	Meta      Meta       `json:"meta"`
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario returns the scenario with the given name
func (f *Fixture) Scenario(name string) (*Scenario, bool) {
	for i := range f.Scenarios {
		if f.Scenarios[i].Name == name {
			return &f.Scenarios[i], true
		}
	}
	return nil, false
}
