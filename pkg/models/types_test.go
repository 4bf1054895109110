package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ParamValue
	}{
		{"float", 1.5, Number(1.5)},
		{"int", 7, Number(7)},
		{"int64", int64(-3), Number(-3)},
		{"string", "a", Text("a")},
		{"bool stringified", true, Text("true")},
		{"nil stringified", nil, Text("<nil>")},
		{"already sanitized", Text("c"), Text("c")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); !got.Equal(tt.want) {
				t.Errorf("Sanitize(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParamsKeepOrder(t *testing.T) {
	p := Params{}.
		With("x", Number(-4.25)).
		With("y", Number(1)).
		With("mode", Text("c")).
		With("log_u", Number(0.0015)).
		With("log_i", Number(2))

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"x":-4.25,"y":1,"mode":"c","log_u":0.0015,"log_i":2}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Params
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(p) {
		t.Errorf("Expected decoded params to equal original, got %+v", back)
	}
}

func TestParamsWithReplacesInPlace(t *testing.T) {
	p := Params{}.With("a", Number(1)).With("b", Number(2))
	q := p.With("a", Number(9))

	if v, _ := p.Get("a"); v.Number != 1 {
		t.Error("Expected With to leave the receiver unchanged")
	}
	if names := strings.Join(q.Names(), ","); names != "a,b" {
		t.Errorf("Expected order a,b, got %s", names)
	}
	if v, _ := q.Get("a"); v.Number != 9 {
		t.Errorf("Expected a = 9, got %v", v)
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{{"x", Number(0.5)}, {"mode", Text("b")}}

	if v, err := p.Float("x"); err != nil || v != 0.5 {
		t.Errorf("Float(x) = %v, %v", v, err)
	}
	if _, err := p.Float("mode"); err == nil {
		t.Error("Expected error reading text parameter as float")
	}
	if _, err := p.Float("missing"); err == nil {
		t.Error("Expected error for missing parameter")
	}
	if s, err := p.Label("mode"); err != nil || s != "b" {
		t.Errorf("Label(mode) = %q, %v", s, err)
	}
	if _, err := p.Label("x"); err == nil {
		t.Error("Expected error reading numeric parameter as label")
	}
}

func TestParamsUnmarshalRejectsDuplicates(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"x":1,"x":2}`), &p); err == nil {
		t.Error("Expected duplicate key error")
	}
	if err := json.Unmarshal([]byte(`[1]`), &p); err == nil {
		t.Error("Expected error for non-object params")
	}
	if err := json.Unmarshal([]byte(`{"x":true}`), &p); err == nil {
		t.Error("Expected error for boolean value")
	}
}

func TestTrialRecordNullFields(t *testing.T) {
	rec := TrialRecord{
		Number: 0,
		Params: Params{{"x", Number(1)}},
		State:  TrialStatePruned,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"number":0,"params":{"x":1},"state":"pruned","value":null,"values":null,"intermediate_values":[],"constraint":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant      %s", data, want)
	}
}

func TestTrialRecordFullFields(t *testing.T) {
	rec := TrialRecord{
		Number:             3,
		Params:             Params{{"x", Number(2)}},
		State:              TrialStateComplete,
		Value:              floatPtr(1.25),
		IntermediateValues: IntermediateValues{{1, 0.1}, {2, 0.2}},
		Constraint:         []float64{0.5, 0},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"number":3,"params":{"x":2},"state":"complete","value":1.25,"values":null,"intermediate_values":[[1,0.1],[2,0.2]],"constraint":[0.5,0]}`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant      %s", data, want)
	}

	var back TrialRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Value == nil || *back.Value != 1.25 {
		t.Errorf("Expected value 1.25, got %v", back.Value)
	}
	if len(back.IntermediateValues) != 2 || back.IntermediateValues[1].Step != 2 {
		t.Errorf("Unexpected intermediate values %+v", back.IntermediateValues)
	}
}

func TestMetaVersionKey(t *testing.T) {
	m := Meta{GeneratedAt: "2026-01-02T03:04:05Z", Library: "tpe", Version: "1.0.0"}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"generated_at":"2026-01-02T03:04:05Z","tpe_version":"1.0.0"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Meta
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != m {
		t.Errorf("Expected %+v, got %+v", m, back)
	}
}

func TestMetaErrors(t *testing.T) {
	if _, err := json.Marshal(Meta{GeneratedAt: "x"}); err == nil {
		t.Error("Expected error for empty library name")
	}
	var m Meta
	if err := json.Unmarshal([]byte(`{"generated_at":"x"}`), &m); err == nil {
		t.Error("Expected error for missing version key")
	}
	if err := json.Unmarshal([]byte(`{"a_version":"1","b_version":"2"}`), &m); err == nil {
		t.Error("Expected error for two version keys")
	}
}

func TestDirectionValid(t *testing.T) {
	if !Minimize.Valid() || !Maximize.Valid() {
		t.Error("Expected minimize and maximize to be valid")
	}
	if Direction("up").Valid() {
		t.Error("Expected unknown direction to be invalid")
	}
}

func TestFixtureScenarioLookup(t *testing.T) {
	f := Fixture{Scenarios: []Scenario{{Name: "a"}, {Name: "b", TellLag: 2}}}
	s, ok := f.Scenario("b")
	if !ok || s.TellLag != 2 {
		t.Errorf("Expected scenario b with lag 2, got %+v, %v", s, ok)
	}
	if _, ok := f.Scenario("c"); ok {
		t.Error("Expected missing scenario")
	}
}
