package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParamKind tags which member of ParamValue is set
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamText
)

// ParamValue is a parameter value: either a number or a text label.
type ParamValue struct {
	Kind   ParamKind
	Number float64
	Text   string
}

// Number returns a numeric parameter value
func Number(v float64) ParamValue {
	return ParamValue{Kind: ParamNumber, Number: v}
}

// Text returns a text parameter value
func Text(s string) ParamValue {
	return ParamValue{Kind: ParamText, Text: s}
}

// Sanitize converts an arbitrary value into a ParamValue. Integer and float
// types become numbers, strings stay text, and anything else is stringified.
func Sanitize(v any) ParamValue {
	switch x := v.(type) {
	case ParamValue:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case string:
		return Text(x)
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}

// IsNumber reports whether v holds a number
func (v ParamValue) IsNumber() bool {
	return v.Kind == ParamNumber
}

// Equal reports exact equality of kind and payload
func (v ParamValue) Equal(o ParamValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == ParamNumber {
		return v.Number == o.Number
	}
	return v.Text == o.Text
}

func (v ParamValue) String() string {
	if v.Kind == ParamNumber {
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	}
	return v.Text
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings
func (v ParamValue) MarshalJSON() ([]byte, error) {
	if v.Kind == ParamNumber {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON number or string
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parameter value must be a number or string: %w", err)
	}
	*v = Number(f)
	return nil
}

// Param is one named entry of a parameter assignment
type Param struct {
	Name  string
	Value ParamValue
}

// Params is a parameter assignment that keeps names in request order.
type Params []Param

// Get returns the value for name
func (p Params) Get(name string) (ParamValue, bool) {
	for _, e := range p {
		if e.Name == name {
			return e.Value, true
		}
	}
	return ParamValue{}, false
}

// Has reports whether name is assigned
func (p Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Float returns the numeric value for name
func (p Params) Float(name string) (float64, error) {
	v, ok := p.Get(name)
	if !ok {
		return 0, fmt.Errorf("parameter %q not assigned", name)
	}
	if !v.IsNumber() {
		return 0, fmt.Errorf("parameter %q is not numeric: %q", name, v.Text)
	}
	return v.Number, nil
}

// Label returns the text value for name
func (p Params) Label(name string) (string, error) {
	v, ok := p.Get(name)
	if !ok {
		return "", fmt.Errorf("parameter %q not assigned", name)
	}
	if v.IsNumber() {
		return "", fmt.Errorf("parameter %q is not categorical: %v", name, v.Number)
	}
	return v.Text, nil
}

// With returns a copy of p with name set to value. An existing entry keeps
// its position; a new entry is appended.
func (p Params) With(name string, value ParamValue) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Name: name, Value: value})
}

// Names returns parameter names in order
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, e := range p {
		names[i] = e.Name
	}
	return names
}

// Equal reports whether both assignments hold the same names, order and values
func (p Params) Equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].Name != o[i].Name || !p[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes an object whose keys follow assignment order
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", e.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, preserving the document's key order
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("params must be a JSON object")
	}

	out := Params{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("params: unexpected key token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("params %q: %w", name, err)
		}
		var v ParamValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("params %q: %w", name, err)
		}
		if out.Has(name) {
			return fmt.Errorf("params: duplicate key %q", name)
		}
		out = append(out, Param{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}
