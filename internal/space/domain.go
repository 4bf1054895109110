package space

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Kind is the type of a parameter domain
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Domain describes the values one parameter may take.
// Step is 0 for a continuous float domain; int domains always have Step >= 1.
type Domain struct {
	Kind    Kind
	Low     float64
	High    float64
	Step    float64
	Log     bool
	Choices []string
}

// Float is a continuous real interval [low, high]
func Float(low, high float64) Domain {
	return Domain{Kind: KindFloat, Low: low, High: high}
}

// FloatLog is a real interval sampled on a log scale
func FloatLog(low, high float64) Domain {
	return Domain{Kind: KindFloat, Low: low, High: high, Log: true}
}

// FloatStep is a real interval discretized to low + k*step
func FloatStep(low, high, step float64) Domain {
	return Domain{Kind: KindFloat, Low: low, High: high, Step: step}
}

// Int is an integer interval with a fixed step
func Int(low, high, step int) Domain {
	return Domain{Kind: KindInt, Low: float64(low), High: float64(high), Step: float64(step)}
}

// IntLog is an integer interval sampled on a log scale
func IntLog(low, high int) Domain {
	return Domain{Kind: KindInt, Low: float64(low), High: float64(high), Step: 1, Log: true}
}

// Categorical is a choice from an ordered set of labels
func Categorical(choices ...string) Domain {
	return Domain{Kind: KindCategorical, Choices: choices}
}

// Validate reports bounds and flag combinations that cannot be sampled
func (d Domain) Validate() error {
	switch d.Kind {
	case KindCategorical:
		if len(d.Choices) == 0 {
			return &DomainError{Reason: "categorical domain needs at least one choice"}
		}
		seen := make(map[string]bool, len(d.Choices))
		for _, c := range d.Choices {
			if seen[c] {
				return &DomainError{Reason: fmt.Sprintf("duplicate choice %q", c)}
			}
			seen[c] = true
		}
		return nil
	case KindFloat, KindInt:
	default:
		return &DomainError{Reason: fmt.Sprintf("unknown kind %v", d.Kind)}
	}

	if math.IsNaN(d.Low) || math.IsNaN(d.High) || math.IsInf(d.Low, 0) || math.IsInf(d.High, 0) {
		return &DomainError{Reason: "bounds must be finite"}
	}
	if d.Low > d.High {
		return &DomainError{Reason: fmt.Sprintf("low %v exceeds high %v", d.Low, d.High)}
	}
	if d.Log && d.Low <= 0 {
		return &DomainError{Reason: fmt.Sprintf("log domain needs low > 0, got %v", d.Low)}
	}
	if d.Step < 0 {
		return &DomainError{Reason: fmt.Sprintf("step cannot be negative, got %v", d.Step)}
	}
	if d.Kind == KindInt {
		if d.Low != math.Trunc(d.Low) || d.High != math.Trunc(d.High) {
			return &DomainError{Reason: "int bounds must be integral"}
		}
		if d.Step < 1 || d.Step != math.Trunc(d.Step) {
			return &DomainError{Reason: fmt.Sprintf("int step must be a positive integer, got %v", d.Step)}
		}
		if d.Log && d.Step != 1 {
			return &DomainError{Reason: "log int domain requires step 1"}
		}
	}
	if d.Kind == KindFloat && d.Log && d.Step != 0 {
		return &DomainError{Reason: "float domain cannot be both log and stepped"}
	}
	return nil
}

// Discrete reports whether values lie on a step grid
func (d Domain) Discrete() bool {
	return d.Kind == KindInt || (d.Kind == KindFloat && d.Step > 0)
}

// Single reports whether the domain admits exactly one value
func (d Domain) Single() bool {
	if d.Kind == KindCategorical {
		return len(d.Choices) == 1
	}
	if d.Discrete() {
		return d.High-d.Low < d.Step
	}
	return d.Low == d.High
}

// UpperGridPoint is the largest grid value not above High
func (d Domain) UpperGridPoint() float64 {
	if !d.Discrete() {
		return d.High
	}
	return d.Low + math.Floor((d.High-d.Low)/d.Step)*d.Step
}

// ToInternal maps a value to the sampler's float representation: the number
// itself, or the choice index for categoricals.
func (d Domain) ToInternal(v models.ParamValue) (float64, error) {
	if d.Kind == KindCategorical {
		if v.IsNumber() {
			return 0, &DomainError{Reason: fmt.Sprintf("categorical value must be a label, got %v", v.Number)}
		}
		for i, c := range d.Choices {
			if c == v.Text {
				return float64(i), nil
			}
		}
		return 0, &DomainError{Reason: fmt.Sprintf("%q is not one of %v", v.Text, d.Choices)}
	}
	if !v.IsNumber() {
		return 0, &DomainError{Reason: fmt.Sprintf("%s value must be numeric, got %q", d.Kind, v.Text)}
	}
	if v.Number < d.Low || v.Number > d.High {
		return 0, &DomainError{Reason: fmt.Sprintf("%v outside [%v, %v]", v.Number, d.Low, d.High)}
	}
	if d.Kind == KindInt && v.Number != math.Trunc(v.Number) {
		return 0, &DomainError{Reason: fmt.Sprintf("int value %v is not integral", v.Number)}
	}
	return v.Number, nil
}

// FromInternal maps the sampler's float representation back to a value
func (d Domain) FromInternal(f float64) models.ParamValue {
	if d.Kind == KindCategorical {
		i := int(f)
		if i < 0 {
			i = 0
		}
		if i >= len(d.Choices) {
			i = len(d.Choices) - 1
		}
		return models.Text(d.Choices[i])
	}
	if d.Kind == KindInt {
		return models.Number(math.Round(f))
	}
	return models.Number(f)
}

// Equal reports whether two domains are identical
func (d Domain) Equal(o Domain) bool {
	if d.Kind != o.Kind || d.Low != o.Low || d.High != o.High || d.Step != o.Step || d.Log != o.Log {
		return false
	}
	if len(d.Choices) != len(o.Choices) {
		return false
	}
	for i := range d.Choices {
		if d.Choices[i] != o.Choices[i] {
			return false
		}
	}
	return true
}

// DomainError indicates invalid domain bounds or an out-of-domain value
type DomainError struct {
	Param  string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Param == "" {
		return "invalid domain: " + e.Reason
	}
	return fmt.Sprintf("invalid domain for %s: %s", e.Param, e.Reason)
}
