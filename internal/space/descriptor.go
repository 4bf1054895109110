package space

import (
	"fmt"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Suggester is the sampler capability that yields one parameter value per
// request. Requests are order-sensitive.
type Suggester interface {
	Suggest(name string, d Domain) (models.ParamValue, error)
}

// Descriptor requests a scenario's parameters, in a fixed order, and returns
// the realized assignment.
type Descriptor func(s Suggester) (models.Params, error)

// Name identifies a registered descriptor
type Name string

const (
	NameCore    Name = "core"
	NameNumeric Name = "numeric"
	NameGroup   Name = "group"
)

// Lookup returns a registered descriptor
func Lookup(name string) (Descriptor, error) {
	switch Name(name) {
	case NameCore:
		return Core, nil
	case NameNumeric:
		return Numeric, nil
	case NameGroup:
		return Group, nil
	default:
		return nil, fmt.Errorf("unknown search space %q", name)
	}
}

// Core requests x, y, mode, log_u, log_i.
func Core(s Suggester) (models.Params, error) {
	r := request{s: s}
	r.suggest("x", Float(-5.0, 5.0))
	r.suggest("y", Int(1, 9, 2))
	r.suggest("mode", Categorical("a", "b", "c"))
	r.suggest("log_u", FloatLog(1e-3, 1e2))
	r.suggest("log_i", IntLog(1, 64))
	return r.done()
}

// Numeric requests x, y, log_u.
func Numeric(s Suggester) (models.Params, error) {
	r := request{s: s}
	r.suggest("x", Float(-5.0, 5.0))
	r.suggest("y", Float(-2.0, 8.0))
	r.suggest("log_u", FloatLog(1e-3, 1e2))
	return r.done()
}

// Group requests group and common, then a1 for group "a" or b1 otherwise.
func Group(s Suggester) (models.Params, error) {
	r := request{s: s}
	group := r.suggest("group", Categorical("a", "b"))
	r.suggest("common", Float(-1.0, 1.0))
	if r.err == nil && group.Text == "a" {
		r.suggest("a1", Float(-2.0, 2.0))
	} else {
		r.suggest("b1", Float(0.0, 4.0))
	}
	return r.done()
}

// EnqueuedCore is the pre-seeded catalogue for the core space
func EnqueuedCore() []models.Params {
	return []models.Params{
		{
			{Name: "x", Value: models.Number(-4.25)},
			{Name: "y", Value: models.Number(1)},
			{Name: "mode", Value: models.Text("c")},
			{Name: "log_u", Value: models.Number(0.0015)},
			{Name: "log_i", Value: models.Number(2)},
		},
		{
			{Name: "x", Value: models.Number(4.9)},
			{Name: "y", Value: models.Number(9)},
			{Name: "mode", Value: models.Text("a")},
			{Name: "log_u", Value: models.Number(12.5)},
			{Name: "log_i", Value: models.Number(16)},
		},
		{
			{Name: "x", Value: models.Number(0.0)},
			{Name: "y", Value: models.Number(5)},
			{Name: "mode", Value: models.Text("b")},
			{Name: "log_u", Value: models.Number(0.1)},
			{Name: "log_i", Value: models.Number(4)},
		},
	}
}

// request accumulates suggestions in order and stops at the first error
type request struct {
	s      Suggester
	params models.Params
	err    error
}

func (r *request) suggest(name string, d Domain) models.ParamValue {
	if r.err != nil {
		return models.ParamValue{}
	}
	v, err := r.s.Suggest(name, d)
	if err != nil {
		r.err = fmt.Errorf("suggest %s: %w", name, err)
		return models.ParamValue{}
	}
	r.params = append(r.params, models.Param{Name: name, Value: v})
	return v
}

func (r *request) done() (models.Params, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.params, nil
}
