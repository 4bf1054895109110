package objective

import (
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Objective maps a parameter assignment to one or more scalar values.
// Implementations are pure: the result depends only on the assignment.
type Objective interface {
	// Name returns the registry name of the objective.
	Name() string

	// Arity is the number of values Evaluate returns.
	Arity() int

	// Evaluate computes the objective values for an assignment.
	Evaluate(params models.Params) ([]float64, error)
}

// Type names a registered objective
type Type string

const (
	// TypeSingle scores the five-parameter core space
	TypeSingle Type = "single"
	// TypeSingleNumeric scores the three-parameter numeric space
	TypeSingleNumeric Type = "single_numeric"
	// TypeMulti returns two values over the grouped space
	TypeMulti Type = "multi"
	// TypeSingleGroup scalarizes TypeMulti as v0 + 0.5*v1
	TypeSingleGroup Type = "single_group"
)

// CategoryScores is the numeric contribution of each "mode" label.
// Labels not listed contribute zero.
var CategoryScores = map[string]float64{
	"a": 0.0,
	"b": 1.0,
	"c": 2.0,
}

// New creates an objective from a type string
func New(objType string) (Objective, error) {
	switch Type(objType) {
	case TypeSingle:
		return &SingleObjective{}, nil
	case TypeSingleNumeric:
		return &SingleNumericObjective{}, nil
	case TypeMulti:
		return &MultiObjective{}, nil
	case TypeSingleGroup:
		return &SingleGroupObjective{}, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: objType}
	}
}

// SingleObjective is (x-0.3)^2 + (y-5)^2 + ln(log_u)^2 + ln(log_i)^2 + 0.1*score(mode)
type SingleObjective struct{}

func (o *SingleObjective) Name() string {
	return string(TypeSingle)
}

func (o *SingleObjective) Arity() int {
	return 1
}

func (o *SingleObjective) Evaluate(params models.Params) ([]float64, error) {
	x, err := number(params, "x")
	if err != nil {
		return nil, err
	}
	y, err := number(params, "y")
	if err != nil {
		return nil, err
	}
	mode, err := label(params, "mode")
	if err != nil {
		return nil, err
	}
	logU, err := logOf(params, "log_u")
	if err != nil {
		return nil, err
	}
	logI, err := logOf(params, "log_i")
	if err != nil {
		return nil, err
	}
	v := (x-0.3)*(x-0.3) + (y-5.0)*(y-5.0) + logU*logU + logI*logI + CategoryScores[mode]*0.1
	return []float64{v}, nil
}

// SingleNumericObjective is (x-0.3)^2 + (y-5)^2 + ln(log_u)^2
type SingleNumericObjective struct{}

func (o *SingleNumericObjective) Name() string {
	return string(TypeSingleNumeric)
}

func (o *SingleNumericObjective) Arity() int {
	return 1
}

func (o *SingleNumericObjective) Evaluate(params models.Params) ([]float64, error) {
	x, err := number(params, "x")
	if err != nil {
		return nil, err
	}
	y, err := number(params, "y")
	if err != nil {
		return nil, err
	}
	logU, err := logOf(params, "log_u")
	if err != nil {
		return nil, err
	}
	return []float64{(x-0.3)*(x-0.3) + (y-5.0)*(y-5.0) + logU*logU}, nil
}

// MultiObjective evaluates the grouped space as two values. Group "a" reads
// a1, any other group reads b1; common is shared. Missing parameters default
// to group "a" and zero.
type MultiObjective struct{}

func (o *MultiObjective) Name() string {
	return string(TypeMulti)
}

func (o *MultiObjective) Arity() int {
	return 2
}

func (o *MultiObjective) Evaluate(params models.Params) ([]float64, error) {
	group, err := labelOr(params, "group", "a")
	if err != nil {
		return nil, err
	}
	y, err := numberOr(params, "common", 0)
	if err != nil {
		return nil, err
	}
	branch := "b1"
	if group == "a" {
		branch = "a1"
	}
	x, err := numberOr(params, branch, 0)
	if err != nil {
		return nil, err
	}
	return []float64{
		x*x + (y-2.0)*(y-2.0),
		(x-1.5)*(x-1.5) + (y+0.25)*(y+0.25),
	}, nil
}

// SingleGroupObjective is MultiObjective scalarized as v0 + 0.5*v1
type SingleGroupObjective struct {
	multi MultiObjective
}

func (o *SingleGroupObjective) Name() string {
	return string(TypeSingleGroup)
}

func (o *SingleGroupObjective) Arity() int {
	return 1
}

func (o *SingleGroupObjective) Evaluate(params models.Params) ([]float64, error) {
	values, err := o.multi.Evaluate(params)
	if err != nil {
		return nil, err
	}
	return []float64{values[0] + 0.5*values[1]}, nil
}

func number(params models.Params, name string) (float64, error) {
	v, err := params.Float(name)
	if err != nil {
		return 0, &InvalidParamsError{Param: name, Reason: err.Error()}
	}
	return v, nil
}

func numberOr(params models.Params, name string, fallback float64) (float64, error) {
	if !params.Has(name) {
		return fallback, nil
	}
	return number(params, name)
}

func label(params models.Params, name string) (string, error) {
	v, err := params.Label(name)
	if err != nil {
		return "", &InvalidParamsError{Param: name, Reason: err.Error()}
	}
	return v, nil
}

func labelOr(params models.Params, name, fallback string) (string, error) {
	if !params.Has(name) {
		return fallback, nil
	}
	return label(params, name)
}

// logOf returns ln(params[name]); the value must be strictly positive.
func logOf(params models.Params, name string) (float64, error) {
	v, err := number(params, name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &InvalidParamsError{Param: name, Reason: "logarithm of non-positive value"}
	}
	return math.Log(v), nil
}
