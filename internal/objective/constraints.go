package objective

import (
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// ConstraintFunc maps an assignment to a constraint vector. An entry <= 0
// means that constraint is satisfied.
type ConstraintFunc func(params models.Params) ([]float64, error)

// XYExcess returns [max(0, x-1.5), max(0, 0.5-y)].
func XYExcess(params models.Params) ([]float64, error) {
	x, err := number(params, "x")
	if err != nil {
		return nil, err
	}
	y, err := number(params, "y")
	if err != nil {
		return nil, err
	}
	return []float64{math.Max(0, x-1.5), math.Max(0, 0.5-y)}, nil
}
