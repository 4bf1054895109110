package fixture

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// NonFiniteError reports a NaN or infinite number reaching the serializer
type NonFiniteError struct {
	Path  string
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite value %v at %s", e.Value, e.Path)
}

func trialPath(scenario string, seed, number int) string {
	return fmt.Sprintf("%s/seed=%d/trial=%d", scenario, seed, number)
}

func finite(path string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NonFiniteError{Path: path, Value: v}
	}
	return nil
}

func finiteSlice(path string, vs []float64) error {
	for i, v := range vs {
		if err := finite(fmt.Sprintf("%s[%d]", path, i), v); err != nil {
			return err
		}
	}
	return nil
}

func checkFinite(f *models.Fixture) error {
	for _, sc := range f.Scenarios {
		for _, run := range sc.Runs {
			for _, tr := range run.Trials {
				base := trialPath(sc.Name, run.Seed, tr.Number)
				for _, p := range tr.Params {
					if p.Value.IsNumber() {
						if err := finite(base+".params."+p.Name, p.Value.Number); err != nil {
							return err
						}
					}
				}
				if tr.Value != nil {
					if err := finite(base+".value", *tr.Value); err != nil {
						return err
					}
				}
				if err := finiteSlice(base+".values", tr.Values); err != nil {
					return err
				}
				for i, iv := range tr.IntermediateValues {
					if err := finite(fmt.Sprintf("%s.intermediate_values[%d]", base, i), iv.Value); err != nil {
						return err
					}
				}
				if err := finiteSlice(base+".constraint", tr.Constraint); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
