package objective

import (
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// PruningSchedule reports base + Increment*step at each step and stops the
// trial once the value at CheckStep strictly exceeds Threshold.
type PruningSchedule struct {
	Steps     []int
	Increment float64
	CheckStep int
	Threshold float64
}

// DefaultPruning is the fixed schedule used by fixture generation
var DefaultPruning = PruningSchedule{
	Steps:     []int{1, 2, 3},
	Increment: 0.1,
	CheckStep: 2,
	Threshold: 1.25,
}

// Reporter receives each intermediate value as it is computed
type Reporter func(step int, value float64) error

// Run walks the schedule from base. It returns the recorded intermediate
// values and whether the trial was pruned.
func (s PruningSchedule) Run(base float64, report Reporter) (models.IntermediateValues, bool, error) {
	ivs := make(models.IntermediateValues, 0, len(s.Steps))
	for _, step := range s.Steps {
		v := base + float64(step)*s.Increment
		if report != nil {
			if err := report(step, v); err != nil {
				return ivs, false, err
			}
		}
		ivs = append(ivs, models.IntermediateValue{Step: step, Value: v})
		if step == s.CheckStep && v > s.Threshold {
			return ivs, true, nil
		}
	}
	return ivs, false, nil
}
