package fixture

import (
	"fmt"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// InvariantError lists every structural rule a fixture breaks
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("fixture breaks %d invariant(s):\n  - %s", len(e.Violations), strings.Join(e.Violations, "\n  - "))
}

// CheckInvariants verifies the record-level rules of a fixture: contiguous
// trial numbers, value/values exclusivity, pruned trials without final
// values, constraint vectors only on completed trials of constrained
// scenarios, and values arity matching the scenario's directions.
func CheckInvariants(f *models.Fixture) error {
	var v []string
	add := func(path, format string, args ...any) {
		v = append(v, path+": "+fmt.Sprintf(format, args...))
	}

	if !strings.HasSuffix(f.Meta.GeneratedAt, "Z") {
		add("meta.generated_at", "%q is not a UTC timestamp with a Z suffix", f.Meta.GeneratedAt)
	} else if _, err := time.Parse(time.RFC3339Nano, f.Meta.GeneratedAt); err != nil {
		add("meta.generated_at", "%v", err)
	}
	if f.Meta.Library == "" || f.Meta.Version == "" {
		add("meta", "missing library version")
	}

	names := make(map[string]bool)
	for _, sc := range f.Scenarios {
		if names[sc.Name] {
			add(sc.Name, "duplicate scenario")
		}
		names[sc.Name] = true

		if len(sc.ObjectiveDirections) == 0 {
			add(sc.Name, "no objective directions")
		}
		for i, d := range sc.ObjectiveDirections {
			if !d.Valid() {
				add(sc.Name, "objectiveDirections[%d] is %q", i, d)
			}
		}
		if sc.TellLag < 0 {
			add(sc.Name, "negative tellLag %d", sc.TellLag)
		}
		multi := len(sc.ObjectiveDirections) > 1
		constrained := scenarioHasConstraints(sc)

		for _, run := range sc.Runs {
			for i, tr := range run.Trials {
				path := trialPath(sc.Name, run.Seed, i)
				if tr.Number != i {
					add(path, "number is %d", tr.Number)
				}
				if tr.Value != nil && tr.Values != nil {
					add(path, "both value and values are set")
				}
				for j := 1; j < len(tr.IntermediateValues); j++ {
					if tr.IntermediateValues[j].Step <= tr.IntermediateValues[j-1].Step {
						add(path, "intermediate steps are not increasing")
						break
					}
				}

				switch tr.State {
				case models.TrialStatePruned:
					if tr.Value != nil || tr.Values != nil {
						add(path, "pruned trial carries a final value")
					}
					if tr.Constraint != nil {
						add(path, "pruned trial carries a constraint")
					}
				case models.TrialStateComplete:
					switch {
					case multi && len(tr.Values) != len(sc.ObjectiveDirections):
						add(path, "values has %d entries for %d directions", len(tr.Values), len(sc.ObjectiveDirections))
					case !multi && tr.Value == nil:
						add(path, "completed single-objective trial has no value")
					}
					if constrained && tr.Constraint == nil {
						add(path, "completed trial of a constrained scenario has no constraint")
					}
				default:
					add(path, "unknown state %q", tr.State)
				}
			}
		}
	}

	if len(v) > 0 {
		return &InvariantError{Violations: v}
	}
	return nil
}

// scenarioHasConstraints reports whether any trial in the scenario carries
// a constraint vector.
func scenarioHasConstraints(sc models.Scenario) bool {
	for _, run := range sc.Runs {
		for _, tr := range run.Trials {
			if tr.Constraint != nil {
				return true
			}
		}
	}
	return false
}
