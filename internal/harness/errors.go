package harness

import "fmt"

// TrialError is a fatal failure inside a run. Trial is -1 when the failure
// happened before the first ask.
type TrialError struct {
	Scenario string
	Seed     int
	Trial    int
	Err      error
}

func (e *TrialError) Error() string {
	if e.Trial < 0 {
		return fmt.Sprintf("scenario %s seed %d: %v", e.Scenario, e.Seed, e.Err)
	}
	return fmt.Sprintf("scenario %s seed %d trial %d: %v", e.Scenario, e.Seed, e.Trial, e.Err)
}

func (e *TrialError) Unwrap() error {
	return e.Err
}
