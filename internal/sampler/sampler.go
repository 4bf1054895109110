// Package sampler defines the capability contract between the fixture harness
// and a black-box ask/tell sampler.
package sampler

import (
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Study is one optimization session owned by a single scenario run.
type Study interface {
	// Ask starts the next trial. Enqueued assignments are consumed first.
	Ask() (Trial, error)

	// Tell reports the outcome of a trial returned by Ask.
	Tell(t Trial, o Outcome) error

	// Enqueue schedules a fixed assignment for a future Ask.
	Enqueue(p models.Params) error

	// Directions returns one direction per objective.
	Directions() []models.Direction
}

// Trial is a sampler-owned trial handle.
type Trial interface {
	space.Suggester

	// Number is the 0-based ask-order index of the trial.
	Number() int

	// Report records an intermediate value at step.
	Report(step int, value float64) error
}

// Outcome is what the harness tells the sampler about a finished trial.
// Value is set for single-objective completes, Values for multi-objective
// completes, neither for pruned trials.
type Outcome struct {
	State  models.TrialState
	Value  *float64
	Values []float64
}

// Complete returns a single-objective complete outcome
func Complete(v float64) Outcome {
	return Outcome{State: models.TrialStateComplete, Value: &v}
}

// CompleteMulti returns a multi-objective complete outcome
func CompleteMulti(values []float64) Outcome {
	out := make([]float64, len(values))
	copy(out, values)
	return Outcome{State: models.TrialStateComplete, Values: out}
}

// Pruned returns a pruned outcome
func Pruned() Outcome {
	return Outcome{State: models.TrialStatePruned}
}

// Factory constructs a fresh Study
type Factory func(opts Options) (Study, error)

// Library identifies a sampler implementation. Name becomes the
// "<name>_version" key in fixture metadata.
type Library struct {
	Name     string
	Version  string
	NewStudy Factory
}

var (
	// ErrTrialFinished is returned when a finished trial is told, reported
	// or suggested again.
	ErrTrialFinished = errors.New("trial already finished")

	// ErrForeignTrial is returned when a trial is told to a study that did
	// not create it.
	ErrForeignTrial = errors.New("trial does not belong to this study")
)

// OutcomeError indicates an outcome that does not fit the study's directions
type OutcomeError struct {
	Trial  int
	Reason string
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("invalid outcome for trial %d: %s", e.Trial, e.Reason)
}
