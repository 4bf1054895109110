package journal

import (
	"errors"
	"sync"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Recorder is a harness.Observer that buffers each run's events and writes
// them in one transaction when the run completes. It is safe for
// concurrent runs.
type Recorder struct {
	store        *Store
	generationID string

	mu   sync.Mutex
	runs map[harness.RunInfo][]Event
	errs []error
}

// Observer returns a recorder writing under generationID
func (s *Store) Observer(generationID string) *Recorder {
	return &Recorder{
		store:        s,
		generationID: generationID,
		runs:         make(map[harness.RunInfo][]Event),
	}
}

func (r *Recorder) append(run harness.RunInfo, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.runs[run]
	e.Seq = len(events)
	r.runs[run] = append(events, e)
}

func (r *Recorder) OnAsk(run harness.RunInfo, trial int) {
	r.append(run, Event{Kind: KindAsk, Trial: trial})
}

func (r *Recorder) OnReport(run harness.RunInfo, trial, step int, value float64) {
	r.append(run, Event{Kind: KindReport, Trial: trial, Step: step, Value: value})
}

func (r *Recorder) OnTell(run harness.RunInfo, trial int, state models.TrialState, depth int) {
	r.append(run, Event{Kind: KindTell, Trial: trial, State: state, Depth: depth})
}

func (r *Recorder) OnRunComplete(run harness.RunInfo, _ int) {
	r.mu.Lock()
	events := r.runs[run]
	delete(r.runs, run)
	r.mu.Unlock()

	if err := r.store.writeRun(r.generationID, run.Scenario, run.Seed, events); err != nil {
		r.mu.Lock()
		r.errs = append(r.errs, err)
		r.mu.Unlock()
	}
}

// Err returns every write failure seen so far, joined
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

var _ harness.Observer = (*Recorder)(nil)
