package harness

import "github.com/GoSim-25-26J-441/tpe-golden/pkg/models"

// RunInfo identifies the run an event belongs to
type RunInfo struct {
	Scenario string
	Seed     int
}

// Observer receives protocol events in the order they happen within a run.
// Events from different runs may interleave when runs execute concurrently.
type Observer interface {
	// OnAsk fires once the trial's assignment is realized.
	OnAsk(run RunInfo, trial int)

	// OnReport fires after an intermediate value reaches the sampler.
	OnReport(run RunInfo, trial, step int, value float64)

	// OnTell fires after an outcome reaches the sampler. depth is the number
	// of trials still held in the pending queue.
	OnTell(run RunInfo, trial int, state models.TrialState, depth int)

	// OnRunComplete fires after the final drain with the deepest queue seen.
	OnRunComplete(run RunInfo, maxDepth int)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnAsk(RunInfo, int) {}
func (NopObserver) OnReport(RunInfo, int, int, float64) {}
func (NopObserver) OnTell(RunInfo, int, models.TrialState, int) {}
func (NopObserver) OnRunComplete(RunInfo, int) {}
