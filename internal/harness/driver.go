// Package harness drives one scenario run through a sampler study: ask,
// evaluate, queue, tell, and record.
package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/objective"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/pending"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/logger"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Plan is everything the driver needs for one scenario under one seed
type Plan struct {
	Scenario    string
	Seed        int
	Trials      int
	TellLag     int
	Space       space.Descriptor
	Enqueued    []models.Params
	Objective   objective.Objective
	Pruning     *objective.PruningSchedule
	Constraints objective.ConstraintFunc
}

// Validate reports plan errors that would otherwise surface mid-run
func (p Plan) Validate() error {
	if p.Trials <= 0 {
		return fmt.Errorf("plan %s: trial budget must be positive, got %d", p.Scenario, p.Trials)
	}
	if p.TellLag < 0 {
		return fmt.Errorf("plan %s: tell lag must be non-negative, got %d", p.Scenario, p.TellLag)
	}
	if p.Space == nil {
		return fmt.Errorf("plan %s: search space is required", p.Scenario)
	}
	if p.Objective == nil {
		return fmt.Errorf("plan %s: objective is required", p.Scenario)
	}
	if p.Pruning != nil && p.Objective.Arity() != 1 {
		return fmt.Errorf("plan %s: pruning requires a single-valued objective", p.Scenario)
	}
	return nil
}

// delivery is an evaluated trial waiting to be told
type delivery struct {
	trial   sampler.Trial
	outcome sampler.Outcome
}

// Driver runs plans. A Driver holds no per-run state and may be shared by
// concurrent runs as long as its observers are safe for concurrent use.
type Driver struct {
	logger    *slog.Logger
	observers []Observer
}

// NewDriver creates a driver that logs to log (logger.Default when nil) and
// notifies every observer of each protocol event.
func NewDriver(log *slog.Logger, observers ...Observer) *Driver {
	if log == nil {
		log = logger.Default
	}
	return &Driver{logger: log, observers: observers}
}

// Run executes plan against study and returns the records in ask order.
// Any failure aborts the run with a *TrialError.
func (d *Driver) Run(ctx context.Context, study sampler.Study, plan Plan) ([]models.TrialRecord, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	run := RunInfo{Scenario: plan.Scenario, Seed: plan.Seed}
	log := logger.ForRun(d.logger, plan.Scenario, plan.Seed)
	fail := func(trial int, err error) error {
		return &TrialError{Scenario: plan.Scenario, Seed: plan.Seed, Trial: trial, Err: err}
	}

	multi := len(study.Directions()) > 1
	if got := plan.Objective.Arity(); got != len(study.Directions()) {
		return nil, fail(-1, fmt.Errorf("objective %s returns %d values for %d directions",
			plan.Objective.Name(), got, len(study.Directions())))
	}

	for i, p := range plan.Enqueued {
		if err := study.Enqueue(p); err != nil {
			return nil, fail(-1, fmt.Errorf("enqueue assignment %d: %w", i, err))
		}
	}

	queue, err := pending.New[delivery](plan.TellLag)
	if err != nil {
		return nil, fail(-1, err)
	}

	records := make([]models.TrialRecord, 0, plan.Trials)
	for i := 0; i < plan.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fail(i, err)
		}

		trial, err := study.Ask()
		if err != nil {
			return nil, fail(i, fmt.Errorf("ask: %w", err))
		}
		if trial.Number() != i {
			return nil, fail(i, fmt.Errorf("sampler numbered trial %d, want %d", trial.Number(), i))
		}
		params, err := plan.Space(trial)
		if err != nil {
			return nil, fail(i, err)
		}
		d.notify(func(o Observer) { o.OnAsk(run, i) })

		record, outcome, err := d.evaluate(run, trial, params, plan, multi)
		if err != nil {
			return nil, fail(i, err)
		}
		records = append(records, record)
		log.Debug("trial evaluated", "trial", i, "state", record.State)

		if released, ok := queue.Push(delivery{trial: trial, outcome: outcome}); ok {
			if err := d.tell(run, study, released, queue.Len()); err != nil {
				return nil, fail(released.trial.Number(), err)
			}
		}
	}

	for _, dl := range queue.Drain() {
		if err := d.tell(run, study, dl, 0); err != nil {
			return nil, fail(dl.trial.Number(), err)
		}
	}
	d.notify(func(o Observer) { o.OnRunComplete(run, queue.MaxDepth()) })

	log.Info("run complete", "trials", len(records), "tell_lag", plan.TellLag)
	return records, nil
}

// evaluate computes the objective, walks the pruning schedule and builds the
// trial's record and outcome.
func (d *Driver) evaluate(run RunInfo, trial sampler.Trial, params models.Params, plan Plan, multi bool) (models.TrialRecord, sampler.Outcome, error) {
	record := models.TrialRecord{
		Number:             trial.Number(),
		Params:             params,
		State:              models.TrialStateComplete,
		IntermediateValues: models.IntermediateValues{},
	}

	values, err := plan.Objective.Evaluate(params)
	if err != nil {
		return record, sampler.Outcome{}, fmt.Errorf("objective %s: %w", plan.Objective.Name(), err)
	}

	if plan.Pruning != nil {
		report := func(step int, value float64) error {
			if err := trial.Report(step, value); err != nil {
				return fmt.Errorf("report step %d: %w", step, err)
			}
			d.notify(func(o Observer) { o.OnReport(run, trial.Number(), step, value) })
			return nil
		}
		ivs, pruned, err := plan.Pruning.Run(values[0], report)
		if err != nil {
			return record, sampler.Outcome{}, err
		}
		record.IntermediateValues = ivs
		if pruned {
			record.State = models.TrialStatePruned
			return record, sampler.Pruned(), nil
		}
	}

	var outcome sampler.Outcome
	if multi {
		outcome = sampler.CompleteMulti(values)
		record.Values = append([]float64(nil), values...)
	} else {
		outcome = sampler.Complete(values[0])
		v := values[0]
		record.Value = &v
	}

	if plan.Constraints != nil {
		c, err := plan.Constraints(params)
		if err != nil {
			return record, sampler.Outcome{}, fmt.Errorf("constraints: %w", err)
		}
		record.Constraint = append([]float64(nil), c...)
	}
	return record, outcome, nil
}

func (d *Driver) tell(run RunInfo, study sampler.Study, dl delivery, depth int) error {
	if err := study.Tell(dl.trial, dl.outcome); err != nil {
		return fmt.Errorf("tell: %w", err)
	}
	d.notify(func(o Observer) { o.OnTell(run, dl.trial.Number(), dl.outcome.State, depth) })
	return nil
}

func (d *Driver) notify(fn func(Observer)) {
	for _, o := range d.observers {
		fn(o)
	}
}
