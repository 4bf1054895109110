package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/objective"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/logger"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// fakeStudy hands out the low end of every domain, or the enqueued value,
// and logs the protocol as it happens.
type fakeStudy struct {
	dirs     []models.Direction
	queued   []models.Params
	asked    int
	events   []string
	outcomes map[int]sampler.Outcome
	reports  map[int][]int
}

func newFakeStudy(dirs ...models.Direction) *fakeStudy {
	if len(dirs) == 0 {
		dirs = []models.Direction{models.Minimize}
	}
	return &fakeStudy{
		dirs:     dirs,
		outcomes: make(map[int]sampler.Outcome),
		reports:  make(map[int][]int),
	}
}

func (s *fakeStudy) Ask() (sampler.Trial, error) {
	t := &fakeTrial{study: s, number: s.asked}
	if s.asked < len(s.queued) {
		t.fixed = s.queued[s.asked]
	}
	s.asked++
	s.events = append(s.events, fmt.Sprintf("ask%d", t.number))
	return t, nil
}

func (s *fakeStudy) Tell(t sampler.Trial, o sampler.Outcome) error {
	ft, ok := t.(*fakeTrial)
	if !ok || ft.study != s {
		return sampler.ErrForeignTrial
	}
	if _, done := s.outcomes[ft.number]; done {
		return sampler.ErrTrialFinished
	}
	s.outcomes[ft.number] = o
	s.events = append(s.events, fmt.Sprintf("tell%d", ft.number))
	return nil
}

func (s *fakeStudy) Enqueue(p models.Params) error {
	s.queued = append(s.queued, p)
	return nil
}

func (s *fakeStudy) Directions() []models.Direction {
	return s.dirs
}

type fakeTrial struct {
	study  *fakeStudy
	number int
	fixed  models.Params
}

func (t *fakeTrial) Number() int { return t.number }

func (t *fakeTrial) Suggest(name string, d space.Domain) (models.ParamValue, error) {
	if v, ok := t.fixed.Get(name); ok {
		return v, nil
	}
	if d.Kind == space.KindCategorical {
		return models.Text(d.Choices[t.number%len(d.Choices)]), nil
	}
	return models.Number(d.Low), nil
}

func (t *fakeTrial) Report(step int, value float64) error {
	t.study.reports[t.number] = append(t.study.reports[t.number], step)
	return nil
}

// scripted returns one value per trial from a fixed script
type scripted struct {
	values [][]float64
	calls  int
	err    error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Arity() int { return len(s.values[0]) }

func (s *scripted) Evaluate(models.Params) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v, nil
}

// recorder counts observer events
type recorder struct {
	NopObserver
	asks, reports, tells int
	maxDepth             int
}

func (r *recorder) OnAsk(RunInfo, int) { r.asks++ }

func (r *recorder) OnReport(RunInfo, int, int, float64) { r.reports++ }

func (r *recorder) OnTell(RunInfo, int, models.TrialState, int) { r.tells++ }

func (r *recorder) OnRunComplete(_ RunInfo, maxDepth int) { r.maxDepth = maxDepth }

func quietDriver(observers ...Observer) *Driver {
	return NewDriver(logger.NewText("error", io.Discard), observers...)
}

func numericPlan(n, lag int) Plan {
	return Plan{
		Scenario:  "test",
		Seed:      0,
		Trials:    n,
		TellLag:   lag,
		Space:     space.Numeric,
		Objective: &scripted{values: [][]float64{{1}}},
	}
}

func TestRunTellOrder(t *testing.T) {
	tests := []struct {
		name   string
		lag    int
		n      int
		events []string
	}{
		{"no lag", 0, 3, []string{"ask0", "tell0", "ask1", "tell1", "ask2", "tell2"}},
		{"lag two", 2, 5, []string{
			"ask0", "ask1", "ask2", "tell0", "ask3", "tell1", "ask4", "tell2", "tell3", "tell4",
		}},
		{"lag beyond budget", 4, 2, []string{"ask0", "ask1", "tell0", "tell1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			study := newFakeStudy()
			rec := &recorder{}
			records, err := quietDriver(rec).Run(context.Background(), study, numericPlan(tt.n, tt.lag))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(study.events, tt.events) {
				t.Errorf("events = %v, want %v", study.events, tt.events)
			}
			for i, r := range records {
				if r.Number != i {
					t.Errorf("records[%d].Number = %d", i, r.Number)
				}
			}
			if rec.asks != tt.n || rec.tells != tt.n {
				t.Errorf("observer saw %d asks, %d tells; want %d each", rec.asks, rec.tells, tt.n)
			}
			if want := min(tt.lag+1, tt.n); rec.maxDepth != want {
				t.Errorf("maxDepth = %d, want %d", rec.maxDepth, want)
			}
		})
	}
}

func TestRunRecordsSingleObjective(t *testing.T) {
	study := newFakeStudy()
	records, err := quietDriver().Run(context.Background(), study, numericPlan(2, 0))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, r := range records {
		if r.Value == nil || *r.Value != 1 {
			t.Errorf("trial %d value = %v, want 1", r.Number, r.Value)
		}
		if r.Values != nil || r.Constraint != nil {
			t.Errorf("trial %d has values %v constraint %v, want nil", r.Number, r.Values, r.Constraint)
		}
		if r.IntermediateValues == nil || len(r.IntermediateValues) != 0 {
			t.Errorf("trial %d intermediate values = %#v, want empty", r.Number, r.IntermediateValues)
		}
		if got := r.Params.Names(); !reflect.DeepEqual(got, []string{"x", "y", "log_u"}) {
			t.Errorf("param order = %v", got)
		}
	}
	if o := study.outcomes[0]; o.State != models.TrialStateComplete || o.Value == nil || *o.Value != 1 {
		t.Errorf("told outcome = %+v", o)
	}
}

func TestRunMultiObjective(t *testing.T) {
	study := newFakeStudy(models.Minimize, models.Maximize)
	plan := Plan{
		Scenario:  "multi",
		Trials:    3,
		Space:     space.Group,
		Objective: &scripted{values: [][]float64{{1, 2}}},
	}
	records, err := quietDriver().Run(context.Background(), study, plan)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, r := range records {
		if r.Value != nil || len(r.Values) != 2 {
			t.Errorf("trial %d value=%v values=%v, want nil and two values", r.Number, r.Value, r.Values)
		}
	}
	if len(study.outcomes[1].Values) != 2 {
		t.Errorf("told outcome = %+v, want two values", study.outcomes[1])
	}
}

func TestRunPruningAndConstraints(t *testing.T) {
	study := newFakeStudy()
	rec := &recorder{}
	obj := &scripted{values: [][]float64{{0.5}, {1.2}}}
	plan := Plan{
		Scenario:    "pruning",
		Trials:      4,
		TellLag:     1,
		Space:       space.Core,
		Objective:   obj,
		Pruning:     &objective.DefaultPruning,
		Constraints: objective.XYExcess,
	}
	records, err := quietDriver(rec).Run(context.Background(), study, plan)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, r := range records {
		if i%2 == 0 {
			if r.State != models.TrialStateComplete || len(r.IntermediateValues) != 3 {
				t.Errorf("trial %d: state %s with %d intermediates, want complete with 3", i, r.State, len(r.IntermediateValues))
			}
			if r.Value == nil || *r.Value != 0.5 {
				t.Errorf("trial %d value = %v, want 0.5", i, r.Value)
			}
			// x=-5, y=1 satisfy both constraints
			if !reflect.DeepEqual(r.Constraint, []float64{0, 0}) {
				t.Errorf("trial %d constraint = %v, want [0 0]", i, r.Constraint)
			}
		} else {
			if r.State != models.TrialStatePruned || len(r.IntermediateValues) != 2 {
				t.Errorf("trial %d: state %s with %d intermediates, want pruned with 2", i, r.State, len(r.IntermediateValues))
			}
			if r.Value != nil || r.Values != nil || r.Constraint != nil {
				t.Errorf("pruned trial %d carries value=%v values=%v constraint=%v", i, r.Value, r.Values, r.Constraint)
			}
			if study.outcomes[i].State != models.TrialStatePruned {
				t.Errorf("trial %d told as %s, want pruned", i, study.outcomes[i].State)
			}
		}
	}
	if !reflect.DeepEqual(study.reports[1], []int{1, 2}) {
		t.Errorf("reported steps for pruned trial = %v, want [1 2]", study.reports[1])
	}
	if rec.reports != 3+2+3+2 {
		t.Errorf("observer saw %d reports, want 10", rec.reports)
	}
}

func TestRunEnqueued(t *testing.T) {
	study := newFakeStudy()
	plan := Plan{
		Scenario:  "enqueued",
		Trials:    4,
		Space:     space.Core,
		Enqueued:  space.EnqueuedCore(),
		Objective: &scripted{values: [][]float64{{1}}},
	}
	records, err := quietDriver().Run(context.Background(), study, plan)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, want := range space.EnqueuedCore() {
		if !records[i].Params.Equal(want) {
			t.Errorf("trial %d params = %v, want %v", i, records[i].Params, want)
		}
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("objective failure", func(t *testing.T) {
		plan := numericPlan(3, 0)
		plan.Scenario = "failing"
		plan.Seed = 4
		plan.Objective = &scripted{values: [][]float64{{1}}, err: boom}
		_, err := quietDriver().Run(context.Background(), newFakeStudy(), plan)

		var te *TrialError
		if !errors.As(err, &te) {
			t.Fatalf("Run() error = %v, want TrialError", err)
		}
		if te.Scenario != "failing" || te.Seed != 4 || te.Trial != 0 {
			t.Errorf("TrialError = %+v", te)
		}
		if !errors.Is(err, boom) {
			t.Errorf("TrialError does not unwrap to the cause: %v", err)
		}
	})

	t.Run("arity mismatch", func(t *testing.T) {
		plan := numericPlan(1, 0)
		plan.Objective = &scripted{values: [][]float64{{1, 2}}}
		if _, err := quietDriver().Run(context.Background(), newFakeStudy(), plan); err == nil {
			t.Error("expected error when objective arity differs from directions")
		}
	})

	t.Run("invalid plan", func(t *testing.T) {
		plan := numericPlan(0, 0)
		if _, err := quietDriver().Run(context.Background(), newFakeStudy(), plan); err == nil {
			t.Error("expected error for empty budget")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := quietDriver().Run(ctx, newFakeStudy(), numericPlan(2, 0))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}
