package scenario

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler/tpe"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/config"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/logger"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

var smallBudgets = config.Trials{Default: 14, Extended: 12, Enqueued: 8}

func quietRunner(lib sampler.Library, parallelism int) *Runner {
	log := logger.NewText("error", io.Discard)
	return NewRunner(lib, harness.NewDriver(log), parallelism, log)
}

func pick(t *testing.T, names ...string) []Definition {
	t.Helper()
	var defs []Definition
	for _, n := range names {
		d, ok := Lookup(n)
		if !ok {
			t.Fatalf("Scenario %s not found", n)
		}
		defs = append(defs, d)
	}
	return defs
}

func TestJobsAndGroup(t *testing.T) {
	defs := pick(t, "core_single_objective", "single_objective_enqueued_trials")
	jobs := Jobs(defs, []int{0, 1, 2}, smallBudgets)
	if len(jobs) != 6 {
		t.Fatalf("Expected 6 jobs, got %d", len(jobs))
	}
	if jobs[0].Trials != 14 || jobs[3].Trials != 8 {
		t.Errorf("Unexpected budgets %d and %d", jobs[0].Trials, jobs[3].Trials)
	}
	if jobs[4].Seed != 1 || jobs[4].Definition.Name != "single_objective_enqueued_trials" {
		t.Errorf("Unexpected job order: %+v", jobs[4])
	}

	runs := make([]models.ScenarioRun, len(jobs))
	for i, j := range jobs {
		runs[i] = models.ScenarioRun{Seed: j.Seed}
	}
	scenarios := Group(jobs, runs)
	if len(scenarios) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(scenarios))
	}
	for _, sc := range scenarios {
		if len(sc.Runs) != 3 {
			t.Errorf("%s: expected 3 runs, got %d", sc.Name, len(sc.Runs))
		}
		for i, r := range sc.Runs {
			if r.Seed != i {
				t.Errorf("%s: run %d has seed %d", sc.Name, i, r.Seed)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	defs := pick(t,
		"core_single_objective",
		"single_objective_enqueued_trials",
		"multi_objective_group",
		"constant_liar_delayed_single",
		"constraints_pruning_constant_liar",
	)
	seeds := []int{0, 1}

	sequential, err := quietRunner(tpe.Library(), 1).Generate(context.Background(), defs, seeds, smallBudgets)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(sequential) != len(defs) {
		t.Fatalf("Expected %d scenarios, got %d", len(defs), len(sequential))
	}

	for i, sc := range sequential {
		d := defs[i]
		if sc.Name != d.Name || sc.TellLag != d.TellLag {
			t.Errorf("Scenario %d: got %s lag %d", i, sc.Name, sc.TellLag)
		}
		for _, run := range sc.Runs {
			if len(run.Trials) != d.TrialBudget(smallBudgets) {
				t.Errorf("%s seed %d: %d trials", sc.Name, run.Seed, len(run.Trials))
			}
			for n, rec := range run.Trials {
				if rec.Number != n {
					t.Errorf("%s seed %d: trial %d numbered %d", sc.Name, run.Seed, n, rec.Number)
				}
			}
		}
	}

	t.Run("parallel matches sequential", func(t *testing.T) {
		parallel, err := quietRunner(tpe.Library(), 4).Generate(context.Background(), defs, seeds, smallBudgets)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !reflect.DeepEqual(sequential, parallel) {
			t.Error("Parallel generation differs from sequential generation")
		}
	})

	t.Run("replay rebuilds jobs", func(t *testing.T) {
		jobs, err := Replay(&models.Fixture{Scenarios: sequential})
		if err != nil {
			t.Fatalf("Replay failed: %v", err)
		}
		if len(jobs) != len(defs)*len(seeds) {
			t.Fatalf("Expected %d jobs, got %d", len(defs)*len(seeds), len(jobs))
		}
		runs, err := quietRunner(tpe.Library(), 2).Run(context.Background(), jobs)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !reflect.DeepEqual(Group(jobs, runs), sequential) {
			t.Error("Replayed runs differ from the generated ones")
		}
	})
}

func TestRunValidatesBeforeRunning(t *testing.T) {
	var created atomic.Int32
	lib := tpe.Library()
	inner := lib.NewStudy
	lib.NewStudy = func(o sampler.Options) (sampler.Study, error) {
		created.Add(1)
		return inner(o)
	}

	good, _ := Lookup("core_single_objective")
	bad := good
	bad.Name = "bad_candidates"
	bad.Configure = func(o *sampler.Options) { o.EICandidates = 0 }

	jobs := Jobs([]Definition{good, bad}, []int{0}, smallBudgets)
	_, err := quietRunner(lib, 1).Run(context.Background(), jobs)
	var cerr *sampler.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if created.Load() != 0 {
		t.Errorf("Expected no study to be created, got %d", created.Load())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := Jobs(pick(t, "core_single_objective"), []int{0}, smallBudgets)
	_, err := quietRunner(tpe.Library(), 1).Run(ctx, jobs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestReplayUnknownScenario(t *testing.T) {
	f := &models.Fixture{Scenarios: []models.Scenario{{Name: "gone"}}}
	if _, err := Replay(f); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}
