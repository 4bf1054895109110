package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/config"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/logger"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Job is one scenario run under one seed
type Job struct {
	Definition Definition
	Seed       int
	Trials     int
}

// Jobs expands definitions and seeds into jobs, scenario-major
func Jobs(defs []Definition, seeds []int, budgets config.Trials) []Job {
	jobs := make([]Job, 0, len(defs)*len(seeds))
	for _, d := range defs {
		n := d.TrialBudget(budgets)
		for _, seed := range seeds {
			jobs = append(jobs, Job{Definition: d, Seed: seed, Trials: n})
		}
	}
	return jobs
}

// Runner executes jobs against a sampler library
type Runner struct {
	library     sampler.Library
	driver      *harness.Driver
	parallelism int
	logger      *slog.Logger
}

// NewRunner creates a runner. Parallelism below 1 runs jobs one at a time.
func NewRunner(library sampler.Library, driver *harness.Driver, parallelism int, log *slog.Logger) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if log == nil {
		log = logger.Default
	}
	return &Runner{library: library, driver: driver, parallelism: parallelism, logger: log}
}

// Validate checks every job's sampler options and plan. No study is created.
func (r *Runner) Validate(jobs []Job) error {
	if r.library.NewStudy == nil {
		return fmt.Errorf("sampler library %q has no study factory", r.library.Name)
	}
	for _, job := range jobs {
		if err := job.Definition.Options(job.Seed).Validate(); err != nil {
			return fmt.Errorf("scenario %s seed %d: %w", job.Definition.Name, job.Seed, err)
		}
		plan, err := job.Definition.Plan(job.Seed, job.Trials)
		if err != nil {
			return err
		}
		if err := plan.Validate(); err != nil {
			return fmt.Errorf("scenario %s seed %d: %w", job.Definition.Name, job.Seed, err)
		}
	}
	return nil
}

// Run validates all jobs, then executes them with at most parallelism runs
// in flight. Results are returned in job order. The first failure cancels
// the remaining runs.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]models.ScenarioRun, error) {
	if err := r.Validate(jobs); err != nil {
		return nil, err
	}
	r.logger.Info("starting generation", "runs", len(jobs), "parallelism", r.parallelism,
		"library", r.library.Name, "version", r.library.Version)

	results := make([]models.ScenarioRun, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, job := range jobs {
		g.Go(func() error {
			run, err := r.RunOne(gctx, job)
			if err != nil {
				return err
			}
			results[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunOne executes a single job on a fresh study
func (r *Runner) RunOne(ctx context.Context, job Job) (models.ScenarioRun, error) {
	study, err := r.library.NewStudy(job.Definition.Options(job.Seed))
	if err != nil {
		return models.ScenarioRun{}, fmt.Errorf("scenario %s seed %d: %w", job.Definition.Name, job.Seed, err)
	}
	plan, err := job.Definition.Plan(job.Seed, job.Trials)
	if err != nil {
		return models.ScenarioRun{}, err
	}
	records, err := r.driver.Run(ctx, study, plan)
	if err != nil {
		return models.ScenarioRun{}, err
	}
	return models.ScenarioRun{Seed: job.Seed, Trials: records}, nil
}

// Group folds job-ordered runs into scenarios. Consecutive jobs of the same
// definition share one scenario entry.
func Group(jobs []Job, runs []models.ScenarioRun) []models.Scenario {
	var out []models.Scenario
	for i, job := range jobs {
		d := job.Definition
		if n := len(out); n == 0 || out[n-1].Name != d.Name {
			out = append(out, models.Scenario{
				Name:                d.Name,
				TellLag:             d.TellLag,
				ObjectiveDirections: append([]models.Direction(nil), d.Directions...),
			})
		}
		last := &out[len(out)-1]
		last.Runs = append(last.Runs, runs[i])
	}
	return out
}

// Generate runs every definition under every seed and returns the scenarios
// in catalogue order.
func (r *Runner) Generate(ctx context.Context, defs []Definition, seeds []int, budgets config.Trials) ([]models.Scenario, error) {
	jobs := Jobs(defs, seeds, budgets)
	runs, err := r.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return Group(jobs, runs), nil
}

// Replay rebuilds the jobs that produced an existing fixture: the recorded
// seeds, each with its recorded trial count. Unknown scenario names are an
// error.
func Replay(f *models.Fixture) ([]Job, error) {
	var jobs []Job
	for _, sc := range f.Scenarios {
		d, ok := Lookup(sc.Name)
		if !ok {
			return nil, fmt.Errorf("fixture scenario %q is not in the catalogue", sc.Name)
		}
		for _, run := range sc.Runs {
			jobs = append(jobs, Job{Definition: d, Seed: run.Seed, Trials: len(run.Trials)})
		}
	}
	return jobs, nil
}
