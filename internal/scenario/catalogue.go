// Package scenario holds the fixed catalogue of fixture scenarios and runs
// them, one fresh study per scenario and seed.
package scenario

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/objective"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/config"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Budget selects one of the configured trial budgets
type Budget string

const (
	BudgetDefault  Budget = "default"
	BudgetExtended Budget = "extended"
	BudgetEnqueued Budget = "enqueued"
)

// Definition is one catalogue entry
type Definition struct {
	Name        string
	TellLag     int
	Directions  []models.Direction
	Space       space.Name
	Objective   objective.Type
	Budget      Budget
	Enqueued    bool
	Pruning     bool
	Constraints bool

	// Configure applies sampler overrides on top of the base options
	Configure func(o *sampler.Options)
}

var (
	minimize      = []models.Direction{models.Minimize}
	maximize      = []models.Direction{models.Maximize}
	minimizeBoth  = []models.Direction{models.Minimize, models.Minimize}
	mixedMultiObj = []models.Direction{models.Minimize, models.Maximize}
)

// Catalogue returns every scenario in fixture order
func Catalogue() []Definition {
	return []Definition{
		{Name: "core_single_objective", Directions: minimize, Space: space.NameCore,
			Objective: objective.TypeSingle, Budget: BudgetDefault},
		{Name: "single_objective_enqueued_trials", Directions: minimize, Space: space.NameCore,
			Objective: objective.TypeSingle, Budget: BudgetEnqueued, Enqueued: true},
		{Name: "single_objective_maximize_numeric", Directions: maximize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended},
		{Name: "single_objective_prior_weight", Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.PriorWeight = 0.2 }},
		{Name: "single_objective_magic_clip_endpoints", Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) {
				o.ConsiderMagicClip = false
				o.ConsiderEndpoints = true
			}},
		{Name: "single_objective_gamma_custom", Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.Gamma = CustomGamma }},
		{Name: "single_objective_weights_custom", Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.Weights = CustomWeights }},
		{Name: "single_objective_n_ei_candidates_custom", Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.EICandidates = 64 }},
		{Name: "single_objective_high_startup", Directions: minimize, Space: space.NameCore,
			Objective: objective.TypeSingle, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.StartupTrials = 30 }},
		{Name: "single_objective_multivariate", Directions: minimize, Space: space.NameCore,
			Objective: objective.TypeSingle, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.Multivariate = true }},
		{Name: "single_objective_group", Directions: minimize, Space: space.NameGroup,
			Objective: objective.TypeSingleGroup, Budget: BudgetExtended,
			Configure: grouped},
		{Name: "single_objective_dynamic_independent", Directions: minimize, Space: space.NameGroup,
			Objective: objective.TypeSingleGroup, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.StartupTrials = 30 }},
		{Name: "multi_objective_group", Directions: minimizeBoth, Space: space.NameGroup,
			Objective: objective.TypeMulti, Budget: BudgetDefault,
			Configure: grouped},
		{Name: "multi_objective_dynamic_independent", Directions: minimizeBoth, Space: space.NameGroup,
			Objective: objective.TypeMulti, Budget: BudgetDefault,
			Configure: func(o *sampler.Options) { o.StartupTrials = 30 }},
		{Name: "multi_objective_mixed_directions", Directions: mixedMultiObj, Space: space.NameGroup,
			Objective: objective.TypeMulti, Budget: BudgetExtended,
			Configure: grouped},
		{Name: "constant_liar_delayed_single", TellLag: 2, Directions: minimize, Space: space.NameNumeric,
			Objective: objective.TypeSingleNumeric, Budget: BudgetExtended,
			Configure: func(o *sampler.Options) { o.ConstantLiar = true }},
		{Name: "constraints_pruning_constant_liar", TellLag: 1, Directions: minimize, Space: space.NameCore,
			Objective: objective.TypeSingle, Budget: BudgetDefault, Pruning: true, Constraints: true,
			Configure: func(o *sampler.Options) { o.ConstantLiar = true }},
	}
}

func grouped(o *sampler.Options) {
	o.Multivariate = true
	o.Group = true
}

// CustomGamma is min(32, ceil(0.2n))
func CustomGamma(n int) int {
	return int(math.Min(32, math.Ceil(0.2*float64(n))))
}

// CustomWeights weights the i-th oldest observation (i+1)^2
func CustomWeights(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64((i + 1) * (i + 1))
	}
	return out
}

// Lookup returns the catalogue entry with the given name
func Lookup(name string) (Definition, bool) {
	for _, d := range Catalogue() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Select returns the catalogue entries the config asks for, in catalogue
// order. Unknown names are an error.
func Select(cfg *config.Config) ([]Definition, error) {
	for _, name := range cfg.Scenarios {
		if _, ok := Lookup(name); !ok {
			return nil, &config.ValidationError{Field: "scenarios", Message: fmt.Sprintf("unknown scenario %q", name)}
		}
	}
	var out []Definition
	for _, d := range Catalogue() {
		if cfg.Wants(d.Name) {
			out = append(out, d)
		}
	}
	return out, nil
}

// TrialBudget resolves the definition's budget against the configured ones
func (d Definition) TrialBudget(t config.Trials) int {
	switch d.Budget {
	case BudgetExtended:
		return t.Extended
	case BudgetEnqueued:
		return t.Enqueued
	default:
		return t.Default
	}
}

// Options returns the sampler options for one seed
func (d Definition) Options(seed int) sampler.Options {
	o := sampler.DefaultOptions()
	o.Seed = int64(seed)
	o.Directions = append([]models.Direction(nil), d.Directions...)
	if d.Constraints {
		o.Constraints = objective.XYExcess
	}
	if d.Configure != nil {
		d.Configure(&o)
	}
	return o
}

// Plan builds the harness plan for one seed and budget
func (d Definition) Plan(seed, trials int) (harness.Plan, error) {
	desc, err := space.Lookup(string(d.Space))
	if err != nil {
		return harness.Plan{}, fmt.Errorf("scenario %s: %w", d.Name, err)
	}
	obj, err := objective.New(string(d.Objective))
	if err != nil {
		return harness.Plan{}, fmt.Errorf("scenario %s: %w", d.Name, err)
	}

	plan := harness.Plan{
		Scenario:  d.Name,
		Seed:      seed,
		Trials:    trials,
		TellLag:   d.TellLag,
		Space:     desc,
		Objective: obj,
	}
	if d.Enqueued {
		plan.Enqueued = space.EnqueuedCore()
	}
	if d.Pruning {
		schedule := objective.DefaultPruning
		plan.Pruning = &schedule
	}
	if d.Constraints {
		plan.Constraints = objective.XYExcess
	}
	return plan, nil
}
