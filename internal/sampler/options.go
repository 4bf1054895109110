package sampler

import (
	"fmt"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// GammaFunc maps the number of finished trials to the size of the "good" set
type GammaFunc func(n int) int

// WeightsFunc maps an observation count to one weight per observation
type WeightsFunc func(n int) []float64

// ConstraintsFunc maps a finished trial's assignment to its constraint vector
type ConstraintsFunc func(params models.Params) ([]float64, error)

// Options are the construction-time sampler settings. Nil funcs select the
// implementation's defaults.
type Options struct {
	Seed              int64
	Directions        []models.Direction
	StartupTrials     int
	EICandidates      int
	PriorWeight       float64
	Multivariate      bool
	Group             bool
	ConstantLiar      bool
	ConsiderEndpoints bool
	ConsiderMagicClip bool
	Gamma             GammaFunc
	Weights           WeightsFunc
	Constraints       ConstraintsFunc
}

// DefaultOptions returns the base settings shared by every scenario
func DefaultOptions() Options {
	return Options{
		Directions:        []models.Direction{models.Minimize},
		StartupTrials:     10,
		EICandidates:      24,
		PriorWeight:       1.0,
		ConsiderMagicClip: true,
	}
}

// Validate reports configuration errors before any trial runs
func (o Options) Validate() error {
	if len(o.Directions) == 0 {
		return &ConfigError{Field: "directions", Reason: "at least one direction is required"}
	}
	for i, d := range o.Directions {
		if !d.Valid() {
			return &ConfigError{Field: fmt.Sprintf("directions[%d]", i), Reason: fmt.Sprintf("unknown direction %q", d)}
		}
	}
	if o.Seed < 0 {
		return &ConfigError{Field: "seed", Reason: fmt.Sprintf("must be non-negative, got %d", o.Seed)}
	}
	if o.StartupTrials < 0 {
		return &ConfigError{Field: "startup_trials", Reason: fmt.Sprintf("must be non-negative, got %d", o.StartupTrials)}
	}
	if o.EICandidates <= 0 {
		return &ConfigError{Field: "ei_candidates", Reason: fmt.Sprintf("must be positive, got %d", o.EICandidates)}
	}
	if o.PriorWeight < 0 {
		return &ConfigError{Field: "prior_weight", Reason: fmt.Sprintf("must be non-negative, got %v", o.PriorWeight)}
	}
	if o.Group && !o.Multivariate {
		return &ConfigError{Field: "group", Reason: "group sampling requires multivariate"}
	}
	return nil
}

// ConfigError indicates invalid sampler options
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid sampler option %s: %s", e.Field, e.Reason)
}
