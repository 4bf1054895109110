package tpe

import (
	"fmt"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/utils"
)

// prepareRelative samples the trial's joint parameters once, at its first
// free suggestion. Univariate studies and studies still in startup sample
// nothing jointly.
func (s *Study) prepareRelative(ft *frozenTrial) error {
	if ft.relativeDone {
		return nil
	}
	ft.relativeDone = true
	if !s.opts.Multivariate {
		return nil
	}

	var spaces []searchSpace
	if s.opts.Group {
		for _, g := range groupSpaces(s.trials) {
			spaces = append(spaces, withoutSingles(g))
		}
	} else {
		spaces = []searchSpace{withoutSingles(intersectionSpace(s.trials))}
	}
	for _, ss := range spaces {
		ft.relativeSpace = append(ft.relativeSpace, ss...)
	}

	if s.finishedCount() < s.opts.StartupTrials {
		return nil
	}
	relative := make(map[string]models.ParamValue)
	for _, ss := range spaces {
		if len(ss) == 0 {
			continue
		}
		picked, err := s.sample(ft, ss)
		if err != nil {
			return fmt.Errorf("relative sample for trial %d: %w", ft.number, err)
		}
		for _, p := range ss {
			relative[p.name] = p.domain.FromInternal(picked[p.name])
		}
	}
	ft.relative = relative
	return nil
}

// sampleIndependent samples one parameter on its own: uniformly during
// startup, otherwise by TPE over a one-parameter space.
func (s *Study) sampleIndependent(ft *frozenTrial, name string, d space.Domain) (float64, error) {
	if s.finishedCount() < s.opts.StartupTrials {
		return sampleRandom(s.random, d), nil
	}
	picked, err := s.sample(ft, searchSpace{{name: name, domain: d}})
	if err != nil {
		return 0, fmt.Errorf("sample %s for trial %d: %w", name, ft.number, err)
	}
	return picked[name], nil
}

// sample fits the below and above estimators over ss, draws candidates from
// below and keeps the one maximizing log l(x) - log g(x).
func (s *Study) sample(ft *frozenTrial, ss searchSpace) (map[string]float64, error) {
	var trials []*frozenTrial
	n := 0
	for _, t := range s.trials {
		switch {
		case t.state.finished():
			trials = append(trials, t)
			n++
		case s.opts.ConstantLiar && t.state == stateRunning && t.number != ft.number:
			trials = append(trials, t)
		}
	}

	below, above := splitTrials(trials, s.opts.Directions, s.gamma(n), s.opts.Constraints != nil)
	lower, err := s.fit(ss, below, true)
	if err != nil {
		return nil, fmt.Errorf("below estimator: %w", err)
	}
	upper, err := s.fit(ss, above, false)
	if err != nil {
		return nil, fmt.Errorf("above estimator: %w", err)
	}

	candidates := lower.sample(s.rng, s.opts.EICandidates)
	logL := lower.logPDF(candidates)
	logG := upper.logPDF(candidates)
	acq := make([]float64, len(logL))
	for i := range acq {
		acq[i] = logL[i] - logG[i]
	}
	best := utils.ArgMax(acq)
	if best < 0 {
		best = 0
	}

	out := make(map[string]float64, len(ss))
	for _, p := range ss {
		out[p.name] = candidates[p.name][best]
	}
	return out, nil
}

// fit builds a Parzen estimator from the trials that observed every
// parameter of ss. Below estimators of multi-objective studies are weighted
// by hypervolume contribution.
func (s *Study) fit(ss searchSpace, trials []*frozenTrial, isBelow bool) (*mixture, error) {
	obs := make(map[string][]float64, len(ss))
	for _, p := range ss {
		obs[p.name] = []float64{}
	}

	mask := make([]bool, len(trials))
	for i, t := range trials {
		row, ok := internalRow(t.observed(s.opts.Multivariate), ss)
		if !ok {
			continue
		}
		mask[i] = true
		for j, p := range ss {
			obs[p.name] = append(obs[p.name], row[j])
		}
	}

	var weights []float64
	if isBelow && len(s.opts.Directions) > 1 {
		all := belowWeights(trials, s.opts.Directions, s.opts.Constraints != nil)
		weights = make([]float64, 0, len(all))
		for i, w := range all {
			if mask[i] {
				weights = append(weights, w)
			}
		}
	}
	return newParzenEstimator(obs, ss, s.estimator, weights)
}

// internalRow converts a trial's values for ss to internal representation.
// It reports false if any parameter is missing or outside its domain.
func internalRow(params map[string]models.ParamValue, ss searchSpace) ([]float64, bool) {
	row := make([]float64, len(ss))
	for i, p := range ss {
		v, ok := params[p.name]
		if !ok {
			return nil, false
		}
		x, err := p.domain.ToInternal(v)
		if err != nil {
			return nil, false
		}
		row[i] = x
	}
	return row, true
}
