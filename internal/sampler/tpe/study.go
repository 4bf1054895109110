// Package tpe implements a Tree-structured Parzen Estimator study with an
// ask/tell interface.
package tpe

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/utils"
)

type trialState int

const (
	stateWaiting trialState = iota
	stateRunning
	stateComplete
	statePruned
)

func (s trialState) finished() bool {
	return s == stateComplete || s == statePruned
}

// frozenTrial is the study's record of one trial
type frozenTrial struct {
	number       int
	state        trialState
	order        []string
	params       map[string]models.ParamValue
	domains      map[string]space.Domain
	fixed        models.Params
	values       []float64
	intermediate map[int]float64
	constraints  []float64

	relativeDone  bool
	relativeSpace searchSpace
	relative      map[string]models.ParamValue
}

func newFrozenTrial(number int, state trialState, fixed models.Params) *frozenTrial {
	return &frozenTrial{
		number:       number,
		state:        state,
		params:       make(map[string]models.ParamValue),
		domains:      make(map[string]space.Domain),
		fixed:        fixed,
		intermediate: make(map[int]float64),
	}
}

func (t *frozenTrial) record(name string, d space.Domain, v models.ParamValue) {
	t.order = append(t.order, name)
	t.params[name] = v
	t.domains[name] = d
}

// assignment returns the suggested parameters in suggestion order
func (t *frozenTrial) assignment() models.Params {
	out := make(models.Params, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, models.Param{Name: name, Value: t.params[name]})
	}
	return out
}

// observed returns the values a trial contributes to an estimator. Running
// trials of a multivariate study also expose their pending relative sample.
func (t *frozenTrial) observed(multivariate bool) map[string]models.ParamValue {
	if t.state.finished() || !multivariate || len(t.relative) == 0 {
		return t.params
	}
	out := make(map[string]models.ParamValue, len(t.relative)+len(t.params))
	for name, v := range t.relative {
		out[name] = v
	}
	for name, v := range t.params {
		out[name] = v
	}
	return out
}

// Study is a single-threaded TPE optimization session
type Study struct {
	opts      sampler.Options
	gamma     sampler.GammaFunc
	estimator estimatorParams
	rng       *utils.RandSource
	random    *utils.RandSource
	trials    []*frozenTrial
}

// New creates a study. Identical options always produce identical
// suggestion sequences.
func New(opts sampler.Options) (*Study, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	gamma := opts.Gamma
	if gamma == nil {
		gamma = DefaultGamma
	}
	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights
	}
	opts.Directions = append([]models.Direction(nil), opts.Directions...)

	rng := utils.NewRandSource(opts.Seed)
	return &Study{
		opts:  opts,
		gamma: gamma,
		estimator: estimatorParams{
			priorWeight:       opts.PriorWeight,
			considerMagicClip: opts.ConsiderMagicClip,
			considerEndpoints: opts.ConsiderEndpoints,
			multivariate:      opts.Multivariate,
			weights:           weights,
		},
		rng:    rng,
		random: rng.Derive(1),
	}, nil
}

// NewStudy is the sampler.Factory for TPE studies
func NewStudy(opts sampler.Options) (sampler.Study, error) {
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Directions returns a copy of the study's objective directions
func (s *Study) Directions() []models.Direction {
	return append([]models.Direction(nil), s.opts.Directions...)
}

// Enqueue appends a waiting trial whose parameters named in p are fixed
func (s *Study) Enqueue(p models.Params) error {
	seen := make(map[string]bool, len(p))
	for _, prm := range p {
		if prm.Name == "" {
			return fmt.Errorf("enqueue: empty parameter name")
		}
		if seen[prm.Name] {
			return fmt.Errorf("enqueue: duplicate parameter %q", prm.Name)
		}
		seen[prm.Name] = true
	}
	fixed := append(models.Params(nil), p...)
	s.trials = append(s.trials, newFrozenTrial(len(s.trials), stateWaiting, fixed))
	return nil
}

// Ask starts the oldest waiting trial, or a new one if none is waiting
func (s *Study) Ask() (sampler.Trial, error) {
	for _, t := range s.trials {
		if t.state == stateWaiting {
			t.state = stateRunning
			return &trial{study: s, ft: t}, nil
		}
	}
	t := newFrozenTrial(len(s.trials), stateRunning, nil)
	s.trials = append(s.trials, t)
	return &trial{study: s, ft: t}, nil
}

// Tell finishes a running trial
func (s *Study) Tell(st sampler.Trial, o sampler.Outcome) error {
	tr, ok := st.(*trial)
	if !ok || tr.study != s {
		return sampler.ErrForeignTrial
	}
	ft := tr.ft
	if ft.state != stateRunning {
		return fmt.Errorf("tell trial %d: %w", ft.number, sampler.ErrTrialFinished)
	}

	switch o.State {
	case models.TrialStateComplete:
		values, err := s.completeValues(ft.number, o)
		if err != nil {
			return err
		}
		ft.values = values
		ft.state = stateComplete
	case models.TrialStatePruned:
		ft.state = statePruned
	default:
		return &sampler.OutcomeError{Trial: ft.number, Reason: fmt.Sprintf("unknown state %q", o.State)}
	}

	if s.opts.Constraints == nil {
		return nil
	}
	c, err := s.opts.Constraints(ft.assignment())
	if err != nil {
		return fmt.Errorf("constraints for trial %d: %w", ft.number, err)
	}
	for _, v := range c {
		if math.IsNaN(v) {
			return fmt.Errorf("constraints for trial %d: %w", ft.number, errNaNConstraint)
		}
	}
	ft.constraints = append([]float64{}, c...)
	return nil
}

var errNaNConstraint = errors.New("constraint values cannot be NaN")

func (s *Study) completeValues(number int, o sampler.Outcome) ([]float64, error) {
	var values []float64
	if len(s.opts.Directions) > 1 {
		if len(o.Values) != len(s.opts.Directions) {
			return nil, &sampler.OutcomeError{
				Trial:  number,
				Reason: fmt.Sprintf("expected %d values, got %d", len(s.opts.Directions), len(o.Values)),
			}
		}
		values = append([]float64(nil), o.Values...)
	} else {
		if o.Value == nil {
			return nil, &sampler.OutcomeError{Trial: number, Reason: "single-objective complete requires a value"}
		}
		values = []float64{*o.Value}
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return nil, &sampler.OutcomeError{Trial: number, Reason: "objective value is NaN"}
		}
	}
	return values, nil
}

// trial is the handle returned by Ask
type trial struct {
	study *Study
	ft    *frozenTrial
}

func (t *trial) Number() int {
	return t.ft.number
}

// Report records an intermediate value, overwriting any earlier report at step
func (t *trial) Report(step int, value float64) error {
	if t.ft.state != stateRunning {
		return fmt.Errorf("report trial %d: %w", t.ft.number, sampler.ErrTrialFinished)
	}
	if step < 0 {
		return fmt.Errorf("report trial %d: step must be non-negative, got %d", t.ft.number, step)
	}
	t.ft.intermediate[step] = value
	return nil
}

func (t *trial) Suggest(name string, d space.Domain) (models.ParamValue, error) {
	return t.study.suggest(t.ft, name, d)
}

func (s *Study) suggest(ft *frozenTrial, name string, d space.Domain) (models.ParamValue, error) {
	if ft.state != stateRunning {
		return models.ParamValue{}, fmt.Errorf("suggest %s on trial %d: %w", name, ft.number, sampler.ErrTrialFinished)
	}
	if err := d.Validate(); err != nil {
		return models.ParamValue{}, namedDomainError(err, name)
	}

	if v, ok := ft.params[name]; ok {
		if !ft.domains[name].Equal(d) {
			return models.ParamValue{}, &space.DomainError{Param: name, Reason: "domain differs from the earlier suggestion in this trial"}
		}
		return v, nil
	}

	if fv, ok := ft.fixed.Get(name); ok {
		x, err := d.ToInternal(fv)
		if err != nil {
			return models.ParamValue{}, namedDomainError(err, name)
		}
		v := d.FromInternal(x)
		ft.record(name, d, v)
		return v, nil
	}

	if d.Single() {
		v := d.FromInternal(singleValue(d))
		ft.record(name, d, v)
		return v, nil
	}

	if err := s.prepareRelative(ft); err != nil {
		return models.ParamValue{}, err
	}
	if v, ok := ft.relative[name]; ok && ft.relativeSpace.has(name, d) {
		ft.record(name, d, v)
		return v, nil
	}

	x, err := s.sampleIndependent(ft, name, d)
	if err != nil {
		return models.ParamValue{}, err
	}
	v := d.FromInternal(x)
	ft.record(name, d, v)
	return v, nil
}

func singleValue(d space.Domain) float64 {
	if d.Kind == space.KindCategorical {
		return 0
	}
	return d.Low
}

func namedDomainError(err error, name string) error {
	var de *space.DomainError
	if errors.As(err, &de) && de.Param == "" {
		return &space.DomainError{Param: name, Reason: de.Reason}
	}
	return err
}

func (ss searchSpace) has(name string, d space.Domain) bool {
	for _, p := range ss {
		if p.name == name {
			return p.domain.Equal(d)
		}
	}
	return false
}

func (s *Study) finishedCount() int {
	n := 0
	for _, t := range s.trials {
		if t.state.finished() {
			n++
		}
	}
	return n
}
