package tpe

import (
	"fmt"
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/utils"
)

// eps floors sigmas and below-weights
const eps = 1e-12

// DefaultGamma is min(ceil(0.1*n), 25)
func DefaultGamma(n int) int {
	return int(math.Min(math.Ceil(0.1*float64(n)), 25))
}

// DefaultWeights is all ones below 25 observations; above that, a linear
// ramp from 1/n to 1 over the oldest n-25 observations, then 25 ones.
func DefaultWeights(n int) []float64 {
	if n == 0 {
		return []float64{}
	}
	if n < 25 {
		return ones(n)
	}
	nRamp := n - 25
	ramp := make([]float64, 0, nRamp)
	if nRamp == 1 {
		ramp = append(ramp, 1/float64(n))
	} else {
		lo := 1 / float64(n)
		for i := 0; i < nRamp; i++ {
			ramp = append(ramp, lo+(1-lo)*float64(i)/float64(nRamp-1))
		}
	}
	return append(ramp, ones(25)...)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// param is a named domain inside a search space
type param struct {
	name   string
	domain space.Domain
}

// searchSpace is an ordered set of parameters sampled together
type searchSpace []param

func (s searchSpace) names() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.name
	}
	return out
}

// estimatorParams are the settings shared by every estimator of a sampler
type estimatorParams struct {
	priorWeight       float64
	considerMagicClip bool
	considerEndpoints bool
	multivariate      bool
	weights           func(n int) []float64
}

// kernels holds one parameter's per-component distributions. Numerical
// kernels live in transformed space (log for log domains) with bounds
// widened by half a step for discrete domains.
type kernels struct {
	param
	catWeights [][]float64
	mus        []float64
	sigmas     []float64
	low, high  float64
}

// mixture is a weighted mixture of product distributions
type mixture struct {
	weights []float64
	params  []kernels
}

// newParzenEstimator fits a mixture to observations (one column per
// parameter, internal representation). below, when non-nil, replaces the
// weights function.
func newParzenEstimator(obs map[string][]float64, ss searchSpace, p estimatorParams, below []float64) (*mixture, error) {
	if p.priorWeight < 0 {
		return nil, fmt.Errorf("prior weight must be non-negative, got %v", p.priorWeight)
	}

	n := 0
	if len(ss) > 0 {
		n = len(obs[ss[0].name])
	}

	var weights []float64
	if below != nil {
		if len(below) != n {
			return nil, fmt.Errorf("below weights length %d does not match %d observations", len(below), n)
		}
		weights = append([]float64(nil), below...)
	} else {
		w, err := callWeights(p.weights, n)
		if err != nil {
			return nil, err
		}
		weights = w
	}

	if n == 0 {
		weights = []float64{1}
	} else {
		weights = append(weights, p.priorWeight)
	}
	total := utils.Sum(weights)
	for i := range weights {
		weights[i] /= total
	}

	m := &mixture{weights: weights}
	for _, prm := range ss {
		column := obs[prm.name]
		var k kernels
		if prm.domain.Kind == space.KindCategorical {
			k = categoricalKernels(prm, column, p)
		} else {
			k = numericalKernels(prm, column, p, len(ss))
		}
		m.params = append(m.params, k)
	}
	return m, nil
}

func callWeights(fn func(int) []float64, n int) ([]float64, error) {
	if fn == nil {
		fn = DefaultWeights
	}
	w := fn(n)
	if len(w) < n {
		return nil, fmt.Errorf("weights function returned %d values for %d observations", len(w), n)
	}
	w = append([]float64(nil), w[:n]...)
	for _, v := range w {
		if v < 0 {
			return nil, fmt.Errorf("weights function cannot return negative values: %v", w)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("weights function cannot return inf or NaN values: %v", w)
		}
	}
	if n > 0 && utils.Sum(w) <= 0 {
		return nil, fmt.Errorf("weights function cannot return all-zero values: %v", w)
	}
	return w, nil
}

func categoricalKernels(prm param, column []float64, p estimatorParams) kernels {
	nChoices := len(prm.domain.Choices)
	k := kernels{param: prm}

	if len(column) == 0 {
		row := make([]float64, nChoices)
		for j := range row {
			row[j] = 1 / float64(nChoices)
		}
		k.catWeights = [][]float64{row}
		return k
	}

	nKernels := len(column) + 1
	k.catWeights = make([][]float64, nKernels)
	for i := range k.catWeights {
		row := make([]float64, nChoices)
		for j := range row {
			row[j] = p.priorWeight / float64(nKernels)
		}
		k.catWeights[i] = row
	}
	for i, v := range column {
		k.catWeights[i][int(v)] += 1
	}
	for _, row := range k.catWeights {
		sum := utils.Sum(row)
		if sum == 0 {
			continue
		}
		for j := range row {
			row[j] /= sum
		}
	}
	return k
}

func numericalKernels(prm param, column []float64, p estimatorParams, dims int) kernels {
	d := prm.domain
	low, high := d.Low, d.High
	if d.Discrete() {
		low -= d.Step / 2
		high = d.UpperGridPoint() + d.Step/2
	}

	mus := append([]float64(nil), column...)
	if d.Log {
		for i := range mus {
			mus[i] = math.Log(mus[i])
		}
		low, high = math.Log(low), math.Log(high)
	}

	var sigmas []float64
	if p.multivariate {
		sigma := 0.2 * math.Pow(math.Max(float64(len(mus)), 1), -1/float64(dims+4)) * (high - low)
		sigmas = make([]float64, len(mus))
		for i := range sigmas {
			sigmas[i] = sigma
		}
	} else {
		sigmas = neighbourSigmas(mus, low, high, p.considerEndpoints)
	}

	maxSigma := high - low
	minSigma := eps
	if p.considerMagicClip {
		nKernels := float64(len(mus) + 1)
		minSigma = (high - low) / math.Min(100, 1+nKernels)
	}
	for i := range sigmas {
		sigmas[i] = utils.ClampFloat64(sigmas[i], minSigma, maxSigma)
	}

	return kernels{
		param:  prm,
		mus:    append(mus, 0.5*(low+high)),
		sigmas: append(sigmas, high-low),
		low:    low,
		high:   high,
	}
}

// neighbourSigmas sets each sigma to the larger gap to its sorted neighbours,
// with the prior mean included and the bounds as outer neighbours.
func neighbourSigmas(mus []float64, low, high float64, considerEndpoints bool) []float64 {
	withPrior := append(append([]float64(nil), mus...), 0.5*(low+high))
	order := make([]int, len(withPrior))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return withPrior[order[a]] < withPrior[order[b]] })

	edges := make([]float64, 0, len(withPrior)+2)
	edges = append(edges, low)
	for _, i := range order {
		edges = append(edges, withPrior[i])
	}
	edges = append(edges, high)

	sorted := make([]float64, len(order))
	for i := range sorted {
		left := edges[i+1] - edges[i]
		right := edges[i+2] - edges[i+1]
		sorted[i] = math.Max(left, right)
	}
	if !considerEndpoints && len(edges) >= 4 {
		sorted[0] = edges[2] - edges[1]
		sorted[len(sorted)-1] = edges[len(edges)-2] - edges[len(edges)-3]
	}

	out := make([]float64, len(mus))
	for rank, i := range order {
		if i < len(mus) {
			out[i] = sorted[rank]
		}
	}
	return out
}

// sample draws size points from the mixture, one column per parameter in
// internal representation.
func (m *mixture) sample(rng *utils.RandSource, size int) map[string][]float64 {
	active := make([]int, size)
	for i := range active {
		active[i] = rng.Choice(m.weights)
	}

	out := make(map[string][]float64, len(m.params))
	for _, k := range m.params {
		col := make([]float64, size)
		if k.domain.Kind == space.KindCategorical {
			for row := range col {
				col[row] = float64(rng.Choice(k.catWeights[active[row]]))
			}
			out[k.name] = col
			continue
		}

		d := k.domain
		for row := range col {
			mu, sigma := k.mus[active[row]], k.sigmas[active[row]]
			a := (k.low - mu) / sigma
			b := (k.high - mu) / sigma
			x := truncnormPPF(rng.Float64(), a, b)*sigma + mu
			if d.Log {
				x = math.Exp(x)
			}
			if d.Discrete() {
				x = utils.ClampFloat64(utils.RoundToStep(x, d.Low, d.Step), d.Low, d.UpperGridPoint())
			} else {
				x = utils.ClampFloat64(x, d.Low, d.High)
			}
			col[row] = x
		}
		out[k.name] = col
	}
	return out
}

// logPDF evaluates the mixture log density at each sample
func (m *mixture) logPDF(samples map[string][]float64) []float64 {
	if len(m.params) == 0 {
		return nil
	}
	nSamples := len(samples[m.params[0].name])
	nWeights := len(m.weights)
	out := make([]float64, nSamples)
	component := make([]float64, nWeights)

	for s := 0; s < nSamples; s++ {
		for i := range component {
			component[i] = math.Log(m.weights[i])
		}
		for _, k := range m.params {
			x := samples[k.name][s]
			for c := 0; c < nWeights; c++ {
				component[c] += k.logPDF(c, x)
			}
		}
		out[s] = utils.LogSumExp(component)
	}
	return out
}

// logPDF is the log density (or log mass, for discrete domains) of component c at x
func (k *kernels) logPDF(c int, x float64) float64 {
	d := k.domain
	if d.Kind == space.KindCategorical {
		return math.Log(k.catWeights[c][int(x)])
	}

	mu, sigma := k.mus[c], k.sigmas[c]
	if !d.Discrete() {
		if d.Log {
			x = math.Log(x)
		}
		return truncnormLogPDF(x, (k.low-mu)/sigma, (k.high-mu)/sigma, mu, sigma)
	}

	lo, hi := x-d.Step/2, x+d.Step/2
	if d.Log {
		lo, hi = math.Log(lo), math.Log(hi)
	}
	mass := logGaussMass((lo-mu)/sigma, (hi-mu)/sigma)
	total := logGaussMass((k.low-mu)/sigma, (k.high-mu)/sigma)
	return mass - total
}
