package tpe

import (
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// splitTrials partitions trials into the nBelow "good" ones and the rest.
// Complete feasible trials fill below first, then pruned, then infeasible.
// Running trials are always above. Both halves are ordered by trial number.
func splitTrials(trials []*frozenTrial, directions []models.Direction, nBelow int, constrained bool) (below, above []*frozenTrial) {
	var complete, pruned, running, infeasible []*frozenTrial
	for _, t := range trials {
		switch {
		case t.state == stateRunning:
			running = append(running, t)
		case constrained && violation(t) > 0:
			infeasible = append(infeasible, t)
		case t.state == stateComplete:
			complete = append(complete, t)
		case t.state == statePruned:
			pruned = append(pruned, t)
		}
	}

	bc, ac := splitComplete(complete, directions, nBelow)
	remaining := max(0, nBelow-len(bc))
	bp, ap := splitPruned(pruned, directions[0], remaining)
	remaining = max(0, remaining-len(bp))
	bi, ai := splitInfeasible(infeasible, remaining)

	below = byNumber(bc, bp, bi)
	above = byNumber(ac, ap, ai, running)
	return below, above
}

func byNumber(groups ...[]*frozenTrial) []*frozenTrial {
	var out []*frozenTrial
	for _, g := range groups {
		out = append(out, g...)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].number < out[b].number })
	return out
}

// violation is the sum of positive constraint values, +Inf when unknown
func violation(t *frozenTrial) float64 {
	if t.constraints == nil {
		return math.Inf(1)
	}
	s := 0.0
	for _, c := range t.constraints {
		if c > 0 {
			s += c
		}
	}
	return s
}

func splitComplete(trials []*frozenTrial, directions []models.Direction, nBelow int) ([]*frozenTrial, []*frozenTrial) {
	nBelow = min(nBelow, len(trials))
	if len(directions) <= 1 {
		sorted := append([]*frozenTrial(nil), trials...)
		sort.SliceStable(sorted, func(a, b int) bool {
			if directions[0] == models.Maximize {
				return sorted[a].values[0] > sorted[b].values[0]
			}
			return sorted[a].values[0] < sorted[b].values[0]
		})
		return sorted[:nBelow], sorted[nBelow:]
	}
	return splitCompleteMulti(trials, directions, nBelow)
}

func splitCompleteMulti(trials []*frozenTrial, directions []models.Direction, nBelow int) ([]*frozenTrial, []*frozenTrial) {
	if nBelow == 0 {
		return nil, append([]*frozenTrial(nil), trials...)
	}
	if nBelow == len(trials) {
		return append([]*frozenTrial(nil), trials...), nil
	}

	lvals := make([][]float64, len(trials))
	for i, t := range trials {
		lvals[i] = lossValues(t.values, directions)
	}
	ranks := nondominationRanks(lvals, nBelow)

	counts := make(map[int]int)
	for _, r := range ranks {
		counts[r]++
	}
	distinct := make([]int, 0, len(counts))
	for r := range counts {
		distinct = append(distinct, r)
	}
	sort.Ints(distinct)
	lastFull, cum := -1, 0
	for _, r := range distinct {
		cum += counts[r]
		if cum <= nBelow {
			lastFull = r
		}
	}

	isBelow := make([]bool, len(trials))
	nSelected := 0
	for i, r := range ranks {
		if r <= lastFull {
			isBelow[i] = true
			nSelected++
		}
	}
	if nSelected < nBelow {
		var tieRows [][]float64
		var tieIdx []int
		for i, r := range ranks {
			if r == lastFull+1 {
				tieRows = append(tieRows, lvals[i])
				tieIdx = append(tieIdx, i)
			}
		}
		for _, i := range selectHSSP(tieRows, tieIdx, nBelow-nSelected, referencePoint(tieRows)) {
			isBelow[i] = true
		}
	}

	var below, above []*frozenTrial
	for i, t := range trials {
		if isBelow[i] {
			below = append(below, t)
		} else {
			above = append(above, t)
		}
	}
	return below, above
}

// lossValues negates maximized objectives so that smaller is always better
func lossValues(values []float64, directions []models.Direction) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if directions[i] == models.Maximize {
			v = -v
		}
		out[i] = v
	}
	return out
}

// prunedScore orders pruned trials: later last step first, then by the last
// reported value. NaN sorts last; no reports sorts after everything reported.
func prunedScore(t *frozenTrial, direction models.Direction) (float64, float64) {
	if len(t.intermediate) == 0 {
		return 1, 0
	}
	step := math.MinInt
	for s := range t.intermediate {
		step = max(step, s)
	}
	val := t.intermediate[step]
	if math.IsNaN(val) {
		return -float64(step), math.Inf(1)
	}
	if direction == models.Maximize {
		val = -val
	}
	return -float64(step), val
}

func splitPruned(trials []*frozenTrial, direction models.Direction, nBelow int) ([]*frozenTrial, []*frozenTrial) {
	nBelow = min(nBelow, len(trials))
	sorted := append([]*frozenTrial(nil), trials...)
	sort.SliceStable(sorted, func(a, b int) bool {
		sa, va := prunedScore(sorted[a], direction)
		sb, vb := prunedScore(sorted[b], direction)
		if sa != sb {
			return sa < sb
		}
		return va < vb
	})
	return sorted[:nBelow], sorted[nBelow:]
}

func splitInfeasible(trials []*frozenTrial, nBelow int) ([]*frozenTrial, []*frozenTrial) {
	nBelow = min(nBelow, len(trials))
	sorted := append([]*frozenTrial(nil), trials...)
	sort.SliceStable(sorted, func(a, b int) bool { return violation(sorted[a]) < violation(sorted[b]) })
	return sorted[:nBelow], sorted[nBelow:]
}

// belowWeights weights the below trials of a multi-objective study by their
// hypervolume contribution. Infeasible trials get eps.
func belowWeights(below []*frozenTrial, directions []models.Direction, constrained bool) []float64 {
	weights := make([]float64, len(below))
	var feasible []int
	for i, t := range below {
		if constrained && !allNonPositive(t.constraints) {
			weights[i] = eps
			continue
		}
		weights[i] = 1
		feasible = append(feasible, i)
	}
	if len(feasible) <= 1 {
		return weights
	}

	lvals := make([][]float64, len(feasible))
	for i, idx := range feasible {
		lvals[i] = lossValues(below[idx].values, directions)
	}
	ref := referencePoint(lvals)
	front := paretoFront(lvals)
	var frontRows [][]float64
	var frontIdx []int
	for i, on := range front {
		if on {
			frontRows = append(frontRows, lvals[i])
			frontIdx = append(frontIdx, i)
		}
	}
	hv := hypervolume(frontRows, ref)
	if math.IsInf(hv, 0) || math.IsNaN(hv) {
		return weights
	}

	contribs := make([]float64, len(feasible))
	if len(directions) <= 3 {
		for j, i := range frontIdx {
			rest := make([][]float64, 0, len(frontRows)-1)
			rest = append(rest, frontRows[:j]...)
			rest = append(rest, frontRows[j+1:]...)
			contribs[i] = hv - hypervolume(rest, ref)
		}
	} else {
		for i, row := range lvals {
			p := 1.0
			for d := range ref {
				p *= ref[d] - row[d]
			}
			contribs[i] = p
		}
	}

	maxContrib := eps
	for _, c := range contribs {
		maxContrib = math.Max(maxContrib, c)
	}
	for i, idx := range feasible {
		weights[idx] = math.Max(contribs[i]/maxContrib, eps)
	}
	return weights
}

func allNonPositive(values []float64) bool {
	if values == nil {
		return false
	}
	for _, v := range values {
		if v > 0 {
			return false
		}
	}
	return true
}
