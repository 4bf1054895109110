package tpe

import (
	"math"
	"sort"
)

// dominates reports whether loss vector a Pareto-dominates b
func dominates(a, b []float64) bool {
	strictly := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strictly = true
		}
	}
	return strictly
}

// paretoFront marks the non-dominated rows. Duplicate rows share a status.
func paretoFront(lvals [][]float64) []bool {
	out := make([]bool, len(lvals))
	for i := range lvals {
		out[i] = true
		for j := range lvals {
			if i != j && dominates(lvals[j], lvals[i]) {
				out[i] = false
				break
			}
		}
	}
	return out
}

// nondominationRanks peels Pareto fronts off the distinct rows until at
// least nBelow of them are ranked; the rest share the next rank. Duplicate
// rows share a rank.
func nondominationRanks(lvals [][]float64, nBelow int) []int {
	ranks := make([]int, len(lvals))
	if len(lvals) == 0 || nBelow <= 0 {
		return ranks
	}

	unique, inverse := uniqueRows(lvals)
	uniqueRanks := make([]int, len(unique))
	remaining := make([]int, len(unique))
	for i := range remaining {
		remaining[i] = i
	}
	if nBelow > len(unique) {
		nBelow = len(unique)
	}
	rank := 0
	for len(unique)-len(remaining) < nBelow {
		rows := make([][]float64, len(remaining))
		for i, idx := range remaining {
			rows[i] = unique[idx]
		}
		front := paretoFront(rows)
		next := remaining[:0:0]
		for i, idx := range remaining {
			if front[i] {
				uniqueRanks[idx] = rank
			} else {
				next = append(next, idx)
			}
		}
		remaining = next
		rank++
	}
	for _, idx := range remaining {
		uniqueRanks[idx] = rank
	}

	for i, u := range inverse {
		ranks[i] = uniqueRanks[u]
	}
	return ranks
}

// uniqueRows returns the distinct rows in lexicographic order and, for each
// input row, the index of its distinct row.
func uniqueRows(rows [][]float64) ([][]float64, []int) {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return lessRow(rows[order[a]], rows[order[b]]) })

	var unique [][]float64
	inverse := make([]int, len(rows))
	for _, idx := range order {
		if len(unique) == 0 || !equalRows(rows[idx], unique[len(unique)-1]) {
			unique = append(unique, rows[idx])
		}
		inverse[idx] = len(unique) - 1
	}
	return unique, inverse
}

func lessRow(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// referencePoint is max(1.1*worst, 0.9*worst) per objective, zeros replaced by eps
func referencePoint(lvals [][]float64) []float64 {
	dims := len(lvals[0])
	ref := make([]float64, dims)
	for d := 0; d < dims; d++ {
		worst := math.Inf(-1)
		for _, row := range lvals {
			worst = math.Max(worst, row[d])
		}
		ref[d] = math.Max(1.1*worst, 0.9*worst)
		if ref[d] == 0 {
			ref[d] = eps
		}
	}
	return ref
}

// hypervolume is the volume dominated by points and bounded by ref
func hypervolume(points [][]float64, ref []float64) float64 {
	var inside [][]float64
	for _, p := range points {
		ok := true
		for d := range p {
			if !(p[d] < ref[d]) {
				ok = false
				break
			}
		}
		if ok {
			inside = append(inside, p)
		}
	}
	if len(inside) == 0 {
		return 0
	}
	return sliceVolume(inside, ref)
}

// sliceVolume slices along the last objective and recurses
func sliceVolume(points [][]float64, ref []float64) float64 {
	dims := len(ref)
	if dims == 1 {
		best := ref[0]
		for _, p := range points {
			best = math.Min(best, p[0])
		}
		return ref[0] - best
	}
	if dims == 2 {
		sorted := append([][]float64(nil), points...)
		sort.SliceStable(sorted, func(a, b int) bool { return sorted[a][0] < sorted[b][0] })
		vol, prevY := 0.0, ref[1]
		for _, p := range sorted {
			if p[1] < prevY {
				vol += (ref[0] - p[0]) * (prevY - p[1])
				prevY = p[1]
			}
		}
		return vol
	}

	last := dims - 1
	sorted := append([][]float64(nil), points...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a][last] < sorted[b][last] })
	vol := 0.0
	for i := range sorted {
		upper := ref[last]
		if i+1 < len(sorted) {
			upper = sorted[i+1][last]
		}
		height := upper - sorted[i][last]
		if height <= 0 {
			continue
		}
		proj := make([][]float64, i+1)
		for j := 0; j <= i; j++ {
			proj[j] = sorted[j][:last]
		}
		vol += sliceVolume(proj, ref[:last]) * height
	}
	return vol
}

// selectHSSP greedily picks subsetSize of the candidate rows maximizing
// hypervolume, returning their ids. Duplicate rows are only taken after
// every distinct row.
func selectHSSP(lvals [][]float64, ids []int, subsetSize int, ref []float64) []int {
	if subsetSize >= len(ids) {
		return append([]int(nil), ids...)
	}
	for _, r := range ref {
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return append([]int(nil), ids[:subsetSize]...)
		}
	}

	uniq, inverse := uniqueRows(lvals)
	firstOf := make([]int, len(uniq))
	for i := range firstOf {
		firstOf[i] = -1
	}
	for i, u := range inverse {
		if firstOf[u] < 0 {
			firstOf[u] = i
		}
	}
	unique := firstOf
	var dups []int
	for i, u := range inverse {
		if firstOf[u] != i {
			dups = append(dups, i)
		}
	}

	if len(unique) < subsetSize {
		chosen := make(map[int]bool, subsetSize)
		for _, u := range unique {
			chosen[u] = true
		}
		for _, d := range dups[:subsetSize-len(unique)] {
			chosen[d] = true
		}
		out := make([]int, 0, subsetSize)
		for i := range ids {
			if chosen[i] {
				out = append(out, ids[i])
			}
		}
		return out
	}

	var selected [][]float64
	out := make([]int, 0, subsetSize)
	candidates := append([]int(nil), unique...)
	base := 0.0
	for len(out) < subsetSize {
		best, bestGain := 0, math.Inf(-1)
		for c, idx := range candidates {
			gain := hypervolume(append(selected, lvals[idx]), ref) - base
			if gain > bestGain {
				best, bestGain = c, gain
			}
		}
		idx := candidates[best]
		selected = append(selected, lvals[idx])
		base += bestGain
		out = append(out, ids[idx])
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return out
}

func equalRows(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
