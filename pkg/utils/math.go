package utils

import (
	"math"
)

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// LogSumExp returns log(sum(exp(values))) without overflow.
// An empty slice or a slice of -Inf yields -Inf.
func LogSumExp(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	if math.IsInf(m, 0) {
		return m
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - m)
	}
	return m + math.Log(sum)
}

// RoundHalfEven rounds to the nearest integer, ties to even
func RoundHalfEven(value float64) float64 {
	return math.RoundToEven(value)
}

// RoundToStep snaps value onto the grid low + k*step, ties to even k.
func RoundToStep(value, low, step float64) float64 {
	return RoundHalfEven((value-low)/step)*step + low
}

// Linspace returns n evenly spaced values from start to stop inclusive
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// ArgMax returns the index of the first maximal element, or -1 if empty.
// NaN elements are skipped.
func ArgMax(values []float64) int {
	best := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// AlmostEqual reports whether actual lies within max(abs, |expected|*rel)
// of expected. NaN never matches.
func AlmostEqual(expected, actual, abs, rel float64) bool {
	if expected == actual {
		return true
	}
	if math.IsNaN(expected) || math.IsNaN(actual) || math.IsInf(expected, 0) || math.IsInf(actual, 0) {
		return false
	}
	return math.Abs(actual-expected) <= math.Max(abs, math.Abs(expected)*rel)
}
