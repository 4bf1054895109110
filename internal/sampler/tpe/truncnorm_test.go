package tpe

import (
	"math"
	"testing"
)

func TestNdtr(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1.959963984540054, 0.975},
		{-1.959963984540054, 0.025},
	}
	for _, tt := range tests {
		if got := ndtr(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ndtr(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestLogNdtrTail(t *testing.T) {
	// Continuity across the series switch at -20
	a := logNdtr(-19.999)
	b := logNdtr(-20.001)
	if !(a > b) || math.Abs(a-b) > 0.1 {
		t.Errorf("logNdtr not smooth across -20: %v, %v", a, b)
	}
	if got := logNdtr(10); got > 0 || got < -1e-20 {
		t.Errorf("logNdtr(10) = %v, want ~0", got)
	}
}

func TestLogGaussMass(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"whole line", math.Inf(-1), math.Inf(1), 0},
		{"upper half", 0, math.Inf(1), math.Log(0.5)},
		{"lower half", math.Inf(-1), 0, math.Log(0.5)},
		{"symmetric", -1, 1, math.Log(ndtr(1) - ndtr(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := logGaussMass(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("logGaussMass(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTruncnormPPFInverse(t *testing.T) {
	tests := []struct {
		a, b float64
	}{
		{-1, 1},
		{-3, 0.5},
		{0.5, 4},
		{-10, -2},
	}
	for _, tt := range tests {
		logMass := logGaussMass(tt.a, tt.b)
		for _, q := range []float64{0.01, 0.25, 0.5, 0.75, 0.99} {
			x := truncnormPPF(q, tt.a, tt.b)
			if x < tt.a-1e-9 || x > tt.b+1e-9 {
				t.Fatalf("ppf(%v; %v, %v) = %v outside bounds", q, tt.a, tt.b, x)
			}
			cdf := math.Exp(logGaussMass(tt.a, x) - logMass)
			if math.Abs(cdf-q) > 1e-6 {
				t.Errorf("cdf(ppf(%v)) = %v on [%v, %v]", q, cdf, tt.a, tt.b)
			}
		}
	}
	if got := truncnormPPF(0, -1, 1); got != -1 {
		t.Errorf("ppf(0) = %v, want -1", got)
	}
	if got := truncnormPPF(1, -1, 1); got != 1 {
		t.Errorf("ppf(1) = %v, want 1", got)
	}
}

func TestTruncnormLogPDF(t *testing.T) {
	// Uniform-ish check: density integrates to ~1 over the support
	a, b, loc, scale := -1.0, 2.0, 0.3, 0.7
	lo, hi := loc+a*scale, loc+b*scale
	n := 20000
	h := (hi - lo) / float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		x := lo + (float64(i)+0.5)*h
		sum += math.Exp(truncnormLogPDF(x, a, b, loc, scale)) * h
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("density integrates to %v, want 1", sum)
	}
	if !math.IsInf(truncnormLogPDF(hi+1, a, b, loc, scale), -1) {
		t.Error("expected -Inf outside support")
	}
}
