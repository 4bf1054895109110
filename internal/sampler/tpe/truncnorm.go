package tpe

import "math"

var logSqrt2Pi = 0.5 * math.Log(2*math.Pi)

// ndtr is the standard normal CDF
func ndtr(x float64) float64 {
	v := 0.5 + 0.5*math.Erf(x/math.Sqrt2)
	return math.Max(0, math.Min(1, v))
}

// logNdtr is log(ndtr(x)), accurate in the far left tail
func logNdtr(x float64) float64 {
	if x > 6 {
		return -ndtr(-x)
	}
	if x > -20 {
		return math.Log(ndtr(x))
	}

	// Asymptotic series for x << 0
	logLHS := -0.5*x*x - math.Log(-x) - logSqrt2Pi
	lastTotal, rhs, numerator, denomFactor := 0.0, 1.0, 1.0, 1.0
	denomCons := 1 / (x * x)
	sign := 1.0
	for i := 1; math.Abs(lastTotal-rhs) > 2.220446049250313e-16; i++ {
		lastTotal = rhs
		sign = -sign
		denomFactor *= denomCons
		numerator *= float64(2*i - 1)
		rhs += sign * numerator * denomFactor
	}
	return logLHS + math.Log(rhs)
}

func logSum(logP, logQ float64) float64 {
	a, b := math.Max(logP, logQ), math.Min(logP, logQ)
	return a + math.Log1p(math.Exp(b-a))
}

func logDiff(logP, logQ float64) float64 {
	if logQ >= logP {
		return math.Inf(-1)
	}
	return logP + math.Log1p(-math.Exp(logQ-logP))
}

// logGaussMass is log(P(a <= Z <= b)) for a standard normal Z
func logGaussMass(a, b float64) float64 {
	if b <= 0 {
		return logDiff(logNdtr(b), logNdtr(a))
	}
	if a > 0 {
		return logGaussMass(-b, -a)
	}
	central := 1 - ndtr(a) - ndtr(-b)
	if central > 0 {
		return math.Log(central)
	}
	left := logDiff(logNdtr(0), logNdtr(a))
	right := logDiff(logNdtr(b), logNdtr(0))
	return logSum(left, right)
}

// ndtriExp inverts logNdtr with Newton steps
func ndtriExp(y float64) float64 {
	flipped := false
	z := y
	if y > -1e-2 {
		flipped = true
		z = math.Log(-math.Expm1(y))
	}

	var x float64
	if z < -5 {
		x = -math.Sqrt(-2 * (z + logSqrt2Pi))
	} else {
		x = -math.Sqrt(3) / math.Pi * math.Log(math.Expm1(-z))
	}

	for i := 0; i < 100; i++ {
		lx := logNdtr(x)
		logPDF := -0.5*x*x - logSqrt2Pi
		dx := (lx - z) * math.Exp(lx-logPDF)
		x -= dx
		if math.Abs(dx) < 1e-8*math.Abs(x) {
			break
		}
	}
	if flipped {
		x = -x
	}
	return x
}

// truncnormPPF is the quantile function of the standard normal truncated to [a, b]
func truncnormPPF(q, a, b float64) float64 {
	switch {
	case q == 0:
		return a
	case q == 1:
		return b
	case a == b:
		return math.NaN()
	}
	logMass := logGaussMass(a, b)
	if a < 0 {
		return ndtriExp(logSum(logNdtr(a), math.Log(q)+logMass))
	}
	return -ndtriExp(logSum(logNdtr(-b), math.Log1p(-q)+logMass))
}

// truncnormLogPDF is the log density at x of N(loc, scale) truncated to the
// standardized interval [a, b]
func truncnormLogPDF(x, a, b, loc, scale float64) float64 {
	if a == b {
		return math.NaN()
	}
	xn := (x - loc) / scale
	if xn < a || xn > b {
		return math.Inf(-1)
	}
	return -0.5*xn*xn - logSqrt2Pi - logGaussMass(a, b) - math.Log(scale)
}
