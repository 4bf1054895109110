package tpe

import (
	"math"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/utils"
)

// sampleRandom draws one value uniformly from d, returned in internal
// representation.
func sampleRandom(rng *utils.RandSource, d space.Domain) float64 {
	switch {
	case d.Kind == space.KindCategorical:
		return float64(rng.Intn(len(d.Choices)))

	case d.Kind == space.KindInt && d.Log:
		low := math.Log(d.Low - 0.5*d.Step)
		high := math.Log(d.High + 0.5*d.Step)
		x := math.Exp(rng.UniformFloat64(low, high))
		return utils.ClampFloat64(utils.RoundHalfEven(x), d.Low, d.High)

	case d.Discrete():
		half := 0.5 * d.Step
		x := rng.UniformFloat64(d.Low-half, d.High+half)
		return utils.ClampFloat64(utils.RoundToStep(x, d.Low, d.Step), d.Low, d.UpperGridPoint())

	case d.Log:
		x := math.Exp(rng.UniformFloat64(math.Log(d.Low), math.Log(d.High)))
		return capBelowHigh(x, d)

	default:
		return capBelowHigh(rng.UniformFloat64(d.Low, d.High), d)
	}
}

// capBelowHigh keeps continuous samples inside the half-open [low, high)
func capBelowHigh(x float64, d space.Domain) float64 {
	if d.Single() {
		return x
	}
	return math.Min(x, math.Nextafter(d.High, math.Inf(-1)))
}
