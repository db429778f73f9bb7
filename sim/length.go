package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// z99 is the 0.99 quantile of the standard normal distribution, used by
// the closed-form NormalSpec and LognormalSpec p99 (never sampled).
const z99 = 2.326347874

// LengthSpec is a tagged-variant description of the service-time
// distribution of a cohort of jobs (spec.md §3). Each variant exposes
// exactly two operations: draw one sample given an RNG, and report the
// analytic 0.99 quantile without sampling. Adding a distribution means
// adding a type with these two methods, not a runtime subclass.
type LengthSpec interface {
	// Sample draws one service-time realization. Negative draws are
	// clamped to 0 by the implementation (spec.md §4.2).
	Sample(rng *rand.Rand) float64
	// P99 returns the 0.99 quantile in closed form. Must never sample.
	P99() float64
}

// ExpSpec is the reference LengthSpec: length = Offset + Factor*X where
// X ~ Exponential(Lambda).
type ExpSpec struct {
	Lambda float64
	Offset float64
	Factor float64
}

func (s ExpSpec) Sample(rng *rand.Rand) float64 {
	x := rng.ExpFloat64() / s.Lambda
	v := s.Offset + s.Factor*x
	return clampNonNegative(v)
}

func (s ExpSpec) P99() float64 {
	return clampNonNegative(s.Offset + s.Factor*(-math.Log(0.01)/s.Lambda))
}

// NormalSpec draws from a Gaussian, clamped to 0.
type NormalSpec struct {
	Mean   float64
	StdDev float64
}

func (s NormalSpec) Sample(rng *rand.Rand) float64 {
	d := distuv.Normal{Mu: s.Mean, Sigma: s.StdDev, Src: rng}
	return clampNonNegative(d.Rand())
}

func (s NormalSpec) P99() float64 {
	return clampNonNegative(s.Mean + s.StdDev*z99)
}

// LognormalSpec draws from a log-normal distribution; always non-negative
// by construction, so no clamping is needed.
type LognormalSpec struct {
	Mu    float64
	Sigma float64
}

func (s LognormalSpec) Sample(rng *rand.Rand) float64 {
	d := distuv.LogNormal{Mu: s.Mu, Sigma: s.Sigma, Src: rng}
	return d.Rand()
}

func (s LognormalSpec) P99() float64 {
	return math.Exp(s.Mu + s.Sigma*z99)
}

// ConstantSpec always returns the same fixed length; its own p99 is
// itself.
type ConstantSpec struct {
	Value float64
}

func (s ConstantSpec) Sample(_ *rand.Rand) float64 { return clampNonNegative(s.Value) }
func (s ConstantSpec) P99() float64                { return clampNonNegative(s.Value) }

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
