package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantSpec_SampleAndP99AreTheValue(t *testing.T) {
	s := ConstantSpec{Value: 4.2}
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 4.2, s.Sample(rng))
	assert.Equal(t, 4.2, s.P99())
}

func TestConstantSpec_ClampsNegative(t *testing.T) {
	s := ConstantSpec{Value: -1}
	assert.Equal(t, 0.0, s.P99())
}

func TestNormalSpec_P99IsClosedFormNotSampled(t *testing.T) {
	s := NormalSpec{Mean: 10, StdDev: 2}
	want := 10 + 2*z99
	assert.InDelta(t, want, s.P99(), 1e-9)
}

func TestLognormalSpec_P99IsClosedForm(t *testing.T) {
	s := LognormalSpec{Mu: 1, Sigma: 0.5}
	want := math.Exp(1 + 0.5*z99)
	assert.InDelta(t, want, s.P99(), 1e-9)
}

func TestExpSpec_SampleIsNeverNegative(t *testing.T) {
	s := ExpSpec{Lambda: 1, Offset: 0, Factor: 1}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, s.Sample(rng), 0.0)
	}
}

func TestNormalSpec_SampleClampsToZero(t *testing.T) {
	// A large negative mean with small stddev should drive every draw
	// below zero pre-clamp.
	s := NormalSpec{Mean: -1000, StdDev: 0.01}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0.0, s.Sample(rng))
	}
}
