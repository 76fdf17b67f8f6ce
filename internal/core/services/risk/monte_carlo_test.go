package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonteCarloCVaRKernel_RejectsBelowThreshold(t *testing.T) {
	src := newMockSampler(0.5, 2, 0.1, 4)
	k := NewMonteCarloCVaRKernel(MonteCarloConfig{Alpha: 0.5, Threshold: 1, Iterations: 2})

	assert.InDelta(t, 3.0, k.Compute(src), 1e-12)
	src.AssertNumberOfCalls(t, "Rand", 4)
}

func TestMonteCarloCVaRKernel_ThresholdIsInclusive(t *testing.T) {
	src := newMockSampler(1, 1)
	k := NewMonteCarloCVaRKernel(MonteCarloConfig{Threshold: 1, Iterations: 2})
	assert.Equal(t, 1.0, k.Compute(src))
}

func TestMonteCarloCVaRKernel_AppliesLoss(t *testing.T) {
	src := newMockSampler(-2, 2)
	negate := func(x float64) float64 { return -x }
	k := NewMonteCarloCVaRKernel(MonteCarloConfig{Threshold: 0, Iterations: 1, Loss: negate})
	assert.Equal(t, 2.0, k.Compute(src))
}

func TestMonteCarloCVaRKernel_EmptyBudget(t *testing.T) {
	k := NewMonteCarloCVaRKernel(MonteCarloConfig{Threshold: 0, Iterations: 0})
	assert.True(t, math.IsNaN(k.Compute(newMockSampler())))
}

func TestMonteCarloCVaRKernel_ExponentialMedian(t *testing.T) {
	k := NewMonteCarloCVaRKernel(MonteCarloConfig{Alpha: 0.5, Threshold: math.Ln2, Iterations: 1_000_000})
	est := k.Estimate(newExponential(t, 1, 41))

	assert.InDelta(t, math.Ln2+1, est.CVaR, 0.05)
	assert.True(t, math.IsNaN(est.VaR))
}
