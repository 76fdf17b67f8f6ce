package risk

import (
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
)

// MonteCarloConfig contains the parameters of the rejection CVaR estimator
type MonteCarloConfig struct {
	Alpha float64 `json:"alpha"`
	// Threshold is a previously estimated VaR
	Threshold  float64   `json:"threshold"`
	Iterations int       `json:"iterations"`
	Loss       loss.Func `json:"-"`
}

// MonteCarloCVaRKernel averages losses at or above a fixed threshold.
// Draws below the threshold are discarded and do not count against the
// budget, so a threshold far in the tail can make Compute run for a very
// long time.
type MonteCarloCVaRKernel struct {
	config MonteCarloConfig
}

// NewMonteCarloCVaRKernel creates a rejection CVaR kernel
func NewMonteCarloCVaRKernel(config MonteCarloConfig) *MonteCarloCVaRKernel {
	if config.Loss == nil {
		config.Loss = loss.Identity
	}
	return &MonteCarloCVaRKernel{config: config}
}

// Compute returns the mean of Iterations accepted losses
func (k *MonteCarloCVaRKernel) Compute(src distribution.Sampler) float64 {
	c := k.config
	if c.Iterations <= 0 {
		return nan()
	}
	sum := 0.0
	for accepted := 0; accepted < c.Iterations; {
		x := c.Loss(src.Rand())
		if x < c.Threshold {
			continue
		}
		sum += x
		accepted++
	}
	return sum / float64(c.Iterations)
}

// Estimate returns the CVaR estimate with VaR left as NaN
func (k *MonteCarloCVaRKernel) Estimate(src distribution.Sampler) Estimate {
	return Estimate{VaR: nan(), CVaR: k.Compute(src)}
}
