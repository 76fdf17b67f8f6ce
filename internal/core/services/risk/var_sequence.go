package risk

import (
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/pkg/types"
)

// VaRSequence is the Robbins-Monro recursion for the alpha-quantile
//
//	xi <- xi - gamma(n) * H(xi, phi(x), alpha)
//
// seeded at xi = 0.
type VaRSequence struct {
	alpha float64
	xi    float64
	n     int
	gamma steps.Schedule
	phi   loss.Func
	src   distribution.Sampler
}

// NewVaRSequence creates a quantile recursion drawing from src.
// A nil gamma means 1/n and a nil phi the identity loss.
func NewVaRSequence(alpha float64, gamma steps.Schedule, phi loss.Func, src distribution.Sampler) *VaRSequence {
	if gamma == nil {
		gamma = steps.Inverse
	}
	if phi == nil {
		phi = loss.Identity
	}
	return &VaRSequence{alpha: alpha, gamma: gamma, phi: phi, src: src}
}

// Next returns the seed on the first call, then draws once and updates
func (s *VaRSequence) Next() types.Vector {
	if s.n == 0 {
		s.n = 1
		return types.Scalar(s.xi)
	}
	return types.Scalar(s.Update(s.src.Rand()))
}

// Update applies one step with the raw draw x and returns the new estimate
func (s *VaRSequence) Update(x float64) float64 {
	if s.n == 0 {
		s.n = 1
	}
	s.xi -= s.gamma(s.n) * quantileGradient(s.xi, s.phi(x), s.alpha)
	s.n++
	return s.xi
}

// Value returns the current estimate without stepping
func (s *VaRSequence) Value() float64 {
	return s.xi
}

// VaRKernel runs a VaRSequence for a fixed budget
type VaRKernel struct {
	config KernelConfig
}

// NewVaRKernel creates a VaR kernel
func NewVaRKernel(config KernelConfig) *VaRKernel {
	return &VaRKernel{config: config.withDefaults()}
}

// Compute returns the VaR estimate after the configured budget
func (k *VaRKernel) Compute(src distribution.Sampler) float64 {
	c := k.config
	seq := c.Averaging.wrap(NewVaRSequence(c.Alpha, c.Step, c.Loss, src))
	return Iterate(seq, c.Iterations).At(0)
}

// Estimate returns the VaR estimate with CVaR left as NaN
func (k *VaRKernel) Estimate(src distribution.Sampler) Estimate {
	return Estimate{VaR: k.Compute(src), CVaR: nan()}
}
