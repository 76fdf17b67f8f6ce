package risk

import (
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/pkg/types"
)

// CVaRSequence estimates the tail mean with
//
//	C <- C - beta(n) * (C - v(xi_n, x_n, alpha))
//
// where xi_n comes from stepping an owned VaRSequence and x_n is a second,
// independent draw. Each update therefore consumes two draws. The owned
// quantile recursion is itself seeded, so it starts one step behind.
type CVaRSequence struct {
	alpha    float64
	c        float64
	n        int
	beta     steps.Schedule
	phi      loss.Func
	src      distribution.Sampler
	quantile *VaRSequence
}

// NewCVaRSequence creates a tail-mean recursion. gamma drives the quantile,
// beta the tail mean; nil beta reuses gamma.
func NewCVaRSequence(alpha float64, gamma, beta steps.Schedule, phi loss.Func, src distribution.Sampler) *CVaRSequence {
	quantile := NewVaRSequence(alpha, gamma, phi, src)
	if beta == nil {
		beta = quantile.gamma
	}
	return &CVaRSequence{
		alpha:    alpha,
		beta:     beta,
		phi:      quantile.phi,
		src:      src,
		quantile: quantile,
	}
}

// Next returns the seed on the first call, then steps the quantile and
// updates C with a fresh draw
func (s *CVaRSequence) Next() types.Vector {
	if s.n == 0 {
		s.n = 1
		return types.Scalar(s.c)
	}
	xi := s.quantile.Next().At(0)
	x := s.phi(s.src.Rand())
	s.c -= s.beta(s.n) * (s.c - tailTarget(xi, x, s.alpha))
	s.n++
	return types.Scalar(s.c)
}

// VaR returns the current estimate of the owned quantile recursion
func (s *CVaRSequence) VaR() float64 {
	return s.quantile.Value()
}

// CVaRKernel runs a CVaRSequence for a fixed budget
type CVaRKernel struct {
	config KernelConfig
}

// NewCVaRKernel creates a sequential CVaR kernel
func NewCVaRKernel(config KernelConfig) *CVaRKernel {
	return &CVaRKernel{config: config.withDefaults()}
}

// Compute returns the CVaR estimate after the configured budget
func (k *CVaRKernel) Compute(src distribution.Sampler) float64 {
	return k.Estimate(src).CVaR
}

// Estimate returns the CVaR estimate together with the last raw iterate of
// the quantile recursion that fed it
func (k *CVaRKernel) Estimate(src distribution.Sampler) Estimate {
	c := k.config
	inner := NewCVaRSequence(c.Alpha, c.Step, c.CVaRStep, c.Loss, src)
	cvar := Iterate(c.Averaging.wrap(inner), c.Iterations).At(0)
	return Estimate{VaR: inner.VaR(), CVaR: cvar}
}
