package risk

import (
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/pkg/types"
)

// StochasticGradientSequence updates (xi, C) jointly from one shared draw
// per step. C is updated against the quantile estimate of the previous
// step, then xi moves.
type StochasticGradientSequence struct {
	alpha float64
	xi    float64
	c     float64
	n     int
	gamma steps.Schedule
	phi   loss.Func
	src   distribution.Sampler
}

// NewStochasticGradientSequence creates a joint recursion seeded at (0, 0)
func NewStochasticGradientSequence(alpha float64, gamma steps.Schedule, phi loss.Func, src distribution.Sampler) *StochasticGradientSequence {
	if gamma == nil {
		gamma = steps.Inverse
	}
	if phi == nil {
		phi = loss.Identity
	}
	return &StochasticGradientSequence{alpha: alpha, gamma: gamma, phi: phi, src: src}
}

// Next returns (xi, C)
func (s *StochasticGradientSequence) Next() types.Vector {
	if s.n == 0 {
		s.n = 1
		return types.Pair(s.xi, s.c)
	}
	x := s.phi(s.src.Rand())
	g := s.gamma(s.n)
	s.c -= g * (s.c - tailTarget(s.xi, x, s.alpha))
	s.xi -= g * quantileGradient(s.xi, x, s.alpha)
	s.n++
	return types.Pair(s.xi, s.c)
}

// StochasticGradientKernel runs the joint recursion for a fixed budget
type StochasticGradientKernel struct {
	config KernelConfig
}

// NewStochasticGradientKernel creates a joint (VaR, CVaR) kernel
func NewStochasticGradientKernel(config KernelConfig) *StochasticGradientKernel {
	return &StochasticGradientKernel{config: config.withDefaults()}
}

// Compute returns the (VaR, CVaR) estimate
func (k *StochasticGradientKernel) Compute(src distribution.Sampler) Estimate {
	c := k.config
	seq := c.Averaging.wrap(NewStochasticGradientSequence(c.Alpha, c.Step, c.Loss, src))
	return estimateFromPair(Iterate(seq, c.Iterations))
}
