package risk

import (
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/pkg/types"
)

// Phase 1 budget is the total budget divided by this factor
const phase1Divisor = 100

// Confidence levels used to warm up the quantile during phase 1
const (
	warmupAlphaLow  = 0.5
	warmupAlphaHigh = 0.8
)

// ISPhase1Sequence searches the shift parameters (theta, mu) jointly with a
// first quantile estimate. The confidence level is staged: 0.5 for the
// first third of the budget and 0.8 for the second third, each only when
// the target alpha is above it, then alpha itself.
type ISPhase1Sequence struct {
	alpha  float64
	a      float64
	xi     float64
	theta  float64
	mu     float64
	n      int
	budget int
	gamma  steps.Schedule
	phi    loss.Func
	family distribution.Family
}

// NewISPhase1Sequence creates the phase 1 recursion for a budget of
// budget calls. a is the constant of the exp(a|x|) bound on phi^2.
func NewISPhase1Sequence(alpha, a float64, budget int, gamma steps.Schedule, phi loss.Func, f distribution.Family) *ISPhase1Sequence {
	if gamma == nil {
		gamma = steps.Inverse
	}
	if phi == nil {
		phi = loss.Identity
	}
	return &ISPhase1Sequence{alpha: alpha, a: a, budget: budget, gamma: gamma, phi: phi, family: f}
}

// stagedAlpha returns the confidence level in force at step n
func (s *ISPhase1Sequence) stagedAlpha(n int) float64 {
	third := s.budget / 3
	switch {
	case s.alpha > warmupAlphaLow && n <= third:
		return warmupAlphaLow
	case s.alpha > warmupAlphaHigh && n <= 2*third:
		return warmupAlphaHigh
	default:
		return s.alpha
	}
}

// Next returns (xi, theta, mu)
func (s *ISPhase1Sequence) Next() types.Vector {
	if s.n == 0 {
		s.n = 1
		return types.Triple(s.xi, s.theta, s.mu)
	}
	alpha := s.stagedAlpha(s.n)
	x := s.family.Rand()
	g := s.gamma(s.n)
	s.theta -= g * shiftGradient(s.xi, s.theta, x, s.phi, s.family)
	s.mu -= g * tailShiftGradient(s.xi, s.mu, x, s.a, s.phi, s.family)
	s.xi -= g * quantileGradient(s.xi, s.phi(x), alpha)
	s.n++
	return types.Triple(s.xi, s.theta, s.mu)
}

// ISPhase2Sequence estimates (xi, C) under the shifted measures with theta
// and mu frozen at their phase 1 values. C starts at 0 and xi at the phase 1
// quantile.
type ISPhase2Sequence struct {
	alpha  float64
	xi     float64
	c      float64
	theta  float64
	mu     float64
	n      int
	gamma  steps.Schedule
	phi    loss.Func
	family distribution.Family
}

// NewISPhase2Sequence creates the phase 2 recursion
func NewISPhase2Sequence(alpha, xi, theta, mu float64, gamma steps.Schedule, phi loss.Func, f distribution.Family) *ISPhase2Sequence {
	if gamma == nil {
		gamma = steps.Inverse
	}
	if phi == nil {
		phi = loss.Identity
	}
	return &ISPhase2Sequence{alpha: alpha, xi: xi, theta: theta, mu: mu, gamma: gamma, phi: phi, family: f}
}

// Next returns (xi, C)
func (s *ISPhase2Sequence) Next() types.Vector {
	if s.n == 0 {
		s.n = 1
		return types.Pair(s.xi, s.c)
	}
	x := s.family.Rand()
	g := s.gamma(s.n)
	s.c -= g * tiltedTailGradient(s.xi, s.c, s.mu, x, s.alpha, s.phi, s.family)
	s.xi -= g * tiltedQuantileGradient(s.xi, s.theta, x, s.alpha, s.phi, s.family)
	s.n++
	return types.Pair(s.xi, s.c)
}

// ImportanceSamplingConfig adds the exponential control constant to the
// shared kernel parameters
type ImportanceSamplingConfig struct {
	KernelConfig
	A float64
}

// ImportanceSamplingResult reports both phases of a run
type ImportanceSamplingResult struct {
	Estimate
	Phase1VaR   float64 `json:"phase1_var"`
	Theta       float64 `json:"theta"`
	Mu          float64 `json:"mu"`
	Phase1Steps int     `json:"phase1_steps"`
}

// ImportanceSamplingKernel runs phase 1 for Iterations/100 calls and then
// phase 2 for Iterations calls, optionally averaging phase 2.
type ImportanceSamplingKernel struct {
	config ImportanceSamplingConfig
}

// NewImportanceSamplingKernel creates an importance sampling kernel
func NewImportanceSamplingKernel(config ImportanceSamplingConfig) *ImportanceSamplingKernel {
	config.KernelConfig = config.KernelConfig.withDefaults()
	return &ImportanceSamplingKernel{config: config}
}

// Compute returns the (VaR, CVaR) estimate
func (k *ImportanceSamplingKernel) Compute(f distribution.Family) Estimate {
	return k.Run(f).Estimate
}

// Run executes both phases and returns the estimate with the phase 1 state
func (k *ImportanceSamplingKernel) Run(f distribution.Family) ImportanceSamplingResult {
	c := k.config
	budget := c.Iterations / phase1Divisor

	phase1 := NewISPhase1Sequence(c.Alpha, c.A, budget, c.Step, c.Loss, f)
	found := Iterate(phase1, budget)

	phase2 := NewISPhase2Sequence(c.Alpha, found.At(0), found.At(1), found.At(2), c.Step, c.Loss, f)
	est := estimateFromPair(Iterate(c.Averaging.wrap(phase2), c.Iterations))

	return ImportanceSamplingResult{
		Estimate:    est,
		Phase1VaR:   found.At(0),
		Theta:       found.At(1),
		Mu:          found.At(2),
		Phase1Steps: budget,
	}
}
