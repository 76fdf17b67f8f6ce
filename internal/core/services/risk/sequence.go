// Package risk implements online estimators of Value-at-Risk and
// Conditional Value-at-Risk built on stochastic approximation.
//
// Every estimator is a Sequence: a small state machine whose first call to
// Next returns its seeded state and whose later calls each apply one
// Robbins-Monro update fed by fresh random draws. Kernels wrap a Sequence
// with an iteration budget and expose Compute.
package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/pkg/types"
)

// Sequence is a stepping estimator
type Sequence interface {
	Next() types.Vector
}

// Iterate calls Next iterations times and returns the last value.
// The first call returns the seed, so iterations calls apply
// iterations-1 updates.
func Iterate(seq Sequence, iterations int) types.Vector {
	var state types.Vector
	for n := 0; n < iterations; n++ {
		state = seq.Next()
	}
	return state
}

// AveragingMode switches Ruppert-Polyak averaging on or off
type AveragingMode int

const (
	AveragingNo AveragingMode = iota
	AveragingYes
)

// ParseAveragingMode accepts yes/no and the usual boolean spellings
func ParseAveragingMode(s string) (AveragingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "on", "1":
		return AveragingYes, nil
	case "no", "n", "false", "off", "0", "":
		return AveragingNo, nil
	default:
		return AveragingNo, NewRiskError(ErrUnsupportedAveragingMode,
			fmt.Sprintf("unknown averaging mode %q", s), "parse_averaging").
			WithExpected("values", []string{"yes", "no"})
	}
}

func (m AveragingMode) String() string {
	if m == AveragingYes {
		return "yes"
	}
	return "no"
}

// wrap returns seq or its running average
func (m AveragingMode) wrap(seq Sequence) Sequence {
	if m == AveragingYes {
		return NewAveraging(seq)
	}
	return seq
}

// Method names an estimation algorithm
type Method string

const (
	MethodVaR                Method = "var"
	MethodCVaR               Method = "cvar"
	MethodStochasticGradient Method = "stochastic-gradient"
	MethodImportanceSampling Method = "importance-sampling"
	MethodMonteCarlo         Method = "monte-carlo"
)

var methods = []Method{
	MethodStochasticGradient,
	MethodImportanceSampling,
	MethodVaR,
	MethodCVaR,
	MethodMonteCarlo,
}

// MethodNames lists the supported method names
func MethodNames() []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return names
}

// ParseMethod resolves a method name
func ParseMethod(s string) (Method, error) {
	name := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range methods {
		if m == name {
			return m, nil
		}
	}
	return "", NewUnsupportedMethodError("parse_method", s)
}

// Estimate is a (VaR, CVaR) pair. Methods that estimate only one of the two
// leave the other as NaN.
type Estimate struct {
	VaR  float64 `json:"var"`
	CVaR float64 `json:"cvar"`
}

// Produces reports which components of an Estimate the method fills in
func (m Method) Produces() (hasVaR, hasCVaR bool) {
	switch m {
	case MethodVaR:
		return true, false
	case MethodMonteCarlo:
		return false, true
	default:
		return true, true
	}
}

// CheckEstimate returns a NUMERICAL_INSTABILITY error when a component the
// method produces is NaN or infinite.
func CheckEstimate(m Method, e Estimate) error {
	hasVaR, hasCVaR := m.Produces()
	if (hasVaR && !isFinite(e.VaR)) || (hasCVaR && !isFinite(e.CVaR)) {
		return NewNumericalInstabilityError("check_estimate", m, e)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func estimateFromPair(v types.Vector) Estimate {
	return Estimate{VaR: v.At(0), CVaR: v.At(1)}
}

// KernelConfig carries the construction parameters shared by the recursive
// kernels. Zero values of Step, Loss and Averaging mean 1/n, the identity
// loss and no averaging.
type KernelConfig struct {
	Alpha      float64
	Iterations int
	Step       steps.Schedule
	// CVaRStep is the step schedule of the tail-mean update; defaults to Step
	CVaRStep  steps.Schedule
	Loss      loss.Func
	Averaging AveragingMode
}

func (c KernelConfig) withDefaults() KernelConfig {
	if c.Step == nil {
		c.Step = steps.Inverse
	}
	if c.CVaRStep == nil {
		c.CVaRStep = c.Step
	}
	if c.Loss == nil {
		c.Loss = loss.Identity
	}
	return c
}

func nan() float64 {
	return math.NaN()
}
