package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Exponential is the exponential family with rate lambda.
// Importance sampling uses b = 1 and rho = lambda.
type Exponential struct {
	dist distuv.Exponential
}

// NewExponential creates an exponential family drawing from src
func NewExponential(rate float64, src rand.Source) (*Exponential, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: exponential rate must be positive and finite, got %v", ErrInvalidParameter, rate)
	}
	return &Exponential{dist: distuv.Exponential{Rate: rate, Src: src}}, nil
}

func (*Exponential) sealed() {}

// Name returns "exponential"
func (*Exponential) Name() string { return NameExponential }

// Rate returns lambda
func (e *Exponential) Rate() float64 { return e.dist.Rate }

// Rand draws one value
func (e *Exponential) Rand() float64 { return e.dist.Rand() }

// B returns 1
func (*Exponential) B() float64 { return 1 }

// Rho returns lambda
func (e *Exponential) Rho() float64 { return e.dist.Rate }

// Incr returns p(x+theta)/p(x), zero when x+theta leaves the support
func (e *Exponential) Incr(x, theta float64) float64 {
	if x+theta < 0 {
		return 0
	}
	return math.Exp(-e.dist.Rate * theta)
}

// W returns the score weight of the shifted density
func (e *Exponential) W(x, theta float64) float64 {
	lambda := e.dist.Rate
	switch {
	case x-theta < 0:
		return 0
	case x-2*theta < 0:
		return 2 * lambda * math.Exp(-2*lambda*(x-2*theta))
	default:
		return -2 * lambda
	}
}

// VaR returns -ln(1-alpha)/lambda
func (e *Exponential) VaR(alpha float64) float64 {
	return e.dist.Quantile(alpha)
}

// CVaR returns VaR + 1/lambda
func (e *Exponential) CVaR(alpha float64) float64 {
	return e.VaR(alpha) + 1/e.dist.Rate
}
