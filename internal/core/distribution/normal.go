package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normal is the Gaussian family with mean m and standard deviation s.
// Importance sampling uses b = 2 and rho = 1/(2s^2).
type Normal struct {
	dist distuv.Normal
}

// NewNormal creates a normal family drawing from src
func NewNormal(mean, stddev float64, src rand.Source) (*Normal, error) {
	if !(stddev > 0) || math.IsInf(stddev, 0) {
		return nil, fmt.Errorf("%w: normal stddev must be positive and finite, got %v", ErrInvalidParameter, stddev)
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("%w: normal mean must be finite, got %v", ErrInvalidParameter, mean)
	}
	return &Normal{dist: distuv.Normal{Mu: mean, Sigma: stddev, Src: src}}, nil
}

func (*Normal) sealed() {}

// Name returns "normal"
func (*Normal) Name() string { return NameNormal }

// Mean returns m
func (n *Normal) Mean() float64 { return n.dist.Mu }

// StdDev returns s
func (n *Normal) StdDev() float64 { return n.dist.Sigma }

// Rand draws one value
func (n *Normal) Rand() float64 { return n.dist.Rand() }

// B returns 2
func (*Normal) B() float64 { return 2 }

// Rho returns 1/(2s^2)
func (n *Normal) Rho() float64 {
	s := n.dist.Sigma
	return 0.5 / (s * s)
}

// Incr returns p(x+theta)/p(x)
func (n *Normal) Incr(x, theta float64) float64 {
	s := n.dist.Sigma
	y := x - n.dist.Mu
	z := y + theta
	return math.Exp(0.5 / (s * s) * (y*y - z*z))
}

// W returns exp((theta/s)^2) * (2*theta - x + m)
func (n *Normal) W(x, theta float64) float64 {
	q := theta / n.dist.Sigma
	return math.Exp(q*q) * (2*theta - x + n.dist.Mu)
}

// VaR returns m + s*z where z is the standard normal alpha-quantile
func (n *Normal) VaR(alpha float64) float64 {
	return n.dist.Quantile(alpha)
}

// CVaR returns m + s*pdf(z)/(1-alpha)
func (n *Normal) CVaR(alpha float64) float64 {
	z := distuv.UnitNormal.Quantile(alpha)
	return n.dist.Mu + n.dist.Sigma*distuv.UnitNormal.Prob(z)/(1-alpha)
}
