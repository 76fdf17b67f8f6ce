package risk

import (
	"math"

	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
)

// quantileGradient is the noisy gradient whose root in xi is the
// alpha-quantile of the loss.
func quantileGradient(xi, x, alpha float64) float64 {
	if x < xi {
		return 1
	}
	return 1 - 1/(1-alpha)
}

// tailTarget is the Rockafellar-Uryasev objective sample whose mean at the
// true quantile equals the CVaR.
func tailTarget(xi, x, alpha float64) float64 {
	return xi + math.Max(x-xi, 0)/(1-alpha)
}

// control returns exp(-k*rho*|theta|^b)
func control(f distribution.Family, theta, k float64) float64 {
	return math.Exp(-k * f.Rho() * math.Pow(math.Abs(theta), f.B()))
}

// tiltedQuantileGradient is the quantile gradient evaluated under the
// measure shifted by theta and corrected by the density ratio.
func tiltedQuantileGradient(xi, theta, x, alpha float64, phi loss.Func, f distribution.Family) float64 {
	factor := control(f, theta, 1)
	if phi(x+theta) < xi {
		return factor
	}
	return factor * (1 - f.Incr(x, theta)/(1-alpha))
}

// tiltedTailGradient is the tail-mean gradient evaluated under the measure
// shifted by mu.
func tiltedTailGradient(xi, c, mu, x, alpha float64, phi loss.Func, f distribution.Family) float64 {
	result := c - xi
	val := phi(x + mu)
	if val < xi {
		return result
	}
	return result - (val-xi)*f.Incr(x, mu)/(1-alpha)
}

// shiftGradient estimates the gradient in theta of the variance of the
// tilted tail-probability estimator.
func shiftGradient(xi, theta, x float64, phi loss.Func, f distribution.Family) float64 {
	if phi(x-theta) < xi {
		return 0
	}
	return control(f, theta, 2) * f.W(x, theta)
}

// tailShiftGradient estimates the gradient in mu of the variance of the
// tilted tail-mean estimator; a bounds the growth of phi^2 as exp(a|x|).
func tailShiftGradient(xi, mu, x, a float64, phi loss.Func, f distribution.Family) float64 {
	diff := phi(x-mu) - xi
	return math.Exp(-2*a*(mu*mu+1)) * shiftGradient(xi, mu, x, phi, f) * diff * diff
}
