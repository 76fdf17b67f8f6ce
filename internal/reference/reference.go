// Package reference computes VaR and CVaR the expensive way, from a full
// sorted sample, so the recursive estimators have something to be checked
// against.
package reference

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/services/risk"
)

// Simulate draws n losses
func Simulate(src distribution.Sampler, phi loss.Func, n int) []float64 {
	if phi == nil {
		phi = loss.Identity
	}
	losses := make([]float64, n)
	for i := range losses {
		losses[i] = phi(src.Rand())
	}
	return losses
}

// Batch returns the empirical alpha-quantile of losses and the mean of the
// losses at or above it. losses is not modified.
func Batch(losses []float64, alpha float64) risk.Estimate {
	if len(losses) == 0 {
		return risk.Estimate{VaR: nan(), CVaR: nan()}
	}
	sorted := make([]float64, len(losses))
	copy(sorted, losses)
	sort.Float64s(sorted)

	v := stat.Quantile(alpha, stat.Empirical, sorted, nil)
	i := sort.SearchFloat64s(sorted, v)
	return risk.Estimate{VaR: v, CVaR: stat.Mean(sorted[i:], nil)}
}

// Estimate simulates n losses and returns their empirical VaR and CVaR
func Estimate(src distribution.Sampler, phi loss.Func, alpha float64, n int) risk.Estimate {
	return Batch(Simulate(src, phi, n), alpha)
}

// StreamingVaR feeds losses through a P2 estimator and returns its
// alpha-quantile. It needs constant memory and serves as a second,
// non-recursive check when the sample is too large to sort.
func StreamingVaR(losses []float64, alpha float64) float64 {
	q := NewP2Quantile(alpha)
	for _, x := range losses {
		q.Add(x)
	}
	return q.Quantile()
}

func nan() float64 {
	return math.NaN()
}
