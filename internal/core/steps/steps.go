// Package steps provides the learning-rate schedules that drive the
// stochastic approximation recursions.
package steps

import "math"

// Schedule returns the step size for iteration n (n >= 1).
// A usable schedule is positive and non-increasing with a divergent sum
// and a convergent sum of squares.
type Schedule func(n int) float64

// Inverse is the classic 1/n schedule.
func Inverse(n int) float64 {
	return 1 / float64(n)
}

// InversePow returns the schedule 1/(n^exponent + offset).
// exponent is expected in (0, 1] and offset >= 0.
func InversePow(exponent, offset float64) Schedule {
	if exponent == 1 {
		return func(n int) float64 {
			return 1 / (float64(n) + offset)
		}
	}
	return func(n int) float64 {
		return 1 / (math.Pow(float64(n), exponent) + offset)
	}
}

// Constant returns a fixed step size. It does not satisfy the convergence
// conditions and is meant for tests and exploratory runs.
func Constant(gamma float64) Schedule {
	return func(int) float64 {
		return gamma
	}
}
