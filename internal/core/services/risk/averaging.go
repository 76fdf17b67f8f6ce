package risk

import "github.com/victoralfred/varcvar/pkg/types"

// Averaging wraps a sequence and returns the running mean of its outputs.
// The first call passes the seed through; from then on
//
//	avg <- avg - (avg - y) / n
//
// with n the number of calls already made, so after k updates avg is the
// plain mean of the k updated values and the seed drops out.
type Averaging struct {
	inner Sequence
	avg   types.Vector
	n     int
}

// NewAveraging wraps inner
func NewAveraging(inner Sequence) *Averaging {
	return &Averaging{inner: inner}
}

// Next steps the wrapped sequence and returns the running mean
func (a *Averaging) Next() types.Vector {
	y := a.inner.Next()
	if a.n == 0 {
		a.avg = y
	} else {
		a.avg = a.avg.Sub(a.avg.Sub(y).Div(float64(a.n)))
	}
	a.n++
	return a.avg
}
