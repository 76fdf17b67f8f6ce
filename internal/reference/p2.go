package reference

import (
	"math"
	"sort"
)

// P2Quantile implements the P² algorithm for online quantile estimation
// with five markers: O(1) memory and O(1) work per observation.
type P2Quantile struct {
	p       float64
	heights [5]float64 // marker heights
	pos     [5]float64 // actual marker positions
	desired [5]float64 // desired marker positions
	incr    [5]float64 // desired position increments
	count   int
}

// NewP2Quantile creates an estimator of the p-quantile
func NewP2Quantile(p float64) *P2Quantile {
	return &P2Quantile{
		p:    p,
		incr: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

// Add processes one observation
func (q *P2Quantile) Add(x float64) {
	if q.count < 5 {
		q.heights[q.count] = x
		q.count++
		if q.count == 5 {
			q.initialize()
		}
		return
	}
	q.count++

	var k int
	switch {
	case x < q.heights[0]:
		q.heights[0] = x
		k = 0
	case x >= q.heights[4]:
		q.heights[4] = x
		k = 3
	default:
		for k = 0; k < 3; k++ {
			if x < q.heights[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		q.pos[i]++
	}
	for i := range q.desired {
		q.desired[i] += q.incr[i]
	}

	for i := 1; i < 4; i++ {
		d := q.desired[i] - q.pos[i]
		if (d >= 1 && q.pos[i+1]-q.pos[i] > 1) || (d <= -1 && q.pos[i-1]-q.pos[i] < -1) {
			s := 1.0
			if d < 0 {
				s = -1
			}
			h := q.parabolic(i, s)
			if q.heights[i-1] < h && h < q.heights[i+1] {
				q.heights[i] = h
			} else {
				q.heights[i] = q.linear(i, s)
			}
			q.pos[i] += s
		}
	}
}

// Quantile returns the current estimate. With fewer than five observations
// it interpolates the sorted sample.
func (q *P2Quantile) Quantile() float64 {
	if q.count >= 5 {
		return q.heights[2]
	}
	if q.count == 0 {
		return math.NaN()
	}
	sorted := make([]float64, q.count)
	copy(sorted, q.heights[:q.count])
	sort.Float64s(sorted)

	index := q.p * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	w := index - float64(lower)
	return sorted[lower]*(1-w) + sorted[lower+1]*w
}

// Count returns the number of observations seen
func (q *P2Quantile) Count() int {
	return q.count
}

func (q *P2Quantile) initialize() {
	sort.Float64s(q.heights[:])
	p := q.p
	q.pos = [5]float64{1, 2, 3, 4, 5}
	q.desired = [5]float64{1, 1 + 2*p, 1 + 4*p, 3 + 2*p, 5}
}

func (q *P2Quantile) parabolic(i int, s float64) float64 {
	h, n := q.heights, q.pos
	return h[i] + s/(n[i+1]-n[i-1])*
		((n[i]-n[i-1]+s)*(h[i+1]-h[i])/(n[i+1]-n[i])+
			(n[i+1]-n[i]-s)*(h[i]-h[i-1])/(n[i]-n[i-1]))
}

func (q *P2Quantile) linear(i int, s float64) float64 {
	j := i + int(s)
	return q.heights[i] + s*(q.heights[j]-q.heights[i])/(q.pos[j]-q.pos[i])
}
