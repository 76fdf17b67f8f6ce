package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/victoralfred/varcvar/pkg/types"
)

func TestAveraging_ConstantSequence(t *testing.T) {
	tests := []struct {
		name  string
		value types.Vector
	}{
		{"scalar", types.Scalar(2.5)},
		{"pair", types.Pair(-1, 3)},
		{"triple", types.Triple(0.1, 0.2, 0.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := NewAveraging(&scriptedSequence{values: []types.Vector{tt.value}})
			for i := 0; i < 50; i++ {
				got := avg.Next()
				for j := 0; j < tt.value.Len(); j++ {
					assert.InDelta(t, tt.value.At(j), got.At(j), 1e-12)
				}
			}
		})
	}
}

func TestAveraging_RunningMeanDropsSeed(t *testing.T) {
	seq := &scriptedSequence{values: []types.Vector{
		types.Scalar(10), types.Scalar(1), types.Scalar(2), types.Scalar(3), types.Scalar(6),
	}}
	avg := NewAveraging(seq)

	want := []float64{10, 1, 1.5, 2, 3}
	for i, w := range want {
		assert.InDelta(t, w, avg.Next().At(0), 1e-12, "step %d", i)
	}
}

func TestAveraging_ElementWise(t *testing.T) {
	seq := &scriptedSequence{values: []types.Vector{
		types.Pair(0, 0), types.Pair(1, 10), types.Pair(3, 30),
	}}
	got := Iterate(NewAveraging(seq), 3)

	assert.InDelta(t, 2.0, got.At(0), 1e-12)
	assert.InDelta(t, 20.0, got.At(1), 1e-12)
}

func TestAveragingMode_Wrap(t *testing.T) {
	seq := &scriptedSequence{values: []types.Vector{types.Scalar(1)}}
	assert.Same(t, seq, AveragingNo.wrap(seq))
	assert.IsType(t, &Averaging{}, AveragingYes.wrap(seq))
}
