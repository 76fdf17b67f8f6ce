package risk

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/victoralfred/varcvar/internal/core/distribution"
)

// mockSampler hands out scripted draws
type mockSampler struct {
	mock.Mock
}

func (m *mockSampler) Rand() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}

func newMockSampler(draws ...float64) *mockSampler {
	m := &mockSampler{}
	for _, d := range draws {
		m.On("Rand").Return(d).Once()
	}
	return m
}

// scriptedNormal keeps the normal parameter table but replays fixed draws
type scriptedNormal struct {
	*distribution.Normal
	draws []float64
	calls int
}

func (s *scriptedNormal) Rand() float64 {
	d := s.draws[s.calls]
	s.calls++
	return d
}

func newScriptedNormal(t *testing.T, draws ...float64) *scriptedNormal {
	t.Helper()
	n, err := distribution.NewNormal(0, 1, nil)
	require.NoError(t, err)
	return &scriptedNormal{Normal: n, draws: draws}
}

func newExponential(t *testing.T, rate float64, seed uint64) *distribution.Exponential {
	t.Helper()
	e, err := distribution.NewExponential(rate, distribution.NewSource(seed))
	require.NoError(t, err)
	return e
}

func newNormal(t *testing.T, mean, stddev float64, seed uint64) *distribution.Normal {
	t.Helper()
	n, err := distribution.NewNormal(mean, stddev, distribution.NewSource(seed))
	require.NoError(t, err)
	return n
}
