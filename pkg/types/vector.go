package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxDim is the largest number of components a Vector can hold
const MaxDim = 3

// Vector is a small fixed-size tuple of float64 values used as estimator state.
// It is a plain value: copying a Vector copies its components.
type Vector struct {
	v   [MaxDim]float64
	dim int
}

// Scalar creates a one-component vector
func Scalar(x float64) Vector {
	return Vector{v: [MaxDim]float64{x}, dim: 1}
}

// Pair creates a two-component vector
func Pair(x, y float64) Vector {
	return Vector{v: [MaxDim]float64{x, y}, dim: 2}
}

// Triple creates a three-component vector
func Triple(x, y, z float64) Vector {
	return Vector{v: [MaxDim]float64{x, y, z}, dim: 3}
}

// NewVector creates a vector from a slice of at most MaxDim values
func NewVector(values ...float64) (Vector, error) {
	if len(values) > MaxDim {
		return Vector{}, fmt.Errorf("vector supports at most %d components, got %d", MaxDim, len(values))
	}
	var out Vector
	copy(out.v[:], values)
	out.dim = len(values)
	return out, nil
}

// Len returns the number of components
func (a Vector) Len() int {
	return a.dim
}

// At returns component i. Reading past Len returns 0.
func (a Vector) At(i int) float64 {
	if i < 0 || i >= MaxDim {
		return 0
	}
	return a.v[i]
}

// Float64 returns the first component
func (a Vector) Float64() float64 {
	return a.v[0]
}

// Slice returns a copy of the components
func (a Vector) Slice() []float64 {
	out := make([]float64, a.dim)
	copy(out, a.v[:a.dim])
	return out
}

// Add returns a + b
func (a Vector) Add(b Vector) Vector {
	a.mustMatch(b)
	for i := 0; i < a.dim; i++ {
		a.v[i] += b.v[i]
	}
	return a
}

// Sub returns a - b
func (a Vector) Sub(b Vector) Vector {
	a.mustMatch(b)
	for i := 0; i < a.dim; i++ {
		a.v[i] -= b.v[i]
	}
	return a
}

// Scale returns f * a
func (a Vector) Scale(f float64) Vector {
	for i := 0; i < a.dim; i++ {
		a.v[i] *= f
	}
	return a
}

// Div returns a / f
func (a Vector) Div(f float64) Vector {
	for i := 0; i < a.dim; i++ {
		a.v[i] /= f
	}
	return a
}

// Equal reports whether both vectors have the same dimension and components
func (a Vector) Equal(b Vector) bool {
	return a.dim == b.dim && a.v == b.v
}

// IsZero returns true if every component is zero
func (a Vector) IsZero() bool {
	for i := 0; i < a.dim; i++ {
		if a.v[i] != 0 {
			return false
		}
	}
	return true
}

// String formats the components as comma separated values
func (a Vector) String() string {
	parts := make([]string, a.dim)
	for i := 0; i < a.dim; i++ {
		parts[i] = strconv.FormatFloat(a.v[i], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON implements json.Marshaler
func (a Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Slice())
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Vector) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	v, err := NewVector(values...)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Vector) mustMatch(b Vector) {
	if a.dim != b.dim {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", a.dim, b.dim))
	}
}
