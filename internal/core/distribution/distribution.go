// Package distribution provides the random sources consumed by the
// estimators together with the closed-form parameters the importance
// sampling estimator needs for each supported family.
package distribution

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

var (
	// ErrUnsupportedDistribution is returned for family names without an
	// importance sampling parameter set.
	ErrUnsupportedDistribution = errors.New("unsupported distribution")
	// ErrInvalidParameter is returned when a family is built with parameters
	// outside its domain.
	ErrInvalidParameter = errors.New("invalid distribution parameter")
)

// Supported family names
const (
	NameNormal      = "normal"
	NameExponential = "exponential"
)

// Sampler produces one random draw per call and advances its generator.
// Any gonum distuv distribution satisfies it.
type Sampler interface {
	Rand() float64
}

// SamplerFunc adapts a plain function to the Sampler interface
type SamplerFunc func() float64

// Rand calls f
func (f SamplerFunc) Rand() float64 {
	return f()
}

// Family is a sampler with the parameter table of the importance sampling
// estimator: the constants b and rho of the exponential control
// exp(-rho*|theta|^b), the density ratio Incr(x, theta) = p(x+theta)/p(x)
// and the score weight W used by the shift gradients.
//
// Only the families in this package implement Family.
type Family interface {
	Sampler

	Name() string
	B() float64
	Rho() float64
	Incr(x, theta float64) float64
	W(x, theta float64) float64

	// VaR and CVaR return the closed-form values for the identity loss
	VaR(alpha float64) float64
	CVaR(alpha float64) float64

	sealed()
}

// Params carries the union of the parameters of the supported families
type Params struct {
	Mean   float64 `mapstructure:"mean" json:"mean"`
	StdDev float64 `mapstructure:"stddev" json:"stddev"`
	Rate   float64 `mapstructure:"rate" json:"rate"`
}

// NewSource returns a seeded generator for the families in this package
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// New builds the family called name from p, drawing from src
func New(name string, p Params, src rand.Source) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameNormal:
		return NewNormal(p.Mean, p.StdDev, src)
	case NameExponential:
		return NewExponential(p.Rate, src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDistribution, name)
	}
}

// Names lists the supported family names
func Names() []string {
	return []string{NameNormal, NameExponential}
}
