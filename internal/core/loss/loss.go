// Package loss defines the deterministic transforms applied to raw draws
// before they enter the estimators.
package loss

import (
	"fmt"
	"math"
)

// Func maps a raw random draw to a loss value
type Func func(x float64) float64

// Identity returns the draw unchanged
func Identity(x float64) float64 {
	return x
}

// ShortPutParams describes a short European put position whose underlying
// follows a log-normal model driven by a standard normal draw.
type ShortPutParams struct {
	Spot       float64 `mapstructure:"spot" json:"spot"`
	Strike     float64 `mapstructure:"strike" json:"strike"`
	Rate       float64 `mapstructure:"rate" json:"rate"`
	Volatility float64 `mapstructure:"volatility" json:"volatility"`
	Maturity   float64 `mapstructure:"maturity" json:"maturity"`
	Premium    float64 `mapstructure:"premium" json:"premium"`
}

// DefaultShortPutParams returns the reference position: spot 100, strike 110,
// 5% rate, 20% volatility, one year, premium 10.7.
func DefaultShortPutParams() ShortPutParams {
	return ShortPutParams{
		Spot:       100,
		Strike:     110,
		Rate:       0.05,
		Volatility: 0.2,
		Maturity:   1,
		Premium:    10.7,
	}
}

// Validate checks the parameters describe a real position
func (p ShortPutParams) Validate() error {
	if p.Spot <= 0 {
		return fmt.Errorf("spot must be positive, got %v", p.Spot)
	}
	if p.Strike <= 0 {
		return fmt.Errorf("strike must be positive, got %v", p.Strike)
	}
	if p.Volatility <= 0 {
		return fmt.Errorf("volatility must be positive, got %v", p.Volatility)
	}
	if p.Maturity <= 0 {
		return fmt.Errorf("maturity must be positive, got %v", p.Maturity)
	}
	return nil
}

// ShortPut returns the loss of the seller of a put at maturity, net of the
// premium carried forward at the risk-free rate.
func ShortPut(p ShortPutParams) Func {
	drift := (p.Rate - 0.5*p.Volatility*p.Volatility) * p.Maturity
	diffusion := p.Volatility * math.Sqrt(p.Maturity)
	carried := math.Exp(p.Rate*p.Maturity) * p.Premium

	return func(x float64) float64 {
		spot := p.Spot * math.Exp(drift+diffusion*x)
		return math.Max(p.Strike-spot, 0) - carried
	}
}
