package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/services/risk"
	"github.com/victoralfred/varcvar/internal/core/steps"
	"github.com/victoralfred/varcvar/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. VARCVAR_ESTIMATION_ALPHA
const EnvPrefix = "VARCVAR"

// MinIterations is the exclusive lower bound on the iteration budget
const MinIterations = 100

// Loss names
const (
	LossIdentity = "identity"
	LossShortPut = "short-put"
)

// Config holds the configuration of one estimation run
type Config struct {
	Estimation   EstimationConfig   `mapstructure:"estimation"`
	Step         StepConfig         `mapstructure:"step"`
	Distribution DistributionConfig `mapstructure:"distribution"`
	Loss         LossConfig         `mapstructure:"loss"`
	Logging      logging.LogConfig  `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// EstimationConfig selects the estimator and its budget
type EstimationConfig struct {
	Method     string  `mapstructure:"method"`
	Alpha      float64 `mapstructure:"alpha"`
	Iterations int     `mapstructure:"iterations"`
	Averaging  string  `mapstructure:"averaging"`
	// A bounds the growth of the squared loss in importance sampling
	A float64 `mapstructure:"a"`
	// Threshold is the VaR used by the Monte Carlo estimator; when unset
	// a recursive VaR run provides it
	Threshold *float64 `mapstructure:"threshold"`
	// Reference adds a batch estimate over this many extra draws
	Reference int `mapstructure:"reference"`
}

// StepConfig describes the schedule 1/(n^exponent + offset)
type StepConfig struct {
	Exponent float64 `mapstructure:"exponent"`
	Offset   float64 `mapstructure:"offset"`
}

// DistributionConfig selects the random source
type DistributionConfig struct {
	Name   string  `mapstructure:"name"`
	Mean   float64 `mapstructure:"mean"`
	StdDev float64 `mapstructure:"stddev"`
	Rate   float64 `mapstructure:"rate"`
	// Seed of zero picks a time-based seed
	Seed uint64 `mapstructure:"seed"`
}

// LossConfig selects the loss transform
type LossConfig struct {
	Name     string              `mapstructure:"name"`
	ShortPut loss.ShortPutParams `mapstructure:"short_put"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	// File receives the registry in text format after the run
	File string `mapstructure:"file"`
}

// New returns a viper instance with defaults and environment overrides
// registered
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("estimation.threshold")
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("estimation.method", string(risk.MethodStochasticGradient))
	v.SetDefault("estimation.alpha", 0.95)
	v.SetDefault("estimation.iterations", 1_000_000)
	v.SetDefault("estimation.averaging", "no")
	v.SetDefault("estimation.a", 1.0)
	v.SetDefault("estimation.reference", 0)

	v.SetDefault("step.exponent", 1.0)
	v.SetDefault("step.offset", 0.0)

	v.SetDefault("distribution.name", distribution.NameNormal)
	v.SetDefault("distribution.mean", 0.0)
	v.SetDefault("distribution.stddev", 1.0)
	v.SetDefault("distribution.rate", 1.0)
	v.SetDefault("distribution.seed", 0)

	sp := loss.DefaultShortPutParams()
	v.SetDefault("loss.name", LossIdentity)
	v.SetDefault("loss.short_put.spot", sp.Spot)
	v.SetDefault("loss.short_put.strike", sp.Strike)
	v.SetDefault("loss.short_put.rate", sp.Rate)
	v.SetDefault("loss.short_put.volatility", sp.Volatility)
	v.SetDefault("loss.short_put.maturity", sp.Maturity)
	v.SetDefault("loss.short_put.premium", sp.Premium)

	lc := logging.DefaultLogConfig()
	v.SetDefault("logging.level", lc.Level)
	v.SetDefault("logging.format", lc.Format)
	v.SetDefault("logging.output", lc.Output)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size", lc.MaxSize)
	v.SetDefault("logging.max_backups", lc.MaxBackups)
	v.SetDefault("logging.max_age", lc.MaxAge)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "varcvar")
	v.SetDefault("metrics.file", "")
}

// Load reads the optional YAML file at path into v and decodes the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with no file, flags or environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := Load(v, "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks every field an estimation run depends on
func (c *Config) Validate() error {
	const op = "validate_config"

	method, err := risk.ParseMethod(c.Estimation.Method)
	if err != nil {
		return err
	}
	if !(c.Estimation.Alpha > 0 && c.Estimation.Alpha < 1) {
		return risk.NewInvalidConfidenceError(op, c.Estimation.Alpha)
	}
	if c.Estimation.Iterations <= MinIterations {
		return risk.NewInvalidIterationsError(op, c.Estimation.Iterations, MinIterations)
	}
	if _, err := risk.ParseAveragingMode(c.Estimation.Averaging); err != nil {
		return err
	}
	if c.Estimation.Reference < 0 {
		return risk.NewRiskError(risk.ErrInvalidConfig, "reference sample size must not be negative", op).
			WithDetails("reference", c.Estimation.Reference)
	}
	if method == risk.MethodImportanceSampling && !(c.Estimation.A > 0) {
		return risk.NewRiskError(risk.ErrInvalidConfig, "exponential control constant must be positive", op).
			WithDetails("a", c.Estimation.A)
	}
	if t := c.Estimation.Threshold; t != nil && (math.IsNaN(*t) || math.IsInf(*t, 0)) {
		return risk.NewRiskError(risk.ErrInvalidThreshold, "threshold must be finite", op).
			WithDetails("threshold", *t)
	}

	if !(c.Step.Exponent > 0 && c.Step.Exponent <= 1) {
		return risk.NewRiskError(risk.ErrInvalidStep, "step exponent must be in (0, 1]", op).
			WithDetails("exponent", c.Step.Exponent)
	}
	if c.Step.Offset < 0 {
		return risk.NewRiskError(risk.ErrInvalidStep, "step offset must not be negative", op).
			WithDetails("offset", c.Step.Offset)
	}

	if _, err := distribution.New(c.Distribution.Name, c.Distribution.Params(), nil); err != nil {
		code := risk.ErrInvalidConfig
		if errors.Is(err, distribution.ErrUnsupportedDistribution) {
			code = risk.ErrUnsupportedDistribution
		}
		return risk.NewRiskError(code, "cannot build distribution", op).
			WithDetails("distribution", c.Distribution.Name).
			WithExpected("distributions", distribution.Names()).
			WithCause(err)
	}

	if _, err := c.Loss.Func(); err != nil {
		return err
	}
	return nil
}

// MethodName returns the parsed estimation method
func (c *Config) MethodName() risk.Method {
	m, _ := risk.ParseMethod(c.Estimation.Method)
	return m
}

// AveragingMode returns the parsed averaging switch
func (c *Config) AveragingMode() risk.AveragingMode {
	m, _ := risk.ParseAveragingMode(c.Estimation.Averaging)
	return m
}

// Schedule returns the configured step schedule
func (s StepConfig) Schedule() steps.Schedule {
	if s.Exponent == 1 && s.Offset == 0 {
		return steps.Inverse
	}
	return steps.InversePow(s.Exponent, s.Offset)
}

// Params returns the family parameters
func (d DistributionConfig) Params() distribution.Params {
	return distribution.Params{Mean: d.Mean, StdDev: d.StdDev, Rate: d.Rate}
}

// Func returns the configured loss transform
func (l LossConfig) Func() (loss.Func, error) {
	switch strings.ToLower(strings.TrimSpace(l.Name)) {
	case LossIdentity, "":
		return loss.Identity, nil
	case LossShortPut:
		if err := l.ShortPut.Validate(); err != nil {
			return nil, risk.NewRiskError(risk.ErrInvalidConfig, "invalid short put parameters", "validate_config").
				WithCause(err)
		}
		return loss.ShortPut(l.ShortPut), nil
	default:
		return nil, risk.NewRiskError(risk.ErrUnsupportedLoss,
			fmt.Sprintf("unsupported loss %q", l.Name), "validate_config").
			WithExpected("losses", []string{LossIdentity, LossShortPut})
	}
}

// IsIdentity reports whether the loss leaves draws unchanged
func (l LossConfig) IsIdentity() bool {
	name := strings.ToLower(strings.TrimSpace(l.Name))
	return name == "" || name == LossIdentity
}
