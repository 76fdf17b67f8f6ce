// Package runner wires a configuration into one estimation run: it builds
// the random source, loss and kernel, executes the kernel and reports the
// result alongside closed-form and batch reference values.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victoralfred/varcvar/internal/config"
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/loss"
	"github.com/victoralfred/varcvar/internal/core/services/risk"
	"github.com/victoralfred/varcvar/internal/metrics"
	"github.com/victoralfred/varcvar/internal/reference"
)

// Report is the outcome of one run
type Report struct {
	RunID        string        `json:"run_id"`
	Method       risk.Method   `json:"method"`
	Distribution string        `json:"distribution"`
	Loss         string        `json:"loss"`
	Alpha        float64       `json:"alpha"`
	Iterations   int           `json:"iterations"`
	Averaging    string        `json:"averaging"`
	Seed         uint64        `json:"seed"`
	Estimate     risk.Estimate `json:"estimate"`

	// Analytic holds the closed-form values when the loss is the identity
	Analytic *risk.Estimate `json:"analytic,omitempty"`
	// Reference holds the batch estimate when requested
	Reference *risk.Estimate `json:"reference,omitempty"`
	// StreamingVaR is the P2 quantile of the reference sample
	StreamingVaR *float64 `json:"streaming_var,omitempty"`
	// Threshold is the VaR fed to the Monte Carlo estimator
	Threshold *float64 `json:"threshold,omitempty"`
	// Theta and Mu are the shifts found by importance sampling
	Theta *float64 `json:"theta,omitempty"`
	Mu    *float64 `json:"mu,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Lines formats the report the way the command line prints it: the
// estimate on the first line, then the closed form when known.
func (r *Report) Lines() []string {
	lines := []string{formatPair(r.Estimate)}
	if r.Analytic != nil {
		lines = append(lines, formatPair(*r.Analytic))
	}
	return lines
}

func formatPair(e risk.Estimate) string {
	return strconv.FormatFloat(e.VaR, 'g', 6, 64) + "," + strconv.FormatFloat(e.CVaR, 'g', 6, 64)
}

// Runner executes estimation runs
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a runner. A nil logger discards logs and nil metrics are
// not recorded.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, metrics: m, now: time.Now}
}

// Run validates the configuration and executes one estimation
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	cfg := r.cfg
	method := cfg.MethodName()
	report := &Report{
		RunID:        uuid.New().String(),
		Method:       method,
		Distribution: strings.ToLower(cfg.Distribution.Name),
		Loss:         strings.ToLower(cfg.Loss.Name),
		Alpha:        cfg.Estimation.Alpha,
		Iterations:   cfg.Estimation.Iterations,
		Averaging:    cfg.AveragingMode().String(),
		Seed:         cfg.Distribution.Seed,
		StartedAt:    r.now(),
	}
	if report.Seed == 0 {
		report.Seed = uint64(report.StartedAt.UnixNano())
	}

	logger := r.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("method", string(method)),
	)
	logger.Info("estimation started",
		zap.String("distribution", report.Distribution),
		zap.String("loss", report.Loss),
		zap.Float64("alpha", report.Alpha),
		zap.Int("iterations", report.Iterations),
		zap.String("averaging", report.Averaging),
		zap.Float64("step_exponent", cfg.Step.Exponent),
		zap.Float64("step_offset", cfg.Step.Offset),
		zap.Uint64("seed", report.Seed),
	)

	err := r.execute(report, logger)
	report.Elapsed = r.now().Sub(report.StartedAt)
	if r.metrics != nil {
		r.metrics.ObserveRun(string(method), report.Iterations, report.Elapsed, err)
	}
	if err != nil {
		logger.Error("estimation failed", zap.Error(err))
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.SetResult(string(method), report.Estimate.VaR, report.Estimate.CVaR)
		if report.Analytic != nil {
			r.metrics.SetError(string(method),
				math.Abs(report.Estimate.VaR-report.Analytic.VaR),
				math.Abs(report.Estimate.CVaR-report.Analytic.CVaR))
		}
	}

	fields := []zap.Field{
		zap.Float64("var", report.Estimate.VaR),
		zap.Float64("cvar", report.Estimate.CVaR),
		zap.Duration("elapsed", report.Elapsed),
	}
	if report.Analytic != nil {
		fields = append(fields,
			zap.Float64("analytic_var", report.Analytic.VaR),
			zap.Float64("analytic_cvar", report.Analytic.CVaR))
	}
	logger.Info("estimation finished", fields...)
	return report, nil
}

func (r *Runner) execute(report *Report, logger *zap.Logger) error {
	cfg := r.cfg
	family, err := distribution.New(cfg.Distribution.Name, cfg.Distribution.Params(), distribution.NewSource(report.Seed))
	if err != nil {
		return risk.NewCalculationError("build_distribution", err).WithRunID(report.RunID)
	}
	phi, err := cfg.Loss.Func()
	if err != nil {
		return err
	}

	kc := risk.KernelConfig{
		Alpha:      cfg.Estimation.Alpha,
		Iterations: cfg.Estimation.Iterations,
		Step:       cfg.Step.Schedule(),
		Loss:       phi,
		Averaging:  cfg.AveragingMode(),
	}

	switch report.Method {
	case risk.MethodVaR:
		report.Estimate = risk.NewVaRKernel(kc).Estimate(family)
	case risk.MethodCVaR:
		report.Estimate = risk.NewCVaRKernel(kc).Estimate(family)
	case risk.MethodStochasticGradient:
		report.Estimate = risk.NewStochasticGradientKernel(kc).Compute(family)
	case risk.MethodImportanceSampling:
		res := risk.NewImportanceSamplingKernel(risk.ImportanceSamplingConfig{
			KernelConfig: kc,
			A:            cfg.Estimation.A,
		}).Run(family)
		report.Estimate = res.Estimate
		report.Theta = &res.Theta
		report.Mu = &res.Mu
		logger.Debug("importance sampling shifts",
			zap.Int("phase1_steps", res.Phase1Steps),
			zap.Float64("phase1_var", res.Phase1VaR),
			zap.Float64("theta", res.Theta),
			zap.Float64("mu", res.Mu),
		)
	case risk.MethodMonteCarlo:
		threshold := r.threshold(kc, family, logger)
		report.Threshold = &threshold
		report.Estimate = risk.NewMonteCarloCVaRKernel(risk.MonteCarloConfig{
			Alpha:      kc.Alpha,
			Threshold:  threshold,
			Iterations: kc.Iterations,
			Loss:       phi,
		}).Estimate(family)
	default:
		return risk.NewUnsupportedMethodError("execute", string(report.Method)).WithRunID(report.RunID)
	}

	if err := risk.CheckEstimate(report.Method, report.Estimate); err != nil {
		var re *risk.RiskError
		if errors.As(err, &re) {
			re.WithRunID(report.RunID)
		}
		return err
	}

	if cfg.Loss.IsIdentity() {
		report.Analytic = &risk.Estimate{
			VaR:  family.VaR(kc.Alpha),
			CVaR: family.CVaR(kc.Alpha),
		}
	}
	if n := cfg.Estimation.Reference; n > 0 {
		losses, err := r.referenceSample(report.Seed, phi, n)
		if err != nil {
			return err
		}
		ref := reference.Batch(losses, kc.Alpha)
		streaming := reference.StreamingVaR(losses, kc.Alpha)
		report.Reference = &ref
		report.StreamingVaR = &streaming
		logger.Debug("reference estimate",
			zap.Int("draws", n),
			zap.Float64("var", ref.VaR),
			zap.Float64("cvar", ref.CVaR),
			zap.Float64("streaming_var", streaming),
		)
	}
	return nil
}

// threshold returns the configured Monte Carlo threshold or estimates one
// with a preliminary VaR run on the same source
func (r *Runner) threshold(kc risk.KernelConfig, src distribution.Sampler, logger *zap.Logger) float64 {
	if t := r.cfg.Estimation.Threshold; t != nil {
		return *t
	}
	kc.Averaging = risk.AveragingNo
	t := risk.NewVaRKernel(kc).Compute(src)
	logger.Info("estimated monte carlo threshold", zap.Float64("threshold", t))
	return t
}

// referenceSample draws n losses from a stream independent of the
// estimator's
func (r *Runner) referenceSample(seed uint64, phi loss.Func, n int) ([]float64, error) {
	cfg := r.cfg
	src, err := distribution.New(cfg.Distribution.Name, cfg.Distribution.Params(), distribution.NewSource(seed+1))
	if err != nil {
		return nil, fmt.Errorf("building reference source: %w", err)
	}
	return reference.Simulate(src, phi, n), nil
}
