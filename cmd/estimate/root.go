package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/victoralfred/varcvar/internal/config"
	"github.com/victoralfred/varcvar/internal/core/distribution"
	"github.com/victoralfred/varcvar/internal/core/services/risk"
	"github.com/victoralfred/varcvar/internal/logging"
	"github.com/victoralfred/varcvar/internal/metrics"
	"github.com/victoralfred/varcvar/internal/runner"
)

// flag name -> configuration key
var flagKeys = map[string]string{
	"method":       "estimation.method",
	"averaging":    "estimation.averaging",
	"a":            "estimation.a",
	"reference":    "estimation.reference",
	"distribution": "distribution.name",
	"mean":         "distribution.mean",
	"stddev":       "distribution.stddev",
	"rate":         "distribution.rate",
	"seed":         "distribution.seed",
	"loss":         "loss.name",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-file": "metrics.file",
}

func newRootCmd() *cobra.Command {
	v := config.New()
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	var configPath string

	cmd := &cobra.Command{
		Use:   "estimate [alpha] [N]",
		Short: "Estimate VaR and CVaR by stochastic approximation",
		Long: `estimate runs a recursive Value-at-Risk and Conditional Value-at-Risk
estimator over N draws and prints "var,cvar". With the identity loss the
closed-form values follow on a second line.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindArgs(cmd, v, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.String("method", string(risk.MethodStochasticGradient), "estimator: "+strings.Join(risk.MethodNames(), ", "))
	f.String("averaging", "no", "Polyak-Ruppert averaging: yes or no")
	f.Float64Slice("step", []float64{1, 0}, "step schedule exponent and offset, gamma(n) = 1/(n^exponent + offset)")
	f.Float64("a", 1, "importance sampling control constant")
	f.Float64("threshold", 0, "Monte Carlo threshold; estimated with a VaR run when omitted")
	f.Int("reference", 0, "draws for an additional batch estimate")
	f.String("distribution", distribution.NameNormal, "source distribution: "+strings.Join(distribution.Names(), ", "))
	f.Float64("mean", 0, "normal mean")
	f.Float64("stddev", 1, "normal standard deviation")
	f.Float64("rate", 1, "exponential rate")
	f.Uint64("seed", 0, "random seed, 0 for a time-based seed")
	f.String("loss", config.LossIdentity, "loss transform: identity or short-put")
	f.String("log-level", "warn", "log level")
	f.String("log-format", "console", "log format: json or console")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
	return cmd
}

// bindArgs moves positional arguments and multi-value flags into v
func bindArgs(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if len(args) > 0 {
		alpha, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bad alpha value: %s", args[0])
		}
		v.Set("estimation.alpha", alpha)
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad N value: %s", args[1])
		}
		v.Set("estimation.iterations", n)
	}

	f := cmd.Flags()
	if f.Changed("step") {
		step, err := f.GetFloat64Slice("step")
		if err != nil {
			return err
		}
		if len(step) != 2 {
			return fmt.Errorf("--step takes an exponent and an offset, got %d values", len(step))
		}
		v.Set("step.exponent", step[0])
		v.Set("step.offset", step[1])
	}
	if f.Changed("threshold") {
		t, err := f.GetFloat64("threshold")
		if err != nil {
			return err
		}
		v.Set("estimation.threshold", t)
	}
	return nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger, closer, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
		if closer != nil {
			_ = closer.Close()
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled || cfg.Metrics.File != "" {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := runner.New(cfg, logger, m).Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, line := range report.Lines() {
		fmt.Fprintln(out, line)
	}

	if m != nil && cfg.Metrics.File != "" {
		if err := m.WriteFile(cfg.Metrics.File); err != nil {
			logger.Error("failed to write metrics", zap.String("path", cfg.Metrics.File), zap.Error(err))
			return err
		}
	}
	return nil
}
