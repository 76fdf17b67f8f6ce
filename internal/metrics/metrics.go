// Package metrics provides Prometheus metrics for estimation runs.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by the runner
type Metrics struct {
	Registry *prometheus.Registry

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	Iterations  *prometheus.HistogramVec

	// Result metrics
	LastVaR           *prometheus.GaugeVec
	LastCVaR          *prometheus.GaugeVec
	AbsoluteErrorVaR  *prometheus.GaugeVec
	AbsoluteErrorCVaR *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "varcvar"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "runs_total",
			Help:      "Total number of estimation runs by method and status",
		}, []string{"method", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of estimation runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"method"}),
		Iterations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "iterations",
			Help:      "Iteration budget of estimation runs",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}, []string{"method"}),

		LastVaR: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result",
			Name:      "var",
			Help:      "Most recent VaR estimate",
		}, []string{"method"}),
		LastCVaR: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result",
			Name:      "cvar",
			Help:      "Most recent CVaR estimate",
		}, []string{"method"}),
		AbsoluteErrorVaR: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result",
			Name:      "var_abs_error",
			Help:      "Absolute distance of the most recent VaR estimate from the closed form",
		}, []string{"method"}),
		AbsoluteErrorCVaR: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result",
			Name:      "cvar_abs_error",
			Help:      "Absolute distance of the most recent CVaR estimate from the closed form",
		}, []string{"method"}),
	}
}

// ObserveRun records one finished run
func (m *Metrics) ObserveRun(method string, iterations int, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(method, status).Inc()
	m.RunDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.Iterations.WithLabelValues(method).Observe(float64(iterations))
}

// SetResult records the estimate of a successful run. NaN components are
// skipped.
func (m *Metrics) SetResult(method string, varEstimate, cvarEstimate float64) {
	if !math.IsNaN(varEstimate) {
		m.LastVaR.WithLabelValues(method).Set(varEstimate)
	}
	if !math.IsNaN(cvarEstimate) {
		m.LastCVaR.WithLabelValues(method).Set(cvarEstimate)
	}
}

// SetError records the distance to the closed-form values
func (m *Metrics) SetError(method string, varError, cvarError float64) {
	if !math.IsNaN(varError) {
		m.AbsoluteErrorVaR.WithLabelValues(method).Set(varError)
	}
	if !math.IsNaN(cvarError) {
		m.AbsoluteErrorCVaR.WithLabelValues(method).Set(cvarError)
	}
}

// WriteFile writes the registry in the text exposition format
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
