package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victoralfred/varcvar/internal/core/services/risk"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func parsePair(t *testing.T, line string) (float64, float64) {
	t.Helper()
	parts := strings.Split(line, ",")
	require.Len(t, parts, 2)
	a, err := strconv.ParseFloat(parts[0], 64)
	require.NoError(t, err)
	b, err := strconv.ParseFloat(parts[1], 64)
	require.NoError(t, err)
	return a, b
}

func TestEstimate_PrintsEstimateAndClosedForm(t *testing.T) {
	out, err := execute(t, "--distribution", "exponential", "--rate", "2", "--seed", "3", "0.5", "200000")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	gotVaR, gotCVaR := parsePair(t, lines[0])
	wantVaR, wantCVaR := parsePair(t, lines[1])
	assert.InDelta(t, 0.346574, wantVaR, 1e-6)
	assert.InDelta(t, 0.846574, wantCVaR, 1e-6)
	assert.InDelta(t, wantVaR, gotVaR, 0.1)
	assert.InDelta(t, wantCVaR, gotCVaR, 0.1)
}

func TestEstimate_ShortPutPrintsOneLine(t *testing.T) {
	out, err := execute(t, "--loss", "short-put", "--seed", "5", "--step", "0.75,10", "0.9", "1000")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestEstimate_MonteCarloThreshold(t *testing.T) {
	out, err := execute(t, "--method", "monte-carlo", "--distribution", "exponential",
		"--threshold", "0.6931", "--seed", "4", "0.5", "1000")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "NaN,"))
}

func TestEstimate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code risk.ErrorCode
	}{
		{"alpha out of range", []string{"1.5", "1000"}, risk.ErrInvalidConfidence},
		{"too few iterations", []string{"0.9", "100"}, risk.ErrInvalidIterations},
		{"unknown method", []string{"--method", "bisection", "0.9", "1000"}, risk.ErrUnsupportedMethod},
		{"bad averaging", []string{"--averaging", "maybe", "0.9", "1000"}, risk.ErrUnsupportedAveragingMode},
		{"bad exponent", []string{"--step", "1.5,0", "0.9", "1000"}, risk.ErrInvalidStep},
		{"negative offset", []string{"--step", "1,-1", "0.9", "1000"}, risk.ErrInvalidStep},
		{"unknown distribution", []string{"--distribution", "cauchy", "0.9", "1000"}, risk.ErrUnsupportedDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, risk.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestEstimate_ArgumentErrors(t *testing.T) {
	_, err := execute(t, "abc", "1000")
	assert.ErrorContains(t, err, "bad alpha value")

	_, err = execute(t, "0.9", "many")
	assert.ErrorContains(t, err, "bad N value")

	_, err = execute(t, "--step", "1", "0.9", "1000")
	assert.ErrorContains(t, err, "--step")

	_, err = execute(t, "0.9", "1000", "extra")
	assert.Error(t, err)
}

func TestEstimate_ConfigFileAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "estimate.yaml")
	metricsPath := filepath.Join(dir, "metrics.prom")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
estimation:
  method: var
  alpha: 0.5
  iterations: 5000
distribution:
  name: exponential
  rate: 1
  seed: 9
`), 0o600))

	out, err := execute(t, "--config", cfgPath, "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, ",NaN"))

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `varcvar_estimation_runs_total{method="var",status="success"} 1`)
}
