package risk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRiskError_CreationAndBasicProperties tests basic error creation and properties
func TestRiskError_CreationAndBasicProperties(t *testing.T) {
	tests := []struct {
		name        string
		code        ErrorCode
		message     string
		operation   string
		expectedSev ErrorSeverity
		expectedCat ErrorCategory
	}{
		{
			name:        "High severity numerical error",
			code:        ErrNumericalInstability,
			message:     "estimate diverged",
			operation:   "importance_sampling",
			expectedSev: SeverityHigh,
			expectedCat: CategoryCalculation,
		},
		{
			name:        "Medium severity configuration error",
			code:        ErrUnsupportedDistribution,
			message:     "no parameter table",
			operation:   "build_family",
			expectedSev: SeverityMedium,
			expectedCat: CategoryConfiguration,
		},
		{
			name:        "Low severity validation error",
			code:        ErrInvalidConfidence,
			message:     "alpha out of range",
			operation:   "validate",
			expectedSev: SeverityLow,
			expectedCat: CategoryValidation,
		},
		{
			name:        "Iteration budget validation error",
			code:        ErrInvalidIterations,
			message:     "budget too small",
			operation:   "validate",
			expectedSev: SeverityLow,
			expectedCat: CategoryValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRiskError(tt.code, tt.message, tt.operation)

			if err.Code != tt.code {
				t.Errorf("Expected code %v, got %v", tt.code, err.Code)
			}
			if err.Details.Operation != tt.operation {
				t.Errorf("Expected operation %v, got %v", tt.operation, err.Details.Operation)
			}
			if err.Severity != tt.expectedSev {
				t.Errorf("Expected severity %v, got %v", tt.expectedSev, err.Severity)
			}
			if err.Category != tt.expectedCat {
				t.Errorf("Expected category %v, got %v", tt.expectedCat, err.Category)
			}
			if err.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
			if err.Context.Component != "risk-estimation" {
				t.Errorf("Expected component 'risk-estimation', got %v", err.Context.Component)
			}

			want := fmt.Sprintf("[%s] %s: %s (operation: %s)", tt.expectedSev, tt.code, tt.message, tt.operation)
			if err.Error() != want {
				t.Errorf("Expected %q, got %q", want, err.Error())
			}
		})
	}
}

// TestRiskError_FluentInterface tests the fluent interface for error building
func TestRiskError_FluentInterface(t *testing.T) {
	cause := errors.New("normal stddev must be positive")

	err := NewRiskError(ErrInvalidConfig, "bad distribution", "build_family").
		WithRunID("run-1").
		WithMethod(MethodImportanceSampling).
		WithDetails("stddev", 0.0).
		WithExpected("stddev", "> 0").
		WithConstraint("stddev", "positive").
		WithContext("family", "normal").
		WithCause(cause)

	if err.Context.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %v", err.Context.RunID)
	}
	if err.Context.Method != string(MethodImportanceSampling) {
		t.Errorf("Expected method %v, got %v", MethodImportanceSampling, err.Context.Method)
	}
	if err.Details.ActualData["stddev"] != 0.0 {
		t.Error("Expected stddev in actual data")
	}
	if err.Details.ExpectedData["stddev"] != "> 0" {
		t.Error("Expected stddev in expected data")
	}
	if err.Details.Constraints["stddev"] != "positive" {
		t.Error("Expected stddev constraint")
	}
	if err.Context.Metadata["family"] != "normal" {
		t.Error("Expected family in metadata")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if !strings.HasSuffix(err.Error(), cause.Error()) {
		t.Errorf("Expected cause in message, got %q", err.Error())
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInvalidConfidenceError("validate", 1.5))

	if !HasCode(err, ErrInvalidConfidence) {
		t.Error("Expected wrapped error to carry INVALID_CONFIDENCE")
	}
	if HasCode(err, ErrInvalidIterations) {
		t.Error("Did not expect INVALID_ITERATIONS")
	}
	if HasCode(errors.New("plain"), ErrInvalidConfidence) {
		t.Error("Plain errors carry no code")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *RiskError
		code ErrorCode
	}{
		{"confidence", NewInvalidConfidenceError("validate", 0), ErrInvalidConfidence},
		{"iterations", NewInvalidIterationsError("validate", 10, 100), ErrInvalidIterations},
		{"method", NewUnsupportedMethodError("parse", "bisection"), ErrUnsupportedMethod},
		{"instability", NewNumericalInstabilityError("run", MethodCVaR, Estimate{}), ErrNumericalInstability},
		{"calculation", NewCalculationError("run", errors.New("boom")), ErrCalculationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Expected code %v, got %v", tt.code, tt.err.Code)
			}
			if tt.err.Error() == "" {
				t.Error("Error() should return non-empty string")
			}
		})
	}
}
