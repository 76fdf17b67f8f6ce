package risk

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a categorized error code for estimation runs
type ErrorCode string

const (
	// Input validation errors
	ErrInvalidConfidence ErrorCode = "INVALID_CONFIDENCE"
	ErrInvalidIterations ErrorCode = "INVALID_ITERATIONS"
	ErrInvalidThreshold  ErrorCode = "INVALID_THRESHOLD"
	ErrInvalidStep       ErrorCode = "INVALID_STEP"

	// Configuration errors
	ErrInvalidConfig            ErrorCode = "INVALID_CONFIG"
	ErrUnsupportedMethod        ErrorCode = "UNSUPPORTED_METHOD"
	ErrUnsupportedDistribution  ErrorCode = "UNSUPPORTED_DISTRIBUTION"
	ErrUnsupportedLoss          ErrorCode = "UNSUPPORTED_LOSS"
	ErrUnsupportedAveragingMode ErrorCode = "UNSUPPORTED_AVERAGING_MODE"

	// Calculation errors
	ErrCalculationFailed    ErrorCode = "CALCULATION_FAILED"
	ErrNumericalInstability ErrorCode = "NUMERICAL_INSTABILITY"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	SeverityLow    ErrorSeverity = "LOW"
	SeverityMedium ErrorSeverity = "MEDIUM"
	SeverityHigh   ErrorSeverity = "HIGH"
)

// ErrorCategory groups related error types
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "VALIDATION"
	CategoryConfiguration ErrorCategory = "CONFIGURATION"
	CategoryCalculation   ErrorCategory = "CALCULATION"
)

// RiskError is the error type returned when an estimation run cannot be
// built or produced an unusable result.
type RiskError struct {
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Severity  ErrorSeverity `json:"severity"`
	Category  ErrorCategory `json:"category"`
	Details   ErrorDetails  `json:"details"`
	Context   ErrorContext  `json:"context"`
	Timestamp time.Time     `json:"timestamp"`
	Cause     error         `json:"cause,omitempty"`
}

// ErrorDetails contains specific information about the error
type ErrorDetails struct {
	Operation    string                 `json:"operation"`
	ExpectedData map[string]interface{} `json:"expected_data,omitempty"`
	ActualData   map[string]interface{} `json:"actual_data,omitempty"`
	Constraints  map[string]interface{} `json:"constraints,omitempty"`
}

// ErrorContext provides contextual information for log correlation
type ErrorContext struct {
	RunID     string            `json:"run_id,omitempty"`
	Component string            `json:"component"`
	Method    string            `json:"method,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewRiskError creates a new RiskError with proper initialization
func NewRiskError(code ErrorCode, message string, operation string) *RiskError {
	return &RiskError{
		Code:      code,
		Message:   message,
		Severity:  determineSeverity(code),
		Category:  determineCategory(code),
		Timestamp: time.Now(),
		Details: ErrorDetails{
			Operation: operation,
		},
		Context: ErrorContext{
			Component: "risk-estimation",
		},
	}
}

// Error implements the error interface
func (re *RiskError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s (operation: %s)",
		re.Severity, re.Code, re.Message, re.Details.Operation)
	if re.Cause != nil {
		msg += ": " + re.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (re *RiskError) Unwrap() error {
	return re.Cause
}

// WithDetails adds detailed information to the error
func (re *RiskError) WithDetails(key string, value interface{}) *RiskError {
	if re.Details.ActualData == nil {
		re.Details.ActualData = make(map[string]interface{})
	}
	re.Details.ActualData[key] = value
	return re
}

// WithExpected adds expected value information
func (re *RiskError) WithExpected(key string, value interface{}) *RiskError {
	if re.Details.ExpectedData == nil {
		re.Details.ExpectedData = make(map[string]interface{})
	}
	re.Details.ExpectedData[key] = value
	return re
}

// WithConstraint adds constraint violation information
func (re *RiskError) WithConstraint(key string, value interface{}) *RiskError {
	if re.Details.Constraints == nil {
		re.Details.Constraints = make(map[string]interface{})
	}
	re.Details.Constraints[key] = value
	return re
}

// WithContext adds contextual information
func (re *RiskError) WithContext(key string, value string) *RiskError {
	if re.Context.Metadata == nil {
		re.Context.Metadata = make(map[string]string)
	}
	re.Context.Metadata[key] = value
	return re
}

// WithRunID sets the run identifier
func (re *RiskError) WithRunID(runID string) *RiskError {
	re.Context.RunID = runID
	return re
}

// WithMethod records the estimation method that failed
func (re *RiskError) WithMethod(method Method) *RiskError {
	re.Context.Method = string(method)
	return re
}

// WithCause wraps an underlying error
func (re *RiskError) WithCause(cause error) *RiskError {
	re.Cause = cause
	return re
}

// HasCode reports whether err is a RiskError carrying code
func HasCode(err error, code ErrorCode) bool {
	var re *RiskError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func determineSeverity(code ErrorCode) ErrorSeverity {
	switch code {
	case ErrCalculationFailed, ErrNumericalInstability:
		return SeverityHigh
	case ErrInvalidConfig, ErrUnsupportedMethod, ErrUnsupportedDistribution,
		ErrUnsupportedLoss, ErrUnsupportedAveragingMode:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func determineCategory(code ErrorCode) ErrorCategory {
	switch code {
	case ErrInvalidConfidence, ErrInvalidIterations, ErrInvalidThreshold, ErrInvalidStep:
		return CategoryValidation
	case ErrCalculationFailed, ErrNumericalInstability:
		return CategoryCalculation
	default:
		return CategoryConfiguration
	}
}

// NewInvalidConfidenceError creates an error for a confidence level outside (0, 1)
func NewInvalidConfidenceError(operation string, alpha float64) *RiskError {
	return NewRiskError(ErrInvalidConfidence,
		fmt.Sprintf("invalid confidence level for %s", operation), operation).
		WithDetails("alpha", alpha).
		WithConstraint("valid_range", "0 < alpha < 1")
}

// NewInvalidIterationsError creates an error for an iteration budget below the minimum
func NewInvalidIterationsError(operation string, iterations, minimum int) *RiskError {
	return NewRiskError(ErrInvalidIterations,
		fmt.Sprintf("iteration budget too small for %s", operation), operation).
		WithDetails("iterations", iterations).
		WithConstraint("minimum_exclusive", minimum)
}

// NewUnsupportedMethodError creates an error for an unknown estimation method
func NewUnsupportedMethodError(operation, method string) *RiskError {
	return NewRiskError(ErrUnsupportedMethod,
		fmt.Sprintf("unsupported estimation method %q", method), operation).
		WithDetails("method", method).
		WithExpected("methods", MethodNames())
}

// NewNumericalInstabilityError creates an error for a non-finite estimate
func NewNumericalInstabilityError(operation string, method Method, est Estimate) *RiskError {
	return NewRiskError(ErrNumericalInstability,
		fmt.Sprintf("%s produced a non-finite estimate", method), operation).
		WithMethod(method).
		WithDetails("var", est.VaR).
		WithDetails("cvar", est.CVaR)
}

// NewCalculationError creates an error for calculation failures
func NewCalculationError(operation string, cause error) *RiskError {
	return NewRiskError(ErrCalculationFailed,
		fmt.Sprintf("calculation failed for %s", operation), operation).
		WithCause(cause)
}
