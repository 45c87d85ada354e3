package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Application error types organized by category for better error handling

type ErrorType string

// Domain/Business Logic Errors - errors related to input validation and
// lookups
const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND_ERROR"
)

// Infrastructure Errors - errors related to quota and upstream services
const (
	RateLimitError          ErrorType = "RATE_LIMIT_ERROR"
	ServiceUnavailableError ErrorType = "SERVICE_UNAVAILABLE_ERROR"
)

// System/Configuration Errors - errors related to system setup and configuration
const (
	ConfigurationError ErrorType = "CONFIGURATION_ERROR"
)

// Machine-readable reason codes carried by validation errors.
const (
	ReasonInvalidRequest        = "invalid_request"
	ReasonMalformedCoordinates  = "malformed_coordinates"
	ReasonCoordinatesOutOfRange = "coordinates_out_of_range"
	ReasonOddCoordinateCount    = "odd_coordinate_count"
	ReasonEmptyCoordinates      = "empty_coordinates"
	ReasonInvalidThreshold      = "invalid_threshold"
	ReasonInvalidUnit           = "invalid_unit"
	ReasonBelowAbsoluteZero     = "below_absolute_zero"
	ReasonAboveCeiling          = "above_temperature_ceiling"
)

// AppError is the error currency between the service, repository and API
// layers. Reason is a stable machine-readable code set on validation errors;
// RetryAfter is set on rate-limit errors so callers can back off.
type AppError struct {
	Type       ErrorType
	Reason     string
	Message    string
	Cause      error
	RetryAfter time.Duration
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

// NewValidationReason tags the validation failure with a machine-readable
// reason code.
func NewValidationReason(reason, message string) *AppError {
	err := New(ValidationError, message)
	err.Reason = reason
	return err
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// Infrastructure Error Constructors
func NewRateLimitError(message string, retryAfter time.Duration) *AppError {
	err := New(RateLimitError, message)
	err.RetryAfter = retryAfter
	return err
}

func NewServiceUnavailableError(message string, cause error) *AppError {
	return Wrap(ServiceUnavailableError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// TypeOf returns the AppError type, or an empty string for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ValidationError
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsRateLimitError(err error) bool {
	return TypeOf(err) == RateLimitError
}

func IsServiceUnavailableError(err error) bool {
	return TypeOf(err) == ServiceUnavailableError
}
