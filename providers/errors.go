package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an upstream failure. The repository decides, per
// kind, whether to surface not-found or service-unavailable to the caller.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindRateLimited ErrorKind = "rate_limited"
	KindInvalidKey  ErrorKind = "invalid_key"
	KindNotFound    ErrorKind = "not_found"
	KindUnknown     ErrorKind = "unknown"
)

// APIError is the provider-level error type. It carries the provider name
// and, when the upstream answered at all, the HTTP status it answered with.
type APIError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// KindOf extracts the failure kind from err; anything that is not an
// APIError counts as KindUnknown.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err means the upstream authoritatively answered
// "no such location".
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// classifyStatus maps a non-2xx upstream status onto the error taxonomy.
// Providers with richer error bodies (WeatherAPI's code 1006) refine the
// result before calling this.
func classifyStatus(provider string, status int, message string) *APIError {
	kind := KindUnknown
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindInvalidKey
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	}

	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}

	return &APIError{Provider: provider, Kind: kind, StatusCode: status, Message: message}
}
