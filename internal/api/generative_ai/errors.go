package generativeAI

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrInvalidAPIKey    ErrorKind = "invalid_api_key"
	ErrQuotaExhausted   ErrorKind = "quota_exhausted"
	ErrModelUnavailable ErrorKind = "model_unavailable"
	ErrEmptyResponse    ErrorKind = "empty_response"
	ErrCallFailed       ErrorKind = "call_failed"
)

// ServiceError classifies a model failure so callers can distinguish
// configuration problems from transient upstream ones.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generative ai: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generative ai: %s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, defaulting to ErrCallFailed for errors
// that did not come from this package.
func KindOf(err error) ErrorKind {
	var serr *ServiceError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return ErrCallFailed
}

// classify buckets an upstream error by its message. The genai SDK does not
// expose typed errors for these cases, so string matching is what's left.
func classify(err error) *ServiceError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "permission denied"):
		return &ServiceError{Kind: ErrInvalidAPIKey, Err: err}
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429"):
		return &ServiceError{Kind: ErrQuotaExhausted, Err: err}
	case strings.Contains(msg, "not found") || strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "overloaded"):
		return &ServiceError{Kind: ErrModelUnavailable, Err: err}
	default:
		return &ServiceError{Kind: ErrCallFailed, Err: err}
	}
}
