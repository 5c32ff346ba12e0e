package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input caught before any provider call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderErrorKind separates failures a caller may retry from terminal ones.
type ProviderErrorKind string

const (
	KindTerminal  ProviderErrorKind = "terminal"
	KindRetryable ProviderErrorKind = "retryable"
	KindTimeout   ProviderErrorKind = "timeout"
)

// ProviderError wraps a remote rejection or transport failure.
type ProviderError struct {
	Op      string // Provider operation, e.g. PlaceOutboundCall
	Code    string // Provider error code when known
	Message string
	Kind    ProviderErrorKind
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting the same request may succeed.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRetryable || e.Kind == KindTimeout
}

// StateError reports an operation attempted without the session it needs.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// ErrNoSession is returned when no call has been placed in this session.
var ErrNoSession = &StateError{Message: "no active call session"}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// AsProvider extracts a ProviderError from err.
func AsProvider(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
