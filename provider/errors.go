package provider

import (
	"errors"
	"fmt"

	"github.com/criswit/moni-bridge/model"
)

// Error is the typed provider error carrying the vendor's code and message.
// Retryable distinguishes transient failures (network, 5xx, timeout) from
// permanent rejections (declined auth, revoked consent, malformed request).
type Error struct {
	Provider  model.Provider
	Code      string
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

// NewTransientError wraps a failure that is worth retrying.
func NewTransientError(p model.Provider, code, message string) *Error {
	return &Error{Provider: p, Code: code, Message: message, Retryable: true}
}

// NewBusinessError wraps a vendor rejection that retrying will not change.
func NewBusinessError(p model.Provider, code, message string) *Error {
	return &Error{Provider: p, Code: code, Message: message, Retryable: false}
}

// ErrInvalidProvider is raised when the facade was constructed with an
// unrecognized provider identifier. Never retried.
var ErrInvalidProvider = errors.New("invalid provider")

// OperationNotSupportedError signals a write/delete operation the selected
// vendor forbids. Read paths return placeholder results instead.
type OperationNotSupportedError struct {
	Provider  model.Provider
	Operation string
}

func (e *OperationNotSupportedError) Error() string {
	return fmt.Sprintf("OPERATION_NOT_SUPPORTED: %s does not support %s", e.Provider, e.Operation)
}

// MissingParamError signals a vendor-required parameter absent from the call.
// Never retried.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// IsRetryable classifies an error for the resilience wrapper. Typed provider
// errors carry their own classification; invalid input, unsupported
// operations and unknown providers are permanent; anything else (raw
// transport errors, timeouts) is assumed transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	var mpe *MissingParamError
	if errors.As(err, &mpe) {
		return false
	}
	var onse *OperationNotSupportedError
	if errors.As(err, &onse) {
		return false
	}
	if errors.Is(err, ErrInvalidProvider) {
		return false
	}
	return true
}
