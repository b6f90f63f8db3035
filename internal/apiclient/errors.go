package apiclient

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the concrete error types below.
var (
	ErrPrecondition = errors.New("precondition violation")
	ErrTransport    = errors.New("transport failure")
	ErrApplication  = errors.New("application error")
)

// ErrorKind classifies a failure surfaced by a remote operation.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPrecondition
	KindTransport
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition_violation"
	case KindTransport:
		return "transport_failure"
	case KindApplication:
		return "application_error"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrPrecondition):
		return KindPrecondition
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrApplication):
		return KindApplication
	default:
		return KindUnknown
	}
}

// PreconditionError is returned when required input is missing or malformed.
// No remote call has been made.
type PreconditionError struct {
	Field   string
	Message string
	Cause   error
}

// Precondition builds a PreconditionError for a single field.
func Precondition(field, message string) *PreconditionError {
	return &PreconditionError{Field: field, Message: message}
}

// PreconditionFrom wraps a validation failure.
func PreconditionFrom(cause error) *PreconditionError {
	return &PreconditionError{Message: cause.Error(), Cause: cause}
}

func (e *PreconditionError) Error() string { return e.Message }

func (e *PreconditionError) Unwrap() error { return e.Cause }

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// TransportError is a failure to reach the backend or read its response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// APIError is a non-success response. Message is the server's own text when
// it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Is(target error) bool { return target == ErrApplication }

func statusMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}
