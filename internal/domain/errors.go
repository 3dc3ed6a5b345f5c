package domain

import "fmt"

// ValidationError reports rejected input: an empty buffer, a missing file,
// a missing credential. It is returned to the caller, never thrown past a
// public boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ExternalServiceError reports a failed call to the transcription or
// cleanup service.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// PersistenceError reports a disk read or write failure. The process keeps
// running; the failed operation reports it and moves on.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: err}
}

// NotFoundError reports a lookup miss. A miss is a normal outcome, not
// logged as an error.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
