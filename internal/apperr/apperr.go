// Package apperr holds the error kinds the ledger surfaces to callers.
// Handlers map them to HTTP statuses with errors.As.
package apperr

import "fmt"

// ValidationError reports a missing or invalid field on create.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InternalError wraps an unexpected failure. Op names the operation that
// failed so the log line is useful; callers only ever see a generic message.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func Internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
