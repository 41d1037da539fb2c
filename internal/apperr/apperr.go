// Package apperr defines the error kinds services return to their callers.
// Package-level errors wrap one of the kinds so handlers can map them to
// status codes without knowing every package's sentinels.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrUnexpected = errors.New("unexpected error")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for invalid caller input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError.
func Validation(message string, fields ...FieldError) error {
	return &ValidationError{Message: message, Fields: fields}
}

// UnexpectedError wraps a storage or infrastructure failure.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() []error { return []error{ErrUnexpected, e.Err} }

// Unexpected wraps err as an UnexpectedError for op. A nil err stays nil.
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnexpectedError{Op: op, Err: err}
}

// Fields returns the field errors carried by err, if any.
func Fields(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
