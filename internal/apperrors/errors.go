// Package apperrors defines the error taxonomy shared by services and the
// HTTP layer. Handlers return these and the central error handler maps them
// to status codes; anything unrecognized is treated as a persistence or
// internal failure.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError indicates the caller supplied bad input. Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced entity does not exist within the
// caller's scope. Maps to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFound builds a NotFoundError with a formatted message.
func NewNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError indicates valid input hit misconfigured system data,
// such as a trainer with no usable monthly fee. Maps to 422.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfiguration builds a ConfigurationError with a formatted message.
func NewConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a storage failure. Maps to 500.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistence wraps err with the failing operation's name.
func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// HTTPStatus maps an error to the response status code. Unknown errors are
// reported as internal server errors.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *ConfigurationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
