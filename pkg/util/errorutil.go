package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// ErrorKind is the closed set of failure categories surfaced by services.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindValidation   ErrorKind = "VALIDATION_FAILED"
	KindConflict     ErrorKind = "CONFLICT"
	KindRepository   ErrorKind = "REPOSITORY_ERROR"
)

// DomainError standardizes application errors with an explicit kind
// discriminant matched at the HTTP boundary.
type DomainError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, details map[string]any) error {
	return &DomainError{Kind: KindValidation, Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

func NewNotFound(resource string) error {
	return &DomainError{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorized(message string) error {
	return &DomainError{Kind: KindUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

func NewForbidden(message string) error {
	return &DomainError{Kind: KindUnauthorized, Message: message, HTTPStatus: http.StatusForbidden}
}

func NewConflict(message string, details map[string]any) error {
	return &DomainError{Kind: KindConflict, Message: message, HTTPStatus: http.StatusConflict, Details: details}
}

// NewRepositoryError wraps an unexpected storage failure. The wrapped
// error is logged server-side and never reaches the caller.
func NewRepositoryError(err error) error {
	return &DomainError{
		Kind:       KindRepository,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to a DomainError. Unrecognized
// errors become repository failures with a generic message.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{
			Kind:       KindNotFound,
			Message:    "resource not found",
			HTTPStatus: http.StatusNotFound,
		}
	}
	return &DomainError{
		Kind:       KindRepository,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
