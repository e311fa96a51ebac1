package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrKind classifies a domain failure for HTTP mapping and retry semantics.
type ErrKind int

const (
	KindValidation ErrKind = iota // bad input, no side effects
	KindNotFound                  // entity missing
	KindConflict                  // invalid state transition, do not retry
	KindExternal                  // external service failed, retryable
	KindInternal                  // unexpected
)

// AppError carries a machine-readable code alongside the message so clients
// can distinguish "retry later" from "do not retry" conditions.
type AppError struct {
	Kind    ErrKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewExternalError(code, message string, err error) *AppError {
	return &AppError{Kind: KindExternal, Code: code, Message: message, Err: err}
}

func NewInternalError(code, message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: code, Message: message, Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
