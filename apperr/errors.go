// apperr/errors.go - Application error taxonomy
package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrValidation      = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrCapacity        = errors.New("capacity exceeded")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrDependency      = errors.New("upstream dependency failed")
	ErrTimeout         = errors.New("upstream dependency timed out")
)

// AppError carries an HTTP status alongside a user-facing message.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, ErrNotFound)
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrValidation)
}

func Conflict(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrConflict)
}

// Capacity is a 400: a full team is a client-visible state, not a
// server fault.
func Capacity(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrCapacity)
}

func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, message, ErrUnauthenticated)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, ErrForbidden)
}

func Dependency(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Message: message, Err: errors.Join(ErrDependency, err)}
}

func DependencyTimeout(message string) *AppError {
	return New(http.StatusGatewayTimeout, message, ErrTimeout)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Server Error", err)
}

// StatusOf returns the HTTP status for any error, defaulting to 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
