package http

import (
	"fmt"
	"net/http"
)

// AppError is an error that knows the HTTP status it should be reported with.
// Err is kept for logs and never serialized.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func newAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return newAppError("ERR_NOT_FOUND", fmt.Sprintf(format, a...), http.StatusNotFound)
}

// UpstreamError is a 502 for a failed call to an external source or store.
func UpstreamError(message string) *AppError {
	return newAppError("ERR_UPSTREAM", message, http.StatusBadGateway)
}

// ServiceUnavailableError is a 503 for an optional backend that is not configured.
func ServiceUnavailableError(message string) *AppError {
	return newAppError("ERR_UNAVAILABLE", message, http.StatusServiceUnavailable)
}

func InternalError(message string) *AppError {
	return newAppError("ERR_INTERNAL", message, http.StatusInternalServerError)
}
