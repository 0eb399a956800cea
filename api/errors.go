package api

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
)

var (
	ErrRequestFailed      = apperrors.ErrRequestFailed
	ErrApplicationFailure = apperrors.ErrApplicationFailure
	ErrNotFound           = apperrors.ErrNotFound
)

// RequestError is a transport failure or a non-2xx response.
// StatusCode is zero when no response was received.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s failed: %s: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Status)
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

// Unauthorized reports whether the backend refused the credentials
func (e *RequestError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ApplicationError is a 2xx response whose envelope reports failure.
type ApplicationError struct {
	Message      string
	ResultStatus string
	HTTPCode     string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend reported %s", e.resultStatus())
	}
	return e.Message
}

func (e *ApplicationError) Unwrap() error {
	return ErrApplicationFailure
}

func (e *ApplicationError) resultStatus() string {
	if e.ResultStatus == "" {
		return "failure"
	}
	return e.ResultStatus
}
