package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRequest       = "invalid_request"
	CodeNoMatch              = "no_match"
	CodeEstimatorUnavailable = "estimator_unavailable"
	CodeInternal             = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, err)
}

// StatusOf maps err to an HTTP status and code. Errors that are not *Error
// are reported as 500.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ae.Code
	}
	return http.StatusInternalServerError, CodeInternal
}
