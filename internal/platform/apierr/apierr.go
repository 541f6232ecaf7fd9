package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRequest   = "invalid_request"
	CodeStoreUnavailable = "store_unavailable"
	CodeStoreQuery       = "store_query_failed"
	CodeInternal         = "internal_error"
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

func StoreFailure(err error) *Error {
	return New(http.StatusInternalServerError, CodeStoreQuery, err)
}

// StoreUnavailable is a store failure where the store could not be reached. It shares the 500
// status with StoreFailure; only the code differs.
func StoreUnavailable(err error) *Error {
	return New(http.StatusInternalServerError, CodeStoreUnavailable, err)
}

// From maps any error onto an *Error, defaulting to a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
