package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes shared by services and the HTTP layer.
const (
	CodeValidation           = "validation_error"
	CodeDuplicateKey         = "duplicate_key"
	CodeNotFound             = "not_found"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeUnauthenticated      = "unauthenticated"
	CodeScanFailed           = "scan_failed"
	CodeAssistantUnavailable = "assistant_unavailable"
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

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func DuplicateKey(format string, args ...any) *Error {
	return New(http.StatusConflict, CodeDuplicateKey, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

// InvalidCredentials carries a fixed message so callers cannot tell an
// unknown email from a wrong password.
func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, errors.New("invalid credentials"))
}

// UnauthenticatedMessage is the only message clients see for a rejected
// session; the cause stays on the error for logs.
const UnauthenticatedMessage = "missing or invalid token"

func Unauthenticated(err error) *Error {
	if err == nil {
		err = errors.New(UnauthenticatedMessage)
	}
	return New(http.StatusUnauthorized, CodeUnauthenticated, err)
}

func ScanFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeScanFailed, err)
}

func AssistantUnavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeAssistantUnavailable, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func Is(err error, code string) bool {
	return code != "" && CodeOf(err) == code
}
