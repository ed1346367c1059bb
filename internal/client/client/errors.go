package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrRejected          = errors.New("request rejected")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrValidation        = errors.New("validation error")
)

// StatusError is a non-2xx response. It unwraps to the sentinel matching the
// status class so callers can use errors.Is.
type StatusError struct {
	Code    int
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.kind, e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func newStatusError(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message, kind: kindForStatus(code)}
}

func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}

// ServerMessage returns the backend's error text carried by err, if any.
func ServerMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
