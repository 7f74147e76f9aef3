package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the backend has no such task.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the stored token is rejected.
	ErrUnauthorized = errors.New("token expired or revoked (run: doit login)")

	// ErrNotLoggedIn is returned when no token is stored.
	ErrNotLoggedIn = errors.New("not logged in (run: doit login)")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
}

// Unwrap maps well-known status codes onto sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}
