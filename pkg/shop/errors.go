package shop

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the backend has no record for the request,
// either as HTTP 404 or as an empty result.
var ErrNotFound = errors.New("not found")

// RejectedError is a business-rule rejection: the backend answered but set
// success=false. Message is the server text, or a generic fallback when the
// server sent none.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// StatusError is a non-2xx response that is not a 404.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned HTTP %d", e.Op, e.StatusCode)
}

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRejected returns true if err is or wraps a *RejectedError.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// rejection builds a RejectedError, substituting fallback for an empty message.
func rejection(op, message, fallback string) *RejectedError {
	if message == "" {
		message = fallback
	}
	return &RejectedError{Op: op, Message: message}
}
