package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrNotOwner        = errors.New("not authorized to modify this event")
	ErrAlreadyJoined   = errors.New("already joined")
	ErrEventFull       = errors.New("event is full")
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError reports which input fields were missing or invalid so the
// caller can fix the request and resubmit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid or missing fields: %s", strings.Join(e.Fields, ", "))
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
