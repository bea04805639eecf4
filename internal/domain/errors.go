package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups whose identifier does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition marks lifecycle calls whose source status is
	// outside the legal set for the requested operation.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation marks missing or malformed required input.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError wraps ErrNotFound with the entity kind and identifier.
func NotFoundError(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

type InvalidTransitionError struct {
	Op   string
	From AssetStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s asset in status %s", e.Op, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
