package site

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks errors produced by the FromValues decoders.
	ErrValidation = errors.New("validation error")
	// ErrForbidden is returned when a role may not perform a mutation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownFeature is returned by ParseFeature.
	ErrUnknownFeature = errors.New("unknown feature")
)

// FieldError describes a problem with one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Field returns the message for field, if it failed.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe.Message, true
		}
	}
	return "", false
}

type checker struct {
	errs []FieldError
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: c.errs}
}
