package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryRuntime   Category = "runtime"
	CategoryHydration Category = "hydration"
	CategoryCLI       Category = "cli"
)

// LoadableError is a structured error with a code, category and optional cause.
type LoadableError struct {
	// Code is a unique error identifier (e.g., "L001").
	Code string

	// Category is the error type (config, runtime, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LoadableError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LoadableError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a LoadableError with the same code.
func (e *LoadableError) Is(target error) bool {
	t, ok := target.(*LoadableError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *LoadableError) WithDetail(d string) *LoadableError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *LoadableError) WithDetailf(format string, args ...any) *LoadableError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LoadableError) WithSuggestion(s string) *LoadableError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *LoadableError) Wrap(err error) *LoadableError {
	e.Wrapped = err
	return e
}

// Format renders the error with its detail and suggestion on separate lines,
// for CLI output.
func (e *LoadableError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERROR %s\n", e.Error())
	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Hint: %s\n", e.Suggestion)
	}
	return b.String()
}

// New creates a LoadableError from a registered error code.
func New(code string) *LoadableError {
	template, ok := registry[code]
	if !ok {
		return &LoadableError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LoadableError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new LoadableError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LoadableError {
	return &LoadableError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LoadableError.
func FromError(err error, code string) *LoadableError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LoadableError); ok {
		return le
	}
	return New(code).Wrap(err)
}
