package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryPattern  Category = "pattern"
	CategoryRoute    Category = "route"
	CategoryFragment Category = "fragment"
	CategoryConfig   Category = "config"
	CategoryPartial  Category = "partial"
	CategoryBridge   Category = "bridge"
	CategoryCLI      Category = "cli"
)

// Location points at a byte offset inside the input that caused an error,
// such as a route pattern or a fragment.
type Location struct {
	Input  string
	Offset int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%q at offset %d", l.Input, l.Offset)
}

// FragmentError is a structured error with an input location and a suggestion.
type FragmentError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (pattern, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the offending position in the input, if known.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FragmentError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FragmentError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *FragmentError with the same code.
func (e *FragmentError) Is(target error) bool {
	t, ok := target.(*FragmentError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithLocation records the offending offset inside input.
func (e *FragmentError) WithLocation(input string, offset int) *FragmentError {
	e.Location = &Location{Input: input, Offset: offset}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FragmentError) WithSuggestion(s string) *FragmentError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FragmentError) WithDetail(d string) *FragmentError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *FragmentError) Wrap(err error) *FragmentError {
	e.Wrapped = err
	return e
}

// New creates a FragmentError from a registered error code.
func New(code string) *FragmentError {
	template, ok := registry[code]
	if !ok {
		return &FragmentError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FragmentError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new FragmentError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FragmentError {
	return &FragmentError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FragmentError.
func FromError(err error, code string) *FragmentError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FragmentError); ok {
		return fe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, is a FragmentError
// carrying code.
func HasCode(err error, code string) bool {
	for err != nil {
		if fe, ok := err.(*FragmentError); ok && fe.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
