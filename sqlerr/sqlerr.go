// Package sqlerr defines the closed set of SQL-state error codes surfaced
// by the parser, planner, and result set cursor, and the plumbing for
// wrapping errors that cross the catalog adapter boundary.
package sqlerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is one of the fixed SQL-state strings the core can raise.
type Code string

const (
	// InvalidSQL covers parse and identifier-binding failures.
	InvalidSQL Code = "InvalidSQL"
	// UnsupportedOperation covers non-SELECT statements and syntax the
	// grammar does not accept.
	UnsupportedOperation Code = "UnsupportedOperation"
	// InvalidState covers cursor use before-first, after-last, or closed.
	InvalidState Code = "InvalidState"
	// DataFormat covers decode failures surfaced by the catalog adapter.
	DataFormat Code = "DataFormat"
	// ConnectionFailure covers adapter I/O failures reaching the catalog.
	ConnectionFailure Code = "ConnectionFailure"
	// NotFound covers missing tables, columns, or catalog entries.
	NotFound Code = "NotFound"
)

// Error is a message tagged with a SQL-state Code. Every error the core
// raises directly (parser, planner, cursor) is constructed as one of
// these; adapter errors are wrapped with Wrap rather than reconstructed,
// so the original cause survives.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Newf constructs a core error with no external cause.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a SQL-state code and message to an error raised by an
// external collaborator (the catalog adapter), keeping the cause (wrapped
// via github.com/pkg/errors) reachable through Unwrap, so errors.Is and
// errors.As still find the original error. Error has no Cause method:
// errors.Cause applied to the returned *Error yields the *Error itself.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.Wrap(cause, fmt.Sprintf(format, args...)),
	}
}

// CodeOf returns the SQL-state code of err if it is (or wraps) an *Error,
// and ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
