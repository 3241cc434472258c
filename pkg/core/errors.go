package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

// ErrorKind constants for the failure taxonomy.
const (
	// ErrTemplate is an unresolved required placeholder or malformed
	// placeholder syntax. Always fatal.
	ErrTemplate ErrorKind = "template"

	// ErrRuleFetch means the rule provider was unreachable or returned
	// malformed data. Retried up to the configured bound.
	ErrRuleFetch ErrorKind = "rule_fetch"

	// ErrMetricNotFound means a macro referenced an unknown metric name.
	ErrMetricNotFound ErrorKind = "metric_not_found"

	// ErrMacroLimit means the input contained more macro occurrences than
	// the supported limit. Always fatal: partial expansion would silently
	// change query semantics.
	ErrMacroLimit ErrorKind = "macro_limit"

	// ErrParse means the SQL did not parse for the target dialect.
	// Always fatal.
	ErrParse ErrorKind = "parse"

	// ErrConfig is an invalid per-invocation configuration (unknown
	// dialect, retry count out of bounds).
	ErrConfig ErrorKind = "config"

	// ErrBlockedWarning is a warning of a configured blocking kind
	// promoted to a failure by strict mode.
	ErrBlockedWarning ErrorKind = "blocked_warning"
)

// Error is the tagged error union carried across the public entry point.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string // optional structured detail (unresolved name, parser diagnostic)
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause, preserving it for errors.Is/As.
func Wrap(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed.
// Returns "" if err carries no *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError returns the *Error inside err, or wraps err under the given
// fallback kind so every failure path carries a classified error.
func AsError(err error, fallback ErrorKind) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: fallback, Message: err.Error(), Err: err}
}
