// Package mcperr defines the error taxonomy shared by all tool handlers.
// Every component failure is mapped onto one of a closed set of kinds so the
// calling agent framework receives a stable error category it can act on.
package mcperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a tool-call failure.
type Kind string

const (
	// KindConnection - the Neo4j instance is unreachable or rejected the credentials.
	KindConnection Kind = "ConnectionError"
	// KindPermission - a write was attempted while the server runs in read-only mode.
	KindPermission Kind = "PermissionError"
	// KindTimeout - the backend did not answer within the configured read timeout.
	KindTimeout Kind = "TimeoutError"
	// KindQuery - Neo4j rejected the Cypher statement (syntax or semantics).
	KindQuery Kind = "QueryError"
	// KindSerialization - a driver value type has no defined transport mapping.
	KindSerialization Kind = "SerializationError"
	// KindUnknownTool - dispatch received a tool name that is not registered.
	KindUnknownTool Kind = "UnknownToolError"
)

// Error is a structured tool-call failure with a stable kind, a message safe
// to surface to the caller, and an optional wrapped cause.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two errors by kind so callers can compare against sentinel
// values like mcperr.New(mcperr.KindTimeout, "").
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New creates an error of the given kind. Connection and timeout failures are
// marked retryable; retry policy itself is left to the caller.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Retryable: kind == KindConnection || kind == KindTimeout,
	}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates an error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.Cause = cause
	return e
}

// KindOf returns the kind of err, or the empty string when err does not carry
// one of the taxonomy kinds.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
