// Package vterr defines the error-kind taxonomy shared across the agent core.
//
// Every component boundary (provider client, tool executor, safety gateway,
// session normalizer, process supervisor, cache) returns errors wrapped with
// a Kind so callers can branch on category without string matching.
package vterr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of failure from spec.md §7.
type Kind string

const (
	KindAuthentication          Kind = "authentication"
	KindRateLimit               Kind = "rate_limit"
	KindNetwork                 Kind = "network"
	KindProvider                Kind = "provider"
	KindStreamTimeout           Kind = "stream_timeout"
	KindCancelled               Kind = "cancelled"
	KindToolNotFound             Kind = "tool_not_found"
	KindToolInvalidArgs          Kind = "tool_invalid_args"
	KindToolExecutionFailed      Kind = "tool_execution_failed"
	KindSafetyDenied             Kind = "safety_denied"
	KindApprovalDenied           Kind = "approval_denied"
	KindContextBudgetExceeded    Kind = "context_budget_exceeded"
	KindProcessSpawnFailed       Kind = "process_spawn_failed"
	KindProcessTimedOut          Kind = "process_timed_out"
	KindCachePersistFailed       Kind = "cache_persist_failed"
	KindInternalInvariantViolated Kind = "internal_invariant_violated"
)

// Error is the concrete error type carried across component boundaries.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Invariant is set only for KindInternalInvariantViolated and names the
	// specific invariant from spec.md §8 that was violated.
	Invariant string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Invariant constructs a KindInternalInvariantViolated error naming the
// violated invariant, per spec.md §7's requirement that such errors "include
// the invariant's name and a sanitized snapshot".
func Invariant(name, message string, snapshot any) *Error {
	return &Error{
		Kind:      KindInternalInvariantViolated,
		Message:   fmt.Sprintf("%s (snapshot: %v)", message, snapshot),
		Invariant: name,
	}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
