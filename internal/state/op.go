// Package state provides the building blocks of the client-side application
// state: a tagged union for asynchronous operations and a reducer-driven store.
package state

import "fmt"

// ErrorKind categorizes a failed operation.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindNetwork      ErrorKind = "network"
	ErrorKindAPI          ErrorKind = "api"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindDecode       ErrorKind = "decode"
	ErrorKindInternal     ErrorKind = "internal"
)

// Status is the discriminant of an Op.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Op is the state of one asynchronous operation: Idle, Pending,
// Succeeded(T) or Failed(kind, message). Fields are unexported so that only
// the constructors below can build a value; a pending op never carries an
// error and a failed op never carries a value.
type Op[T any] struct {
	status    Status
	value     T
	kind      ErrorKind
	message   string
	requestID string
}

// Idle returns an op that has not started.
func Idle[T any]() Op[T] {
	return Op[T]{status: StatusIdle}
}

// Pending returns an in-flight op tagged with the request that started it.
func Pending[T any](requestID string) Op[T] {
	return Op[T]{status: StatusPending, requestID: requestID}
}

// Succeeded returns a completed op holding v.
func Succeeded[T any](v T) Op[T] {
	return Op[T]{status: StatusSucceeded, value: v}
}

// Failed returns a failed op with a user-facing message.
func Failed[T any](kind ErrorKind, message string) Op[T] {
	return Op[T]{status: StatusFailed, kind: kind, message: message}
}

// Status returns the discriminant.
func (o Op[T]) Status() Status { return o.status }

// IsIdle reports whether the op has not started.
func (o Op[T]) IsIdle() bool { return o.status == StatusIdle }

// IsPending reports whether the op is in flight.
func (o Op[T]) IsPending() bool { return o.status == StatusPending }

// IsSucceeded reports whether the op completed with a value.
func (o Op[T]) IsSucceeded() bool { return o.status == StatusSucceeded }

// IsFailed reports whether the op failed.
func (o Op[T]) IsFailed() bool { return o.status == StatusFailed }

// RequestID returns the request tag of a pending op, or "".
func (o Op[T]) RequestID() string { return o.requestID }

// Value returns the result of a succeeded op.
func (o Op[T]) Value() (T, bool) {
	if o.status != StatusSucceeded {
		var zero T
		return zero, false
	}
	return o.value, true
}

// ValueOr returns the result of a succeeded op or fallback.
func (o Op[T]) ValueOr(fallback T) T {
	if v, ok := o.Value(); ok {
		return v
	}
	return fallback
}

// Err returns the failure kind and message of a failed op.
func (o Op[T]) Err() (ErrorKind, string, bool) {
	if o.status != StatusFailed {
		return "", "", false
	}
	return o.kind, o.message, true
}

// String implements fmt.Stringer for logs.
func (o Op[T]) String() string {
	switch o.status {
	case StatusPending:
		return fmt.Sprintf("pending(%s)", o.requestID)
	case StatusFailed:
		return fmt.Sprintf("failed(%s: %s)", o.kind, o.message)
	default:
		return o.status.String()
	}
}

// Accepts reports whether a response tagged requestID may settle this op.
// Only the request that made the op pending may settle it; responses for
// superseded requests are dropped (last write wins).
func (o Op[T]) Accepts(requestID string) bool {
	return o.status == StatusPending && o.requestID == requestID
}
