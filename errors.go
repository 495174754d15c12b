package ggtest

import (
	"errors"
	"fmt"
)

var (
	// ErrAssertion matches every assertion failure of a run.
	ErrAssertion = errors.New("ggtest: assertion failed")

	// ErrInfrastructure matches failures of the harness itself: device
	// negotiation, rendering, readback, encoding or file output.
	ErrInfrastructure = errors.New("ggtest: infrastructure failure")

	// ErrMalformedEvent is returned for an event missing its predicate or
	// function. It is reported as an infrastructure failure.
	ErrMalformedEvent = errors.New("ggtest: malformed event")

	// ErrGoldenMissing is returned when a golden image does not exist.
	ErrGoldenMissing = errors.New("ggtest: golden image missing")

	// ErrGoldenMismatch is returned when a frame differs from its golden image.
	ErrGoldenMismatch = errors.New("ggtest: golden image mismatch")
)

// AssertionError reports a predicate that returned false.
type AssertionError struct {
	// Index is the position of the failing event in the trace.
	Index int
	// Kind is the event kind, such as "AssertState".
	Kind string
	// Name is the label given to the predicate.
	Name string
	// Digest identifies the captured frame for capture checks, empty
	// otherwise.
	Digest string
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("ggtest: event %d (%s) %q: assertion failed", e.Index, e.Kind, e.Name)
	if e.Digest != "" {
		msg += " on frame " + e.Digest
	}
	return msg
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool { return target == ErrAssertion }

// EventError reports an infrastructure failure while applying an event.
type EventError struct {
	Index int
	Kind  string
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("ggtest: event %d (%s): %v", e.Index, e.Kind, e.Err)
}

// Unwrap exposes both ErrInfrastructure and the underlying cause.
func (e *EventError) Unwrap() []error { return []error{ErrInfrastructure, e.Err} }

// IsAssertion reports whether err is an assertion failure.
func IsAssertion(err error) bool { return errors.Is(err, ErrAssertion) }

// IsInfrastructure reports whether err is a harness failure rather than an
// assertion failure.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrInfrastructure) && !errors.Is(err, ErrAssertion)
}
