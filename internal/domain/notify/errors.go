// Package notify implements the per-dialog notification aggregation and
// dispatch engine: notifications are coalesced into groups, delayed and
// batched according to presence, bounded by a visible-group-count ×
// per-group-size window, and flushed as diff-style updates.
package notify

import "github.com/go-faster/errors"

// ErrInvalidID is returned when a caller supplies a zero, negative, or
// otherwise malformed notification/group id.
var ErrInvalidID = errors.New("notify: invalid id")

// ErrUnknownGroup is returned when an operation names a group that does
// not currently exist in the store.
var ErrUnknownGroup = errors.New("notify: unknown group")

// ErrUnknownNotification is returned when RemoveNotification targets a
// notification id that is not present in the named group.
var ErrUnknownNotification = errors.New("notify: unknown notification")

// ContractViolation marks a condition the engine's collaborators promise
// never to produce (e.g. the KV failing to persist a group id allocation).
// It is not a recoverable error: callers that hit it have broken an
// invariant elsewhere and should fix the caller, not handle the value.
type ContractViolation struct {
	Reason string
}

func (e *ContractViolation) Error() string { return "notify: contract violation: " + e.Reason }

// panicOnViolation is the single place the engine turns a broken invariant
// into a panic, so call sites read as assertions rather than error plumbing.
func panicOnViolation(cond bool, reason string) {
	if !cond {
		panic(&ContractViolation{Reason: reason})
	}
}
