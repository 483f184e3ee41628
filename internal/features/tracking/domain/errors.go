package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidTransition is returned when the proposed status is not allowed from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOutOfOrderEventTime is returned when an event predates the ledger head without a backdate flag.
	ErrOutOfOrderEventTime = errors.New("event time precedes last recorded event")
	// ErrConcurrentModification is returned when another writer appended since the ledger was read.
	ErrConcurrentModification = errors.New("container ledger was modified concurrently")
	// ErrUnknownContainer is returned when a container id does not resolve.
	ErrUnknownContainer = errors.New("unknown container")
	// ErrUnknownShipment is returned when a shipment id does not resolve.
	ErrUnknownShipment = errors.New("unknown shipment")
	// ErrNotificationDispatch is returned when a notification intent could not be handed off.
	ErrNotificationDispatch = errors.New("notification dispatch failed")
	// ErrUnknownStatus is returned for status strings outside the catalog.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrForbidden is returned when the actor's role may not perform the operation.
	ErrForbidden = errors.New("operation not permitted for actor")
)

// TransitionError describes a rejected transition with enough context for the caller to retry
// without another round trip.
type TransitionError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// ContainerID identifies the container the transition targeted.
	ContainerID string
	// Requested is the rejected status.
	Requested Status
	// Current is the derived current status at validation time.
	Current Status
	// Allowed is the allowed next-status set at validation time.
	Allowed []Status
	// LastEventTime is the ledger head's event time, set for out-of-order rejections.
	LastEventTime time.Time
}

func (e *TransitionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: container %s", e.Kind, e.ContainerID)
	if e.Requested != "" {
		fmt.Fprintf(&b, ", requested %s", e.Requested)
	}
	if e.Current != "" {
		fmt.Fprintf(&b, ", current %s", e.Current)
	}
	if !e.LastEventTime.IsZero() {
		fmt.Fprintf(&b, ", last event at %s", e.LastEventTime.Format(time.RFC3339Nano))
	}
	if e.Kind == ErrInvalidTransition {
		names := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, ", allowed [%s]", strings.Join(names, ", "))
	}
	return b.String()
}

// Unwrap exposes the sentinel so errors.Is works.
func (e *TransitionError) Unwrap() error {
	return e.Kind
}

// AsTransitionError extracts a *TransitionError from err.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
