package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies what produced a tracking event.
type Source string

const (
	// SourceManualStaffEntry is an event typed in by staff.
	SourceManualStaffEntry Source = "manual-staff-entry"
	// SourceSystem is an event produced by the platform itself.
	SourceSystem Source = "system"
	// SourceIntegration is an event imported from a carrier or terminal feed.
	SourceIntegration Source = "integration"
)

// ParseSource validates a raw source string. Empty input defaults to manual staff entry.
func ParseSource(raw string) (Source, error) {
	switch s := Source(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return SourceManualStaffEntry, nil
	case SourceManualStaffEntry, SourceSystem, SourceIntegration:
		return s, nil
	default:
		return "", fmt.Errorf("unknown event source %q", raw)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TrackingEvent is an immutable record of a container status change.
type TrackingEvent struct {
	// ID is the globally unique event identifier.
	ID string `json:"id"`
	// ContainerID is the container whose ledger holds this event.
	ContainerID string `json:"containerId"`
	// Seq is the zero-based position in the container's ledger, in insertion order.
	Seq int `json:"seq"`
	// Status is the status the container moved to.
	Status Status `json:"status"`
	// PreviousStatus is the derived status at the moment of append, kept for audit.
	PreviousStatus Status `json:"previousStatus"`
	// EventTime is when the change happened in the physical world.
	EventTime time.Time `json:"eventTime"`
	// Location is free text such as a port or terminal name.
	Location string `json:"location,omitempty"`
	// NotesCustomer is shown to clients.
	NotesCustomer string `json:"notesCustomer,omitempty"`
	// NotesInternal is staff-only.
	NotesInternal string `json:"notesInternal,omitempty"`
	// Source tells how the event entered the ledger.
	Source Source `json:"source"`
	// CreatedBy is the actor identity that submitted the event.
	CreatedBy string `json:"createdBy"`
	// CreatedAt is the ledger insertion time; strictly increasing per container.
	CreatedAt time.Time `json:"createdAt"`
	// IsCustomerVisible is derived from Status.
	IsCustomerVisible bool `json:"isCustomerVisible"`
	// Backdated marks a correction whose EventTime precedes an existing event.
	Backdated bool `json:"backdated,omitempty"`
}

// EventMetadata is what a caller supplies alongside a proposed status.
type EventMetadata struct {
	// EventTime defaults to the append time when zero.
	EventTime time.Time
	Location      string
	NotesCustomer string
	NotesInternal string
	Source        Source
	CreatedBy     string
	// NotifyCustomer requests a notification when the event is customer visible.
	NotifyCustomer bool
	// Backdated allows an EventTime earlier than the ledger head.
	Backdated bool
}

// ForCustomer returns a copy safe to show to clients.
func (e TrackingEvent) ForCustomer() TrackingEvent {
	e.NotesInternal = ""
	e.CreatedBy = ""
	return e
}

// storeTime normalises timestamps to the precision every ledger store can round-trip.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
