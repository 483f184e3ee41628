package domain

import (
	"sort"
	"time"
)

// Ledger is the append-only event log of one container. Events are held in insertion order;
// status derivation always uses event-time order with insertion time as the tie-break.
type Ledger struct {
	events []TrackingEvent
}

// NewLedger builds a ledger from stored events, restoring insertion order by Seq.
func NewLedger(events []TrackingEvent) *Ledger {
	cp := make([]TrackingEvent, len(events))
	copy(cp, events)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Seq < cp[j].Seq })
	return &Ledger{events: cp}
}

// Len is the number of recorded events; it doubles as the optimistic concurrency version.
func (l *Ledger) Len() int {
	return len(l.events)
}

// Events returns the events in insertion order.
func (l *Ledger) Events() []TrackingEvent {
	cp := make([]TrackingEvent, len(l.events))
	copy(cp, l.events)
	return cp
}

// Chronological returns the events ordered by EventTime, then CreatedAt.
func (l *Ledger) Chronological() []TrackingEvent {
	ordered := l.Events()
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.EventTime.Equal(b.EventTime) {
			return a.EventTime.Before(b.EventTime)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ordered
}

// Head returns the chronologically latest event.
func (l *Ledger) Head() (TrackingEvent, bool) {
	ordered := l.Chronological()
	if len(ordered) == 0 {
		return TrackingEvent{}, false
	}
	return ordered[len(ordered)-1], true
}

// CurrentStatus derives the status from the head event. An empty ledger is CREATED.
func (l *Ledger) CurrentStatus() Status {
	if head, ok := l.Head(); ok {
		return head.Status
	}
	return StatusCreated
}

// Anchor returns the latest lifecycle (non-exception) status, the one a suspension interrupted.
func (l *Ledger) Anchor() Status {
	ordered := l.Chronological()
	for i := len(ordered) - 1; i >= 0; i-- {
		if !ordered[i].Status.IsException() {
			return ordered[i].Status
		}
	}
	return StatusCreated
}

// AllowedNext resolves the allowed next statuses against g. From a suspending exception the set
// is the one allowed from the anchor, minus the suspending status itself.
func (l *Ledger) AllowedNext(g *Graph) []Status {
	current := l.CurrentStatus()
	if !current.Suspends() {
		return g.AllowedFrom(current)
	}

	fromAnchor := g.AllowedFrom(l.Anchor())
	allowed := make([]Status, 0, len(fromAnchor))
	for _, s := range fromAnchor {
		if s != current {
			allowed = append(allowed, s)
		}
	}
	return allowed
}

// CustomerVisible returns the chronological history restricted to customer-visible events,
// with staff-only fields cleared.
func (l *Ledger) CustomerVisible() []TrackingEvent {
	var out []TrackingEvent
	for _, e := range l.Chronological() {
		if e.IsCustomerVisible {
			out = append(out, e.ForCustomer())
		}
	}
	if out == nil {
		out = []TrackingEvent{}
	}
	return out
}

// Prepare validates a proposed status against the ledger and builds the event that would be
// appended at position Len(). The ledger itself is not modified.
func (l *Ledger) Prepare(g *Graph, containerID, eventID string, target Status, meta EventMetadata, now time.Time) (TrackingEvent, error) {
	current := l.CurrentStatus()
	allowed := l.AllowedNext(g)

	if !target.Valid() {
		return TrackingEvent{}, &TransitionError{
			Kind:        ErrUnknownStatus,
			ContainerID: containerID,
			Requested:   target,
			Current:     current,
			Allowed:     allowed,
		}
	}

	if !ContainsStatus(allowed, target) {
		return TrackingEvent{}, &TransitionError{
			Kind:        ErrInvalidTransition,
			ContainerID: containerID,
			Requested:   target,
			Current:     current,
			Allowed:     allowed,
		}
	}

	createdAt := storeTime(now)
	eventTime := createdAt
	if !meta.EventTime.IsZero() {
		eventTime = storeTime(meta.EventTime)
	}

	backdated := false
	if head, ok := l.Head(); ok {
		if eventTime.Before(head.EventTime) {
			if !meta.Backdated {
				return TrackingEvent{}, &TransitionError{
					Kind:          ErrOutOfOrderEventTime,
					ContainerID:   containerID,
					Requested:     target,
					Current:       current,
					Allowed:       allowed,
					LastEventTime: head.EventTime,
				}
			}
			backdated = true
		}
	}

	if n := len(l.events); n > 0 {
		if last := l.events[n-1].CreatedAt; !createdAt.After(last) {
			createdAt = last.Add(time.Microsecond)
		}
	}

	source := meta.Source
	if source == "" {
		source = SourceManualStaffEntry
	}

	return TrackingEvent{
		ID:                eventID,
		ContainerID:       containerID,
		Seq:               len(l.events),
		Status:            target,
		PreviousStatus:    current,
		EventTime:         eventTime,
		Location:          meta.Location,
		NotesCustomer:     meta.NotesCustomer,
		NotesInternal:     meta.NotesInternal,
		Source:            source,
		CreatedBy:         meta.CreatedBy,
		CreatedAt:         createdAt,
		IsCustomerVisible: target.IsCustomerVisible(),
		Backdated:         backdated,
	}, nil
}

// Append records a prepared event. It fails with ErrConcurrentModification when the event was
// prepared against a different ledger length.
func (l *Ledger) Append(e TrackingEvent) error {
	if e.Seq != len(l.events) {
		return &TransitionError{
			Kind:        ErrConcurrentModification,
			ContainerID: e.ContainerID,
			Requested:   e.Status,
			Current:     l.CurrentStatus(),
		}
	}
	l.events = append(l.events, e)
	return nil
}
