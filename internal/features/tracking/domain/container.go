package domain

import "time"

// ContainerInfo is the identity of a container as known to the shipment registry.
type ContainerInfo struct {
	// ID is the platform identifier used in URLs.
	ID string `json:"id"`
	// ContainerNumber is the physical container number, unique within its shipment.
	ContainerNumber string `json:"containerNumber"`
	// ShipmentID is the owning shipment.
	ShipmentID string `json:"shipmentId"`
	// ClientID is the customer that booked the shipment.
	ClientID string `json:"clientId"`
}

// Container is the aggregate holding a container's identity and its ledger.
// Its status is never stored; it is always derived from the ledger.
type Container struct {
	ContainerInfo
	ledger *Ledger
}

// NewContainer binds identity and ledger.
func NewContainer(info ContainerInfo, events []TrackingEvent) *Container {
	return &Container{ContainerInfo: info, ledger: NewLedger(events)}
}

// Ledger exposes the container's read-only event log.
func (c *Container) Ledger() *Ledger {
	return c.ledger
}

// Version is the ledger length the aggregate was loaded at.
func (c *Container) Version() int {
	return c.ledger.Len()
}

// CurrentStatus derives the status from the ledger.
func (c *Container) CurrentStatus() Status {
	return c.ledger.CurrentStatus()
}

// AllowedNextStatuses resolves the allowed set against g.
func (c *Container) AllowedNextStatuses(g *Graph) []Status {
	return c.ledger.AllowedNext(g)
}

// Transition validates target and appends the resulting event to the in-memory ledger.
// Persisting the event is the caller's job, conditioned on the returned event's Seq.
func (c *Container) Transition(g *Graph, eventID string, target Status, meta EventMetadata, now time.Time) (TrackingEvent, error) {
	event, err := c.ledger.Prepare(g, c.ID, eventID, target, meta, now)
	if err != nil {
		return TrackingEvent{}, err
	}
	if err := c.ledger.Append(event); err != nil {
		return TrackingEvent{}, err
	}
	return event, nil
}

// Progress is the container's contribution to shipment progress, in percent.
func (c *Container) Progress() float64 {
	return ContainerProgress(c.ledger)
}
