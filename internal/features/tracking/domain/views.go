package domain

import "time"

// ContainerStatus is the read model returned by the current-status query.
type ContainerStatus struct {
	ContainerID     string     `json:"containerId"`
	ContainerNumber string     `json:"containerNumber"`
	ShipmentID      string     `json:"shipmentId"`
	Status          Status     `json:"status"`
	Category        Category   `json:"category"`
	IsTerminal      bool       `json:"isTerminal"`
	Version         int        `json:"version"`
	LastEventTime   *time.Time `json:"lastEventTime,omitempty"`
}

// TransitionResult is a successful transition. Warnings carry non-fatal problems such as a
// notification that could not be handed off.
type TransitionResult struct {
	Event    TrackingEvent `json:"event"`
	Warnings []string      `json:"warnings,omitempty"`
}

// NewContainerStatus summarises a container's derived state.
func NewContainerStatus(c *Container) ContainerStatus {
	current := c.CurrentStatus()
	view := ContainerStatus{
		ContainerID:     c.ID,
		ContainerNumber: c.ContainerNumber,
		ShipmentID:      c.ShipmentID,
		Status:          current,
		Category:        current.Category(),
		IsTerminal:      current.IsTerminal(),
		Version:         c.Version(),
	}
	if head, ok := c.Ledger().Head(); ok {
		at := head.EventTime
		view.LastEventTime = &at
	}
	return view
}

// AllowedTransitions is an allowed next-status set together with the ledger state it was
// resolved from.
type AllowedTransitions struct {
	ContainerID   string
	CurrentStatus Status
	Version       int
	Allowed       []Status
}

// NewAllowedTransitions resolves the allowed set from c's ledger. Allowed is never nil.
func NewAllowedTransitions(c *Container, g *Graph) AllowedTransitions {
	allowed := c.AllowedNextStatuses(g)
	if allowed == nil {
		allowed = []Status{}
	}
	return AllowedTransitions{
		ContainerID:   c.ID,
		CurrentStatus: c.CurrentStatus(),
		Version:       c.Version(),
		Allowed:       allowed,
	}
}
