package domain

import (
	"errors"

	trackingdomain "cargo-tracker/internal/features/tracking/domain"
)

// RejectedMilestone is a mapped milestone the ledger refused.
type RejectedMilestone struct {
	MappedMilestone
	Reason string `json:"reason"`
}

// SyncReport summarises one carrier sync run.
type SyncReport struct {
	ContainerID     string                         `json:"containerId"`
	ContainerNumber string                         `json:"containerNumber"`
	Carrier         string                         `json:"carrier,omitempty"`
	CurrentStatus   trackingdomain.Status          `json:"currentStatus"`
	Applied         []trackingdomain.TrackingEvent `json:"applied"`
	Rejected        []RejectedMilestone            `json:"rejected"`
	Skipped         int                            `json:"skipped"`
	Unknown         []Milestone                    `json:"unknown"`
	Warnings        []string                       `json:"warnings,omitempty"`
}

// ErrFeedUnavailable is returned when the carrier feed could not be read.
var ErrFeedUnavailable = errors.New("carrier feed unavailable")
