package ports

import (
	"context"

	"cargo-tracker/internal/features/carriers/domain"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"
)

// MilestoneFeed fetches carrier milestones for a container number.
type MilestoneFeed interface {
	FetchMilestones(ctx context.Context, containerNumber string) (*domain.MilestoneFeed, error)
}

// SyncService applies carrier milestones to a container's ledger.
type SyncService interface {
	SyncContainer(ctx context.Context, actor trackingdomain.Actor, containerID string) (*domain.SyncReport, error)
}
