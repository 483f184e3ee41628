package ports

import (
	"context"

	"cargo-tracker/internal/features/tracking/domain"
)

// TrackingService defines the primary port for the container status workflow.
type TrackingService interface {
	AllowedNextStatuses(ctx context.Context, actor domain.Actor, containerID string) ([]domain.Status, error)
	// AllowedTransitions returns the allowed set and the current status from a single ledger read.
	AllowedTransitions(ctx context.Context, actor domain.Actor, containerID string) (*domain.AllowedTransitions, error)
	CurrentStatus(ctx context.Context, actor domain.Actor, containerID string) (*domain.ContainerStatus, error)
	Transition(ctx context.Context, actor domain.Actor, containerID string, target domain.Status, meta domain.EventMetadata) (*domain.TransitionResult, error)
	History(ctx context.Context, actor domain.Actor, containerID string) ([]domain.TrackingEvent, error)
	ShipmentProgress(ctx context.Context, actor domain.Actor, shipmentID string) (*domain.ShipmentProgress, error)
}

// LedgerStore is the secondary port holding per-container event ledgers.
type LedgerStore interface {
	// Load returns the container's events in insertion order. An unknown container has an
	// empty ledger, not an error.
	Load(ctx context.Context, containerID string) ([]domain.TrackingEvent, error)
	// Append stores event only if the ledger still holds expectedVersion events. Otherwise it
	// fails with domain.ErrConcurrentModification and stores nothing.
	Append(ctx context.Context, containerID string, expectedVersion int, event domain.TrackingEvent) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// ContainerDirectory resolves container identity from the shipment registry.
type ContainerDirectory interface {
	// ResolveContainer fails with domain.ErrUnknownContainer when id is not registered.
	ResolveContainer(ctx context.Context, containerID string) (domain.ContainerInfo, error)
	// ShipmentContainers fails with domain.ErrUnknownShipment when id is not registered.
	ShipmentContainers(ctx context.Context, shipmentID string) ([]domain.ContainerInfo, error)
}

// NotificationDispatcher accepts notification intents. Dispatch must not block on delivery.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, intent domain.NotificationIntent) error
}
