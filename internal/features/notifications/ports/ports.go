package ports

import (
	"context"

	"cargo-tracker/internal/features/notifications/domain"
)

// Sender delivers one notification event to an external channel.
type Sender interface {
	// Name is the metric and log label, e.g. "kafka".
	Name() string
	Send(ctx context.Context, event domain.CloudEvent) error
	Close() error
}
