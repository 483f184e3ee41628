package adapters

import (
	"context"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/features/notifications/domain"

	"go.uber.org/zap"
)

// LogSender writes notifications to the log. Used in development and when no channel is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{logger: logger.Named("notifications")}
}

// Name implements ports.Sender.
func (s *LogSender) Name() string {
	return "log"
}

// Send logs the event.
func (s *LogSender) Send(_ context.Context, event domain.CloudEvent) error {
	s.logger.Info("Customer notification",
		zap.String("event_id", event.ID),
		zap.String("container_id", event.Data.ContainerID),
		zap.String("shipment_id", event.Data.ShipmentID),
		zap.String("recipient", event.Data.RecipientClientID),
		zap.String("status", string(event.Data.Status)),
		zap.Time("event_time", event.Data.EventTime),
	)
	return nil
}

// Close implements ports.Sender.
func (s *LogSender) Close() error {
	return nil
}
