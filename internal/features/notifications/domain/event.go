package domain

import (
	"time"

	trackingdomain "cargo-tracker/internal/features/tracking/domain"
)

const (
	// SpecVersion is the CloudEvents version of every envelope.
	SpecVersion = "1.0"
	// TypeStatusChanged is the event type for a customer-visible container status change.
	TypeStatusChanged = "cargo.container.status-changed"
	// Source identifies this service as the event producer.
	Source = "/cargo-tracker/tracking"
	// ContentType of the data payload.
	ContentType = "application/json"
)

// CloudEvent is the CloudEvents 1.0 envelope around a notification intent.
type CloudEvent struct {
	SpecVersion     string                            `json:"specversion"`
	Type            string                            `json:"type"`
	Source          string                            `json:"source"`
	Subject         string                            `json:"subject"`
	ID              string                            `json:"id"`
	Time            time.Time                         `json:"time"`
	DataContentType string                            `json:"datacontenttype"`
	Data            trackingdomain.NotificationIntent `json:"data"`
}

// NewCloudEvent wraps intent. The event id doubles as the CloudEvents id so consumers can
// deduplicate redeliveries; the subject is the container id.
func NewCloudEvent(intent trackingdomain.NotificationIntent, now time.Time) CloudEvent {
	return CloudEvent{
		SpecVersion:     SpecVersion,
		Type:            TypeStatusChanged,
		Source:          Source,
		Subject:         intent.ContainerID,
		ID:              intent.EventID,
		Time:            now.UTC(),
		DataContentType: ContentType,
		Data:            intent,
	}
}

// Headers returns the binary-mode ce-* attributes.
func (e CloudEvent) Headers() map[string]string {
	return map[string]string{
		"ce-specversion": e.SpecVersion,
		"ce-type":        e.Type,
		"ce-source":      e.Source,
		"ce-id":          e.ID,
		"ce-subject":     e.Subject,
		"ce-time":        e.Time.Format(time.RFC3339Nano),
		"content-type":   e.DataContentType,
	}
}
