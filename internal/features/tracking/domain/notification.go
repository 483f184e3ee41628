package domain

import "time"

// NotificationIntent is handed to the notification boundary after a customer-visible transition
// that asked for a notification. Delivery is not the ledger's concern.
type NotificationIntent struct {
	EventID           string    `json:"eventId"`
	ContainerID       string    `json:"containerId"`
	ContainerNumber   string    `json:"containerNumber"`
	ShipmentID        string    `json:"shipmentId"`
	Status            Status    `json:"status"`
	EventTime         time.Time `json:"eventTime"`
	NotesCustomer     string    `json:"notesCustomer,omitempty"`
	RecipientClientID string    `json:"recipientClientId"`
}

// ShouldNotify reports whether an appended event qualifies for a notification intent.
func ShouldNotify(e TrackingEvent, meta EventMetadata) bool {
	return meta.NotifyCustomer && e.IsCustomerVisible
}

// NewNotificationIntent builds the intent for an appended event.
func NewNotificationIntent(info ContainerInfo, e TrackingEvent) NotificationIntent {
	return NotificationIntent{
		EventID:           e.ID,
		ContainerID:       info.ID,
		ContainerNumber:   info.ContainerNumber,
		ShipmentID:        info.ShipmentID,
		Status:            e.Status,
		EventTime:         e.EventTime,
		NotesCustomer:     e.NotesCustomer,
		RecipientClientID: info.ClientID,
	}
}
