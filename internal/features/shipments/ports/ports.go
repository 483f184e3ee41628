package ports

import (
	"context"

	"cargo-tracker/internal/features/shipments/domain"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"
)

// RegisterContainer is one container in a registration request.
type RegisterContainer struct {
	ID              string `json:"id,omitempty" validate:"omitempty,max=64"`
	ContainerNumber string `json:"containerNumber" validate:"required,containernumber"`
}

// RegisterShipment is the registration request for a shipment and its containers.
type RegisterShipment struct {
	ID         string              `json:"id,omitempty" validate:"omitempty,max=64"`
	Reference  string              `json:"reference" validate:"required,max=64"`
	ClientID   string              `json:"clientId" validate:"required,max=64"`
	Containers []RegisterContainer `json:"containers" validate:"required,min=1,max=500,unique=ContainerNumber,uniqueset=ID,dive"`
}

// ShipmentService defines the primary port for shipment registration and lookup.
type ShipmentService interface {
	Register(ctx context.Context, actor trackingdomain.Actor, req RegisterShipment) (*domain.Shipment, error)
	Get(ctx context.Context, actor trackingdomain.Actor, shipmentID string) (*domain.Shipment, error)
}

// ShipmentRepository defines the secondary port for shipment storage.
type ShipmentRepository interface {
	// Save fails with domain.ErrAlreadyExists if the shipment id or any container id is taken.
	Save(ctx context.Context, shipment *domain.Shipment) error
	// Get fails with domain.ErrNotFound.
	Get(ctx context.Context, shipmentID string) (*domain.Shipment, error)
	// FindByContainer returns the shipment owning containerID, or domain.ErrNotFound.
	FindByContainer(ctx context.Context, containerID string) (*domain.Shipment, error)
	Ping(ctx context.Context) error
}
