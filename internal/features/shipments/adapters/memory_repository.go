package adapters

import (
	"context"
	"fmt"
	"sync"

	"cargo-tracker/internal/features/shipments/domain"
)

// MemoryShipmentRepository implements ports.ShipmentRepository in process memory.
type MemoryShipmentRepository struct {
	mu          sync.RWMutex
	shipments   map[string]domain.Shipment
	byContainer map[string]string
}

// NewMemoryShipmentRepository creates an empty repository.
func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{
		shipments:   make(map[string]domain.Shipment),
		byContainer: make(map[string]string),
	}
}

// Save stores a copy of the shipment.
func (r *MemoryShipmentRepository) Save(_ context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shipments[shipment.ID]; ok {
		return fmt.Errorf("%w: shipment %s", domain.ErrAlreadyExists, shipment.ID)
	}
	if id := shipment.RepeatedContainerID(); id != "" {
		return fmt.Errorf("%w: container %s", domain.ErrAlreadyExists, id)
	}
	for _, c := range shipment.Containers {
		if _, ok := r.byContainer[c.ID]; ok {
			return fmt.Errorf("%w: container %s", domain.ErrAlreadyExists, c.ID)
		}
	}

	stored := *shipment
	stored.Containers = append([]domain.Container(nil), shipment.Containers...)
	r.shipments[shipment.ID] = stored
	for _, c := range shipment.Containers {
		r.byContainer[c.ID] = shipment.ID
	}
	return nil
}

// Get returns a copy of the shipment.
func (r *MemoryShipmentRepository) Get(_ context.Context, shipmentID string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.get(shipmentID)
}

// FindByContainer returns the shipment owning containerID.
func (r *MemoryShipmentRepository) FindByContainer(_ context.Context, containerID string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shipmentID, ok := r.byContainer[containerID]
	if !ok {
		return nil, fmt.Errorf("%w: container %s", domain.ErrNotFound, containerID)
	}
	return r.get(shipmentID)
}

func (r *MemoryShipmentRepository) get(shipmentID string) (*domain.Shipment, error) {
	stored, ok := r.shipments[shipmentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, shipmentID)
	}
	stored.Containers = append([]domain.Container(nil), stored.Containers...)
	return &stored, nil
}

// Ping always succeeds.
func (r *MemoryShipmentRepository) Ping(context.Context) error {
	return nil
}
