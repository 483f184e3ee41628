package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/validation"
	"cargo-tracker/internal/features/shipments/domain"
	"cargo-tracker/internal/features/shipments/ports"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShipmentServiceImpl implements ports.ShipmentService. It also serves as the tracking
// feature's container directory.
type ShipmentServiceImpl struct {
	repo  ports.ShipmentRepository
	now   func() time.Time
	newID func() string
}

// NewShipmentService creates a new ShipmentServiceImpl.
func NewShipmentService(repo ports.ShipmentRepository) *ShipmentServiceImpl {
	return &ShipmentServiceImpl{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Register validates and stores a shipment. Only admin and staff may register.
func (s *ShipmentServiceImpl) Register(ctx context.Context, actor trackingdomain.Actor, req ports.RegisterShipment) (*domain.Shipment, error) {
	if actor.Role != trackingdomain.RoleAdmin && actor.Role != trackingdomain.RoleStaff {
		return nil, fmt.Errorf("%w: %s may not register shipments", trackingdomain.ErrForbidden, actor.Role)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	containers := make([]domain.Container, len(req.Containers))
	for i, c := range req.Containers {
		containers[i] = domain.Container{ID: c.ID, ContainerNumber: c.ContainerNumber}
	}
	shipment, err := domain.NewShipment(req.ID, req.Reference, req.ClientID, containers, s.newID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validation.ErrValidation, err)
	}

	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, fmt.Errorf("service: failed to save shipment: %w", err)
	}

	logger.Get().Info("Shipment registered",
		zap.String("shipment_id", shipment.ID),
		zap.String("client_id", shipment.ClientID),
		zap.Int("containers", len(shipment.Containers)),
		zap.String("actor", actor.ID),
	)
	return shipment, nil
}

// Get returns the shipment. Clients only see their own.
func (s *ShipmentServiceImpl) Get(ctx context.Context, actor trackingdomain.Actor, shipmentID string) (*domain.Shipment, error) {
	shipment, err := s.repo.Get(ctx, shipmentID)
	if err != nil {
		return nil, s.notFound(err, trackingdomain.ErrUnknownShipment, shipmentID)
	}
	if !actor.CanRead(shipment.ClientID) {
		return nil, fmt.Errorf("%w: shipment %s", trackingdomain.ErrForbidden, shipmentID)
	}
	return shipment, nil
}

// ResolveContainer implements the tracking container directory.
func (s *ShipmentServiceImpl) ResolveContainer(ctx context.Context, containerID string) (trackingdomain.ContainerInfo, error) {
	shipment, err := s.repo.FindByContainer(ctx, containerID)
	if err != nil {
		return trackingdomain.ContainerInfo{}, s.notFound(err, trackingdomain.ErrUnknownContainer, containerID)
	}

	c, ok := shipment.Container(containerID)
	if !ok {
		return trackingdomain.ContainerInfo{}, fmt.Errorf("%w: %s", trackingdomain.ErrUnknownContainer, containerID)
	}
	return containerInfo(shipment, c), nil
}

// ShipmentContainers implements the tracking container directory.
func (s *ShipmentServiceImpl) ShipmentContainers(ctx context.Context, shipmentID string) ([]trackingdomain.ContainerInfo, error) {
	shipment, err := s.repo.Get(ctx, shipmentID)
	if err != nil {
		return nil, s.notFound(err, trackingdomain.ErrUnknownShipment, shipmentID)
	}

	infos := make([]trackingdomain.ContainerInfo, len(shipment.Containers))
	for i, c := range shipment.Containers {
		infos[i] = containerInfo(shipment, c)
	}
	return infos, nil
}

func (s *ShipmentServiceImpl) notFound(err, kind error, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s", kind, id)
	}
	return fmt.Errorf("service: failed to read shipment registry: %w", err)
}

func containerInfo(s *domain.Shipment, c domain.Container) trackingdomain.ContainerInfo {
	return trackingdomain.ContainerInfo{
		ID:              c.ID,
		ContainerNumber: c.ContainerNumber,
		ShipmentID:      s.ID,
		ClientID:        s.ClientID,
	}
}
