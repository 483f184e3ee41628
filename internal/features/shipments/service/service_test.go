package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cargo-tracker/internal/core/validation"
	"cargo-tracker/internal/features/shipments/domain"
	"cargo-tracker/internal/features/shipments/ports"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShipmentRepository is a mock implementation of ports.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByContainer(ctx context.Context, containerID string) (*domain.Shipment, error) {
	args := m.Called(ctx, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	staff  = trackingdomain.Actor{ID: "staff-1", Role: trackingdomain.RoleStaff}
	client = trackingdomain.Actor{ID: "client-1", Role: trackingdomain.RoleClient}
)

func newService(repo *MockShipmentRepository) *ShipmentServiceImpl {
	s := NewShipmentService(repo)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC) }
	return s
}

func sampleShipment() *domain.Shipment {
	return &domain.Shipment{
		ID:        "shp-1",
		Reference: "BK-778",
		ClientID:  "client-1",
		Containers: []domain.Container{
			{ID: "box-1", ContainerNumber: "MSCU1234566"},
			{ID: "box-2", ContainerNumber: "MSCU7654329"},
		},
	}
}

func TestShipmentService_Register(t *testing.T) {
	ctx := context.Background()
	req := ports.RegisterShipment{
		Reference: "BK-778",
		ClientID:  "client-1",
		Containers: []ports.RegisterContainer{
			{ContainerNumber: "MSCU1234566"},
			{ID: "box-2", ContainerNumber: "MSCU7654329"},
		},
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*domain.Shipment")).Return(nil).Once()

		shipment, err := newService(repo).Register(ctx, staff, req)

		require.NoError(t, err)
		assert.Equal(t, "id-1", shipment.ID)
		assert.Equal(t, "id-2", shipment.Containers[0].ID)
		assert.Equal(t, "box-2", shipment.Containers[1].ID)
		repo.AssertExpectations(t)
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		repo := new(MockShipmentRepository)

		_, err := newService(repo).Register(ctx, client, req)

		assert.ErrorIs(t, err, trackingdomain.ErrForbidden)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("InvalidContainerNumber", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		bad := req
		bad.Containers = []ports.RegisterContainer{{ContainerNumber: "MSCU1234567"}}

		_, err := newService(repo).Register(ctx, staff, bad)

		assert.ErrorIs(t, err, validation.ErrValidation)
		var fields validation.FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Contains(t, fields, "containers[0].containerNumber")
	})

	t.Run("DuplicateContainerNumber", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		dup := req
		dup.Containers = []ports.RegisterContainer{{ContainerNumber: "MSCU1234566"}, {ContainerNumber: "mscu1234566"}}

		_, err := newService(repo).Register(ctx, staff, dup)

		assert.ErrorIs(t, err, validation.ErrValidation)
	})

	t.Run("RepeatedContainerID", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		dup := req
		dup.Containers = []ports.RegisterContainer{
			{ID: "c-1", ContainerNumber: "MSCU1234566"},
			{ID: "c-1", ContainerNumber: "MSCU7654329"},
		}

		_, err := newService(repo).Register(ctx, staff, dup)

		var fields validation.FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Contains(t, fields, "containers")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("SuppliedIDCollidesWithGenerated", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		dup := req
		dup.Containers = []ports.RegisterContainer{
			{ContainerNumber: "MSCU1234566"},
			{ID: "id-2", ContainerNumber: "MSCU7654329"},
		}

		_, err := newService(repo).Register(ctx, staff, dup)

		assert.ErrorIs(t, err, validation.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrDuplicateContainerID)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		repo.On("Save", ctx, mock.Anything).Return(domain.ErrAlreadyExists).Once()

		_, err := newService(repo).Register(ctx, staff, req)

		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestShipmentService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShipmentRepository)
	repo.On("Get", ctx, "shp-1").Return(sampleShipment(), nil)
	repo.On("Get", ctx, "shp-404").Return(nil, domain.ErrNotFound)
	svc := newService(repo)

	shipment, err := svc.Get(ctx, client, "shp-1")
	require.NoError(t, err)
	assert.Equal(t, "BK-778", shipment.Reference)

	_, err = svc.Get(ctx, trackingdomain.Actor{ID: "client-2", Role: trackingdomain.RoleClient}, "shp-1")
	assert.ErrorIs(t, err, trackingdomain.ErrForbidden)

	_, err = svc.Get(ctx, staff, "shp-404")
	assert.ErrorIs(t, err, trackingdomain.ErrUnknownShipment)
}

func TestShipmentService_ContainerDirectory(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShipmentRepository)
	repo.On("FindByContainer", ctx, "box-2").Return(sampleShipment(), nil)
	repo.On("FindByContainer", ctx, "ghost").Return(nil, domain.ErrNotFound)
	repo.On("FindByContainer", ctx, "broken").Return(nil, errors.New("connection reset"))
	repo.On("Get", ctx, "shp-1").Return(sampleShipment(), nil)
	repo.On("Get", ctx, "shp-404").Return(nil, domain.ErrNotFound)
	svc := newService(repo)

	info, err := svc.ResolveContainer(ctx, "box-2")
	require.NoError(t, err)
	assert.Equal(t, trackingdomain.ContainerInfo{
		ID:              "box-2",
		ContainerNumber: "MSCU7654329",
		ShipmentID:      "shp-1",
		ClientID:        "client-1",
	}, info)

	_, err = svc.ResolveContainer(ctx, "ghost")
	assert.ErrorIs(t, err, trackingdomain.ErrUnknownContainer)

	_, err = svc.ResolveContainer(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, trackingdomain.ErrUnknownContainer)

	infos, err := svc.ShipmentContainers(ctx, "shp-1")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "box-1", infos[0].ID)
	assert.Equal(t, "client-1", infos[1].ClientID)

	_, err = svc.ShipmentContainers(ctx, "shp-404")
	assert.ErrorIs(t, err, trackingdomain.ErrUnknownShipment)
}
