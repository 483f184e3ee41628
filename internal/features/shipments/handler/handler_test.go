package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargo-tracker/internal/core/validation"
	"cargo-tracker/internal/features/shipments/domain"
	"cargo-tracker/internal/features/shipments/ports"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"
	trackinghandler "cargo-tracker/internal/features/tracking/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShipmentService is a mock implementation of ports.ShipmentService
type MockShipmentService struct {
	mock.Mock
}

func (m *MockShipmentService) Register(ctx context.Context, actor trackingdomain.Actor, req ports.RegisterShipment) (*domain.Shipment, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) Get(ctx context.Context, actor trackingdomain.Actor, shipmentID string) (*domain.Shipment, error) {
	args := m.Called(ctx, actor, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

var staff = trackingdomain.Actor{ID: "staff-1", Role: trackingdomain.RoleStaff}

func setupApp(service *MockShipmentService) *fiber.App {
	app := fiber.New()
	NewShipmentHandler(service).Routes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, target string, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(trackinghandler.HeaderActorID, staff.ID)
	req.Header.Set(trackinghandler.HeaderActorRole, string(staff.Role))
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestShipmentHandler_RegisterShipment(t *testing.T) {
	reqBody := ports.RegisterShipment{
		Reference:  "BK-778",
		ClientID:   "client-1",
		Containers: []ports.RegisterContainer{{ContainerNumber: "MSCU1234566"}},
	}
	body, _ := json.Marshal(reqBody)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockShipmentService)
		mockService.On("Register", mock.Anything, staff, reqBody).Return(&domain.Shipment{
			ID:         "shp-1",
			Reference:  "BK-778",
			ClientID:   "client-1",
			Containers: []domain.Container{{ID: "box-1", ContainerNumber: "MSCU1234566"}},
		}, nil).Once()
		app := setupApp(mockService)

		resp := send(t, app, "POST", "/shipments", body)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var shipment domain.Shipment
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&shipment))
		assert.Equal(t, "shp-1", shipment.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockShipmentService)
		mockService.On("Register", mock.Anything, staff, reqBody).
			Return(nil, validation.FieldErrors{"containers[0].containerNumber": "is invalid"}).Once()
		app := setupApp(mockService)

		resp := send(t, app, "POST", "/shipments", body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var errResp trackinghandler.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, trackinghandler.CodeValidation, errResp.Code)
		assert.Equal(t, "is invalid", errResp.Fields["containers[0].containerNumber"])
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		mockService := new(MockShipmentService)
		mockService.On("Register", mock.Anything, staff, reqBody).
			Return(nil, fmt.Errorf("service: failed to save shipment: %w", domain.ErrAlreadyExists)).Once()
		app := setupApp(mockService)

		resp := send(t, app, "POST", "/shipments", body)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		app := setupApp(new(MockShipmentService))

		resp := send(t, app, "POST", "/shipments", []byte("{"))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestShipmentHandler_GetShipment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockShipmentService)
		mockService.On("Get", mock.Anything, staff, "shp-1").Return(&domain.Shipment{ID: "shp-1"}, nil).Once()
		app := setupApp(mockService)

		resp := send(t, app, "GET", "/shipments/shp-1", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockShipmentService)
		mockService.On("Get", mock.Anything, staff, "shp-404").Return(nil, trackingdomain.ErrUnknownShipment).Once()
		app := setupApp(mockService)

		resp := send(t, app, "GET", "/shipments/shp-404", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var errResp trackinghandler.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, trackinghandler.CodeUnknownShipment, errResp.Code)
	})
}
