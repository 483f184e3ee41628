package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cargo-tracker/internal/features/tracking/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTrackingService is a mock implementation of ports.TrackingService.
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) AllowedNextStatuses(ctx context.Context, actor domain.Actor, containerID string) ([]domain.Status, error) {
	args := m.Called(ctx, actor, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Status), args.Error(1)
}

func (m *MockTrackingService) AllowedTransitions(ctx context.Context, actor domain.Actor, containerID string) (*domain.AllowedTransitions, error) {
	args := m.Called(ctx, actor, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllowedTransitions), args.Error(1)
}

func (m *MockTrackingService) CurrentStatus(ctx context.Context, actor domain.Actor, containerID string) (*domain.ContainerStatus, error) {
	args := m.Called(ctx, actor, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContainerStatus), args.Error(1)
}

func (m *MockTrackingService) Transition(ctx context.Context, actor domain.Actor, containerID string, target domain.Status, meta domain.EventMetadata) (*domain.TransitionResult, error) {
	args := m.Called(ctx, actor, containerID, target, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockTrackingService) History(ctx context.Context, actor domain.Actor, containerID string) ([]domain.TrackingEvent, error) {
	args := m.Called(ctx, actor, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackingEvent), args.Error(1)
}

func (m *MockTrackingService) ShipmentProgress(ctx context.Context, actor domain.Actor, shipmentID string) (*domain.ShipmentProgress, error) {
	args := m.Called(ctx, actor, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentProgress), args.Error(1)
}

var staff = domain.Actor{ID: "staff-1", Role: domain.RoleStaff}

func setupApp(svc *MockTrackingService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	NewTrackingHandler(svc, domain.DefaultGraph()).Routes(app)
	return app
}

func newRequest(method, target, body string, actor domain.Actor) *httptestRequest {
	return &httptestRequest{method: method, target: target, body: body, actor: actor}
}

type httptestRequest struct {
	method, target, body string
	actor                domain.Actor
}

func (r *httptestRequest) do(t *testing.T, app *fiber.App) (int, []byte) {
	t.Helper()
	var req = httptest.NewRequest(r.method, r.target, nil)
	if r.body != "" {
		req = httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
		req.Header.Set("Content-Type", "application/json")
	}
	if r.actor.ID != "" {
		req.Header.Set(HeaderActorID, r.actor.ID)
	}
	if r.actor.Role != "" {
		req.Header.Set(HeaderActorRole, string(r.actor.Role))
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw
}

func decodeError(t *testing.T, raw []byte) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	return errResp
}

func TestTrackingHandler_ListStatuses(t *testing.T) {
	app := setupApp(new(MockTrackingService))

	code, raw := newRequest("GET", "/statuses", "", domain.Actor{}).do(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	var catalog []domain.StatusInfo
	require.NoError(t, json.Unmarshal(raw, &catalog))
	assert.Len(t, catalog, len(domain.AllStatuses()))
	assert.Equal(t, domain.StatusCreated, catalog[0].Status)
}

func TestTrackingHandler_RequireActor(t *testing.T) {
	app := setupApp(new(MockTrackingService))

	t.Run("missing role", func(t *testing.T) {
		code, raw := newRequest("GET", "/containers/c-1/status", "", domain.Actor{ID: "x"}).do(t, app)

		assert.Equal(t, fiber.StatusForbidden, code)
		assert.Equal(t, CodeForbidden, decodeError(t, raw).Code)
	})

	t.Run("missing id", func(t *testing.T) {
		code, raw := newRequest("GET", "/containers/c-1/status", "", domain.Actor{Role: domain.RoleStaff}).do(t, app)

		assert.Equal(t, fiber.StatusUnauthorized, code)
		errResp := decodeError(t, raw)
		assert.Equal(t, CodeUnauthenticated, errResp.Code)
		assert.Equal(t, "test-ray-id", errResp.RayID)
	})
}

func TestTrackingHandler_GetCurrentStatus(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("CurrentStatus", mock.Anything, staff, "c-1").Return(&domain.ContainerStatus{
		ContainerID: "c-1",
		Status:      domain.StatusLoadedOnVessel,
		Category:    domain.StatusLoadedOnVessel.Category(),
		Version:     4,
	}, nil)
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/c-1/status", "", staff).do(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	var status domain.ContainerStatus
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, domain.StatusLoadedOnVessel, status.Status)
	assert.Equal(t, 4, status.Version)
	svc.AssertExpectations(t)
}

func TestTrackingHandler_GetCurrentStatus_UnknownContainer(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("CurrentStatus", mock.Anything, staff, "missing").
		Return(nil, domain.ErrUnknownContainer)
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/missing/status", "", staff).do(t, app)

	assert.Equal(t, fiber.StatusNotFound, code)
	errResp := decodeError(t, raw)
	assert.Equal(t, CodeUnknownContainer, errResp.Code)
	assert.Equal(t, "missing", errResp.ContainerID)
}

func TestTrackingHandler_GetAllowedNextStatuses(t *testing.T) {
	svc := new(MockTrackingService)
	allowed := []domain.Status{domain.StatusBooked, domain.StatusOnHold, domain.StatusCancelled}
	svc.On("AllowedTransitions", mock.Anything, staff, "c-1").Return(&domain.AllowedTransitions{
		ContainerID:   "c-1",
		CurrentStatus: domain.StatusCreated,
		Version:       0,
		Allowed:       allowed,
	}, nil).Once()
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/c-1/allowed-next-statuses", "", staff).do(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	var resp AllowedNextStatusesResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, domain.StatusCreated, resp.CurrentStatus)
	assert.Equal(t, allowed, resp.AllowedNextStatuses)
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "CurrentStatus", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "AllowedNextStatuses", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackingHandler_GetAllowedNextStatuses_TerminalIsEmptyArray(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("AllowedTransitions", mock.Anything, staff, "c-1").Return(&domain.AllowedTransitions{
		ContainerID:   "c-1",
		CurrentStatus: domain.StatusDelivered,
		Version:       9,
		Allowed:       []domain.Status{},
	}, nil)
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/c-1/allowed-next-statuses", "", staff).do(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(raw), `"allowedNextStatuses":[]`)
	assert.Contains(t, string(raw), `"version":9`)
}

func TestTrackingHandler_GetAllowedNextStatuses_ClientForbidden(t *testing.T) {
	client := domain.Actor{ID: "client-1", Role: domain.RoleClient}
	svc := new(MockTrackingService)
	svc.On("AllowedTransitions", mock.Anything, client, "c-1").
		Return(nil, errors.Join(domain.ErrForbidden, errors.New("client may not list transitions")))
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/c-1/allowed-next-statuses", "", client).do(t, app)

	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, CodeForbidden, decodeError(t, raw).Code)
	svc.AssertNotCalled(t, "CurrentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackingHandler_GetHistory(t *testing.T) {
	svc := new(MockTrackingService)
	events := []domain.TrackingEvent{
		{ID: "e-1", ContainerID: "c-1", Status: domain.StatusCreated},
		{ID: "e-2", ContainerID: "c-1", Seq: 1, Status: domain.StatusBooked},
	}
	svc.On("History", mock.Anything, staff, "c-1").Return(events, nil)
	app := setupApp(svc)

	code, raw := newRequest("GET", "/containers/c-1/tracking-events", "", staff).do(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	var resp TrackingEventsResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "e-2", resp.Events[1].ID)
}

func TestTrackingHandler_CreateTrackingEvent(t *testing.T) {
	eventTime := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		svc := new(MockTrackingService)
		meta := domain.EventMetadata{
			EventTime:      eventTime,
			Location:       "Port of Rotterdam",
			NotesCustomer:  "Loaded on vessel",
			Source:         domain.SourceManualStaffEntry,
			NotifyCustomer: true,
		}
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, meta).
			Return(&domain.TransitionResult{
				Event:    domain.TrackingEvent{ID: "e-9", ContainerID: "c-1", Seq: 3, Status: domain.StatusLoadedOnVessel},
				Warnings: []string{"notification dispatch failed: queue full"},
			}, nil)
		app := setupApp(svc)

		body := `{"status":"LOADED_ON_VESSEL","eventTime":"2024-03-01T09:30:00Z","location":"Port of Rotterdam",` +
			`"notesCustomer":"Loaded on vessel","source":"manual-staff-entry","notifyCustomer":true}`
		code, raw := newRequest("POST", "/containers/c-1/tracking-events", body, staff).do(t, app)

		assert.Equal(t, fiber.StatusCreated, code)
		var resp TransitionResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.Equal(t, "e-9", resp.Event.ID)
		assert.Equal(t, []string{"notification dispatch failed: queue full"}, resp.Warnings)
		svc.AssertExpectations(t)
	})

	t.Run("invalid transition carries allowed set", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusDelivered, domain.EventMetadata{}).
			Return(nil, &domain.TransitionError{
				Kind:        domain.ErrInvalidTransition,
				ContainerID: "c-1",
				Requested:   domain.StatusDelivered,
				Current:     domain.StatusCreated,
				Allowed:     []domain.Status{domain.StatusBooked, domain.StatusOnHold, domain.StatusCancelled},
			})
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"DELIVERED"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusUnprocessableEntity, code)
		errResp := decodeError(t, raw)
		assert.Equal(t, CodeInvalidTransition, errResp.Code)
		assert.Equal(t, "c-1", errResp.ContainerID)
		require.NotNil(t, errResp.AllowedNextStatuses)
		assert.Equal(t, []domain.Status{domain.StatusBooked, domain.StatusOnHold, domain.StatusCancelled}, *errResp.AllowedNextStatuses)
		assert.Equal(t, "test-ray-id", errResp.RayID)
	})

	t.Run("terminal container reports empty allowed set", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, domain.EventMetadata{}).
			Return(nil, &domain.TransitionError{
				Kind:        domain.ErrInvalidTransition,
				ContainerID: "c-1",
				Requested:   domain.StatusLoadedOnVessel,
				Current:     domain.StatusClosed,
				Allowed:     []domain.Status{},
			})
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"LOADED_ON_VESSEL"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusUnprocessableEntity, code)
		assert.Contains(t, string(raw), `"allowed_next_statuses":[]`)
	})

	t.Run("concurrent modification", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, domain.EventMetadata{}).
			Return(nil, &domain.TransitionError{Kind: domain.ErrConcurrentModification, ContainerID: "c-1"})
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"LOADED_ON_VESSEL"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusConflict, code)
		errResp := decodeError(t, raw)
		assert.Equal(t, CodeConcurrentModification, errResp.Code)
		assert.Nil(t, errResp.AllowedNextStatuses)
	})

	t.Run("concurrent modification carries fresh allowed set", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, domain.EventMetadata{}).
			Return(nil, &domain.TransitionError{
				Kind:        domain.ErrConcurrentModification,
				ContainerID: "c-1",
				Current:     domain.StatusCancelled,
				Allowed:     []domain.Status{},
			})
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"LOADED_ON_VESSEL"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusConflict, code)
		assert.Contains(t, string(raw), `"allowed_next_statuses":[]`)
	})

	t.Run("out of order event time", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, mock.Anything).
			Return(nil, &domain.TransitionError{Kind: domain.ErrOutOfOrderEventTime, ContainerID: "c-1", LastEventTime: eventTime})
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events",
			`{"status":"LOADED_ON_VESSEL","eventTime":"2024-02-01T00:00:00Z"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusUnprocessableEntity, code)
		assert.Equal(t, CodeOutOfOrderEventTime, decodeError(t, raw).Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc := new(MockTrackingService)
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"TELEPORTED"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, CodeUnknownStatus, decodeError(t, raw).Code)
		svc.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing status fails validation", func(t *testing.T) {
		app := setupApp(new(MockTrackingService))

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"location":"Antwerp"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusBadRequest, code)
		errResp := decodeError(t, raw)
		assert.Equal(t, CodeValidation, errResp.Code)
		assert.Equal(t, "is required", errResp.Fields["status"])
	})

	t.Run("bad source", func(t *testing.T) {
		app := setupApp(new(MockTrackingService))

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"LOADED_ON_VESSEL","source":"fax"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Contains(t, decodeError(t, raw).Fields, "source")
	})

	t.Run("malformed body", func(t *testing.T) {
		app := setupApp(new(MockTrackingService))

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":`, staff).do(t, app)

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "invalid request body", decodeError(t, raw).Message)
	})

	t.Run("unexpected error is masked", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Transition", mock.Anything, staff, "c-1", domain.StatusLoadedOnVessel, domain.EventMetadata{}).
			Return(nil, errors.New("dial tcp: connection refused"))
		app := setupApp(svc)

		code, raw := newRequest("POST", "/containers/c-1/tracking-events", `{"status":"LOADED_ON_VESSEL"}`, staff).do(t, app)

		assert.Equal(t, fiber.StatusInternalServerError, code)
		errResp := decodeError(t, raw)
		assert.Equal(t, CodeInternal, errResp.Code)
		assert.Equal(t, "internal server error", errResp.Message)
	})
}

func TestTrackingHandler_GetShipmentProgress(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("ShipmentProgress", mock.Anything, staff, "s-1").Return(&domain.ShipmentProgress{
		Status:          domain.StatusInTransit,
		Category:        domain.StatusInTransit.Category(),
		ProgressPercent: 52.5,
	}, nil)
	svc.On("ShipmentProgress", mock.Anything, staff, "s-404").Return(nil, domain.ErrUnknownShipment)
	app := setupApp(svc)

	code, raw := newRequest("GET", "/shipments/s-1/progress", "", staff).do(t, app)
	assert.Equal(t, fiber.StatusOK, code)
	var progress domain.ShipmentProgress
	require.NoError(t, json.Unmarshal(raw, &progress))
	assert.Equal(t, domain.StatusInTransit, progress.Status)
	assert.InDelta(t, 52.5, progress.ProgressPercent, 0.001)

	code, raw = newRequest("GET", "/shipments/s-404/progress", "", staff).do(t, app)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, CodeUnknownShipment, decodeError(t, raw).Code)
}
