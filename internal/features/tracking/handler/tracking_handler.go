package handler

import (
	"time"

	"cargo-tracker/internal/core/validation"
	"cargo-tracker/internal/features/tracking/domain"
	"cargo-tracker/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for container status operations.
type TrackingHandler struct {
	trackingService ports.TrackingService
	graph           *domain.Graph
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService ports.TrackingService, graph *domain.Graph) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		graph:           graph,
	}
}

// Routes mounts the tracking endpoints. Everything except the status catalog requires an actor.
func (h *TrackingHandler) Routes(r fiber.Router) {
	r.Get("/statuses", h.ListStatuses)

	containers := r.Group("/containers", RequireActor())
	containers.Get("/:id/status", h.GetCurrentStatus)
	containers.Get("/:id/allowed-next-statuses", h.GetAllowedNextStatuses)
	containers.Get("/:id/tracking-events", h.GetHistory)
	containers.Post("/:id/tracking-events", h.CreateTrackingEvent)

	r.Get("/shipments/:id/progress", RequireActor(), h.GetShipmentProgress)
}

// TransitionRequest is the body of a status change.
type TransitionRequest struct {
	// Status is the requested next status.
	Status string `json:"status" validate:"required"`
	// EventTime defaults to the server time when omitted.
	EventTime *time.Time `json:"eventTime,omitempty"`
	// Location is free text such as a port or terminal name.
	Location string `json:"location,omitempty" validate:"max=256"`
	// NotesCustomer is shown to clients.
	NotesCustomer string `json:"notesCustomer,omitempty" validate:"max=2000"`
	// NotesInternal is staff-only.
	NotesInternal string `json:"notesInternal,omitempty" validate:"max=2000"`
	// Source defaults to manual-staff-entry.
	Source string `json:"source,omitempty" validate:"omitempty,oneof=manual-staff-entry system integration"`
	// NotifyCustomer requests a customer notification.
	NotifyCustomer bool `json:"notifyCustomer"`
	// Backdated allows an eventTime earlier than the latest event. Admin only.
	Backdated bool `json:"backdated"`
}

// metadata converts the request into domain metadata.
func (r TransitionRequest) metadata() (domain.EventMetadata, error) {
	meta := domain.EventMetadata{
		Location:       r.Location,
		NotesCustomer:  r.NotesCustomer,
		NotesInternal:  r.NotesInternal,
		NotifyCustomer: r.NotifyCustomer,
		Backdated:      r.Backdated,
	}
	if r.EventTime != nil {
		meta.EventTime = *r.EventTime
	}
	if r.Source != "" {
		source, err := domain.ParseSource(r.Source)
		if err != nil {
			return meta, err
		}
		meta.Source = source
	}
	return meta, nil
}

// AllowedNextStatusesResponse lists the statuses a container may move to.
type AllowedNextStatusesResponse struct {
	ContainerID         string          `json:"containerId"`
	CurrentStatus       domain.Status   `json:"currentStatus"`
	Version             int             `json:"version"`
	AllowedNextStatuses []domain.Status `json:"allowedNextStatuses"`
}

// TrackingEventsResponse wraps a container's event history.
type TrackingEventsResponse struct {
	ContainerID string                 `json:"containerId"`
	Events      []domain.TrackingEvent `json:"events"`
}

// TransitionResponse is returned after a successful status change.
type TransitionResponse struct {
	Event    domain.TrackingEvent `json:"event"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ListStatuses godoc
// @Summary List container statuses
// @Description Returns every status with its category, ordering and successors
// @Tags tracking
// @Produce json
// @Success 200 {array} domain.StatusInfo
// @Router /statuses [get]
func (h *TrackingHandler) ListStatuses(c *fiber.Ctx) error {
	return c.JSON(domain.Catalog(h.graph))
}

// GetCurrentStatus godoc
// @Summary Get a container's current status
// @Description Derives the status from the container's tracking ledger
// @Tags tracking
// @Produce json
// @Param id path string true "Container ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role (admin, staff, client, system)"
// @Success 200 {object} domain.ContainerStatus
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /containers/{id}/status [get]
func (h *TrackingHandler) GetCurrentStatus(c *fiber.Ctx) error {
	containerID := c.Params("id")

	status, err := h.trackingService.CurrentStatus(c.UserContext(), ActorFrom(c), containerID)
	if err != nil {
		return RespondError(c, err, containerID)
	}

	return c.JSON(status)
}

// GetAllowedNextStatuses godoc
// @Summary Get allowed next statuses
// @Description Returns the statuses the container may transition to, in canonical order
// @Tags tracking
// @Produce json
// @Param id path string true "Container ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role (admin, staff, system)"
// @Success 200 {object} AllowedNextStatusesResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /containers/{id}/allowed-next-statuses [get]
func (h *TrackingHandler) GetAllowedNextStatuses(c *fiber.Ctx) error {
	containerID := c.Params("id")

	view, err := h.trackingService.AllowedTransitions(c.UserContext(), ActorFrom(c), containerID)
	if err != nil {
		return RespondError(c, err, containerID)
	}

	return c.JSON(AllowedNextStatusesResponse{
		ContainerID:         view.ContainerID,
		CurrentStatus:       view.CurrentStatus,
		Version:             view.Version,
		AllowedNextStatuses: view.Allowed,
	})
}

// GetHistory godoc
// @Summary Get a container's tracking events
// @Description Returns events in chronological order. Clients only see customer-visible events.
// @Tags tracking
// @Produce json
// @Param id path string true "Container ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role"
// @Success 200 {object} TrackingEventsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /containers/{id}/tracking-events [get]
func (h *TrackingHandler) GetHistory(c *fiber.Ctx) error {
	containerID := c.Params("id")

	events, err := h.trackingService.History(c.UserContext(), ActorFrom(c), containerID)
	if err != nil {
		return RespondError(c, err, containerID)
	}

	return c.JSON(TrackingEventsResponse{
		ContainerID: containerID,
		Events:      events,
	})
}

// CreateTrackingEvent godoc
// @Summary Change a container's status
// @Description Validates the transition against the status graph and appends a tracking event
// @Tags tracking
// @Accept json
// @Produce json
// @Param id path string true "Container ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role (admin, staff, system)"
// @Param request body TransitionRequest true "Status change"
// @Success 201 {object} TransitionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /containers/{id}/tracking-events [post]
func (h *TrackingHandler) CreateTrackingEvent(c *fiber.Ctx) error {
	containerID := c.Params("id")

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Code:        CodeValidation,
			Message:     "invalid request body",
			ContainerID: containerID,
			RayID:       RayID(c),
		})
	}
	if err := validation.Struct(req); err != nil {
		return RespondError(c, err, containerID)
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		return RespondError(c, err, containerID)
	}
	meta, err := req.metadata()
	if err != nil {
		return RespondError(c, err, containerID)
	}

	result, err := h.trackingService.Transition(c.UserContext(), ActorFrom(c), containerID, target, meta)
	if err != nil {
		return RespondError(c, err, containerID)
	}

	return c.Status(fiber.StatusCreated).JSON(TransitionResponse{
		Event:    result.Event,
		Warnings: result.Warnings,
	})
}

// GetShipmentProgress godoc
// @Summary Get shipment progress
// @Description Derives the shipment status and progress from its containers
// @Tags tracking
// @Produce json
// @Param id path string true "Shipment ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role"
// @Success 200 {object} domain.ShipmentProgress
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{id}/progress [get]
func (h *TrackingHandler) GetShipmentProgress(c *fiber.Ctx) error {
	shipmentID := c.Params("id")

	progress, err := h.trackingService.ShipmentProgress(c.UserContext(), ActorFrom(c), shipmentID)
	if err != nil {
		return RespondError(c, err, "")
	}

	return c.JSON(progress)
}
