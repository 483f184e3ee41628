package handler

import (
	"errors"
	"fmt"

	"cargo-tracker/internal/features/shipments/domain"
	"cargo-tracker/internal/features/shipments/ports"
	trackinghandler "cargo-tracker/internal/features/tracking/handler"

	"github.com/gofiber/fiber/v2"
)

// ShipmentHandler handles HTTP requests for shipments.
type ShipmentHandler struct {
	service ports.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
	}
}

// Routes mounts the shipment endpoints behind the actor middleware.
func (h *ShipmentHandler) Routes(r fiber.Router) {
	r.Post("/shipments", trackinghandler.RequireActor(), h.RegisterShipment)
	r.Get("/shipments/:id", trackinghandler.RequireActor(), h.GetShipment)
}

// RegisterShipment handles POST /shipments.
// @Summary Register a shipment
// @Description Registers a shipment and its containers. Container numbers must be valid ISO 6346 codes and unique within the shipment.
// @Tags shipments
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role (admin, staff)"
// @Param shipment body ports.RegisterShipment true "Shipment details"
// @Success 201 {object} domain.Shipment
// @Failure 400 {object} trackinghandler.ErrorResponse
// @Failure 403 {object} trackinghandler.ErrorResponse
// @Failure 409 {object} trackinghandler.ErrorResponse
// @Router /shipments [post]
func (h *ShipmentHandler) RegisterShipment(c *fiber.Ctx) error {
	var req ports.RegisterShipment
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(trackinghandler.ErrorResponse{
			Code:    trackinghandler.CodeValidation,
			Message: "invalid request body",
			RayID:   trackinghandler.RayID(c),
		})
	}

	shipment, err := h.service.Register(c.UserContext(), trackinghandler.ActorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(shipment)
}

// GetShipment handles GET /shipments/:id.
// @Summary Get a shipment
// @Description Returns the shipment and its containers. Clients can only read their own shipments.
// @Tags shipments
// @Produce json
// @Param id path string true "Shipment ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role"
// @Success 200 {object} domain.Shipment
// @Failure 403 {object} trackinghandler.ErrorResponse
// @Failure 404 {object} trackinghandler.ErrorResponse
// @Router /shipments/{id} [get]
func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	shipment, err := h.service.Get(c.UserContext(), trackinghandler.ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(shipment)
}

func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		err = fmt.Errorf("%w: %v", trackinghandler.ErrConflict, err)
	}
	return trackinghandler.RespondError(c, err, "")
}
