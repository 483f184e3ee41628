package handler

import (
	"errors"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/features/carriers/domain"
	"cargo-tracker/internal/features/carriers/ports"
	trackinghandler "cargo-tracker/internal/features/tracking/handler"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CodeCarrierUnavailable is returned when the carrier feed cannot be read.
const CodeCarrierUnavailable trackinghandler.ErrorCode = "CARRIER_UNAVAILABLE"

// CarrierHandler handles HTTP requests for carrier integration.
type CarrierHandler struct {
	service ports.SyncService
}

// NewCarrierHandler creates a new CarrierHandler.
func NewCarrierHandler(service ports.SyncService) *CarrierHandler {
	return &CarrierHandler{service: service}
}

// Routes mounts the carrier endpoints behind the actor middleware.
func (h *CarrierHandler) Routes(r fiber.Router) {
	r.Post("/containers/:id/carrier-sync", trackinghandler.RequireActor(), h.SyncContainer)
}

// SyncContainer handles POST /containers/:id/carrier-sync.
// @Summary Sync carrier milestones
// @Description Pulls the carrier's milestones for the container and records every new one the transition graph accepts. Rejected milestones are reported, not fatal.
// @Tags carriers
// @Produce json
// @Param id path string true "Container ID"
// @Param X-Actor-ID header string true "Actor identity"
// @Param X-Actor-Role header string true "Actor role (admin, staff, system)"
// @Success 200 {object} domain.SyncReport
// @Failure 403 {object} trackinghandler.ErrorResponse
// @Failure 404 {object} trackinghandler.ErrorResponse
// @Failure 409 {object} trackinghandler.ErrorResponse
// @Failure 502 {object} trackinghandler.ErrorResponse
// @Router /containers/{id}/carrier-sync [post]
func (h *CarrierHandler) SyncContainer(c *fiber.Ctx) error {
	containerID := c.Params("id")

	report, err := h.service.SyncContainer(c.UserContext(), trackinghandler.ActorFrom(c), containerID)
	if err != nil {
		if errors.Is(err, domain.ErrFeedUnavailable) {
			logger.Get().Error("Carrier sync failed",
				zap.String("container_id", containerID),
				zap.String("ray_id", trackinghandler.RayID(c)),
				zap.Error(err),
			)
			return c.Status(fiber.StatusBadGateway).JSON(trackinghandler.ErrorResponse{
				Code:        CodeCarrierUnavailable,
				Message:     "carrier feed unavailable",
				ContainerID: containerID,
				RayID:       trackinghandler.RayID(c),
			})
		}
		return trackinghandler.RespondError(c, err, containerID)
	}

	return c.JSON(report)
}
