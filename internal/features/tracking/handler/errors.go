package handler

import (
	"errors"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/validation"
	"cargo-tracker/internal/features/tracking/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorCode is the machine-readable error category in an ErrorResponse.
type ErrorCode string

const (
	// CodeInvalidTransition means the status is not allowed from the current one.
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	// CodeOutOfOrderEventTime means eventTime precedes the ledger head without a backdate flag.
	CodeOutOfOrderEventTime ErrorCode = "OUT_OF_ORDER_EVENT_TIME"
	// CodeConcurrentModification means another writer won; re-read and retry.
	CodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	CodeUnknownContainer       ErrorCode = "UNKNOWN_CONTAINER"
	CodeUnknownShipment        ErrorCode = "UNKNOWN_SHIPMENT"
	CodeUnknownStatus          ErrorCode = "UNKNOWN_STATUS"
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeForbidden              ErrorCode = "FORBIDDEN"
	CodeUnauthenticated        ErrorCode = "UNAUTHENTICATED"
	CodeConflict               ErrorCode = "CONFLICT"
	CodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Code is the machine-readable error category.
	Code ErrorCode `json:"code"`
	// Message is the error description.
	Message string `json:"message"`
	// ContainerID is the container the request targeted, when there is one.
	ContainerID string `json:"container_id,omitempty"`
	// AllowedNextStatuses lets the caller recover without another round trip. Set, possibly
	// empty, for invalid transitions and, when the ledger could be re-read, for conflicts.
	AllowedNextStatuses *[]domain.Status `json:"allowed_next_statuses,omitempty"`
	// Fields holds per-field validation messages.
	Fields map[string]string `json:"fields,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// ErrConflict is matched by features that report a uniqueness clash, e.g. a duplicate shipment.
var ErrConflict = errors.New("conflict")

// RespondError maps err onto a status code and ErrorResponse.
func RespondError(c *fiber.Ctx, err error, containerID string) error {
	status, body := classify(err)
	body.RayID = RayID(c)
	if body.ContainerID == "" {
		body.ContainerID = containerID
	}

	if status >= fiber.StatusInternalServerError {
		logger.Get().Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("ray_id", body.RayID),
			zap.Error(err),
		)
		body.Message = "internal server error"
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Message: err.Error()}

	te, isTransition := domain.AsTransitionError(err)
	if isTransition {
		body.ContainerID = te.ContainerID
	}

	var fields validation.FieldErrors
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		body.Code = CodeInvalidTransition
		allowed := []domain.Status{}
		if isTransition && te.Allowed != nil {
			allowed = te.Allowed
		}
		body.AllowedNextStatuses = &allowed
		return fiber.StatusUnprocessableEntity, body
	case errors.Is(err, domain.ErrOutOfOrderEventTime):
		body.Code = CodeOutOfOrderEventTime
		return fiber.StatusUnprocessableEntity, body
	case errors.Is(err, domain.ErrConcurrentModification):
		body.Code = CodeConcurrentModification
		if isTransition && te.Allowed != nil {
			allowed := te.Allowed
			body.AllowedNextStatuses = &allowed
		}
		return fiber.StatusConflict, body
	case errors.Is(err, domain.ErrUnknownContainer):
		body.Code = CodeUnknownContainer
		return fiber.StatusNotFound, body
	case errors.Is(err, domain.ErrUnknownShipment):
		body.Code = CodeUnknownShipment
		return fiber.StatusNotFound, body
	case errors.Is(err, domain.ErrUnknownStatus):
		body.Code = CodeUnknownStatus
		return fiber.StatusBadRequest, body
	case errors.As(err, &fields):
		body.Code = CodeValidation
		body.Message = validation.ErrValidation.Error()
		body.Fields = fields
		return fiber.StatusBadRequest, body
	case errors.Is(err, validation.ErrValidation):
		body.Code = CodeValidation
		return fiber.StatusBadRequest, body
	case errors.Is(err, domain.ErrForbidden):
		body.Code = CodeForbidden
		return fiber.StatusForbidden, body
	case errors.Is(err, ErrConflict):
		body.Code = CodeConflict
		return fiber.StatusConflict, body
	default:
		body.Code = CodeInternal
		return fiber.StatusInternalServerError, body
	}
}
