package handler

import (
	"cargo-tracker/internal/features/tracking/domain"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderActorID carries the authenticated principal, set by the upstream gateway.
	HeaderActorID = "X-Actor-ID"
	// HeaderActorRole carries the principal's role: admin, staff, client or system.
	HeaderActorRole = "X-Actor-Role"

	actorLocalKey = "actor"
)

// RequireActor reads the actor headers and rejects requests without a known role.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := domain.ParseRole(c.Get(HeaderActorRole))
		if err != nil {
			return RespondError(c, err, "")
		}
		id := c.Get(HeaderActorID)
		if id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    CodeUnauthenticated,
				Message: HeaderActorID + " header is required",
				RayID:   RayID(c),
			})
		}

		c.Locals(actorLocalKey, domain.Actor{ID: id, Role: role})
		return c.Next()
	}
}

// ActorFrom returns the actor stored by RequireActor.
func ActorFrom(c *fiber.Ctx) domain.Actor {
	if actor, ok := c.Locals(actorLocalKey).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
