package domain

import (
	"fmt"
	"strings"
)

// Role is the actor role supplied by the upstream authentication layer.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
	RoleSystem Role = "system"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleStaff, RoleClient, RoleSystem:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrForbidden, raw)
	}
}

// Actor is the identity behind a request.
type Actor struct {
	ID   string
	Role Role
}

// CanTransition reports whether the actor may append tracking events.
func (a Actor) CanTransition() bool {
	return a.Role == RoleAdmin || a.Role == RoleStaff || a.Role == RoleSystem
}

// CanBackdate reports whether the actor may submit an authorized backdated correction.
func (a Actor) CanBackdate() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// IsClient reports whether reads must be restricted to the actor's own, customer-visible data.
func (a Actor) IsClient() bool {
	return a.Role == RoleClient
}

// CanRead reports whether the actor may read the container owned by clientID.
func (a Actor) CanRead(clientID string) bool {
	if !a.IsClient() {
		return a.Role != ""
	}
	return a.ID != "" && a.ID == clientID
}

// SystemActor is the identity used by platform-internal writers such as carrier sync.
func SystemActor(name string) Actor {
	return Actor{ID: "system:" + name, Role: RoleSystem}
}
