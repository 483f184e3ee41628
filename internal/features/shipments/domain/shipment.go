package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a shipment or container is not registered.
	ErrNotFound = errors.New("shipment not found")
	// ErrAlreadyExists is returned when a shipment or container id is already registered.
	ErrAlreadyExists = errors.New("shipment or container already registered")
	// ErrDuplicateContainerNumber is returned when a container number repeats within a shipment.
	ErrDuplicateContainerNumber = errors.New("duplicate container number in shipment")
	// ErrDuplicateContainerID is returned when two containers of a shipment share an id.
	ErrDuplicateContainerID = errors.New("duplicate container id in shipment")
	// ErrNoContainers is returned when a shipment is registered without containers.
	ErrNoContainers = errors.New("shipment needs at least one container")
)

// Container is a physical container registered under a shipment.
type Container struct {
	ID              string `json:"id"`
	ContainerNumber string `json:"containerNumber"`
}

// Shipment groups the containers booked for one client.
// Its status and progress are derived from the containers' ledgers and never stored.
type Shipment struct {
	ID         string      `json:"id"`
	Reference  string      `json:"reference"`
	ClientID   string      `json:"clientId"`
	Containers []Container `json:"containers"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewShipment normalises container numbers and assigns missing ids with newID.
func NewShipment(id, reference, clientID string, containers []Container, newID func() string, now time.Time) (*Shipment, error) {
	if len(containers) == 0 {
		return nil, ErrNoContainers
	}
	if id == "" {
		id = newID()
	}

	seen := make(map[string]struct{}, len(containers))
	normalised := make([]Container, 0, len(containers))
	for _, c := range containers {
		number := NormalizeContainerNumber(c.ContainerNumber)
		if _, dup := seen[number]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateContainerNumber, number)
		}
		seen[number] = struct{}{}

		if c.ID == "" {
			c.ID = newID()
		}
		c.ContainerNumber = number
		normalised = append(normalised, c)
	}
	if id := repeatedContainerID(normalised); id != "" {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateContainerID, id)
	}

	return &Shipment{
		ID:         id,
		Reference:  strings.TrimSpace(reference),
		ClientID:   clientID,
		Containers: normalised,
		CreatedAt:  now.UTC().Truncate(time.Microsecond),
	}, nil
}

// repeatedContainerID returns the first id used by more than one container, or "".
func repeatedContainerID(containers []Container) string {
	ids := make(map[string]struct{}, len(containers))
	for _, c := range containers {
		if _, dup := ids[c.ID]; dup {
			return c.ID
		}
		ids[c.ID] = struct{}{}
	}
	return ""
}

// RepeatedContainerID returns an id shared by two of the shipment's containers, or "".
func (s *Shipment) RepeatedContainerID() string {
	return repeatedContainerID(s.Containers)
}

// NormalizeContainerNumber upper-cases and strips whitespace.
func NormalizeContainerNumber(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// Container returns the container with id, if it belongs to the shipment.
func (s *Shipment) Container(id string) (Container, bool) {
	for _, c := range s.Containers {
		if c.ID == id {
			return c, true
		}
	}
	return Container{}, false
}
