package adapters

import (
	"context"
	"fmt"
	"sync"

	"cargo-tracker/internal/features/tracking/domain"
)

// MemoryLedgerStore implements ports.LedgerStore in process memory. Suitable for development
// and tests; ledgers do not survive a restart.
type MemoryLedgerStore struct {
	mu      sync.RWMutex
	ledgers map[string][]domain.TrackingEvent
}

// NewMemoryLedgerStore creates an empty MemoryLedgerStore.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{ledgers: make(map[string][]domain.TrackingEvent)}
}

// Load returns a copy of the container's events.
func (s *MemoryLedgerStore) Load(_ context.Context, containerID string) ([]domain.TrackingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.ledgers[containerID]
	out := make([]domain.TrackingEvent, len(events))
	copy(out, events)
	return out, nil
}

// Append stores event if the ledger length still equals expectedVersion.
func (s *MemoryLedgerStore) Append(_ context.Context, containerID string, expectedVersion int, event domain.TrackingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := len(s.ledgers[containerID]); current != expectedVersion {
		return fmt.Errorf("%w: container %s at version %d, expected %d",
			domain.ErrConcurrentModification, containerID, current, expectedVersion)
	}
	s.ledgers[containerID] = append(s.ledgers[containerID], event)
	return nil
}

// Ping always succeeds.
func (s *MemoryLedgerStore) Ping(context.Context) error {
	return nil
}
