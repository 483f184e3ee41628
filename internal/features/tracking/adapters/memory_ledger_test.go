package adapters

import (
	"context"
	"sync"
	"testing"
	"time"

	"cargo-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(containerID string, seq int, status domain.Status) domain.TrackingEvent {
	at := time.Date(2026, 3, 1, 8, seq, 0, 0, time.UTC)
	return domain.TrackingEvent{
		ID:                containerID + "-" + string(status),
		ContainerID:       containerID,
		Seq:               seq,
		Status:            status,
		PreviousStatus:    domain.StatusCreated,
		EventTime:         at,
		Location:          "Rotterdam",
		NotesCustomer:     "customer note",
		NotesInternal:     "internal note",
		Source:            domain.SourceManualStaffEntry,
		CreatedBy:         "staff-1",
		CreatedAt:         at,
		IsCustomerVisible: status.IsCustomerVisible(),
	}
}

func TestMemoryLedgerStore_AppendAndLoad(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	events, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, store.Append(ctx, "c-1", 0, sampleEvent("c-1", 0, domain.StatusBooked)))
	require.NoError(t, store.Append(ctx, "c-1", 1, sampleEvent("c-1", 1, domain.StatusPickupScheduled)))

	events, err = store.Load(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.StatusPickupScheduled, events[1].Status)
}

func TestMemoryLedgerStore_VersionConflict(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "c-1", 0, sampleEvent("c-1", 0, domain.StatusBooked)))
	err := store.Append(ctx, "c-1", 0, sampleEvent("c-1", 0, domain.StatusCancelled))

	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	events, _ := store.Load(ctx, "c-1")
	assert.Len(t, events, 1)
}

func TestMemoryLedgerStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "c-1", 0, sampleEvent("c-1", 0, domain.StatusBooked)))

	events, _ := store.Load(ctx, "c-1")
	events[0].Status = domain.StatusDelivered

	again, _ := store.Load(ctx, "c-1")
	assert.Equal(t, domain.StatusBooked, again[0].Status)
}

func TestMemoryLedgerStore_RacingAppendsOneWins(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Append(ctx, "c-1", 0, sampleEvent("c-1", 0, domain.StatusBooked))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	}
	assert.Equal(t, 1, succeeded)
}
