package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseStatus_Normalises verifies case and whitespace tolerance.
func TestParseStatus_Normalises(t *testing.T) {
	s, err := ParseStatus("  in_transit ")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, s)
}

// TestParseStatus_RejectsUnknown verifies the catalog is closed.
func TestParseStatus_RejectsUnknown(t *testing.T) {
	_, err := ParseStatus("LOST_AT_SEA")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

// TestStatus_JSONBoundary verifies JSON decoding rejects statuses outside the catalog.
func TestStatus_JSONBoundary(t *testing.T) {
	var payload struct {
		Status Status `json:"status"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"status":"booked"}`), &payload))
	assert.Equal(t, StatusBooked, payload.Status)

	err := json.Unmarshal([]byte(`{"status":"TELEPORTED"}`), &payload)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = json.Marshal(struct {
		Status Status `json:"status"`
	}{Status: "TELEPORTED"})
	assert.Error(t, err)
}

// TestStatus_Classification verifies terminal, exception and visibility flags.
func TestStatus_Classification(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusClosed, StatusCancelled} {
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, StatusEmptyReturned.IsTerminal())

	for _, s := range ExceptionStatuses() {
		assert.True(t, s.IsException(), s)
		assert.Equal(t, -1, s.Index(), s)
		assert.Equal(t, CategoryException, s.Category(), s)
	}

	assert.False(t, StatusDamagedReported.IsCustomerVisible())
	assert.True(t, StatusOnHold.IsCustomerVisible())
	assert.False(t, StatusCancelled.Suspends())
}

// TestAllStatuses_Complete verifies every catalog status has a category and a unique position.
func TestAllStatuses_Complete(t *testing.T) {
	all := AllStatuses()
	assert.Len(t, all, 29)

	seen := make(map[Status]bool)
	for _, s := range all {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
		assert.NotEmpty(t, s.Category(), s)
	}

	for i, s := range CanonicalOrder() {
		assert.Equal(t, i, s.Index())
	}
}
