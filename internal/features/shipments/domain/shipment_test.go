package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNewShipment(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 123456789, time.FixedZone("CET", 3600))

	tests := []struct {
		name        string
		id          string
		containers  []Container
		expectedErr error
		expectedIDs []string
	}{
		{
			name:        "Assigns missing ids",
			containers:  []Container{{ContainerNumber: "mscu 1234566"}, {ID: "box-2", ContainerNumber: "MSCU7654329"}},
			expectedIDs: []string{"id-2", "box-2"},
		},
		{
			name:        "Keeps supplied shipment id",
			id:          "shp-1",
			containers:  []Container{{ContainerNumber: "CSQU3054383"}},
			expectedIDs: []string{"id-1"},
		},
		{
			name:        "Rejects duplicate numbers after normalisation",
			containers:  []Container{{ContainerNumber: "CSQU3054383"}, {ContainerNumber: "csqu3054383"}},
			expectedErr: ErrDuplicateContainerNumber,
		},
		{
			name:        "Rejects repeated container ids",
			containers:  []Container{{ID: "c-1", ContainerNumber: "MSCU1234566"}, {ID: "c-1", ContainerNumber: "MSCU7654329"}},
			expectedErr: ErrDuplicateContainerID,
		},
		{
			name:        "Rejects supplied id that collides with a generated one",
			containers:  []Container{{ContainerNumber: "MSCU1234566"}, {ID: "id-2", ContainerNumber: "MSCU7654329"}},
			expectedErr: ErrDuplicateContainerID,
		},
		{
			name:        "Rejects empty shipment",
			expectedErr: ErrNoContainers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shipment, err := NewShipment(tt.id, " BK-778 ", "client-1", tt.containers, counter(), now)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, shipment)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "BK-778", shipment.Reference)
			assert.Equal(t, "client-1", shipment.ClientID)
			assert.Equal(t, time.UTC, shipment.CreatedAt.Location())
			require.Len(t, shipment.Containers, len(tt.expectedIDs))
			for i, id := range tt.expectedIDs {
				assert.Equal(t, id, shipment.Containers[i].ID)
			}
			if tt.id != "" {
				assert.Equal(t, tt.id, shipment.ID)
			} else {
				assert.Equal(t, "id-1", shipment.ID)
			}
		})
	}
}

func TestNormalizeContainerNumber(t *testing.T) {
	assert.Equal(t, "MSCU1234566", NormalizeContainerNumber(" mscu 123 4566 "))
}

func TestShipment_RepeatedContainerID(t *testing.T) {
	s := &Shipment{Containers: []Container{{ID: "a"}, {ID: "b"}, {ID: "a"}}}
	assert.Equal(t, "a", s.RepeatedContainerID())

	s.Containers[2].ID = "c"
	assert.Empty(t, s.RepeatedContainerID())
}

func TestShipment_Container(t *testing.T) {
	s := &Shipment{Containers: []Container{{ID: "a", ContainerNumber: "CSQU3054383"}}}

	c, ok := s.Container("a")
	assert.True(t, ok)
	assert.Equal(t, "CSQU3054383", c.ContainerNumber)

	_, ok = s.Container("b")
	assert.False(t, ok)
}
