package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordTransition(t *testing.T) {
	m := New(DefaultConfig())

	m.RecordTransition("BOOKED", "manual-staff-entry", "ok", 2*time.Millisecond)
	m.RecordTransition("BOOKED", "manual-staff-entry", "ok", time.Millisecond)
	m.RecordTransition("DELIVERED", "manual-staff-entry", "invalid_transition", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("BOOKED", "manual-staff-entry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("DELIVERED", "manual-staff-entry", "invalid_transition")))
}

func TestMetrics_Gauges(t *testing.T) {
	m := New(DefaultConfig())

	m.SetNotificationQueueDepth(7)
	m.SetCircuitBreakerState("notifications", 2)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.NotificationQueueDepth))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("notifications")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordNotification("log", "delivered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cargo_tracker_notifications_total")
}
