package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/metrics"
	"cargo-tracker/internal/features/notifications/domain"
	"cargo-tracker/internal/features/notifications/ports"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config sizes the dispatcher.
type Config struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	// FailureThreshold is the number of consecutive send failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// DefaultConfig returns the dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:        256,
		Workers:          4,
		SendTimeout:      10 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// AsyncDispatcher implements the tracking notification boundary with a bounded queue drained by
// worker goroutines. Dispatch never waits for delivery.
type AsyncDispatcher struct {
	sender  ports.Sender
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan domain.CloudEvent
	wg     sync.WaitGroup
}

// Option configures an AsyncDispatcher.
type Option func(*AsyncDispatcher)

// WithMetrics records delivery outcomes, queue depth and breaker state.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *AsyncDispatcher) { d.metrics = m }
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *AsyncDispatcher) { d.now = now }
}

// NewAsyncDispatcher starts cfg.Workers workers delivering through sender.
func NewAsyncDispatcher(sender ports.Sender, cfg Config, opts ...Option) *AsyncDispatcher {
	defaults := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaults.SendTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}

	d := &AsyncDispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger.Named("notifications"),
		now:    time.Now,
		queue:  make(chan domain.CloudEvent, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-" + sender.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if d.metrics != nil {
				d.metrics.SetCircuitBreakerState(name, int(to))
			}
		},
	})

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch enqueues the intent. It fails with ErrNotificationDispatch when the dispatcher is
// closed, the breaker is open, or the queue is full.
func (d *AsyncDispatcher) Dispatch(_ context.Context, intent trackingdomain.NotificationIntent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return d.reject(intent, "closed", "dispatcher is closed")
	}
	if d.breaker.State() == gobreaker.StateOpen {
		return d.reject(intent, "circuit_open", "circuit breaker open for "+d.sender.Name())
	}

	select {
	case d.queue <- domain.NewCloudEvent(intent, d.now()):
		d.observeDepth()
		return nil
	default:
		return d.reject(intent, "queue_full", "queue full")
	}
}

func (d *AsyncDispatcher) reject(intent trackingdomain.NotificationIntent, outcome, reason string) error {
	if d.metrics != nil {
		d.metrics.RecordNotification(d.sender.Name(), outcome)
	}
	return fmt.Errorf("%w: %s (event %s)", trackingdomain.ErrNotificationDispatch, reason, intent.EventID)
}

func (d *AsyncDispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		d.observeDepth()
		d.deliver(event)
	}
}

func (d *AsyncDispatcher) deliver(event domain.CloudEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.sender.Send(ctx, event)
	})

	outcome := "delivered"
	switch {
	case err == nil:
		d.logger.Debug("Notification delivered",
			zap.String("event_id", event.ID),
			zap.String("container_id", event.Subject),
		)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "circuit_open"
		d.logger.Warn("Notification dropped, circuit open",
			zap.String("event_id", event.ID),
			zap.String("container_id", event.Subject),
		)
	default:
		outcome = "failed"
		d.logger.Error("Notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("container_id", event.Subject),
			zap.String("sender", d.sender.Name()),
			zap.Error(err),
		)
	}

	if d.metrics != nil {
		d.metrics.RecordNotification(d.sender.Name(), outcome)
	}
}

func (d *AsyncDispatcher) observeDepth() {
	if d.metrics != nil {
		d.metrics.SetNotificationQueueDepth(len(d.queue))
	}
}

// Close stops accepting intents, drains the queue and closes the sender. Workers that are still
// busy when ctx expires are abandoned.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("Notification queue not drained before shutdown", zap.Int("pending", len(d.queue)))
		return fmt.Errorf("notification drain: %w", ctx.Err())
	}

	if err := d.sender.Close(); err != nil {
		return fmt.Errorf("failed to close %s sender: %w", d.sender.Name(), err)
	}
	return nil
}

// BreakerState exposes the breaker state for health reporting.
func (d *AsyncDispatcher) BreakerState() gobreaker.State {
	return d.breaker.State()
}
