package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/metrics"
	"cargo-tracker/internal/features/tracking/domain"
	"cargo-tracker/internal/features/tracking/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelLoads bounds concurrent ledger reads when aggregating a shipment.
const maxParallelLoads = 8

// TrackingServiceImpl implements ports.TrackingService on top of a ledger store.
// It holds no per-container state: every call reads the authoritative ledger.
type TrackingServiceImpl struct {
	graph      *domain.Graph
	store      ports.LedgerStore
	directory  ports.ContainerDirectory
	dispatcher ports.NotificationDispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
	newID      func() string
	logger     *zap.Logger
}

// Option customises a TrackingServiceImpl.
type Option func(*TrackingServiceImpl)

// WithDispatcher sets the notification boundary. Without one, notification requests are dropped.
func WithDispatcher(d ports.NotificationDispatcher) Option {
	return func(s *TrackingServiceImpl) { s.dispatcher = d }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TrackingServiceImpl) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *TrackingServiceImpl) { s.now = now }
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *TrackingServiceImpl) { s.newID = newID }
}

// NewTrackingService creates a new TrackingServiceImpl.
func NewTrackingService(graph *domain.Graph, store ports.LedgerStore, directory ports.ContainerDirectory, opts ...Option) *TrackingServiceImpl {
	s := &TrackingServiceImpl{
		graph:     graph,
		store:     store,
		directory: directory,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		logger:    logger.Named("tracking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowedNextStatuses resolves the allowed set for the container's current ledger state.
func (s *TrackingServiceImpl) AllowedNextStatuses(ctx context.Context, actor domain.Actor, containerID string) ([]domain.Status, error) {
	view, err := s.AllowedTransitions(ctx, actor, containerID)
	if err != nil {
		return nil, err
	}
	return view.Allowed, nil
}

// AllowedTransitions resolves the allowed set and reports the ledger state it came from.
func (s *TrackingServiceImpl) AllowedTransitions(ctx context.Context, actor domain.Actor, containerID string) (*domain.AllowedTransitions, error) {
	if !actor.CanTransition() {
		return nil, forbidden(actor, "list allowed next statuses")
	}

	c, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	view := domain.NewAllowedTransitions(c, s.graph)
	return &view, nil
}

// CurrentStatus derives the container's status from its ledger.
func (s *TrackingServiceImpl) CurrentStatus(ctx context.Context, actor domain.Actor, containerID string) (*domain.ContainerStatus, error) {
	c, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if !actor.CanRead(c.ClientID) {
		return nil, forbidden(actor, "read container "+containerID)
	}

	view := domain.NewContainerStatus(c)
	return &view, nil
}

// Transition validates target against the authoritative ledger and appends one event.
// The append is conditioned on the ledger length observed at read time, so a concurrent writer
// makes this call fail with domain.ErrConcurrentModification instead of producing two heads.
func (s *TrackingServiceImpl) Transition(ctx context.Context, actor domain.Actor, containerID string, target domain.Status, meta domain.EventMetadata) (*domain.TransitionResult, error) {
	start := time.Now()

	if !actor.CanTransition() {
		return nil, forbidden(actor, "record tracking events")
	}
	if meta.Backdated && !actor.CanBackdate() {
		return nil, forbidden(actor, "record backdated corrections")
	}

	meta.CreatedBy = actor.ID
	if meta.Source == "" && actor.Role == domain.RoleSystem {
		meta.Source = domain.SourceSystem
	}

	c, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}

	event, err := c.Transition(s.graph, s.newID(), target, meta, s.now())
	if err != nil {
		s.record(target, meta.Source, err, start)
		return nil, err
	}

	if err := s.store.Append(ctx, containerID, event.Seq, event); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			err = s.conflict(ctx, containerID, target, event.PreviousStatus)
		} else {
			err = fmt.Errorf("service: failed to append tracking event: %w", err)
		}
		s.record(target, event.Source, err, start)
		return nil, err
	}

	s.logger.Info("Tracking event appended",
		zap.String("container_id", containerID),
		zap.String("event_id", event.ID),
		zap.String("status", string(event.Status)),
		zap.String("previous_status", string(event.PreviousStatus)),
		zap.String("source", string(event.Source)),
		zap.String("actor", actor.ID),
		zap.Bool("backdated", event.Backdated),
	)
	s.record(target, event.Source, nil, start)

	result := &domain.TransitionResult{Event: event}
	if domain.ShouldNotify(event, meta) {
		if warning := s.notify(ctx, c.ContainerInfo, event); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}
	return result, nil
}

// History returns the container's events in chronological order. Clients only see their own
// containers, restricted to customer-visible events without staff-only fields.
func (s *TrackingServiceImpl) History(ctx context.Context, actor domain.Actor, containerID string) ([]domain.TrackingEvent, error) {
	c, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if !actor.CanRead(c.ClientID) {
		return nil, forbidden(actor, "read container "+containerID)
	}

	if actor.IsClient() {
		return c.Ledger().CustomerVisible(), nil
	}
	return c.Ledger().Chronological(), nil
}

// ShipmentProgress aggregates the shipment's containers. Nothing is cached or stored.
func (s *TrackingServiceImpl) ShipmentProgress(ctx context.Context, actor domain.Actor, shipmentID string) (*domain.ShipmentProgress, error) {
	infos, err := s.directory.ShipmentContainers(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if !actor.CanRead(info.ClientID) {
			return nil, forbidden(actor, "read shipment "+shipmentID)
		}
	}

	containers := make([]*domain.Container, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, info := range infos {
		i, info := i, info
		g.Go(func() error {
			events, err := s.store.Load(gctx, info.ID)
			if err != nil {
				return fmt.Errorf("service: failed to load ledger for %s: %w", info.ID, err)
			}
			containers[i] = domain.NewContainer(info, events)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := domain.DeriveShipmentStatus(containers)
	return &progress, nil
}

// conflict re-reads the ledger the winning writer moved so the caller can retry from the
// fresh allowed set. A failed re-read leaves Current at what this call validated against.
func (s *TrackingServiceImpl) conflict(ctx context.Context, containerID string, target, validated domain.Status) error {
	te := &domain.TransitionError{
		Kind:        domain.ErrConcurrentModification,
		ContainerID: containerID,
		Requested:   target,
		Current:     validated,
	}

	fresh, err := s.loadContainer(ctx, containerID)
	if err != nil {
		s.logger.Warn("Could not re-read ledger after conflict",
			zap.String("container_id", containerID),
			zap.Error(err),
		)
		return te
	}
	view := domain.NewAllowedTransitions(fresh, s.graph)
	te.Current = view.CurrentStatus
	te.Allowed = view.Allowed
	return te
}

func (s *TrackingServiceImpl) loadContainer(ctx context.Context, containerID string) (*domain.Container, error) {
	info, err := s.directory.ResolveContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.Load(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load ledger for %s: %w", containerID, err)
	}
	return domain.NewContainer(info, events), nil
}

// notify hands the intent off and turns a failed hand-off into a warning.
func (s *TrackingServiceImpl) notify(ctx context.Context, info domain.ContainerInfo, event domain.TrackingEvent) string {
	if s.dispatcher == nil {
		return ""
	}

	if err := s.dispatcher.Dispatch(ctx, domain.NewNotificationIntent(info, event)); err != nil {
		s.logger.Warn("Notification hand-off failed",
			zap.String("container_id", info.ID),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		if !errors.Is(err, domain.ErrNotificationDispatch) {
			err = fmt.Errorf("%w: %v", domain.ErrNotificationDispatch, err)
		}
		return err.Error()
	}
	return ""
}

func (s *TrackingServiceImpl) record(target domain.Status, source domain.Source, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	if source == "" {
		source = domain.SourceManualStaffEntry
	}
	s.metrics.RecordTransition(string(target), string(source), Outcome(err), time.Since(start))
}

// Outcome is the metric label for a transition result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrOutOfOrderEventTime):
		return "out_of_order"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, domain.ErrUnknownStatus):
		return "unknown_status"
	default:
		return "error"
	}
}

func forbidden(actor domain.Actor, action string) error {
	return fmt.Errorf("%w: role %q may not %s", domain.ErrForbidden, actor.Role, action)
}
