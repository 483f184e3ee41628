package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/metrics"
	"cargo-tracker/internal/features/carriers/domain"
	"cargo-tracker/internal/features/carriers/ports"
	trackingdomain "cargo-tracker/internal/features/tracking/domain"
	trackingports "cargo-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// SyncActorName identifies carrier sync in the ledger's createdBy field.
const SyncActorName = "carrier-sync"

// SyncServiceImpl implements ports.SyncService by replaying carrier milestones through the
// regular transition path.
type SyncServiceImpl struct {
	tracking trackingports.TrackingService
	feed     ports.MilestoneFeed
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewSyncService creates a new SyncServiceImpl. m may be nil.
func NewSyncService(tracking trackingports.TrackingService, feed ports.MilestoneFeed, m *metrics.Metrics) *SyncServiceImpl {
	return &SyncServiceImpl{
		tracking: tracking,
		feed:     feed,
		metrics:  m,
		logger:   logger.Named("carrier-sync"),
	}
}

// SyncContainer applies every mapped milestone newer than the ledger head, oldest first. A
// milestone the ledger rejects is reported and the run continues. Concurrent writers and
// infrastructure failures abort the run; milestones applied before that stay applied.
func (s *SyncServiceImpl) SyncContainer(ctx context.Context, actor trackingdomain.Actor, containerID string) (*domain.SyncReport, error) {
	if !actor.CanTransition() {
		return nil, fmt.Errorf("%w: role %q may not sync carrier milestones", trackingdomain.ErrForbidden, actor.Role)
	}
	system := trackingdomain.SystemActor(SyncActorName)

	status, err := s.tracking.CurrentStatus(ctx, system, containerID)
	if err != nil {
		return nil, err
	}

	feed, err := s.feed.FetchMilestones(ctx, status.ContainerNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFeedUnavailable, status.ContainerNumber, err)
	}

	mapped, unknown := feed.Map()
	report := &domain.SyncReport{
		ContainerID:     containerID,
		ContainerNumber: status.ContainerNumber,
		Carrier:         feed.Carrier,
		CurrentStatus:   status.Status,
		Applied:         []trackingdomain.TrackingEvent{},
		Rejected:        []domain.RejectedMilestone{},
		Unknown:         unknown,
	}
	if report.Unknown == nil {
		report.Unknown = []domain.Milestone{}
	}
	for _, m := range unknown {
		s.logger.Warn("Unknown carrier milestone code encountered",
			zap.String("container_id", containerID),
			zap.String("code", m.Code),
			zap.String("description", m.Description),
		)
		s.record("unknown")
	}

	current := status.Status
	head := status.LastEventTime
	for _, m := range mapped {
		if (head != nil && !m.EventTime.After(*head)) || m.Status == current {
			report.Skipped++
			s.record("skipped")
			continue
		}

		result, err := s.tracking.Transition(ctx, system, containerID, m.Status, trackingdomain.EventMetadata{
			EventTime:      m.EventTime,
			Location:       m.Location,
			NotesCustomer:  m.Description,
			NotesInternal:  "carrier milestone " + m.Code,
			Source:         trackingdomain.SourceIntegration,
			NotifyCustomer: true,
		})
		if err != nil {
			te, ok := trackingdomain.AsTransitionError(err)
			if !ok || errors.Is(err, trackingdomain.ErrConcurrentModification) {
				return report, err
			}
			report.Rejected = append(report.Rejected, domain.RejectedMilestone{MappedMilestone: m, Reason: te.Error()})
			s.record("rejected")
			continue
		}

		report.Applied = append(report.Applied, result.Event)
		report.Warnings = append(report.Warnings, result.Warnings...)
		current = result.Event.Status
		at := result.Event.EventTime
		head = &at
		s.record("applied")
	}
	report.CurrentStatus = current

	s.logger.Info("Carrier sync finished",
		zap.String("container_id", containerID),
		zap.String("container_number", status.ContainerNumber),
		zap.String("actor", actor.ID),
		zap.Int("applied", len(report.Applied)),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("skipped", report.Skipped),
		zap.Int("unknown", len(report.Unknown)),
		zap.String("status", string(current)),
	)
	if len(report.Rejected) > 0 {
		codes := make([]string, len(report.Rejected))
		for i, r := range report.Rejected {
			codes[i] = r.Code
		}
		s.logger.Warn("Carrier milestones rejected by ledger",
			zap.String("container_id", containerID),
			zap.String("codes", strings.Join(codes, ",")),
		)
	}
	return report, nil
}

func (s *SyncServiceImpl) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCarrierMilestone(outcome)
	}
}
