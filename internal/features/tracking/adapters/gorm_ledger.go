package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargo-tracker/internal/core/database"
	"cargo-tracker/internal/features/tracking/domain"

	"gorm.io/gorm"
)

// TrackingEventModel is the relational row for one ledger entry. The unique (container_id, seq)
// index is what makes a lost append race surface as a conflict.
type TrackingEventModel struct {
	ID                string    `gorm:"column:event_id;primaryKey;type:varchar(64)"`
	ContainerID       string    `gorm:"column:container_id;type:varchar(64);not null;uniqueIndex:idx_tracking_events_container_seq,priority:1"`
	Seq               int       `gorm:"column:seq;not null;uniqueIndex:idx_tracking_events_container_seq,priority:2"`
	Status            string    `gorm:"column:status;type:varchar(40);not null"`
	PreviousStatus    string    `gorm:"column:previous_status;type:varchar(40);not null"`
	EventTime         time.Time `gorm:"column:event_time;not null"`
	Location          string    `gorm:"column:location;type:varchar(255)"`
	NotesCustomer     string    `gorm:"column:notes_customer;type:text"`
	NotesInternal     string    `gorm:"column:notes_internal;type:text"`
	Source            string    `gorm:"column:source;type:varchar(32);not null"`
	CreatedBy         string    `gorm:"column:created_by;type:varchar(64)"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	IsCustomerVisible bool      `gorm:"column:is_customer_visible;not null"`
	Backdated         bool      `gorm:"column:backdated;not null;default:false"`
}

// TableName pins the table name.
func (TrackingEventModel) TableName() string {
	return "tracking_events"
}

// GormLedgerStore implements ports.LedgerStore on a relational database through gorm.
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates the store and migrates its table.
func NewGormLedgerStore(db *gorm.DB) (*GormLedgerStore, error) {
	if err := database.Migrate(db, &TrackingEventModel{}); err != nil {
		return nil, err
	}
	return &GormLedgerStore{db: db}, nil
}

// Load returns the container's rows ordered by seq.
func (r *GormLedgerStore) Load(ctx context.Context, containerID string) ([]domain.TrackingEvent, error) {
	var rows []TrackingEventModel
	err := r.db.WithContext(ctx).
		Where("container_id = ?", containerID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", containerID, err)
	}

	events := make([]domain.TrackingEvent, 0, len(rows))
	for _, row := range rows {
		event, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode ledger %s seq %d: %w", containerID, row.Seq, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Append inserts the row inside a transaction after checking the current ledger length.
// A concurrent insert at the same seq trips the unique index and is reported as a conflict.
func (r *GormLedgerStore) Append(ctx context.Context, containerID string, expectedVersion int, event domain.TrackingEvent) error {
	row := fromDomain(containerID, event)
	row.Seq = expectedVersion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&TrackingEventModel{}).Where("container_id = ?", containerID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to read ledger length %s: %w", containerID, err)
		}
		if count != int64(expectedVersion) {
			return fmt.Errorf("%w: container %s at version %d, expected %d",
				domain.ErrConcurrentModification, containerID, count, expectedVersion)
		}
		return tx.Create(&row).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConcurrentModification):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: container %s seq %d already taken", domain.ErrConcurrentModification, containerID, expectedVersion)
	default:
		return fmt.Errorf("failed to append to ledger %s: %w", containerID, err)
	}
}

// Ping checks the database connection.
func (r *GormLedgerStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, r.db)
}

func fromDomain(containerID string, e domain.TrackingEvent) TrackingEventModel {
	return TrackingEventModel{
		ID:                e.ID,
		ContainerID:       containerID,
		Seq:               e.Seq,
		Status:            string(e.Status),
		PreviousStatus:    string(e.PreviousStatus),
		EventTime:         e.EventTime.UTC(),
		Location:          e.Location,
		NotesCustomer:     e.NotesCustomer,
		NotesInternal:     e.NotesInternal,
		Source:            string(e.Source),
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt.UTC(),
		IsCustomerVisible: e.IsCustomerVisible,
		Backdated:         e.Backdated,
	}
}

func (m TrackingEventModel) toDomain() (domain.TrackingEvent, error) {
	status, err := domain.ParseStatus(m.Status)
	if err != nil {
		return domain.TrackingEvent{}, err
	}
	previous, err := domain.ParseStatus(m.PreviousStatus)
	if err != nil {
		return domain.TrackingEvent{}, err
	}
	source, err := domain.ParseSource(m.Source)
	if err != nil {
		return domain.TrackingEvent{}, err
	}

	return domain.TrackingEvent{
		ID:                m.ID,
		ContainerID:       m.ContainerID,
		Seq:               m.Seq,
		Status:            status,
		PreviousStatus:    previous,
		EventTime:         m.EventTime.UTC(),
		Location:          m.Location,
		NotesCustomer:     m.NotesCustomer,
		NotesInternal:     m.NotesInternal,
		Source:            source,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt.UTC(),
		IsCustomerVisible: m.IsCustomerVisible,
		Backdated:         m.Backdated,
	}, nil
}
