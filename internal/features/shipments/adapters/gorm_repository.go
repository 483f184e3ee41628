package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargo-tracker/internal/core/database"
	"cargo-tracker/internal/features/shipments/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentModel is the relational row for a shipment.
type ShipmentModel struct {
	ID         string           `gorm:"column:shipment_id;primaryKey;type:varchar(64)"`
	Reference  string           `gorm:"column:reference;type:varchar(64);not null"`
	ClientID   string           `gorm:"column:client_id;type:varchar(64);not null;index"`
	CreatedAt  time.Time        `gorm:"column:created_at;not null;autoCreateTime:false"`
	Containers []ContainerModel `gorm:"foreignKey:ShipmentID;references:ID"`
}

// TableName pins the table name.
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ContainerModel is the relational row for a container. Position keeps registration order.
type ContainerModel struct {
	ID              string `gorm:"column:container_id;primaryKey;type:varchar(64)"`
	ShipmentID      string `gorm:"column:shipment_id;type:varchar(64);not null;uniqueIndex:idx_containers_shipment_number,priority:1"`
	ContainerNumber string `gorm:"column:container_number;type:varchar(11);not null;uniqueIndex:idx_containers_shipment_number,priority:2"`
	Position        int    `gorm:"column:position;not null"`
}

// TableName pins the table name.
func (ContainerModel) TableName() string {
	return "containers"
}

// GormShipmentRepository implements ports.ShipmentRepository through gorm.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates the repository and migrates its tables.
func NewGormShipmentRepository(db *gorm.DB) (*GormShipmentRepository, error) {
	if err := database.Migrate(db, &ShipmentModel{}, &ContainerModel{}); err != nil {
		return nil, err
	}
	return &GormShipmentRepository{db: db}, nil
}

// Save inserts the shipment and its containers in one transaction.
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	row := ShipmentModel{
		ID:        shipment.ID,
		Reference: shipment.Reference,
		ClientID:  shipment.ClientID,
		CreatedAt: shipment.CreatedAt.UTC(),
	}
	containers := make([]ContainerModel, 0, len(shipment.Containers))
	for i, c := range shipment.Containers {
		containers = append(containers, ContainerModel{
			ID:              c.ID,
			ShipmentID:      shipment.ID,
			ContainerNumber: c.ContainerNumber,
			Position:        i,
		})
	}

	// Associations are inserted explicitly; gorm's association upsert would skip taken ids.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		return tx.Create(&containers).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: shipment %s", domain.ErrAlreadyExists, shipment.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save shipment %s: %w", shipment.ID, err)
	}
	return nil
}

// Get loads the shipment with its containers.
func (r *GormShipmentRepository) Get(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	var row ShipmentModel
	err := r.db.WithContext(ctx).
		Preload("Containers", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&row, "shipment_id = ?", shipmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment %s: %w", shipmentID, err)
	}
	return row.toDomain(), nil
}

// FindByContainer resolves the owning shipment id and loads it.
func (r *GormShipmentRepository) FindByContainer(ctx context.Context, containerID string) (*domain.Shipment, error) {
	var c ContainerModel
	err := r.db.WithContext(ctx).First(&c, "container_id = ?", containerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: container %s", domain.ErrNotFound, containerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve container %s: %w", containerID, err)
	}
	return r.Get(ctx, c.ShipmentID)
}

// Ping checks the database connection.
func (r *GormShipmentRepository) Ping(ctx context.Context) error {
	return database.Ping(ctx, r.db)
}

func (m ShipmentModel) toDomain() *domain.Shipment {
	s := &domain.Shipment{
		ID:         m.ID,
		Reference:  m.Reference,
		ClientID:   m.ClientID,
		CreatedAt:  m.CreatedAt.UTC(),
		Containers: make([]domain.Container, len(m.Containers)),
	}
	for i, c := range m.Containers {
		s.Containers[i] = domain.Container{ID: c.ID, ContainerNumber: c.ContainerNumber}
	}
	return s
}
