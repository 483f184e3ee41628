package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cargo-tracker/internal/features/shipments/domain"

	"github.com/redis/go-redis/v9"
)

const (
	shipmentKeyPrefix  = "shipment:"
	containerKeyPrefix = "container:"
)

// RedisShipmentRepository implements ports.ShipmentRepository with one JSON document per
// shipment and a container -> shipment index key per container.
type RedisShipmentRepository struct {
	client *redis.Client
}

// NewRedisShipmentRepository creates a new RedisShipmentRepository.
func NewRedisShipmentRepository(client *redis.Client) *RedisShipmentRepository {
	return &RedisShipmentRepository{
		client: client,
	}
}

// Save writes the shipment and its index keys under WATCH so a concurrent registration of any
// of the same ids fails instead of overwriting.
func (r *RedisShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	if id := shipment.RepeatedContainerID(); id != "" {
		return fmt.Errorf("%w: container %s", domain.ErrAlreadyExists, id)
	}
	data, err := json.Marshal(shipment)
	if err != nil {
		return fmt.Errorf("failed to marshal shipment: %w", err)
	}

	keys := make([]string, 0, len(shipment.Containers)+1)
	keys = append(keys, shipmentKeyPrefix+shipment.ID)
	for _, c := range shipment.Containers {
		keys = append(keys, containerKeyPrefix+c.ID)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := tx.Exists(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("failed to check shipment keys: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: shipment %s", domain.ErrAlreadyExists, shipment.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keys[0], data, 0)
			for _, key := range keys[1:] {
				pipe.Set(ctx, key, shipment.ID, 0)
			}
			return nil
		})
		return err
	}, keys...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: shipment %s", domain.ErrAlreadyExists, shipment.ID)
	case errors.Is(err, domain.ErrAlreadyExists):
		return err
	default:
		return fmt.Errorf("failed to save shipment %s: %w", shipment.ID, err)
	}
}

// Get retrieves the shipment document.
func (r *RedisShipmentRepository) Get(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	data, err := r.client.Get(ctx, shipmentKeyPrefix+shipmentID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment %s: %w", shipmentID, err)
	}

	var shipment domain.Shipment
	if err := json.Unmarshal(data, &shipment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipment %s: %w", shipmentID, err)
	}
	return &shipment, nil
}

// FindByContainer follows the container index key.
func (r *RedisShipmentRepository) FindByContainer(ctx context.Context, containerID string) (*domain.Shipment, error) {
	shipmentID, err := r.client.Get(ctx, containerKeyPrefix+containerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: container %s", domain.ErrNotFound, containerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve container %s: %w", containerID, err)
	}
	return r.Get(ctx, shipmentID)
}

// Ping checks if Redis is reachable.
func (r *RedisShipmentRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
