package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cargo-tracker/internal/features/tracking/domain"

	"github.com/redis/go-redis/v9"
)

const ledgerKeyPrefix = "ledger:"

// RedisLedgerStore implements ports.LedgerStore with one Redis list per container.
// Appends run under WATCH/MULTI so the length check and the push are atomic.
type RedisLedgerStore struct {
	client *redis.Client
}

// NewRedisLedgerStore creates a new RedisLedgerStore.
func NewRedisLedgerStore(client *redis.Client) *RedisLedgerStore {
	return &RedisLedgerStore{client: client}
}

func ledgerKey(containerID string) string {
	return ledgerKeyPrefix + containerID
}

// Load reads the whole list and decodes each event.
func (r *RedisLedgerStore) Load(ctx context.Context, containerID string) ([]domain.TrackingEvent, error) {
	raw, err := r.client.LRange(ctx, ledgerKey(containerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", containerID, err)
	}

	events := make([]domain.TrackingEvent, 0, len(raw))
	for i, item := range raw {
		var event domain.TrackingEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("failed to decode ledger %s entry %d: %w", containerID, i, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Append pushes event if the list length still equals expectedVersion.
func (r *RedisLedgerStore) Append(ctx context.Context, containerID string, expectedVersion int, event domain.TrackingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking event: %w", err)
	}

	key := ledgerKey(containerID)
	conflict := func(current int64) error {
		return fmt.Errorf("%w: container %s at version %d, expected %d",
			domain.ErrConcurrentModification, containerID, current, expectedVersion)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		length, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to read ledger length %s: %w", containerID, err)
		}
		if length != int64(expectedVersion) {
			return conflict(length)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, data)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return conflict(int64(expectedVersion) + 1)
	}
	if err != nil && !errors.Is(err, domain.ErrConcurrentModification) {
		return fmt.Errorf("failed to append to ledger %s: %w", containerID, err)
	}
	return err
}

// Ping checks if Redis is reachable.
func (r *RedisLedgerStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
