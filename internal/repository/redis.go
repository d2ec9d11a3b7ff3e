package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisAvailabilityCache stores computed day slots under versioned keys.
// Invalidation bumps the tutor's version counter, so stale entries become
// unreachable and expire by TTL instead of being deleted one by one.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisAvailabilityCache) version(ctx context.Context, tutorID int64) (int64, error) {
	val, err := r.client.Get(ctx, fmt.Sprintf("availability_version:%d", tutorID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get availability version: %w", err)
	}
	return val, nil
}

func dayKey(tutorID, version int64, day models.Date) string {
	return fmt.Sprintf("availability:%d:%d:%s", tutorID, version, day)
}

func (r *RedisAvailabilityCache) GetDay(ctx context.Context, tutorID int64, day models.Date) ([]models.TimeSlot, int64, bool, error) {
	if r.client == nil {
		return nil, 0, false, fmt.Errorf("redis client is nil")
	}

	version, err := r.version(ctx, tutorID)
	if err != nil {
		return nil, 0, false, err
	}

	val, err := r.client.Get(ctx, dayKey(tutorID, version, day)).Result()
	if err == redis.Nil {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to get slots from redis: %w", err)
	}

	var slots []models.TimeSlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, 0, false, fmt.Errorf("failed to unmarshal slots: %w", err)
	}

	return slots, version, true, nil
}

// SetDay writes under the version the caller observed at read time, not the
// current one. If an invalidation bumped the counter since, the entry lands
// under a dead key and expires by TTL.
func (r *RedisAvailabilityCache) SetDay(ctx context.Context, tutorID int64, day models.Date, version int64, slots []models.TimeSlot) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	if err := r.client.Set(ctx, dayKey(tutorID, version, day), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in redis: %w", err)
	}

	return nil
}

func (r *RedisAvailabilityCache) InvalidateTutor(ctx context.Context, tutorID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("availability_version:%d", tutorID)
	if err := r.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to bump availability version: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
