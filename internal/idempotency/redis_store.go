package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/cocktail-bot/pkg/redis"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Store persists per-key processing markers.
type Store interface {
	// Lock marks key as processing unless a marker already exists.
	Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	// Status returns the current marker or "" when none exists.
	Status(ctx context.Context, key string) (string, error)
	// Complete replaces the marker with a completed one living for ttl.
	Complete(ctx context.Context, key string, ttl time.Duration) error
	// Release drops the marker so the key may be processed again.
	Release(ctx context.Context, key string) error
}

// KV is the subset of Redis commands RedisStore needs.
type KV interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type RedisStore struct {
	client KV
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client KV, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, recordKey(key), StatusProcessing, lockTTL)
	if err != nil {
		s.log.Error("failed to acquire idempotency lock", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return acquired, nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (string, error) {
	status, err := s.client.Get(ctx, recordKey(key))
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		s.log.Error("failed to fetch idempotency record", slog.String("key", key), slog.Any("error", err))
		return "", err
	}

	return status, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, recordKey(key), StatusCompleted, ttl); err != nil {
		s.log.Error("failed to store idempotency record", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, recordKey(key)); err != nil {
		s.log.Error("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func recordKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
