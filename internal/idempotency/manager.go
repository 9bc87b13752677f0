// Package idempotency makes sure a redelivered Telegram update is handled once.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultLockTTL bounds how long an in-flight marker survives a crashed handler.
const DefaultLockTTL = 5 * time.Minute

var (
	ErrRequestInProgress = errors.New("request with this key is already in progress")
	ErrAlreadyProcessed  = errors.New("request with this key was already processed")
)

type Operation func(ctx context.Context) error

type Manager interface {
	// Execute runs fn unless key is in flight or already done. A failed fn
	// releases the key so a redelivery may retry.
	Execute(ctx context.Context, key string, fn Operation) error
}

type manager struct {
	store   Store
	ttl     time.Duration
	lockTTL time.Duration
	log     *slog.Logger
}

func NewManager(store Store, ttl time.Duration, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store:   store,
		ttl:     ttl,
		lockTTL: DefaultLockTTL,
		log:     log,
	}
}

func (m *manager) Execute(ctx context.Context, key string, fn Operation) error {
	if fn == nil {
		return errors.New("operation fn cannot be nil")
	}

	locked, err := m.store.Lock(ctx, key, m.lockTTL)
	if err != nil {
		// Store failures fail open.
		m.log.Warn("idempotency store unavailable, processing anyway", slog.String("key", key), slog.Any("error", err))
		return fn(ctx)
	}

	if !locked {
		status, err := m.store.Status(ctx, key)
		if err != nil {
			return err
		}
		if status == StatusCompleted {
			return ErrAlreadyProcessed
		}
		return ErrRequestInProgress
	}

	if err := fn(ctx); err != nil {
		if releaseErr := m.store.Release(ctx, key); releaseErr != nil {
			return errors.Join(err, releaseErr)
		}
		return err
	}

	return m.store.Complete(ctx, key, m.ttl)
}
