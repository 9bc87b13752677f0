package errors

import (
	"context"
	"math"
	"time"
)

const (
	MaxRetries        = 3
	InitialBackoff    = 100 * time.Millisecond
	MaxBackoff        = 5 * time.Second
	BackoffMultiplier = 2.0
)

// Retrier re-runs retryable operations with exponential backoff.
type Retrier struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetrier returns the package level retry policy.
func DefaultRetrier() Retrier {
	return Retrier{
		MaxRetries:     MaxRetries,
		InitialBackoff: InitialBackoff,
		MaxBackoff:     MaxBackoff,
		Multiplier:     BackoffMultiplier,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts run out.
func (r Retrier) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt == r.MaxRetries {
			return err
		}

		timer := time.NewTimer(r.backoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}

	return err
}

func IsRetryable(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Retryable
}

func (r Retrier) backoff(attempt int) time.Duration {
	multiplier := r.Multiplier
	if multiplier <= 0 {
		multiplier = BackoffMultiplier
	}

	delay := time.Duration(float64(r.InitialBackoff) * math.Pow(multiplier, float64(attempt-1)))
	if r.MaxBackoff > 0 && delay > r.MaxBackoff {
		return r.MaxBackoff
	}

	return delay
}
