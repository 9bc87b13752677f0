package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
)

// Resilient guards a Catalog with retries and a circuit breaker. Backend
// failures surface as CatalogUnavailable application errors; ErrNotFound
// passes through untouched and never counts against the breaker.
type Resilient struct {
	next    Catalog
	breaker *apperrors.CircuitBreaker
	retrier apperrors.Retrier
	log     *slog.Logger
}

var _ Catalog = (*Resilient)(nil)

func NewResilient(next Catalog, retrier apperrors.Retrier, breaker apperrors.BreakerSettings, log *slog.Logger) *Resilient {
	if log == nil {
		log = slog.Default()
	}

	breaker.IsFailure = func(err error) bool { return !errors.Is(err, ErrNotFound) }

	return &Resilient{
		next:    next,
		breaker: apperrors.NewCircuitBreaker(breaker),
		retrier: retrier,
		log:     log,
	}
}

// BreakerState exposes the breaker state for health reporting.
func (r *Resilient) BreakerState() apperrors.State {
	return r.breaker.State()
}

func (r *Resilient) LookupByID(ctx context.Context, id int64) (*domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByID, func(ctx context.Context) (*domain.Cocktail, error) {
		return r.next.LookupByID(ctx, id)
	})
}

func (r *Resilient) LookupByExactName(ctx context.Context, name string) (*domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByExactName, func(ctx context.Context) (*domain.Cocktail, error) {
		return r.next.LookupByExactName(ctx, name)
	})
}

func (r *Resilient) LookupByNameSubstring(ctx context.Context, text string) ([]domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByNameSubstr, func(ctx context.Context) ([]domain.Cocktail, error) {
		return r.next.LookupByNameSubstring(ctx, text)
	})
}

func (r *Resilient) LookupByNameFuzzy(ctx context.Context, text string, maxResults int) ([]domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByNameFuzzy, func(ctx context.Context) ([]domain.Cocktail, error) {
		return r.next.LookupByNameFuzzy(ctx, text, maxResults)
	})
}

func (r *Resilient) LookupByIngredients(ctx context.Context, ingredients []string) ([]domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByIngredients, func(ctx context.Context) ([]domain.Cocktail, error) {
		return r.next.LookupByIngredients(ctx, ingredients)
	})
}

func (r *Resilient) LookupByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error) {
	return guard(ctx, r, OpLookupByTags, func(ctx context.Context) ([]domain.Cocktail, error) {
		return r.next.LookupByTags(ctx, tags)
	})
}

func (r *Resilient) ListDistinctTags(ctx context.Context) ([]string, error) {
	return guard(ctx, r, OpListDistinctTags, func(ctx context.Context) ([]string, error) {
		return r.next.ListDistinctTags(ctx)
	})
}

func guard[T any](ctx context.Context, r *Resilient, op string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	start := time.Now()

	err := r.retrier.Do(ctx, func() error {
		return r.breaker.Call(func() error {
			value, callErr := fn(ctx)
			if callErr != nil {
				return classify(op, callErr)
			}
			result = value
			return nil
		})
	})

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, apperrors.ErrCircuitOpen):
		outcome = "circuit_open"
		unavailable := apperrors.NewCatalogUnavailableError(op, err)
		unavailable.Retryable = false
		err = unavailable
	default:
		outcome = "error"
	}

	callRecorder(op, outcome, time.Since(start))

	if err != nil && outcome != "not_found" {
		r.log.WarnContext(ctx, "catalog call failed",
			slog.String("op", op),
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)
	}

	return result, err
}

func classify(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}

	if _, ok := apperrors.As(err); ok {
		return err
	}

	return apperrors.NewCatalogUnavailableError(op, err)
}
