package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
)

func fastRetrier() apperrors.Retrier {
	return apperrors.Retrier{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResilient_RetriesAndWraps(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByTags", mock.Anything, []string{"sour"}).
		Return(([]domain.Cocktail)(nil), errors.New("connection reset")).Times(3)

	r := NewResilient(next, fastRetrier(), apperrors.BreakerSettings{MinRequests: 100}, discardLogger())

	_, err := r.LookupByTags(ctx, []string{"sour"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCatalogUnavailable))
	next.AssertExpectations(t)
}

func TestResilient_RecoversAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("ListDistinctTags", mock.Anything).Return(([]string)(nil), errors.New("timeout")).Once()
	next.On("ListDistinctTags", mock.Anything).Return([]string{"classic"}, nil).Once()

	r := NewResilient(next, fastRetrier(), apperrors.DefaultBreakerSettings(), discardLogger())

	tags, err := r.ListDistinctTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"classic"}, tags)
	next.AssertExpectations(t)
}

func TestResilient_NotFoundIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByID", mock.Anything, int64(9)).Return((*domain.Cocktail)(nil), ErrNotFound)

	r := NewResilient(next, fastRetrier(), apperrors.BreakerSettings{MinRequests: 2}, discardLogger())

	for i := 0; i < 5; i++ {
		_, err := r.LookupByID(ctx, 9)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, apperrors.StateClosed, r.BreakerState())
	next.AssertNumberOfCalls(t, "LookupByID", 5)
}

func TestResilient_OpenBreakerFailsFast(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByNameSubstring", mock.Anything, "rum").
		Return(([]domain.Cocktail)(nil), errors.New("down"))

	noRetry := apperrors.Retrier{MaxRetries: 0}
	r := NewResilient(next, noRetry, apperrors.BreakerSettings{MinRequests: 2, OpenTimeout: time.Hour}, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := r.LookupByNameSubstring(ctx, "rum")
		assert.Error(t, err)
	}
	assert.Equal(t, apperrors.StateOpen, r.BreakerState())

	_, err := r.LookupByNameSubstring(ctx, "rum")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCircuitOpen)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCatalogUnavailable))
	next.AssertNumberOfCalls(t, "LookupByNameSubstring", 2)
}

func TestResilient_RecordsCalls(t *testing.T) {
	var outcomes []string
	RegisterCallRecorder(func(op, outcome string, _ time.Duration) {
		outcomes = append(outcomes, op+":"+outcome)
	})
	t.Cleanup(func() { RegisterCallRecorder(nil) })

	r := NewResilient(NewMemory(fixtureItems()), fastRetrier(), apperrors.DefaultBreakerSettings(), discardLogger())

	_, err := r.LookupByExactName(context.Background(), "mojito")
	require.NoError(t, err)
	_, err = r.LookupByExactName(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{
		OpLookupByExactName + ":ok",
		OpLookupByExactName + ":not_found",
	}, outcomes)
}
