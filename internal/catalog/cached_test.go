package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/internal/domain"
)

func TestCached_MemoizesItemLookups(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByID", mock.Anything, int64(7)).
		Return(&domain.Cocktail{ID: 7, Name: "Mojito", Ingredients: []string{"rum"}}, nil).Once()
	next.On("LookupByExactName", mock.Anything, "Mojito").
		Return(&domain.Cocktail{ID: 7, Name: "Mojito"}, nil).Once()

	c := NewCached(next, time.Minute)

	for i := 0; i < 3; i++ {
		item, err := c.LookupByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Mojito", item.Name)
	}

	for _, name := range []string{"Mojito", " mojito", "MOJITO"} {
		item, err := c.LookupByExactName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int64(7), item.ID)
	}

	next.AssertExpectations(t)
}

func TestCached_DoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByID", mock.Anything, int64(3)).Return((*domain.Cocktail)(nil), ErrNotFound).Twice()

	c := NewCached(next, time.Minute)

	_, err := c.LookupByID(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.LookupByID(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	next.AssertExpectations(t)
}

func TestCached_TagsAndFlush(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("ListDistinctTags", mock.Anything).Return([]string{"classic", "sour"}, nil).Twice()

	c := NewCached(next, time.Minute)

	tags, err := c.ListDistinctTags(ctx)
	require.NoError(t, err)
	tags[0] = "mutated"

	tags, err = c.ListDistinctTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"classic", "sour"}, tags)

	c.Flush()
	_, err = c.ListDistinctTags(ctx)
	require.NoError(t, err)

	next.AssertExpectations(t)
}

func TestCached_PassesListQueriesThrough(t *testing.T) {
	ctx := context.Background()
	next := &mockCatalog{}
	next.On("LookupByIngredients", mock.Anything, []string{"rum"}).Return([]domain.Cocktail{{ID: 1}}, nil).Twice()

	c := NewCached(next, time.Minute)
	for i := 0; i < 2; i++ {
		items, err := c.LookupByIngredients(ctx, []string{"rum"})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}

	next.AssertExpectations(t)
}
