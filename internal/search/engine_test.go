package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/internal/catalog"
	"github.com/Proton-105/cocktail-bot/internal/domain"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(opts Options) *Engine {
	return NewEngine(catalog.NewMemory([]domain.Cocktail{
		{Name: "Mojito", Ingredients: []string{"White rum", "Lime", "Mint", "Sugar"}, Tags: []string{"classic", "refreshing"}},
		{Name: "Daiquiri", Ingredients: []string{"White rum", "Lime", "Sugar"}, Tags: []string{"classic", "sour"}},
		{Name: "Frozen Daiquiri", Ingredients: []string{"White rum", "Lime", "Sugar", "Ice"}, Tags: []string{"frozen", "sour"}},
		{Name: "Margarita", Ingredients: []string{"Tequila", "Triple sec", "Lime"}, Tags: []string{"Classic", "Sour"}},
		{Name: "Tom Collins", Ingredients: []string{"Gin", "Lemon", "Sugar", "Soda"}, Tags: []string{"highball"}},
	}), opts, testLogger())
}

func itemNames(items []domain.Cocktail) []string {
	return lo.Map(items, func(c domain.Cocktail, _ int) string { return c.Name })
}

type failingCatalog struct {
	catalog.Catalog
	err error
}

func (f failingCatalog) LookupByNameSubstring(context.Context, string) ([]domain.Cocktail, error) {
	return nil, f.err
}

func (f failingCatalog) LookupByIngredients(context.Context, []string) ([]domain.Cocktail, error) {
	return nil, f.err
}

func (f failingCatalog) ListDistinctTags(context.Context) ([]string, error) {
	return nil, f.err
}

func TestEngine_FindExactByName(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	item, err := e.FindExactByName(ctx, "  MOJITO ")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", item.Name)

	_, err = e.FindExactByName(ctx, "daiq")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.FindExactByName(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestEngine_FindByID(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	item, err := e.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Daiquiri", item.Name)

	_, err = e.FindByID(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.FindByID(ctx, 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_FindAllByName(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "mojito", want: []string{"Mojito"}},
		{name: "several", input: "daiquiri", want: []string{"Daiquiri", "Frozen Daiquiri"}},
		{name: "partial", input: "coll", want: []string{"Tom Collins"}},
		{name: "none", input: "margherita", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := e.FindAllByName(ctx, tc.input)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, itemNames(items))
		})
	}

	_, err := e.FindAllByName(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestEngine_SuggestIfNotFound(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	items, err := e.SuggestIfNotFound(ctx, "margherita")
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "Margarita", items[0].Name)

	items, err = e.SuggestIfNotFound(ctx, "colins")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tom Collins"}, itemNames(items))

	items, err = e.SuggestIfNotFound(ctx, "zzzzzzzz")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEngine_SuggestIfNotFound_HonoursOptions(t *testing.T) {
	e := newTestEngine(Options{SuggestionThreshold: 0.1, MaxSuggestions: 2})
	ctx := context.Background()

	items, err := e.SuggestIfNotFound(ctx, "daiqiri")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.ElementsMatch(t, []string{"Daiquiri", "Frozen Daiquiri"}, itemNames(items))

	e.SetOptions(Options{SuggestionThreshold: 0.99, MaxSuggestions: 2})
	items, err = e.SuggestIfNotFound(ctx, "daiqiri")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 20, e.Options().FuzzyCandidates)
}

func TestEngine_FindByIngredientsAll(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	items, err := e.FindByIngredientsAll(ctx, []string{" White Rum", "MINT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mojito"}, itemNames(items))

	items, err = e.FindByIngredientsAll(ctx, []string{"vodka", "lime"})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = e.FindByIngredientsAll(ctx, []string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = e.FindByIngredientsAll(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestEngine_FindByIngredientsAll_Monotonic(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	query := []string{"sugar"}
	base, err := e.FindByIngredientsAll(ctx, query)
	require.NoError(t, err)

	for _, extra := range []string{"lime", "white rum", "mint", "soda"} {
		query = append(query, extra)
		items, err := e.FindByIngredientsAll(ctx, query)
		require.NoError(t, err)
		assert.Subset(t, itemNames(base), itemNames(items))
		base = items
	}
}

func TestEngine_FindByTags(t *testing.T) {
	e := newTestEngine(DefaultOptions())
	ctx := context.Background()

	items, err := e.FindByTags(ctx, []string{"classic", "sour"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Daiquiri", "Margarita"}, itemNames(items))

	_, err = e.FindByTags(ctx, []string{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestEngine_ListAllTags(t *testing.T) {
	e := newTestEngine(DefaultOptions())

	tags, err := e.ListAllTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"classic", "frozen", "highball", "refreshing", "sour"}, tags)
}

func TestEngine_WrapsCatalogFailures(t *testing.T) {
	cause := errors.New("connection refused")
	e := NewEngine(failingCatalog{err: cause}, DefaultOptions(), testLogger())
	ctx := context.Background()

	_, err := e.FindAllByName(ctx, "mojito")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCatalogUnavailable))
	assert.ErrorIs(t, err, cause)

	_, err = e.FindByIngredientsAll(ctx, []string{"rum"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCatalogUnavailable))

	_, err = e.ListAllTags(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCatalogUnavailable))
}
