package catalog

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/internal/domain"
)

func fixtureItems() []domain.Cocktail {
	return []domain.Cocktail{
		{Name: "Mojito", Ingredients: []string{"White rum", "Lime", "Mint", "Sugar", "Soda"}, Tags: []string{"Classic", "Refreshing"}},
		{Name: "Daiquiri", Ingredients: []string{"White rum", "Lime", "Sugar"}, Tags: []string{"classic", "sour"}},
		{Name: "Frozen Daiquiri", Ingredients: []string{"White rum", "Lime", "Sugar", "Ice"}, Tags: []string{"frozen", "sour"}},
		{Name: "Margarita", Ingredients: []string{"Tequila", "Triple sec", "Lime"}, Tags: []string{"classic", "sour"}},
		{Name: "Moscow Mule", Ingredients: []string{"Vodka", "Ginger beer", "Lime"}, Tags: []string{"highball"}},
	}
}

func names(items []domain.Cocktail) []string {
	return lo.Map(items, func(c domain.Cocktail, _ int) string { return c.Name })
}

func TestMemory_AssignsIDs(t *testing.T) {
	m := NewMemory(append(fixtureItems(), domain.Cocktail{ID: 40, Name: "Negroni", Ingredients: []string{"Gin"}}))

	item, err := m.LookupByID(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, "Mojito", item.Name)

	item, err = m.LookupByID(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, "Negroni", item.Name)

	_, err = m.LookupByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 6, m.Len())
}

func TestMemory_LookupByExactName(t *testing.T) {
	m := NewMemory(fixtureItems())

	item, err := m.LookupByExactName(context.Background(), "  moJITO ")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", item.Name)

	_, err = m.LookupByExactName(context.Background(), "moj")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_LookupByNameSubstring(t *testing.T) {
	m := NewMemory(fixtureItems())

	items, err := m.LookupByNameSubstring(context.Background(), "daiquiri")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Daiquiri", "Frozen Daiquiri"}, names(items))

	items, err = m.LookupByNameSubstring(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemory_LookupByNameFuzzy(t *testing.T) {
	m := NewMemory(fixtureItems())

	items, err := m.LookupByNameFuzzy(context.Background(), "margherita", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Margarita", items[0].Name)

	items, err = m.LookupByNameFuzzy(context.Background(), "margherita", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemory_LookupByIngredients_Superset(t *testing.T) {
	m := NewMemory(fixtureItems())
	ctx := context.Background()

	testCases := []struct {
		name        string
		ingredients []string
		want        []string
	}{
		{name: "single", ingredients: []string{"lime"}, want: []string{"Mojito", "Daiquiri", "Frozen Daiquiri", "Margarita", "Moscow Mule"}},
		{name: "two", ingredients: []string{"white rum", "sugar"}, want: []string{"Mojito", "Daiquiri", "Frozen Daiquiri"}},
		{name: "three", ingredients: []string{"white rum", "sugar", "mint"}, want: []string{"Mojito"}},
		{name: "no item has both", ingredients: []string{"vodka", "mint"}, want: nil},
		{name: "empty constraint matches nothing", ingredients: nil, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := m.LookupByIngredients(ctx, tc.ingredients)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, names(items))
		})
	}
}

func TestMemory_LookupByIngredients_Monotonic(t *testing.T) {
	m := NewMemory(fixtureItems())
	ctx := context.Background()

	query := []string{}
	previous := m.Len() + 1
	for _, ingredient := range []string{"lime", "white rum", "sugar", "soda", "mint"} {
		query = append(query, ingredient)
		items, err := m.LookupByIngredients(ctx, query)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(items), previous)
		previous = len(items)
	}
}

func TestMemory_LookupByTags(t *testing.T) {
	m := NewMemory(fixtureItems())

	items, err := m.LookupByTags(context.Background(), []string{"classic", "sour"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Daiquiri", "Margarita"}, names(items))
}

func TestMemory_ListDistinctTags(t *testing.T) {
	m := NewMemory(fixtureItems())

	tags, err := m.ListDistinctTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"classic", "frozen", "highball", "refreshing", "sour"}, tags)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory(fixtureItems())

	item, err := m.LookupByID(context.Background(), 1)
	require.NoError(t, err)
	item.Ingredients[0] = "changed"

	again, err := m.LookupByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "White rum", again.Ingredients[0])
}
