package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Proton-105/cocktail-bot/internal/domain"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) LookupByID(ctx context.Context, id int64) (*domain.Cocktail, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*domain.Cocktail)
	return item, args.Error(1)
}

func (m *mockCatalog) LookupByExactName(ctx context.Context, name string) (*domain.Cocktail, error) {
	args := m.Called(ctx, name)
	item, _ := args.Get(0).(*domain.Cocktail)
	return item, args.Error(1)
}

func (m *mockCatalog) LookupByNameSubstring(ctx context.Context, text string) ([]domain.Cocktail, error) {
	args := m.Called(ctx, text)
	items, _ := args.Get(0).([]domain.Cocktail)
	return items, args.Error(1)
}

func (m *mockCatalog) LookupByNameFuzzy(ctx context.Context, text string, maxResults int) ([]domain.Cocktail, error) {
	args := m.Called(ctx, text, maxResults)
	items, _ := args.Get(0).([]domain.Cocktail)
	return items, args.Error(1)
}

func (m *mockCatalog) LookupByIngredients(ctx context.Context, ingredients []string) ([]domain.Cocktail, error) {
	args := m.Called(ctx, ingredients)
	items, _ := args.Get(0).([]domain.Cocktail)
	return items, args.Error(1)
}

func (m *mockCatalog) LookupByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error) {
	args := m.Called(ctx, tags)
	items, _ := args.Get(0).([]domain.Cocktail)
	return items, args.Error(1)
}

func (m *mockCatalog) ListDistinctTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}
