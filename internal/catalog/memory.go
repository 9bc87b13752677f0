package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

// Memory serves the catalog from an immutable in-process snapshot.
type Memory struct {
	items []domain.Cocktail
	byID  map[int64]int
	names []string
}

var _ Catalog = (*Memory)(nil)

// NewMemory builds a snapshot from items. Items without an id get a
// sequential one in input order.
func NewMemory(items []domain.Cocktail) *Memory {
	m := &Memory{
		items: make([]domain.Cocktail, 0, len(items)),
		byID:  make(map[int64]int, len(items)),
		names: make([]string, 0, len(items)),
	}

	var nextID int64
	for _, item := range items {
		nextID = max(nextID, item.ID)
	}

	for _, item := range items {
		if !item.HasID() {
			nextID++
			item.ID = nextID
		}

		m.byID[item.ID] = len(m.items)
		m.items = append(m.items, cloneItem(item))
		m.names = append(m.names, textmatch.Normalize(item.Name))
	}

	return m
}

// Len returns the number of items in the snapshot.
func (m *Memory) Len() int {
	return len(m.items)
}

func (m *Memory) LookupByID(_ context.Context, id int64) (*domain.Cocktail, error) {
	idx, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	item := cloneItem(m.items[idx])
	return &item, nil
}

func (m *Memory) LookupByExactName(_ context.Context, name string) (*domain.Cocktail, error) {
	name = textmatch.Normalize(name)
	for i, candidate := range m.names {
		if candidate == name {
			item := cloneItem(m.items[i])
			return &item, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) LookupByNameSubstring(_ context.Context, text string) ([]domain.Cocktail, error) {
	text = textmatch.Normalize(text)
	if text == "" {
		return nil, nil
	}

	return m.filter(func(i int) bool {
		return strings.Contains(m.names[i], text)
	}), nil
}

func (m *Memory) LookupByNameFuzzy(_ context.Context, text string, maxResults int) ([]domain.Cocktail, error) {
	text = textmatch.Normalize(text)
	if text == "" || maxResults <= 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}

	ranked := make([]scored, 0, len(m.items))
	for i, name := range m.names {
		ranked = append(ranked, scored{idx: i, score: textmatch.BestSimilarity(text, name)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	return lo.Map(ranked, func(s scored, _ int) domain.Cocktail {
		return cloneItem(m.items[s.idx])
	}), nil
}

func (m *Memory) LookupByIngredients(_ context.Context, ingredients []string) ([]domain.Cocktail, error) {
	if len(ingredients) == 0 {
		return nil, nil
	}

	return m.filter(func(i int) bool {
		return textmatch.ContainsAll(m.items[i].Ingredients, ingredients)
	}), nil
}

func (m *Memory) LookupByTags(_ context.Context, tags []string) ([]domain.Cocktail, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	return m.filter(func(i int) bool {
		return textmatch.ContainsAll(m.items[i].Tags, tags)
	}), nil
}

func (m *Memory) ListDistinctTags(_ context.Context) ([]string, error) {
	tags := make([]string, 0)
	for _, item := range m.items {
		tags = append(tags, textmatch.NormalizeAll(item.Tags)...)
	}

	tags = lo.Uniq(lo.Compact(tags))
	sort.Strings(tags)
	return tags, nil
}

func (m *Memory) filter(match func(i int) bool) []domain.Cocktail {
	var out []domain.Cocktail
	for i := range m.items {
		if match(i) {
			out = append(out, cloneItem(m.items[i]))
		}
	}

	return out
}

func cloneItem(item domain.Cocktail) domain.Cocktail {
	item.Ingredients = append([]string(nil), item.Ingredients...)
	item.Tags = append([]string(nil), item.Tags...)
	return item
}
