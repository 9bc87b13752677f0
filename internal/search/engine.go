// Package search answers name, ingredient and tag queries over a catalog and
// recovers failed name lookups with fuzzy suggestions.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/Proton-105/cocktail-bot/internal/catalog"
	"github.com/Proton-105/cocktail-bot/internal/domain"
	apperrors "github.com/Proton-105/cocktail-bot/internal/errors"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

// ErrEmptyQuery is returned when the input normalizes to nothing. Empty
// constraints are rejected instead of matching the whole catalog.
var ErrEmptyQuery = errors.New("search: empty query")

// ErrNotFound is returned by single item lookups.
var ErrNotFound = catalog.ErrNotFound

// Options tunes the suggestion fallback.
type Options struct {
	// SuggestionThreshold is the minimal similarity in [0, 1] a name needs to be suggested.
	SuggestionThreshold float64
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions int
	// FuzzyCandidates is how many names the catalog pre-selects for re-scoring.
	FuzzyCandidates int
}

func DefaultOptions() Options {
	return Options{
		SuggestionThreshold: 0.6,
		MaxSuggestions:      5,
		FuzzyCandidates:     20,
	}
}

// Engine runs read-only queries against a catalog.
type Engine struct {
	catalog catalog.Catalog
	options atomic.Pointer[Options]
	log     *slog.Logger
}

func NewEngine(c catalog.Catalog, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		catalog: c,
		log:     log,
	}
	e.SetOptions(opts)

	return e
}

// SetOptions replaces the tuning options. Safe to call while queries run.
func (e *Engine) SetOptions(opts Options) {
	defaults := DefaultOptions()
	if opts.SuggestionThreshold <= 0 || opts.SuggestionThreshold > 1 {
		opts.SuggestionThreshold = defaults.SuggestionThreshold
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = defaults.MaxSuggestions
	}
	if opts.FuzzyCandidates < opts.MaxSuggestions {
		opts.FuzzyCandidates = max(defaults.FuzzyCandidates, opts.MaxSuggestions)
	}

	e.options.Store(&opts)
}

// Options returns the active tuning options.
func (e *Engine) Options() Options {
	return *e.options.Load()
}

// FindExactByName resolves a case-insensitive exact name.
func (e *Engine) FindExactByName(ctx context.Context, name string) (*domain.Cocktail, error) {
	name = textmatch.Normalize(name)
	if name == "" {
		return nil, ErrEmptyQuery
	}

	item, err := e.catalog.LookupByExactName(ctx, name)
	if err != nil {
		return nil, wrap(catalog.OpLookupByExactName, err)
	}

	return item, nil
}

// FindByID resolves a stable item id.
func (e *Engine) FindByID(ctx context.Context, id int64) (*domain.Cocktail, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}

	item, err := e.catalog.LookupByID(ctx, id)
	if err != nil {
		return nil, wrap(catalog.OpLookupByID, err)
	}

	return item, nil
}

// FindAllByName returns every item whose name contains text.
func (e *Engine) FindAllByName(ctx context.Context, text string) ([]domain.Cocktail, error) {
	text = textmatch.Normalize(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	items, err := e.catalog.LookupByNameSubstring(ctx, text)
	if err != nil {
		return nil, wrap(catalog.OpLookupByNameSubstr, err)
	}

	return uniqueByID(items), nil
}

// SuggestIfNotFound returns the names closest to text that clear the
// similarity threshold, best first. Callers invoke it only after
// FindAllByName came back empty.
func (e *Engine) SuggestIfNotFound(ctx context.Context, text string) ([]domain.Cocktail, error) {
	text = textmatch.Normalize(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	opts := e.Options()

	candidates, err := e.catalog.LookupByNameFuzzy(ctx, text, opts.FuzzyCandidates)
	if err != nil {
		return nil, wrap(catalog.OpLookupByNameFuzzy, err)
	}

	type scored struct {
		item  domain.Cocktail
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range uniqueByID(candidates) {
		score := textmatch.BestSimilarity(text, candidate.Name)
		if score >= opts.SuggestionThreshold {
			ranked = append(ranked, scored{item: candidate, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.Name < ranked[j].item.Name
	})

	if len(ranked) > opts.MaxSuggestions {
		ranked = ranked[:opts.MaxSuggestions]
	}

	e.log.DebugContext(ctx, "name suggestions computed",
		slog.String("query", text),
		slog.Int("candidates", len(candidates)),
		slog.Int("suggestions", len(ranked)),
	)

	return lo.Map(ranked, func(s scored, _ int) domain.Cocktail { return s.item }), nil
}

// FindByIngredientsAll returns items containing every listed ingredient.
func (e *Engine) FindByIngredientsAll(ctx context.Context, ingredients []string) ([]domain.Cocktail, error) {
	ingredients = normalizeSet(ingredients)
	if len(ingredients) == 0 {
		return nil, ErrEmptyQuery
	}

	items, err := e.catalog.LookupByIngredients(ctx, ingredients)
	if err != nil {
		return nil, wrap(catalog.OpLookupByIngredients, err)
	}

	return uniqueByID(items), nil
}

// FindByTags returns items carrying every listed tag.
func (e *Engine) FindByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error) {
	tags = normalizeSet(tags)
	if len(tags) == 0 {
		return nil, ErrEmptyQuery
	}

	items, err := e.catalog.LookupByTags(ctx, tags)
	if err != nil {
		return nil, wrap(catalog.OpLookupByTags, err)
	}

	return uniqueByID(items), nil
}

// ListAllTags returns the distinct tag vocabulary in display order.
func (e *Engine) ListAllTags(ctx context.Context) ([]string, error) {
	tags, err := e.catalog.ListDistinctTags(ctx)
	if err != nil {
		return nil, wrap(catalog.OpListDistinctTags, err)
	}

	tags = normalizeSet(tags)
	sort.Strings(tags)
	return tags, nil
}

func normalizeSet(values []string) []string {
	values = lo.Compact(textmatch.NormalizeAll(values))
	if len(values) == 0 {
		return nil
	}
	return lo.Uniq(values)
}

func uniqueByID(items []domain.Cocktail) []domain.Cocktail {
	if len(items) == 0 {
		return nil
	}
	return lo.UniqBy(items, func(c domain.Cocktail) int64 { return c.ID })
}

func wrap(op string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return ErrNotFound
	}

	if _, ok := apperrors.As(err); ok {
		return err
	}

	return apperrors.NewCatalogUnavailableError(op, fmt.Errorf("%s: %w", op, err))
}
