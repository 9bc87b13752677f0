// Package catalog provides read-only access to the cocktail catalog.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/Proton-105/cocktail-bot/internal/domain"
)

// ErrNotFound is returned by single item lookups that match nothing.
var ErrNotFound = errors.New("catalog: item not found")

// Catalog is the query surface consumed by search. Name and list arguments
// are expected to be normalized already; implementations match them
// case-insensitively against trimmed stored values.
type Catalog interface {
	LookupByID(ctx context.Context, id int64) (*domain.Cocktail, error)
	LookupByExactName(ctx context.Context, name string) (*domain.Cocktail, error)
	LookupByNameSubstring(ctx context.Context, text string) ([]domain.Cocktail, error)
	// LookupByNameFuzzy returns up to maxResults names ordered by closeness to text.
	LookupByNameFuzzy(ctx context.Context, text string, maxResults int) ([]domain.Cocktail, error)
	// LookupByIngredients returns items containing every listed ingredient.
	LookupByIngredients(ctx context.Context, ingredients []string) ([]domain.Cocktail, error)
	// LookupByTags returns items carrying every listed tag.
	LookupByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error)
	ListDistinctTags(ctx context.Context) ([]string, error)
}

// Operation names used in logs and metrics.
const (
	OpLookupByID          = "lookup_by_id"
	OpLookupByExactName   = "lookup_by_exact_name"
	OpLookupByNameSubstr  = "lookup_by_name_substring"
	OpLookupByNameFuzzy   = "lookup_by_name_fuzzy"
	OpLookupByIngredients = "lookup_by_ingredients"
	OpLookupByTags        = "lookup_by_tags"
	OpListDistinctTags    = "list_distinct_tags"
)

var callRecorder = func(op, outcome string, duration time.Duration) {}

// RegisterCallRecorder allows external packages to observe catalog calls.
func RegisterCallRecorder(recorder func(op, outcome string, duration time.Duration)) {
	if recorder == nil {
		callRecorder = func(string, string, time.Duration) {}
		return
	}

	callRecorder = recorder
}
