package catalog

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

const tagsCacheKey = "tags"

// Cached memoizes the stable single item and tag lookups of another Catalog.
// List queries pass straight through. Misses are not cached.
type Cached struct {
	next  Catalog
	cache *gocache.Cache
}

var _ Catalog = (*Cached)(nil)

// NewCached wraps next with a TTL cache.
func NewCached(next Catalog, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Flush drops every cached entry.
func (c *Cached) Flush() {
	c.cache.Flush()
}

func (c *Cached) LookupByID(ctx context.Context, id int64) (*domain.Cocktail, error) {
	key := "id:" + strconv.FormatInt(id, 10)
	return c.item(key, func() (*domain.Cocktail, error) {
		return c.next.LookupByID(ctx, id)
	})
}

func (c *Cached) LookupByExactName(ctx context.Context, name string) (*domain.Cocktail, error) {
	key := "name:" + textmatch.Normalize(name)
	return c.item(key, func() (*domain.Cocktail, error) {
		return c.next.LookupByExactName(ctx, name)
	})
}

func (c *Cached) LookupByNameSubstring(ctx context.Context, text string) ([]domain.Cocktail, error) {
	return c.next.LookupByNameSubstring(ctx, text)
}

func (c *Cached) LookupByNameFuzzy(ctx context.Context, text string, maxResults int) ([]domain.Cocktail, error) {
	return c.next.LookupByNameFuzzy(ctx, text, maxResults)
}

func (c *Cached) LookupByIngredients(ctx context.Context, ingredients []string) ([]domain.Cocktail, error) {
	return c.next.LookupByIngredients(ctx, ingredients)
}

func (c *Cached) LookupByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error) {
	return c.next.LookupByTags(ctx, tags)
}

func (c *Cached) ListDistinctTags(ctx context.Context) ([]string, error) {
	if cached, ok := c.cache.Get(tagsCacheKey); ok {
		return append([]string(nil), cached.([]string)...), nil
	}

	tags, err := c.next.ListDistinctTags(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(tagsCacheKey, append([]string(nil), tags...))
	return tags, nil
}

func (c *Cached) item(key string, load func() (*domain.Cocktail, error)) (*domain.Cocktail, error) {
	if cached, ok := c.cache.Get(key); ok {
		item := cloneItem(cached.(domain.Cocktail))
		return &item, nil
	}

	item, err := load()
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, cloneItem(*item))
	return item, nil
}
