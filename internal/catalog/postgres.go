package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

const selectColumns = `SELECT id, name, description, ingredients, tags FROM cocktails`

// Postgres reads the catalog from the cocktails table. Fuzzy lookups rely
// on the pg_trgm extension installed by the schema migration.
type Postgres struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Catalog = (*Postgres)(nil)

func NewPostgres(db *sql.DB, log *slog.Logger) *Postgres {
	return &Postgres{
		db:  db,
		log: log,
	}
}

func (p *Postgres) LookupByID(ctx context.Context, id int64) (*domain.Cocktail, error) {
	const query = selectColumns + ` WHERE id = $1`

	return p.one(ctx, query, id)
}

func (p *Postgres) LookupByExactName(ctx context.Context, name string) (*domain.Cocktail, error) {
	const query = selectColumns + ` WHERE lower(name) = $1 LIMIT 1`

	return p.one(ctx, query, textmatch.Normalize(name))
}

func (p *Postgres) LookupByNameSubstring(ctx context.Context, text string) ([]domain.Cocktail, error) {
	const query = selectColumns + ` WHERE lower(name) LIKE $1 ESCAPE '\' ORDER BY name`

	text = textmatch.Normalize(text)
	if text == "" {
		return nil, nil
	}

	return p.many(ctx, query, "%"+escapeLike(text)+"%")
}

func (p *Postgres) LookupByNameFuzzy(ctx context.Context, text string, maxResults int) ([]domain.Cocktail, error) {
	const query = selectColumns + `
		ORDER BY similarity(lower(name), $1) DESC, name
		LIMIT $2
	`

	text = textmatch.Normalize(text)
	if text == "" || maxResults <= 0 {
		return nil, nil
	}

	return p.many(ctx, query, text, maxResults)
}

func (p *Postgres) LookupByIngredients(ctx context.Context, ingredients []string) ([]domain.Cocktail, error) {
	const query = selectColumns + `
		WHERE (SELECT coalesce(array_agg(lower(btrim(i))), '{}') FROM unnest(ingredients) AS i) @> $1::text[]
		ORDER BY name
	`

	if len(ingredients) == 0 {
		return nil, nil
	}

	return p.many(ctx, query, pq.Array(textmatch.NormalizeAll(ingredients)))
}

func (p *Postgres) LookupByTags(ctx context.Context, tags []string) ([]domain.Cocktail, error) {
	const query = selectColumns + `
		WHERE (SELECT coalesce(array_agg(lower(btrim(t))), '{}') FROM unnest(tags) AS t) @> $1::text[]
		ORDER BY name
	`

	if len(tags) == 0 {
		return nil, nil
	}

	return p.many(ctx, query, pq.Array(textmatch.NormalizeAll(tags)))
}

func (p *Postgres) ListDistinctTags(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT lower(btrim(t)) AS tag
		FROM cocktails, unnest(tags) AS t
		WHERE btrim(t) <> ''
		ORDER BY tag
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select distinct tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

// Upsert inserts items or updates the existing rows with the same name.
// The whole batch runs in one transaction.
func (p *Postgres) Upsert(ctx context.Context, items []domain.Cocktail) (int, error) {
	const query = `
		INSERT INTO cocktails (name, description, ingredients, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(name))) DO UPDATE
		SET description = EXCLUDED.description,
		    ingredients = EXCLUDED.ingredients,
		    tags = EXCLUDED.tags,
		    updated_at = now()
	`

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(
			ctx,
			strings.TrimSpace(item.Name),
			strings.TrimSpace(item.Description),
			pq.Array(textmatch.NormalizeAll(item.Ingredients)),
			pq.Array(textmatch.NormalizeAll(item.Tags)),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upsert %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}

	return len(items), nil
}

func (p *Postgres) one(ctx context.Context, query string, args ...any) (*domain.Cocktail, error) {
	item, err := scanCocktail(p.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		if p.log != nil {
			p.log.Error("failed to fetch cocktail", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select cocktail: %w", err)
	}

	return item, nil
}

func (p *Postgres) many(ctx context.Context, query string, args ...any) ([]domain.Cocktail, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select cocktails: %w", err)
	}
	defer rows.Close()

	var items []domain.Cocktail
	for rows.Next() {
		item, err := scanCocktail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cocktail: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cocktails: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCocktail(row rowScanner) (*domain.Cocktail, error) {
	var item domain.Cocktail
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		pq.Array(&item.Ingredients),
		pq.Array(&item.Tags),
	); err != nil {
		return nil, err
	}

	return &item, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}
