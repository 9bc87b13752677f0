// Package database applies the catalog schema migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.up.sql
var embedded embed.FS

const createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrator applies plain .up.sql migrations in lexical order, each at most once.
// Applied versions are tracked in schema_migrations.
type Migrator struct {
	db  *sql.DB
	log *slog.Logger
}

// NewMigrator constructs a Migrator that logs through the provided logger instance.
func NewMigrator(db *sql.DB, log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}

	return &Migrator{
		db:  db,
		log: log,
	}
}

// ApplyEmbedded applies the migrations compiled into the binary.
func (m *Migrator) ApplyEmbedded(ctx context.Context) ([]string, error) {
	return m.Apply(ctx, embedded, "migrations")
}

// Apply runs every pending migration found in root of fsys and returns the
// versions it applied.
func (m *Migrator) Apply(ctx context.Context, fsys fs.FS, root string) ([]string, error) {
	names, err := ListMigrations(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("list migrations in %q: %w", root, err)
	}

	if len(names) == 0 {
		m.log.Info("no .up.sql migrations found", slog.String("dir", root))
		return nil, nil
	}

	if _, err := m.db.ExecContext(ctx, createVersionsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		version := versionOf(name)
		if done[version] {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return applied, fmt.Errorf("read migration %q: %w", name, err)
		}

		if err := m.applyOne(ctx, version, string(data)); err != nil {
			return applied, err
		}
		applied = append(applied, version)
	}

	m.log.Info("migrations applied", slog.Int("count", len(applied)), slog.Int("total", len(names)))
	return applied, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		done[version] = true
	}

	return done, rows.Err()
}

func (m *Migrator) applyOne(ctx context.Context, version, statement string) error {
	log := m.log.With(slog.String("version", version))

	statement = strings.TrimSpace(statement)
	if statement == "" {
		log.Warn("migration is empty, recording it anyway")
	}

	log.Info("applying migration")

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for migration %q: %w", version, err)
	}

	if statement != "" {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				log.Error("rollback error", slog.Any("error", rbErr))
			}
			return fmt.Errorf("execute migration %q: %w", version, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error("rollback error", slog.Any("error", rbErr))
		}
		return fmt.Errorf("record migration %q: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", version, err)
	}

	return nil
}

func isUpMigration(name string) bool {
	return strings.HasSuffix(name, ".up.sql")
}

func versionOf(name string) string {
	return strings.TrimSuffix(name, ".up.sql")
}

// ListMigrations returns all .up.sql files in root of fsys in lexical order.
func ListMigrations(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isUpMigration(e.Name()) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}
