package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/internal/testutil"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"m/0002_tags.up.sql":     {Data: []byte("CREATE INDEX tags_idx ON cocktails (tags);")},
		"m/0001_init.up.sql":     {Data: []byte("CREATE TABLE cocktails (id bigserial);")},
		"m/0001_init.down.sql":   {Data: []byte("DROP TABLE cocktails;")},
		"m/README.md":            {Data: []byte("notes")},
		"m/nested/0003.up.sql":   {Data: []byte("SELECT 1;")},
	}
}

func TestListMigrations(t *testing.T) {
	names, err := ListMigrations(testFS(), "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.up.sql", "0002_tags.up.sql"}, names)
}

func TestListMigrations_Embedded(t *testing.T) {
	names, err := ListMigrations(embedded, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_create_cocktails.up.sql", names[0])
}

func TestMigrator_AppliesPendingOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX tags_idx ON cocktails (tags);")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("0002_tags").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := NewMigrator(db, testutil.DiscardLogger()).Apply(context.Background(), testFS(), "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_tags"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE cocktails (id bigserial);")).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := NewMigrator(db, testutil.DiscardLogger()).Apply(context.Background(), testFS(), "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_NothingToApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	applied, err := NewMigrator(db, nil).Apply(context.Background(), fstest.MapFS{"m/readme.txt": {}}, "m")
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
