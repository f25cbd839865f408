package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddedAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")

	db, err := NewEmbedded(path)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='auth_storage'",
	).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.Close())

	// İkinci açılışta aynı migration tekrar çalışmaz
	db, err = NewEmbedded(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	migrations := fstest.MapFS{
		"001_ok.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_bad.sql": {Data: []byte("CREATE TABLE b (id INTEGER); NOT VALID SQL;")},
	}

	_, err := New(filepath.Join(t.TempDir(), "bad.db"), migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_bad.sql")
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, err := NewEmbedded(filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	boom := errors.New("boom")

	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO auth_storage (key, value) VALUES ('token', 't1')"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM auth_storage").Scan(&count))
	assert.Zero(t, count)
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("INSERT INTO t VALUES ('a;b'); INSERT INTO t VALUES ('it''s');\n\n")
	assert.Equal(t, []string{
		"INSERT INTO t VALUES ('a;b')",
		"INSERT INTO t VALUES ('it''s')",
	}, got)
}
