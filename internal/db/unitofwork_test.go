package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func putSetting(ctx context.Context, tx db.DBTX, key string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO global_settings (key, enabled) VALUES (?, 1)`, key)
	return err
}

func hasSetting(t *testing.T, database *sql.DB, key string) bool {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM global_settings WHERE key = ?`, key).Scan(&n))
	return n > 0
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return putSetting(ctx, tx, "timeline")
	})
	require.NoError(t, err)
	assert.True(t, hasSetting(t, database, "timeline"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openUoW(t)
	boom := errors.New("apply failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		require.NoError(t, putSetting(ctx, tx, "timeline"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, hasSetting(t, database, "timeline"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = putSetting(ctx, tx, "timeline")
			panic("boom")
		})
	})
	assert.False(t, hasSetting(t, database, "timeline"))
}

func TestWithinTx_NestedCallJoinsOuterTx(t *testing.T) {
	database, uow := openUoW(t)
	boom := errors.New("outer failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, outer db.DBTX) error {
		assert.True(t, db.InTx(ctx))
		require.NoError(t, putSetting(ctx, outer, "timeline"))

		inner := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			assert.Same(t, outer, tx)
			return putSetting(ctx, tx, "testing")
		})
		require.NoError(t, inner)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, hasSetting(t, database, "timeline"))
	assert.False(t, hasSetting(t, database, "testing"), "inner write rolls back with the outer tx")
}

func TestConn_FallsBackOutsideTx(t *testing.T) {
	database, _ := openUoW(t)

	assert.False(t, db.InTx(context.Background()))
	assert.Equal(t, db.DBTX(database), db.Conn(context.Background(), database))
}

func TestOpenDB_FileStoreUsesWALAndSurvivesReopen(t *testing.T) {
	database, path := testutil.NewFileTestDB(t)

	var mode string
	require.NoError(t, database.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	uow := db.NewSQLiteUnitOfWork(database)
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return putSetting(ctx, tx, "testing")
	}))
	require.NoError(t, database.Close())

	reopened, err := db.OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	assert.True(t, hasSetting(t, reopened, "testing"))
}
