package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return database.NewDatabaseInstance(sqlx.NewDb(raw, "postgres"), logger), mock
}

func TestGetTx_RollbackByOpener(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, tx, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, tx.IsOpen())

	require.NoError(t, tx.Rollback(ctx))
	assert.False(t, tx.IsOpen())

	// second rollback is a no-op
	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_JoinedTransactionCannotFinish(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx, outer, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)

	innerCtx, inner, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, inner.Rollback(innerCtx))
	require.NoError(t, inner.Commit(innerCtx))
	assert.True(t, outer.IsOpen())

	require.NoError(t, outer.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE x").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.Equal(t, db, database.Conn(context.Background(), db))

	ctx, tx, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = database.Conn(ctx, db).ExecContext(ctx, "UPDATE x SET y = 1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, ok := database.TxFromContext(ctx)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
