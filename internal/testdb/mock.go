// Package testdb provides database fixtures for tests: a sqlmock-backed
// database.DB for unit tests and a PostGIS container for integration tests.
package testdb

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Logger discards everything.
func Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// NewMock returns a database.DB backed by sqlmock. Expectations are checked
// when the test ends.
func NewMock(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		raw.Close()
	})

	return database.NewDatabaseInstance(sqlx.NewDb(raw, "postgres"), Logger()), mock
}
