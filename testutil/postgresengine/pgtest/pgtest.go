// Package pgtest opens a migrated, empty PostgreSQL event store for integration tests.
//
// Tests are skipped unless INVENTORY_POSTGRES_DSN is set. ADAPTER_TYPE selects the driver:
// "pgx.pool" (default), "sql.db" or "sqlx.db".
package pgtest

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/eventstore/postgresengine"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell/config"
)

const (
	EnvAdapterType = "ADAPTER_TYPE"

	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"
)

// AdapterType returns the driver selected by ADAPTER_TYPE.
func AdapterType() string {
	adapterType := strings.ToLower(os.Getenv(EnvAdapterType))
	if adapterType == "" {
		return AdapterPGXPool
	}

	return adapterType
}

// GivenEventStore returns an event store on an empty events and snapshots table.
// Connections are closed when the test ends.
func GivenEventStore(t testing.TB, options ...postgresengine.Option) *postgresengine.EventStore {
	t.Helper()

	if _, ok := os.LookupEnv(config.EnvPostgresDSN); !ok {
		t.Skipf("%s is not set, skipping postgres integration test", config.EnvPostgresDSN)
	}

	ctx := context.Background()

	var (
		es    *postgresengine.EventStore
		sqlDB *sql.DB
		err   error
	)

	switch adapterType := AdapterType(); adapterType {
	case AdapterPGXPool:
		pool, poolErr := config.PostgresPGXPool(ctx)
		require.NoError(t, poolErr, "connecting the pgx pool failed")
		t.Cleanup(pool.Close)

		sqlDB = stdlib.OpenDBFromPool(pool)
		es, err = postgresengine.NewEventStoreFromPGXPool(pool, options...)

	case AdapterSQLDB:
		sqlDB, err = config.PostgresSQLDB(ctx)
		require.NoError(t, err, "connecting sql.DB failed")
		t.Cleanup(func() { _ = sqlDB.Close() })

		es, err = postgresengine.NewEventStoreFromSQLDB(sqlDB, options...)

	case AdapterSQLXDB:
		sqlxDB, sqlxErr := config.PostgresSQLX(ctx)
		require.NoError(t, sqlxErr, "connecting sqlx.DB failed")
		t.Cleanup(func() { _ = sqlxDB.Close() })

		sqlDB = sqlxDB.DB
		es, err = postgresengine.NewEventStoreFromSQLX(sqlxDB, options...)

	default:
		t.Fatalf("unsupported %s: %s", EnvAdapterType, adapterType)
	}

	require.NoError(t, err, "creating the event store failed")
	require.NoError(t, postgresengine.MigrateUp(sqlDB), "migrating the schema failed")
	CleanUp(t, sqlDB)

	return es
}

// CleanUp empties the events and snapshots tables and resets the sequence.
func CleanUp(t testing.TB, db *sql.DB) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), "TRUNCATE TABLE events, snapshots RESTART IDENTITY")
	require.NoError(t, err, "cleaning up the tables failed")
}
