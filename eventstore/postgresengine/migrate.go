package postgresengine

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // driver for database/sql
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var ErrMigrationFailed = errors.New("postgres schema migration failed")

// MigrateUp applies all pending embedded migrations (events and snapshots tables with their indexes).
// It is a no-op if the schema is up to date. The migrations use the default table names.
func MigrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return errors.Join(ErrMigrationFailed, upErr)
	}

	return nil
}
