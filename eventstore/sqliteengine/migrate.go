package sqliteengine

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var ErrMigrationFailed = errors.New("sqlite schema migration failed")

// MigrateUp applies all pending embedded migrations. It is a no-op if the schema is up to date.
//
// The migrate instance must not be closed, its sqlite driver would close db.
func MigrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return errors.Join(ErrMigrationFailed, upErr)
	}

	return nil
}
