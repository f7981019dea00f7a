package config

import (
	"database/sql"
	"errors"

	"github.com/AntonStoeckl/library-inventory-go/eventstore/sqliteengine"
)

// SQLiteDB opens the SQLite database at path and applies the event store migrations.
func SQLiteDB(path string) (*sql.DB, error) {
	db, err := sqliteengine.OpenDB(path)
	if err != nil {
		return nil, err
	}

	if migrateErr := sqliteengine.MigrateUp(db); migrateErr != nil {
		return nil, errors.Join(migrateErr, db.Close())
	}

	return db, nil
}
