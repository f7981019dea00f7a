// Package sqliteengine provides an embedded event store on SQLite, built on the pure Go driver
// modernc.org/sqlite.
//
// It mirrors the contract of the Postgres engine (filter based Query, optimistic Append, snapshots)
// and is used for tests, the lending simulation and single node deployments.
//
//	store, err := sqliteengine.Open(filepath.Join(dir, "inventory.db"))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
package sqliteengine
