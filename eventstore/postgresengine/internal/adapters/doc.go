// Package adapters provides the database adapters of the PostgreSQL event store
// for pgxpool.Pool, sql.DB (lib/pq) and sqlx.DB behind one small DBAdapter interface.
package adapters
