// Package config builds the infrastructure the inventory runs on: PostgreSQL connections for the three
// supported drivers (pgx.Pool, sql.DB with lib/pq, sqlx.DB), the SQLite database file and the
// OpenTelemetry and Prometheus providers used by the observability adapters.
//
// Connection settings come from the environment, see PostgresDSN and SQLitePath.
package config
