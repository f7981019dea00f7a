// Package main drives a lending workload against the inventory.
//
// It seeds books with copies through the catalog reaction and the append-inventory command, then runs rounds
// of randomly chosen borrow, return, reserve, cancel and extend commands through Dispatcher.DispatchBatch.
// Every round moves the simulated clock by one day. Rejections are expected and counted per reason.
//
// The embedded SQLite engine is used by default. With -postgres the PostgreSQL engine is used, through the
// adapter chosen with -adapter (pgx.pool, sql.db or sqlx.db). The store is protected by a circuit breaker.
//
// With -metrics-addr the Prometheus metrics of store, breaker and command handlers are served on /metrics.
package main
