// Package postgresengine provides the PostgreSQL implementation of the event store.
//
// It supports pgxpool.Pool (optionally with a read replica), sql.DB with lib/pq and sqlx.DB.
// Queries select by event type and by jsonb containment on the payload, appends are single
// INSERT ... SELECT statements that only insert when the highest sequence number of the
// "dynamic event stream" is still the expected one.
//
// The schema is applied with MigrateUp, which runs the embedded migrations with golang-migrate.
//
// Usage:
//
//	db, _ := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		db,
//		postgresengine.WithContextualLogger(logger),
//		postgresengine.WithMetrics(metrics),
//	)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine
