package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/breaker"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/oteladapters"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/postgresengine"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/promadapters"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-inventory-go/inventory/app"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell/config"
)

const shutdownTimeout = 10 * time.Second

// store is what the simulation needs from an engine: events and snapshots.
type store interface {
	shell.EventStore
	shell.SnapshotStore
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, handler); err != nil {
		logger.Error("lending simulation failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger, handler slog.Handler) error {
	contextualLogger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	var metrics *promadapters.MetricsCollector
	if cfg.MetricsAddr != "" {
		registry := config.NewPrometheusRegistry()
		metrics = promadapters.NewMetricsCollector(registry)

		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", serveErr.Error())
			}
		}()

		defer shutdownServer(server, logger)

		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	es, closeStore, err := openStore(ctx, cfg, metrics, contextualLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	breakerOptions := []breaker.Option{breaker.WithName("inventory-eventstore"), breaker.WithLogger(logger)}
	if metrics != nil {
		breakerOptions = append(breakerOptions, breaker.WithMetrics(metrics))
	}

	protected := breaker.New(es, breakerOptions...)

	repository, err := shell.NewEventSourcedRepository(
		protected,
		shell.WithSnapshots(es),
		shell.WithRepositoryContextualLogger(contextualLogger),
	)
	if err != nil {
		return err
	}

	appConfig := app.Config{
		DispatcherOptions: []shell.DispatcherOption{
			shell.WithConcurrency(cfg.Concurrency),
			shell.WithDispatcherContextualLogger(contextualLogger),
		},
	}

	if metrics != nil {
		appConfig.Observability.MetricsCollector = metrics
	}

	if cfg.Verbose {
		appConfig.Observability.ContextualLogger = contextualLogger
	}

	dispatcher, err := app.NewDispatcher(repository, appConfig)
	if err != nil {
		return err
	}

	logger.Info("lending simulation started",
		"engine", engineName(cfg),
		"books", cfg.Books,
		"copies", cfg.Copies,
		"users", cfg.Users,
		"rounds", cfg.Rounds,
		"batch", cfg.BatchSize,
		"concurrency", cfg.Concurrency,
		"seed", cfg.Seed,
	)

	start := time.Now()
	totals, runErr := newSimulation(dispatcher, cfg, logger).Run(ctx)

	logTotals(logger, totals, time.Since(start), protected.State())

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	return nil
}

func engineName(cfg Config) string {
	if cfg.Postgres {
		return "postgres/" + cfg.Adapter
	}

	return "sqlite"
}

// openStore opens the configured engine, with migrations applied.
func openStore(
	ctx context.Context,
	cfg Config,
	metrics *promadapters.MetricsCollector,
	logger eventstore.ContextualLogger,
) (store, func(), error) {

	if !cfg.Postgres {
		options := []sqliteengine.Option{sqliteengine.WithContextualLogger(logger)}
		if metrics != nil {
			options = append(options, sqliteengine.WithMetrics(metrics))
		}

		db, err := config.SQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}

		es, err := sqliteengine.NewEventStoreFromDB(db, options...)
		if err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}

		return es, func() { _ = db.Close() }, nil
	}

	options := []postgresengine.Option{postgresengine.WithContextualLogger(logger)}
	if metrics != nil {
		options = append(options, postgresengine.WithMetrics(metrics))
	}

	es, migrationDB, closeDB, err := openPostgres(ctx, cfg.Adapter, options...)
	if err != nil {
		return nil, nil, err
	}

	if migrateErr := postgresengine.MigrateUp(migrationDB); migrateErr != nil {
		closeDB()

		return nil, nil, fmt.Errorf("migrating postgres: %w", migrateErr)
	}

	return es, closeDB, nil
}

// openPostgres connects through the given adapter. The returned *sql.DB shares the connection settings
// and is used for the migrations.
func openPostgres(
	ctx context.Context,
	adapter string,
	options ...postgresengine.Option,
) (*postgresengine.EventStore, *sql.DB, func(), error) {

	var (
		es          *postgresengine.EventStore
		migrationDB *sql.DB
		closeDB     func()
		err         error
	)

	switch adapter {
	case adapterSQLDB:
		db, connectErr := config.PostgresSQLDB(ctx)
		if connectErr != nil {
			return nil, nil, nil, connectErr
		}

		migrationDB = db
		closeDB = func() { _ = db.Close() }
		es, err = postgresengine.NewEventStoreFromSQLDB(db, options...)

	case adapterSQLX:
		db, connectErr := config.PostgresSQLX(ctx)
		if connectErr != nil {
			return nil, nil, nil, connectErr
		}

		migrationDB = db.DB
		closeDB = func() { _ = db.Close() }
		es, err = postgresengine.NewEventStoreFromSQLX(db, options...)

	default:
		pool, connectErr := config.PostgresPGXPool(ctx)
		if connectErr != nil {
			return nil, nil, nil, connectErr
		}

		migrationDB = stdlib.OpenDBFromPool(pool)
		closeDB = func() {
			_ = migrationDB.Close()
			pool.Close()
		}
		es, err = postgresengine.NewEventStoreFromPGXPool(pool, options...)
	}

	if err != nil {
		closeDB()

		return nil, nil, nil, err
	}

	return es, migrationDB, closeDB, nil
}

func shutdownServer(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown failed", "error", err.Error())
	}
}

func logTotals(logger *slog.Logger, totals Totals, duration time.Duration, breakerState string) {
	args := []any{
		"commands", totals.Commands,
		"duration_ms", shell.ToMilliseconds(duration),
		"breaker_state", breakerState,
	}

	for _, outcome := range slices.Sorted(maps.Keys(totals.Outcomes)) {
		args = append(args, "outcome_"+outcome, totals.Outcomes[outcome])
	}

	for _, reason := range slices.Sorted(maps.Keys(totals.Rejections)) {
		args = append(args, "rejected_"+string(reason), totals.Rejections[reason])
	}

	logger.Info("lending simulation completed", args...)
}
