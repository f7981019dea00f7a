package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/AntonStoeckl/library-inventory-go/inventory/shell/config"
)

const (
	adapterPGXPool = "pgx.pool"
	adapterSQLDB   = "sql.db"
	adapterSQLX    = "sqlx.db"

	defaultBooks       = 50
	defaultCopies      = 3
	defaultUsers       = 200
	defaultRounds      = 30
	defaultBatchSize   = 250
	defaultConcurrency = 8
)

var errInvalidFlag = errors.New("invalid flag value")

// Config holds the simulation parameters.
type Config struct {
	Postgres    bool
	Adapter     string
	SQLitePath  string
	MetricsAddr string
	Concurrency int
	Books       int
	Copies      int
	Users       int
	Rounds      int
	BatchSize   int
	Seed        int64
	Start       time.Time
	Verbose     bool
}

// parseFlags parses args (without the program name).
func parseFlags(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("lending-simulation", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		postgres    = fs.Bool("postgres", false, "Use the PostgreSQL engine instead of SQLite")
		adapter     = fs.String("adapter", adapterPGXPool, "PostgreSQL adapter: pgx.pool, sql.db or sqlx.db")
		sqlitePath  = fs.String("sqlite", config.SQLitePath(), "SQLite database file")
		metricsAddr = fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		concurrency = fs.Int("concurrency", defaultConcurrency, "Books handled in parallel per batch")
		books       = fs.Int("books", defaultBooks, "Number of books to seed")
		copies      = fs.Int("copies", defaultCopies, "Copies per book")
		users       = fs.Int("users", defaultUsers, "Number of library users")
		rounds      = fs.Int("rounds", defaultRounds, "Rounds to run, one simulated day each")
		batchSize   = fs.Int("batch", defaultBatchSize, "Commands per round")
		seed        = fs.Int64("seed", time.Now().UnixNano(), "Random seed")
		start       = fs.String("start", "2025-01-06T09:00:00Z", "Simulated start time (RFC 3339)")
		verbose     = fs.Bool("verbose", false, "Log every command")
	)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return Config{}, fmt.Errorf("%w: start: %w", errInvalidFlag, err)
	}

	switch *adapter {
	case adapterPGXPool, adapterSQLDB, adapterSQLX:
	default:
		return Config{}, fmt.Errorf("%w: adapter %q (supported: pgx.pool, sql.db, sqlx.db)", errInvalidFlag, *adapter)
	}

	for name, value := range map[string]int{
		"concurrency": *concurrency,
		"books":       *books,
		"copies":      *copies,
		"users":       *users,
		"rounds":      *rounds,
		"batch":       *batchSize,
	} {
		if value <= 0 {
			return Config{}, fmt.Errorf("%w: %s must be positive, got %d", errInvalidFlag, name, value)
		}
	}

	return Config{
		Postgres:    *postgres,
		Adapter:     *adapter,
		SQLitePath:  *sqlitePath,
		MetricsAddr: *metricsAddr,
		Concurrency: *concurrency,
		Books:       *books,
		Copies:      *copies,
		Users:       *users,
		Rounds:      *rounds,
		BatchSize:   *batchSize,
		Seed:        *seed,
		Start:       startTime.UTC(),
		Verbose:     *verbose,
	}, nil
}
