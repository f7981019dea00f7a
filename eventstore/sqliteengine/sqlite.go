package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	_ "modernc.org/sqlite"                              // driver for database/sql

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/sqlfilter"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/storeobs"
)

const (
	defaultEventTableName        = "events"
	defaultSnapshotTableName     = "snapshots"
	engineName                   = "sqlite"
	driverName                   = "sqlite"
	dialectSQLite                = "sqlite3"
	dsnOptions                   = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	aliasMaxSeq                  = "max_seq"
	logActionQuery               = "query"
	logActionAppend              = "append"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBeginTxFailed          = "failed to begin append transaction"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgRollbackFailed         = "failed to roll back append transaction"
	jsonExtractEquals            = "json_extract(payload, ?) = ?"
)

// EventStore is an embedded event store on SQLite (modernc.org/sqlite, no cgo).
//
// It offers the same Query/Append contract as the Postgres engine. Appends run in an IMMEDIATE transaction
// which first checks the highest sequence number of the "dynamic event stream" and then inserts all events.
type EventStore struct {
	db                *sql.DB
	ownsDB            bool
	eventTableName    string
	snapshotTableName string
	obs               storeobs.Observer
}

// Open opens (or creates) the SQLite database file at path, applies the migrations and returns the EventStore.
// The returned EventStore owns the database handle, Close releases it.
func Open(path string, options ...Option) (*EventStore, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	if migrateErr := MigrateUp(db); migrateErr != nil {
		_ = db.Close()

		return nil, migrateErr
	}

	es, err := NewEventStoreFromDB(db, options...)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	es.ownsDB = true

	return es, nil
}

// OpenDB opens the SQLite database file at path with the pragmas the engine relies on.
// Only one connection is used, so that writers are serialized inside the process.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path+dsnOptions)
	if err != nil {
		return nil, errors.Join(eventstore.ErrNilDatabaseConnection, err)
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.Ping(); pingErr != nil {
		_ = db.Close()

		return nil, pingErr
	}

	return db, nil
}

// NewEventStoreFromDB creates a new EventStore on an already opened and migrated database.
func NewEventStoreFromDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	es := &EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
		obs:               storeobs.Observer{Engine: engineName},
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Close releases the database handle if it was opened by Open.
func (es *EventStore) Close() error {
	if !es.ownsDB {
		return nil
	}

	return es.db.Close()
}

// Query retrieves events based on the provided eventstore.Filter criteria, ordered by sequence number,
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	op, ctx := es.obs.Start(ctx, storeobs.OperationQuery, storeobs.MetricQueryDuration, storeobs.SpanNameQuery, nil)

	selectStmt := goqu.Dialect(dialectSQLite).
		From(es.eventTableName).
		Select(
			sqlfilter.ColEventType,
			sqlfilter.ColOccurredAt,
			sqlfilter.ColPayload,
			sqlfilter.ColMetadata,
			sqlfilter.ColSequenceNumber,
		).
		Order(goqu.I(sqlfilter.ColSequenceNumber).Asc())

	sqlQuery, args, toSQLErr := sqlfilter.ApplyTo(selectStmt, filter, renderer).Prepared(true).ToSQL()
	if toSQLErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, toSQLErr, logMsgBuildSelectQueryFailed)

		return nil, 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := es.db.QueryContext(ctx, sqlQuery, args...)
	es.obs.LogSQL(ctx, logActionQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		op.Failure(storeobs.ErrorTypeDatabase, queryErr, logMsgDBQueryFailed, storeobs.LogAttrQuery, sqlQuery)

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			es.obs.LogWarn(ctx, logMsgCloseRowsFailed, closeErr)
		}
	}()

	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		var (
			eventType      string
			occurredAtNano int64
			payload        []byte
			metadata       []byte
			sequenceNumber int64
		)

		if scanErr := rows.Scan(&eventType, &occurredAtNano, &payload, &metadata, &sequenceNumber); scanErr != nil {
			op.Failure(storeobs.ErrorTypeRowScan, scanErr, logMsgScanRowFailed)

			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		event, buildErr := eventstore.BuildStorableEvent(eventType, time.Unix(0, occurredAtNano).UTC(), payload, metadata)
		if buildErr != nil {
			op.Failure(storeobs.ErrorTypeBuildEvent, buildErr, logMsgScanRowFailed, storeobs.LogAttrEventType, eventType)

			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = eventstore.MaxSequenceNumberUint(sequenceNumber)
	}

	if iterErr := rows.Err(); iterErr != nil {
		op.Failure(storeobs.ErrorTypeRowScan, iterErr, logMsgScanRowFailed)

		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, iterErr)
	}

	duration := op.Success(
		storeobs.MetricEventsQueried,
		len(eventStream),
		map[string]string{storeobs.AttrMaxSequence: strconv.FormatUint(uint64(maxSequenceNumber), 10)},
	)

	es.obs.LogOperation(
		ctx,
		storeobs.LogMsgQueryCompleted,
		storeobs.LogAttrEventCount, len(eventStream),
		storeobs.LogAttrDurationMS, storeobs.ToMilliseconds(duration),
	)

	return eventStream, maxSequenceNumber, nil
}

// Append appends one or multiple events atomically if the highest sequence number matched by the
// (unbounded) filter is still expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	op, ctx := es.obs.Start(
		ctx,
		storeobs.OperationAppend,
		storeobs.MetricAppendDuration,
		storeobs.SpanNameAppend,
		map[string]string{
			storeobs.AttrEventCount:  strconv.Itoa(len(allEvents)),
			storeobs.AttrEventType:   event.EventType,
			storeobs.AttrExpectedSeq: strconv.FormatUint(uint64(expectedMaxSequenceNumber), 10),
		},
	)

	maxSeqQuery, maxSeqArgs, insertQuery, insertArgs, buildErr := es.buildAppendQueries(allEvents, filter.WithoutBoundaries())
	if buildErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, buildErr, logMsgBuildInsertQueryFailed)

		return buildErr
	}

	start := time.Now()

	tx, beginErr := es.db.BeginTx(ctx, nil)
	if beginErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, beginErr, logMsgBeginTxFailed)

		return errors.Join(eventstore.ErrAppendingEventFailed, beginErr)
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			es.obs.LogWarn(ctx, logMsgRollbackFailed, rollbackErr)
		}
	}()

	var currentMax int64
	if scanErr := tx.QueryRowContext(ctx, maxSeqQuery, maxSeqArgs...).Scan(&currentMax); scanErr != nil {
		op.Failure(storeobs.ErrorTypeDatabase, scanErr, logMsgDBQueryFailed, storeobs.LogAttrQuery, maxSeqQuery)

		return errors.Join(eventstore.ErrAppendingEventFailed, scanErr)
	}

	if eventstore.MaxSequenceNumberUint(currentMax) != expectedMaxSequenceNumber {
		op.Conflict(
			storeobs.LogAttrExpectedEvents, len(allEvents),
			storeobs.LogAttrRowsAffected, 0,
			storeobs.LogAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return eventstore.ErrConcurrencyConflict
	}

	if _, execErr := tx.ExecContext(ctx, insertQuery, insertArgs...); execErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, execErr, logMsgDBExecFailed, storeobs.LogAttrQuery, insertQuery)

		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, commitErr, logMsgDBExecFailed)

		return errors.Join(eventstore.ErrAppendingEventFailed, commitErr)
	}

	committed = true
	es.obs.LogSQL(ctx, logActionAppend, insertQuery, time.Since(start))

	duration := op.Success(storeobs.MetricEventsAppended, len(allEvents), nil)

	es.obs.LogOperation(
		ctx,
		storeobs.LogMsgEventsAppended,
		storeobs.LogAttrEventCount, len(allEvents),
		storeobs.LogAttrDurationMS, storeobs.ToMilliseconds(duration),
	)

	return nil
}

func (es *EventStore) buildAppendQueries(
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
) (string, []any, string, []any, error) {

	builder := goqu.Dialect(dialectSQLite)

	maxSeqStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(sqlfilter.ColSequenceNumber), 0).As(aliasMaxSeq))

	maxSeqQuery, maxSeqArgs, maxSeqErr := sqlfilter.ApplyTo(maxSeqStmt, filter, renderer).Prepared(true).ToSQL()
	if maxSeqErr != nil {
		return "", nil, "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, maxSeqErr)
	}

	rows := make([]any, 0, len(allEvents))
	for _, event := range allEvents {
		rows = append(rows, goqu.Record{
			sqlfilter.ColEventType:  event.EventType,
			sqlfilter.ColOccurredAt: event.OccurredAt.UnixNano(),
			sqlfilter.ColPayload:    string(event.PayloadJSON),
			sqlfilter.ColMetadata:   string(event.MetadataJSON),
		})
	}

	insertQuery, insertArgs, insertErr := builder.Insert(es.eventTableName).Rows(rows...).Prepared(true).ToSQL()
	if insertErr != nil {
		return "", nil, "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, insertErr)
	}

	return maxSeqQuery, maxSeqArgs, insertQuery, insertArgs, nil
}

var renderer = sqlfilter.Renderer{
	Predicate: func(predicate eventstore.FilterPredicate) goqu.Expression {
		return goqu.L(jsonExtractEquals, "$."+predicate.Key(), predicate.Val())
	},
	Time: func(t time.Time) any {
		return t.UnixNano()
	},
}
