package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/sqlfilter"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/storeobs"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "events"
	defaultSnapshotTableName       = "snapshots"
	engineName                     = "postgres"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
	payloadContains                = "payload @> ?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// EventStore is the PostgreSQL implementation of an event store with "dynamic event streams".
// It works with pgxpool.Pool, sql.DB (lib/pq) or sqlx.DB through an internal adapter.
type EventStore struct {
	db                adapters.DBAdapter
	eventTableName    string
	snapshotTableName string
	obs               storeobs.Observer
}

type queryResultRow struct {
	eventType         string
	payload           []byte
	metadata          []byte
	occurredAt        time.Time
	maxSequenceNumber eventstore.MaxSequenceNumberUint
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolWithReplica creates a new EventStore that sends queries with eventual consistency
// (see eventstore.WithEventualConsistency) to the replica pool and everything else to the primary pool.
func NewEventStoreFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if primary == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
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

// Query retrieves events from the Postgres event store based on the provided eventstore.Filter criteria
// and returns them as eventstore.StorableEvents
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	op, ctx := es.obs.Start(ctx, storeobs.OperationQuery, storeobs.MetricQueryDuration, storeobs.SpanNameQuery, nil)

	sqlQuery, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, buildQueryErr, logMsgBuildSelectQueryFailed)

		return nil, 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.obs.LogSQL(ctx, logActionQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		op.Failure(storeobs.ErrorTypeDatabase, queryErr, logMsgDBQueryFailed, storeobs.LogAttrQuery, sqlQuery)

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	eventStream, maxSequenceNumber, errorType, scanErr := es.processQueryResults(rows)
	if scanErr != nil {
		op.Failure(errorType, scanErr, logMsgScanRowFailed)

		return nil, 0, scanErr
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

// closeRows safely closes database rows and logs any errors.
func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.obs.LogWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// processQueryResults scans the rows and converts them to storable events.
func (es *EventStore) processQueryResults(rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	string,
	error,
) {

	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.maxSequenceNumber)
		if rowScanErr != nil {
			return nil, 0, storeobs.ErrorTypeRowScan, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			return nil, 0, storeobs.ErrorTypeBuildEvent, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = result.maxSequenceNumber
	}

	if iterErr := rows.Err(); iterErr != nil {
		return nil, 0, storeobs.ErrorTypeRowScan, errors.Join(eventstore.ErrScanningDBRowFailed, iterErr)
	}

	return eventStream, maxSequenceNumber, "", nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) onto the Postgres event store respecting
// concurrency constraints for this "dynamic event stream" based on the provided eventstore.Filter criteria and the
// expected MaxSequenceNumberUint.
//
// The provided eventstore.Filter criteria should be the same as the ones used for the Query before making the business
// decisions. Boundaries of the Filter are ignored here: the concurrency check always covers the complete stream.
//
// All supplied events are appended atomically or not at all.
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

	sqlQuery, buildQueryErr := es.buildAppendQuery(allEvents, filter.WithoutBoundaries(), expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, buildQueryErr, logMsgBuildInsertQueryFailed, storeobs.LogAttrEventCount, len(allEvents))

		return buildQueryErr
	}

	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	es.obs.LogSQL(ctx, logActionAppend, sqlQuery, time.Since(start))

	if execErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, execErr, logMsgDBExecFailed, storeobs.LogAttrQuery, sqlQuery)

		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		op.Failure(storeobs.ErrorTypeRowsAffected, rowsAffectedErr, logMsgRowsAffectedFailed)

		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < rowsAffectedInt64(len(allEvents)) {
		op.Conflict(
			storeobs.LogAttrExpectedEvents, len(allEvents),
			storeobs.LogAttrRowsAffected, rowsAffected,
			storeobs.LogAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return eventstore.ErrConcurrencyConflict
	}

	duration := op.Success(storeobs.MetricEventsAppended, len(allEvents), nil)

	es.obs.LogOperation(
		ctx,
		storeobs.LogMsgEventsAppended,
		storeobs.LogAttrEventCount, len(allEvents),
		storeobs.LogAttrDurationMS, storeobs.ToMilliseconds(duration),
	)

	return nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es *EventStore) buildAppendQuery(
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	if len(allEvents) == 1 {
		return es.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)
	}

	return es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(
			sqlfilter.ColEventType,
			sqlfilter.ColOccurredAt,
			sqlfilter.ColPayload,
			sqlfilter.ColMetadata,
			sqlfilter.ColSequenceNumber,
		).
		Order(goqu.I(sqlfilter.ColSequenceNumber).Asc())

	selectStmt = sqlfilter.ApplyTo(selectStmt, filter, renderer)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) maxSequenceCTE(builder goqu.DialectWrapper, filter eventstore.Filter) *goqu.SelectDataset {
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(sqlfilter.ColSequenceNumber).As(aliasMaxSeq))

	return sqlfilter.ApplyTo(cteStmt, filter, renderer)
}

func (es *EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(sqlfilter.ColEventType, sqlfilter.ColOccurredAt, sqlfilter.ColPayload, sqlfilter.ColMetadata).
		FromQuery(selectStmt).
		With(cteContext, es.maxSequenceCTE(builder, filter))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildInsertQueryForMultipleEvents(
	events []eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// one SELECT per event, combined with UNION ALL, keeps the order of the events in the sequence numbers
	valuesStmt := es.selectEventValues(builder, events[0])
	for _, event := range events[1:] {
		valuesStmt = valuesStmt.UnionAll(es.selectEventValues(builder, event))
	}

	valsEventType := fmt.Sprintf("%s.%s", cteVals, sqlfilter.ColEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, sqlfilter.ColOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, sqlfilter.ColPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, sqlfilter.ColMetadata)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(sqlfilter.ColEventType, sqlfilter.ColOccurredAt, sqlfilter.ColPayload, sqlfilter.ColMetadata).
		With(cteContext, es.maxSequenceCTE(builder, filter)).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsEventType, valsOccurredAt, valsPayload, valsMetadata).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) selectEventValues(builder goqu.DialectWrapper, event eventstore.StorableEvent) *goqu.SelectDataset {
	return builder.Select(
		goqu.L(castText, event.EventType).As(sqlfilter.ColEventType),
		goqu.L(castTimestamp, event.OccurredAt).As(sqlfilter.ColOccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)).As(sqlfilter.ColPayload),
		goqu.L(castJsonb, string(event.MetadataJSON)).As(sqlfilter.ColMetadata),
	)
}

var renderer = sqlfilter.Renderer{Predicate: payloadPredicate}

// payloadPredicate renders a predicate as jsonb containment, which is served by the GIN index on payload.
func payloadPredicate(predicate eventstore.FilterPredicate) goqu.Expression {
	containment, _ := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})

	return goqu.L(payloadContains, containment)
}
