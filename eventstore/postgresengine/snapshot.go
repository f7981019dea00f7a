package postgresengine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/storeobs"
)

const (
	colProjectionType       = "projection_type"
	colFilterHash           = "filter_hash"
	colSnapshotSequence     = "sequence_number"
	colSnapshotData         = "data"
	colSnapshotCreatedAt    = "created_at"
	logActionSaveSnapshot   = "save snapshot"
	logActionLoadSnapshot   = "load snapshot"
	logActionDeleteSnapshot = "delete snapshot"
	logMsgSaveSnapshotFail  = "failed to save snapshot"
	logMsgLoadSnapshotFail  = "failed to load snapshot"
)

// SaveSnapshot upserts the snapshot for its projection type and filter hash.
// An existing snapshot with a higher sequence number is never overwritten.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	op, ctx := es.obs.Start(
		ctx,
		storeobs.OperationSaveSnapshot,
		storeobs.MetricSnapshotDuration,
		storeobs.SpanNameSaveSnapshot,
		map[string]string{storeobs.AttrMaxSequence: strconv.FormatUint(uint64(snapshot.SequenceNumber), 10)},
	)

	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(es.snapshotTableName).
		Rows(goqu.Record{
			colProjectionType:    snapshot.ProjectionType,
			colFilterHash:        snapshot.FilterHash,
			colSnapshotSequence:  snapshot.SequenceNumber,
			colSnapshotData:      goqu.L(castJsonb, string(snapshot.Data)),
			colSnapshotCreatedAt: snapshot.CreatedAt,
		}).
		OnConflict(
			goqu.DoUpdate(
				colProjectionType+", "+colFilterHash,
				goqu.Record{
					colSnapshotSequence:  goqu.L("EXCLUDED." + colSnapshotSequence),
					colSnapshotData:      goqu.L("EXCLUDED." + colSnapshotData),
					colSnapshotCreatedAt: goqu.L("EXCLUDED." + colSnapshotCreatedAt),
				},
			).Where(goqu.L(es.snapshotTableName + "." + colSnapshotSequence + " <= EXCLUDED." + colSnapshotSequence)),
		)

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, toSQLErr, logMsgSaveSnapshotFail)

		return errors.Join(eventstore.ErrSavingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	es.obs.LogSQL(ctx, logActionSaveSnapshot, sqlQuery, time.Since(start))

	if execErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, execErr, logMsgSaveSnapshotFail)

		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	op.Success("", 0, nil)

	return nil
}

// LoadSnapshot returns the snapshot for the projection type and the hash of the filter,
// or nil without an error if there is none.
func (es *EventStore) LoadSnapshot(
	ctx context.Context,
	projectionType string,
	filter eventstore.Filter,
) (*eventstore.Snapshot, error) {

	if projectionType == "" {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrEmptyProjectionType)
	}

	op, ctx := es.obs.Start(ctx, storeobs.OperationLoadSnapshot, storeobs.MetricSnapshotDuration, storeobs.SpanNameLoadSnapshot, nil)

	filterHash := filter.Hash()

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.snapshotTableName).
		Select(colSnapshotSequence, colSnapshotData, colSnapshotCreatedAt).
		Where(goqu.Ex{colProjectionType: projectionType, colFilterHash: filterHash}).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, toSQLErr, logMsgLoadSnapshotFail)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.obs.LogSQL(ctx, logActionLoadSnapshot, sqlQuery, time.Since(start))

	if queryErr != nil {
		op.Failure(storeobs.ErrorTypeDatabase, queryErr, logMsgLoadSnapshotFail)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	if !rows.Next() {
		if iterErr := rows.Err(); iterErr != nil {
			op.Failure(storeobs.ErrorTypeRowScan, iterErr, logMsgLoadSnapshotFail)

			return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, iterErr)
		}

		op.Success("", 0, nil)

		return nil, nil //nolint:nilnil
	}

	snapshot := eventstore.Snapshot{ProjectionType: projectionType, FilterHash: filterHash}

	var data []byte
	if scanErr := rows.Scan(&snapshot.SequenceNumber, &data, &snapshot.CreatedAt); scanErr != nil {
		op.Failure(storeobs.ErrorTypeRowScan, scanErr, logMsgLoadSnapshotFail)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrScanningDBRowFailed, scanErr)
	}

	snapshot.Data = data

	op.Success("", 1, nil)

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot for the projection type and the hash of the filter, if it exists.
func (es *EventStore) DeleteSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(es.snapshotTableName).
		Where(goqu.Ex{colProjectionType: projectionType, colFilterHash: filter.Hash()})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	es.obs.LogSQL(ctx, logActionDeleteSnapshot, sqlQuery, time.Since(start))

	if execErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	return nil
}
