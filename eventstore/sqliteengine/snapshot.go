package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/internal/storeobs"
)

const (
	logMsgSaveSnapshotFailed = "failed to save snapshot"
	logMsgLoadSnapshotFailed = "failed to load snapshot"

	upsertSnapshotSQL = `INSERT INTO %[1]s (projection_type, filter_hash, sequence_number, data, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (projection_type, filter_hash) DO UPDATE SET
    sequence_number = excluded.sequence_number,
    data = excluded.data,
    created_at = excluded.created_at
WHERE %[1]s.sequence_number <= excluded.sequence_number`
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

	_, execErr := es.db.ExecContext(
		ctx,
		fmt.Sprintf(upsertSnapshotSQL, es.snapshotTableName),
		snapshot.ProjectionType,
		snapshot.FilterHash,
		int64(snapshot.SequenceNumber),
		string(snapshot.Data),
		snapshot.CreatedAt.UnixNano(),
	)
	if execErr != nil {
		op.Failure(storeobs.ErrorTypeDatabaseExec, execErr, logMsgSaveSnapshotFailed)

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

	sqlQuery, args, toSQLErr := goqu.Dialect(dialectSQLite).
		From(es.snapshotTableName).
		Select("sequence_number", "data", "created_at").
		Where(goqu.Ex{"projection_type": projectionType, "filter_hash": filterHash}).
		Limit(1).
		Prepared(true).
		ToSQL()
	if toSQLErr != nil {
		op.Failure(storeobs.ErrorTypeBuildQuery, toSQLErr, logMsgLoadSnapshotFailed)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	var (
		sequenceNumber int64
		data           string
		createdAtNano  int64
	)

	scanErr := es.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&sequenceNumber, &data, &createdAtNano)
	if errors.Is(scanErr, sql.ErrNoRows) {
		op.Success("", 0, nil)

		return nil, nil //nolint:nilnil
	}

	if scanErr != nil {
		op.Failure(storeobs.ErrorTypeRowScan, scanErr, logMsgLoadSnapshotFailed)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, scanErr)
	}

	op.Success("", 1, nil)

	return &eventstore.Snapshot{
		ProjectionType: projectionType,
		FilterHash:     filterHash,
		SequenceNumber: eventstore.MaxSequenceNumberUint(sequenceNumber),
		Data:           []byte(data),
		CreatedAt:      time.Unix(0, createdAtNano).UTC(),
	}, nil
}

// DeleteSnapshot removes the snapshot for the projection type and the hash of the filter, if it exists.
func (es *EventStore) DeleteSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) error {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectSQLite).
		Delete(es.snapshotTableName).
		Where(goqu.Ex{"projection_type": projectionType, "filter_hash": filter.Hash()}).
		Prepared(true).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := es.db.ExecContext(ctx, sqlQuery, args...); execErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	return nil
}
