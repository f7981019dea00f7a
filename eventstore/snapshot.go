package eventstore

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidSnapshotJSON    = errors.New("snapshot data must be a json object")
	ErrEmptyProjectionType    = errors.New("projection type must not be empty")
	ErrEmptyFilterHash        = errors.New("filter hash must not be empty")
	ErrSnapshotWithoutEvents  = errors.New("snapshot must cover at least one event")
	ErrSavingSnapshotFailed   = errors.New("saving snapshot failed")
	ErrLoadingSnapshotFailed  = errors.New("loading snapshot failed")
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// Snapshot is a materialized state of the events matched by one filter, up to and including SequenceNumber.
//
// Snapshots are keyed by ProjectionType and FilterHash. Loading one only pays off together with
// IncrementalFilter, which selects the events stored after it.
type Snapshot struct {
	ProjectionType string
	FilterHash     string
	SequenceNumber MaxSequenceNumberUint
	Data           json.RawMessage
	CreatedAt      time.Time
}

// Validate is called by the engines before a snapshot is stored.
func (s Snapshot) Validate() error {
	if s.ProjectionType == "" {
		return ErrEmptyProjectionType
	}

	if s.FilterHash == "" {
		return ErrEmptyFilterHash
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) || jsoniter.Get(s.Data).ValueType() != jsoniter.ObjectValue {
		return ErrInvalidSnapshotJSON
	}

	if s.SequenceNumber == 0 {
		return ErrSnapshotWithoutEvents
	}

	return nil
}

// Covers reports whether the snapshot was taken for the given filter.
func (s Snapshot) Covers(filter Filter) bool {
	return s.FilterHash == filter.Hash()
}

// IncrementalFilter narrows filter to the events appended after the snapshot.
func (s Snapshot) IncrementalFilter(filter Filter) Filter {
	return filter.ReopenForSequenceFiltering().WithSequenceNumberHigherThan(s.SequenceNumber).Finalize()
}

func BuildSnapshot(
	projectionType string,
	filterHash string,
	sequenceNumber MaxSequenceNumberUint,
	data json.RawMessage,
) (Snapshot, error) {

	snapshot := Snapshot{
		ProjectionType: projectionType,
		FilterHash:     filterHash,
		SequenceNumber: sequenceNumber,
		Data:           data,
		CreatedAt:      time.Now(),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
