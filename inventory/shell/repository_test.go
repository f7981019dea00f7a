package shell_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

func givenSQLiteStore(t *testing.T) *sqliteengine.EventStore {
	t.Helper()

	es, err := sqliteengine.Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = es.Close() })

	return es
}

func givenRepository(t *testing.T, es shell.EventStore, options ...shell.RepositoryOption) *shell.EventSourcedRepository {
	t.Helper()

	repository, err := shell.NewEventSourcedRepository(es, options...)
	require.NoError(t, err)

	return repository
}

func givenHistoryWasAppended(t *testing.T, repository shell.Repository, bookID string, history ...core.DomainEvent) {
	t.Helper()

	ctx := context.Background()
	for _, event := range history {
		_, version, err := repository.Load(ctx, bookID)
		require.NoError(t, err)
		require.NoError(t, repository.Append(ctx, bookID, version, core.DomainEvents{event}, shell.BuildCommandMetadata()))
	}
}

func lendingHistory(bookID string, start time.Time) core.DomainEvents {
	return core.DomainEvents{
		core.BuildInventoryCreated(bookID, start),
		core.BuildInventoryAppended(bookID, "item-1", "librarian", start.Add(time.Minute)),
		core.BuildInventoryAppended(bookID, "item-2", "librarian", start.Add(2*time.Minute)),
		core.BuildReservationAdded(bookID, "alice", time.Time{}, start.Add(3*time.Minute)),
		core.BuildBookBorrowed(bookID, "item-2", "loan-1", "bob", 0, start.Add(4*time.Minute)),
		core.BuildBookReadyToPickUp(bookID, "alice", start.Add(5*time.Minute)),
	}
}

func Test_Repository_LoadReplaysOnlyTheBooksOwnHistory(t *testing.T) {
	// arrange
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repository := givenRepository(t, givenSQLiteStore(t))

	givenHistoryWasAppended(t, repository, "book-other", lendingHistory("book-other", start)...)
	givenHistoryWasAppended(t, repository, "book-1", lendingHistory("book-1", start)...)

	// act
	state, version, err := repository.Load(ctx, "book-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.Replay("book-1", lendingHistory("book-1", start)), state)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(12), version)
}

func Test_Repository_UnknownBookLoadsEmptyState(t *testing.T) {
	// act
	state, version, err := givenRepository(t, givenSQLiteStore(t)).Load(context.Background(), "book-unknown")

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.EmptyState("book-unknown"), state)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(0), version)
}

func Test_Repository_AppendWithStaleVersion_ConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := givenRepository(t, givenSQLiteStore(t))
	givenHistoryWasAppended(t, repository, "book-1", core.BuildInventoryCreated("book-1", time.Now()))

	_, staleVersion, err := repository.Load(ctx, "book-1")
	require.NoError(t, err)

	givenHistoryWasAppended(t, repository, "book-1", core.BuildInventoryAppended("book-1", "item-1", "librarian", time.Now()))

	// act
	err = repository.Append(
		ctx,
		"book-1",
		staleVersion,
		core.DomainEvents{core.BuildInventoryAppended("book-1", "item-2", "librarian", time.Now())},
		shell.BuildCommandMetadata(),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, shell.ErrAppendingInventoryFailed)
}

func Test_Repository_OtherBooksDoNotConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := givenRepository(t, givenSQLiteStore(t))

	_, version, err := repository.Load(ctx, "book-1")
	require.NoError(t, err)

	givenHistoryWasAppended(t, repository, "book-2", core.BuildInventoryCreated("book-2", time.Now()))

	// act
	err = repository.Append(
		ctx,
		"book-1",
		version,
		core.DomainEvents{core.BuildInventoryCreated("book-1", time.Now())},
		shell.BuildCommandMetadata(),
	)

	// assert
	assert.NoError(t, err)
}

func Test_Repository_WithSnapshots_MatchesFullReplay(t *testing.T) {
	// arrange
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	es := givenSQLiteStore(t)
	plain := givenRepository(t, es)
	snapshotting := givenRepository(t, es, shell.WithSnapshots(es), shell.WithSnapshotEvery(3))

	history := lendingHistory("book-1", start)
	givenHistoryWasAppended(t, plain, "book-1", history[:4]...)

	_, _, err := snapshotting.Load(ctx, "book-1") // saves a snapshot at version 4
	require.NoError(t, err)

	givenHistoryWasAppended(t, plain, "book-1", history[4:]...)

	// act
	fromSnapshot, snapshotVersion, err := snapshotting.Load(ctx, "book-1")
	require.NoError(t, err)
	fullReplay, fullVersion, err := plain.Load(ctx, "book-1")
	require.NoError(t, err)

	// assert
	assert.Equal(t, fullReplay, fromSnapshot)
	assert.Equal(t, fullVersion, snapshotVersion)

	snapshot, err := es.LoadSnapshot(ctx, shell.SnapshotProjectionType, shell.BuildBookFilter("book-1"))
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(4), snapshot.SequenceNumber)
}

func Test_Repository_BrokenSnapshotStore_FallsBackToFullReplay(t *testing.T) {
	// arrange
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	es := givenSQLiteStore(t)
	repository := givenRepository(t, es, shell.WithSnapshots(failingSnapshotStore{}), shell.WithSnapshotEvery(1))

	givenHistoryWasAppended(t, givenRepository(t, es), "book-1", lendingHistory("book-1", start)...)

	// act
	state, version, err := repository.Load(ctx, "book-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.Replay("book-1", lendingHistory("book-1", start)), state)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(6), version)
}

func Test_NewEventSourcedRepository_InvalidOptions(t *testing.T) {
	es := givenSQLiteStore(t)

	_, err := shell.NewEventSourcedRepository(nil)
	assert.ErrorIs(t, err, shell.ErrNilEventStore)

	_, err = shell.NewEventSourcedRepository(es, shell.WithSnapshots(nil))
	assert.ErrorIs(t, err, shell.ErrNilSnapshotStore)

	_, err = shell.NewEventSourcedRepository(es, shell.WithSnapshotEvery(0))
	assert.ErrorIs(t, err, shell.ErrInvalidSnapshotInterval)
}

type failingSnapshotStore struct{}

func (failingSnapshotStore) SaveSnapshot(context.Context, eventstore.Snapshot) error {
	return errors.New("snapshot store unavailable")
}

func (failingSnapshotStore) LoadSnapshot(context.Context, string, eventstore.Filter) (*eventstore.Snapshot, error) {
	return nil, errors.New("snapshot store unavailable")
}
