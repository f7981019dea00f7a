package reportlostbook_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reportlostbook"
)

func Test_Decide_Success_BorrowedCopyLost(t *testing.T) {
	// arrange
	bookID, itemID, borrower, loanID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := core.Replay(bookID.String(), core.DomainEvents{
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
		core.BuildBookBorrowed(bookID.String(), itemID.String(), loanID.String(), borrower.String(), 0, now.Add(-time.Hour)),
	})

	// act
	result := reportlostbook.Decide(state, reportlostbook.BuildCommand(bookID, itemID, uuid.New(), now))

	// assert
	require.Len(t, result.Events, 1)
	assert.Equal(
		t,
		core.BuildBookLost(bookID.String(), itemID.String(), loanID.String(), borrower.String(), now),
		result.Events[0],
	)

	after := core.ReplayOnto(state, result.Events)
	item, _ := after.ItemByID(itemID.String())
	assert.Equal(t, core.ItemLost, item.Status)
	assert.Empty(t, after.Loans)
}

func Test_Decide_Success_CopyOnShelfLost(t *testing.T) {
	// arrange
	bookID, itemID, reporter := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := core.Replay(bookID.String(), core.DomainEvents{
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-time.Hour)),
	})

	// act
	result := reportlostbook.Decide(state, reportlostbook.BuildCommand(bookID, itemID, reporter, now))

	// assert
	require.Len(t, result.Events, 1)
	lost, ok := result.Events[0].(core.BookLost)
	require.True(t, ok)
	assert.Empty(t, lost.LoanID)
	assert.Equal(t, reporter.String(), lost.UserID)
}

func Test_Decide_Idempotent_WhenAlreadyLostOrUnknown(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()

	state := core.Replay(bookID.String(), core.DomainEvents{
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
		core.BuildBookLost(bookID.String(), itemID.String(), "", "", now.Add(-time.Hour)),
	})

	// act
	alreadyLost := reportlostbook.Decide(state, reportlostbook.BuildCommand(bookID, itemID, uuid.New(), now))
	unknown := reportlostbook.Decide(state, reportlostbook.BuildCommand(bookID, uuid.New(), uuid.New(), now))

	// assert
	assert.True(t, alreadyLost.IsIdempotent())
	assert.True(t, unknown.IsIdempotent())
}
