package allowloansextension_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/allowloansextension"
)

func Test_Decide_Success_RestoresForbiddenLoans(t *testing.T) {
	// arrange
	bookID, itemID, userID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := core.Replay(bookID.String(), core.DomainEvents{
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-3*time.Hour)),
		core.BuildBookBorrowed(bookID.String(), itemID.String(), uuid.NewString(), userID.String(), 0, now.Add(-2*time.Hour)),
		core.BuildLoansExtensionForbidden(bookID.String(), []core.UserIDString{userID.String()}, now.Add(-time.Hour)),
	})

	// act
	result := allowloansextension.Decide(state, allowloansextension.BuildCommand(bookID, []uuid.UUID{userID}, now))

	// assert
	require.Len(t, result.Events, 1)
	assert.Equal(
		t,
		core.BuildLoansExtensionAllowed(bookID.String(), []core.UserIDString{userID.String()}, now),
		result.Events[0],
	)

	loan, _ := core.ReplayOnto(state, result.Events).LoanOfUser(userID.String())
	assert.True(t, loan.ExtensionAllowed)
}

func Test_Decide_Idempotent_WhenAlreadyAllowed(t *testing.T) {
	// arrange
	bookID, itemID, userID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := core.Replay(bookID.String(), core.DomainEvents{
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
		core.BuildBookBorrowed(bookID.String(), itemID.String(), uuid.NewString(), userID.String(), 0, now.Add(-time.Hour)),
	})

	// act
	result := allowloansextension.Decide(state, allowloansextension.BuildCommand(bookID, []uuid.UUID{userID}, now))

	// assert
	assert.True(t, result.IsIdempotent())
}
