package acceptance_test

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-inventory-go/inventory/app"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/allowloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/borrowbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/extendloanperiod"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/forbidloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanoverdue"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanshouldreturnsoon"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markreservationexpired"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reportlostbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reservebook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/returnbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/satisfyreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/writebookoff"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/reaction/catalogreaction"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

// inventoryWorld is the state of one scenario. Names used in the feature files are mapped to fresh uuids.
type inventoryWorld struct {
	store      *sqliteengine.EventStore
	repository *shell.EventSourcedRepository
	dispatcher *shell.Dispatcher

	now       time.Time
	ids       map[string]uuid.UUID
	names     map[string]string
	loans     map[string]uuid.UUID
	librarian uuid.UUID

	result shell.HandlerResult
	err    error
}

func (w *inventoryWorld) reset(dbPath string) error {
	if w.store != nil {
		_ = w.store.Close()
	}

	store, err := sqliteengine.Open(dbPath)
	if err != nil {
		return err
	}

	repository, err := shell.NewEventSourcedRepository(store)
	if err != nil {
		return err
	}

	dispatcher, err := app.NewDispatcher(repository, app.Config{})
	if err != nil {
		return err
	}

	w.store = store
	w.repository = repository
	w.dispatcher = dispatcher
	w.now = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	w.ids = make(map[string]uuid.UUID)
	w.names = make(map[string]string)
	w.loans = make(map[string]uuid.UUID)
	w.librarian = uuid.New()
	w.result = shell.HandlerResult{}
	w.err = nil

	return nil
}

func (w *inventoryWorld) close() {
	if w.store != nil {
		_ = w.store.Close()
		w.store = nil
	}
}

func (w *inventoryWorld) id(name string) uuid.UUID {
	if id, ok := w.ids[name]; ok {
		return id
	}

	id := uuid.New()
	w.ids[name] = id
	w.names[id.String()] = name

	return id
}

func (w *inventoryWorld) loanID(user, book string) uuid.UUID {
	if loanID, ok := w.loans[book+"/"+user]; ok {
		return loanID
	}

	return uuid.New()
}

func (w *inventoryWorld) dispatch(command shell.Command) error {
	w.result, w.err = w.dispatcher.Dispatch(context.Background(), command)
	if w.err != nil {
		return fmt.Errorf("dispatching %s: %w", command.CommandType(), w.err)
	}

	return nil
}

func (w *inventoryWorld) state(book string) (core.InventoryState, error) {
	state, _, err := w.repository.Load(context.Background(), w.id(book).String())

	return state, err
}

// Given/When

func (w *inventoryWorld) itIs(timestamp string) error {
	now, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return err
	}

	w.now = now

	return nil
}

func (w *inventoryWorld) daysPass(days int) error {
	w.now = w.now.Add(time.Duration(days) * 24 * time.Hour)

	return nil
}

func (w *inventoryWorld) catalogAddedBook(book string) error {
	command, _ := catalogreaction.ReactTo(core.BuildBookAdded(w.id(book).String(), book, w.now))

	return w.dispatch(command)
}

func (w *inventoryWorld) catalogRemovedBook(book string) error {
	command, _ := catalogreaction.ReactTo(core.BuildBookRemoved(w.id(book).String(), w.now))

	return w.dispatch(command)
}

func (w *inventoryWorld) librarianAppendsItem(item, book string) error {
	return w.dispatch(appendinventory.BuildCommand(w.id(book), w.id(item), w.librarian, w.now))
}

func (w *inventoryWorld) librarianWritesOffItem(item, book string) error {
	return w.dispatch(writebookoff.BuildCommand(w.id(book), w.id(item), w.librarian, core.WriteOffDamaged, w.now))
}

func (w *inventoryWorld) userBorrowsItem(user, item, book string) error {
	loanID := uuid.New()

	if err := w.dispatch(borrowbook.BuildCommand(w.id(book), w.id(item), w.id(user), loanID, w.now)); err != nil {
		return err
	}

	if w.result.Outcome == shell.StatusSuccess {
		w.loans[book+"/"+user] = loanID
	}

	return nil
}

func (w *inventoryWorld) userReturnsItem(user, item, book string) error {
	return w.dispatch(returnbook.BuildCommand(w.id(book), w.id(item), w.id(user), w.now))
}

func (w *inventoryWorld) userReportsItemLost(user, item, book string) error {
	return w.dispatch(reportlostbook.BuildCommand(w.id(book), w.id(item), w.id(user), w.now))
}

func (w *inventoryWorld) userReservesBook(user, book string) error {
	return w.dispatch(reservebook.BuildCommand(w.id(book), w.id(user), w.now))
}

func (w *inventoryWorld) userCancelsReservation(user, book string) error {
	return w.dispatch(cancelreservation.BuildCommand(w.id(book), w.id(user), w.now))
}

func (w *inventoryWorld) userExtendsLoan(user, book string) error {
	return w.dispatch(extendloanperiod.BuildCommand(w.id(book), w.loanID(user, book), w.id(user), w.now))
}

func (w *inventoryWorld) extensionsForbidden(user, book string) error {
	return w.dispatch(forbidloansextension.BuildCommand(w.id(book), []uuid.UUID{w.id(user)}, w.now))
}

func (w *inventoryWorld) extensionsAllowed(user, book string) error {
	return w.dispatch(allowloansextension.BuildCommand(w.id(book), []uuid.UUID{w.id(user)}, w.now))
}

func (w *inventoryWorld) loanShouldReturnSoon(user, book string) error {
	return w.dispatch(markloanshouldreturnsoon.BuildCommand(w.id(book), w.loanID(user, book), w.now))
}

func (w *inventoryWorld) loanBecomesOverdue(user, book string) error {
	return w.dispatch(markloanoverdue.BuildCommand(w.id(book), w.loanID(user, book), w.now))
}

func (w *inventoryWorld) reservationIsSatisfied(user, book string) error {
	return w.dispatch(satisfyreservation.BuildCommand(w.id(book), w.id(user), w.now))
}

func (w *inventoryWorld) reservationExpires(user, book string) error {
	return w.dispatch(markreservationexpired.BuildCommand(w.id(book), w.id(user), w.now))
}

// Then

func (w *inventoryWorld) commandSucceeds() error {
	if w.result.Outcome != shell.StatusSuccess {
		return fmt.Errorf("expected outcome %q, got %q", shell.StatusSuccess, w.result.Outcome)
	}

	return nil
}

func (w *inventoryWorld) commandIsIdempotent() error {
	if !w.result.Idempotent || len(w.result.Events) != 0 {
		return fmt.Errorf("expected an idempotent outcome, got %q with %d events", w.result.Outcome, len(w.result.Events))
	}

	return nil
}

func (w *inventoryWorld) commandIsRejectedWith(reason string) error {
	if !w.result.IsRejected() {
		return fmt.Errorf("expected a rejection with %s, got outcome %q", reason, w.result.Outcome)
	}

	if got := string(w.result.Rejection.Reason); got != reason {
		return fmt.Errorf("expected rejection reason %s, got %s", reason, got)
	}

	if len(w.result.Events) != 1 || !w.result.Events[0].IsErrorEvent() {
		return fmt.Errorf("expected exactly one failure event to be recorded, got %d events", len(w.result.Events))
	}

	return nil
}

func (w *inventoryWorld) eventsAreRecorded(eventTypes string) error {
	want := strings.Split(eventTypes, ", ")

	got := make([]string, 0, len(w.result.Events))
	for _, event := range w.result.Events {
		got = append(got, event.EventType())
	}

	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("expected events %v, got %v", want, got)
	}

	return nil
}

func (w *inventoryWorld) bookBecomesAvailableWith(book string, count int) error {
	for _, event := range w.result.Events {
		if available, ok := event.(core.BookBecameAvailable); ok {
			if available.BookID != w.id(book).String() || available.AvailableBooksCount != count {
				return fmt.Errorf("expected %d available copies of %s, got %d", count, book, available.AvailableBooksCount)
			}

			return nil
		}
	}

	return fmt.Errorf("no %s event recorded", core.BookBecameAvailableEventType)
}

func (w *inventoryWorld) userIsAskedToPickUp(user, book string) error {
	for _, event := range w.result.Events {
		ready, ok := event.(core.BookReadyToPickUp)
		if !ok {
			continue
		}

		if ready.BookID != w.id(book).String() || ready.UserID != w.id(user).String() {
			return fmt.Errorf("expected %s to pick up %s, got %s", user, book, w.names[ready.UserID])
		}

		if deadline := w.now.Add(48 * time.Hour); !ready.PickUpDeadline.Equal(deadline) {
			return fmt.Errorf("expected pick-up deadline %s, got %s", deadline, ready.PickUpDeadline)
		}

		return nil
	}

	return fmt.Errorf("no %s event recorded", core.BookReadyToPickUpEventType)
}

func (w *inventoryWorld) reservationQueueIs(book, holders string) error {
	state, err := w.state(book)
	if err != nil {
		return err
	}

	queue := make([]string, 0, len(state.Reservations))
	for _, reservation := range state.Reservations {
		queue = append(queue, w.names[reservation.Holder])
	}

	if got := strings.Join(queue, ", "); got != holders {
		return fmt.Errorf("expected reservation queue %q, got %q", holders, got)
	}

	return nil
}

func (w *inventoryWorld) loanIsDue(user, book, due string) error {
	want, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return err
	}

	state, err := w.state(book)
	if err != nil {
		return err
	}

	loan, ok := state.LoanOfUser(w.id(user).String())
	if !ok {
		return fmt.Errorf("%s has no loan on %s", user, book)
	}

	if !loan.DueAt.Equal(want) {
		return fmt.Errorf("expected due date %s, got %s", want, loan.DueAt)
	}

	return nil
}

func (w *inventoryWorld) bookHasItemsInLibrary(book string, count int) error {
	state, err := w.state(book)
	if err != nil {
		return err
	}

	if got := state.InLibraryCount(); got != count {
		return fmt.Errorf("expected %d copies in the library, got %d", count, got)
	}

	return nil
}

func (w *inventoryWorld) bookIsEmpty(book string) error {
	state, err := w.state(book)
	if err != nil {
		return err
	}

	if state.Created || len(state.Items) > 0 || len(state.Loans) > 0 || len(state.Reservations) > 0 {
		return fmt.Errorf(
			"expected an empty inventory, got %d items, %d loans and %d reservations",
			len(state.Items), len(state.Loans), len(state.Reservations),
		)
	}

	return nil
}

func (w *inventoryWorld) replayingTwiceYieldsSameState(book string) error {
	bookID := w.id(book).String()

	storableEvents, _, err := w.store.Query(context.Background(), shell.BuildBookFilter(bookID))
	if err != nil {
		return err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return err
	}

	first := core.Replay(bookID, history)
	second := core.Replay(bookID, history)
	if !reflect.DeepEqual(first, second) {
		return fmt.Errorf("replays differ:\n%+v\n%+v", first, second)
	}

	loaded, err := w.state(book)
	if err != nil {
		return err
	}

	if !reflect.DeepEqual(first, loaded) {
		return fmt.Errorf("replay differs from the loaded state:\n%+v\n%+v", first, loaded)
	}

	return nil
}

func initializeScenario(t *testing.T) func(ctx *godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		w := &inventoryWorld{}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			return ctx, w.reset(filepath.Join(t.TempDir(), "inventory.db"))
		})

		ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
			w.close()

			return ctx, nil
		})

		ctx.Step(`^it is "([^"]*)"$`, w.itIs)
		ctx.Step(`^(\d+) days? pass(?:es)?$`, w.daysPass)
		ctx.Step(`^the catalog added book "([^"]*)"$`, w.catalogAddedBook)
		ctx.Step(`^the catalog removed book "([^"]*)"$`, w.catalogRemovedBook)
		ctx.Step(`^the librarian appends item "([^"]*)" to book "([^"]*)"$`, w.librarianAppendsItem)
		ctx.Step(`^the librarian writes off item "([^"]*)" of book "([^"]*)"$`, w.librarianWritesOffItem)
		ctx.Step(`^"([^"]*)" borrows item "([^"]*)" of book "([^"]*)"$`, w.userBorrowsItem)
		ctx.Step(`^"([^"]*)" returns item "([^"]*)" of book "([^"]*)"$`, w.userReturnsItem)
		ctx.Step(`^"([^"]*)" reports item "([^"]*)" of book "([^"]*)" as lost$`, w.userReportsItemLost)
		ctx.Step(`^"([^"]*)" reserves book "([^"]*)"$`, w.userReservesBook)
		ctx.Step(`^"([^"]*)" cancels the reservation for book "([^"]*)"$`, w.userCancelsReservation)
		ctx.Step(`^"([^"]*)" extends the loan for book "([^"]*)"$`, w.userExtendsLoan)
		ctx.Step(`^extensions are forbidden for "([^"]*)" on book "([^"]*)"$`, w.extensionsForbidden)
		ctx.Step(`^extensions are allowed for "([^"]*)" on book "([^"]*)"$`, w.extensionsAllowed)
		ctx.Step(`^the loan of "([^"]*)" for book "([^"]*)" should be returned soon$`, w.loanShouldReturnSoon)
		ctx.Step(`^the loan of "([^"]*)" for book "([^"]*)" becomes overdue$`, w.loanBecomesOverdue)
		ctx.Step(`^the reservation of "([^"]*)" for book "([^"]*)" is satisfied$`, w.reservationIsSatisfied)
		ctx.Step(`^the reservation of "([^"]*)" for book "([^"]*)" expires$`, w.reservationExpires)

		ctx.Step(`^the command succeeds$`, w.commandSucceeds)
		ctx.Step(`^the command is idempotent$`, w.commandIsIdempotent)
		ctx.Step(`^the command is rejected with "([^"]*)"$`, w.commandIsRejectedWith)
		ctx.Step(`^the events "([^"]*)" are recorded$`, w.eventsAreRecorded)
		ctx.Step(`^book "([^"]*)" becomes available with (\d+) cop(?:y|ies)$`, w.bookBecomesAvailableWith)
		ctx.Step(`^"([^"]*)" is asked to pick up book "([^"]*)" within 48 hours$`, w.userIsAskedToPickUp)
		ctx.Step(`^the reservation queue of book "([^"]*)" is "([^"]*)"$`, w.reservationQueueIs)
		ctx.Step(`^the loan of "([^"]*)" for book "([^"]*)" is due "([^"]*)"$`, w.loanIsDue)
		ctx.Step(`^book "([^"]*)" has (\d+) items? in the library$`, w.bookHasItemsInLibrary)
		ctx.Step(`^book "([^"]*)" has no items, loans or reservations$`, w.bookIsEmpty)
		ctx.Step(`^replaying book "([^"]*)" twice yields the same state$`, w.replayingTwiceYieldsSameState)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
