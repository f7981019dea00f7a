package main

import (
	"context"
	"log/slog"
	"maps"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/borrowbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/extendloanperiod"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reservebook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/returnbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/reaction/catalogreaction"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

const outcomeError = "error"

// batchDispatcher is the part of shell.Dispatcher the simulation uses.
type batchDispatcher interface {
	DispatchBatch(ctx context.Context, commands []shell.Command) ([]shell.BatchResult, error)
}

type loanModel struct {
	loanID uuid.UUID
	itemID uuid.UUID
}

// bookModel is what the simulation believes about one book. It only picks plausible commands,
// the inventory decides.
type bookModel struct {
	id           uuid.UUID
	items        []uuid.UUID
	loans        map[uuid.UUID]loanModel
	reservations map[uuid.UUID]struct{}
}

// Totals counts outcomes per status and rejections per reason.
type Totals struct {
	Commands   int
	Outcomes   map[string]int
	Rejections map[core.RejectionReason]int
}

func newTotals() Totals {
	return Totals{
		Outcomes:   make(map[string]int),
		Rejections: make(map[core.RejectionReason]int),
	}
}

type simulation struct {
	dispatcher batchDispatcher
	cfg        Config
	logger     *slog.Logger
	rng        *rand.Rand
	now        time.Time
	librarian  uuid.UUID
	books      []*bookModel
	byID       map[uuid.UUID]*bookModel
	users      []uuid.UUID
	totals     Totals
}

func newSimulation(dispatcher batchDispatcher, cfg Config, logger *slog.Logger) *simulation {
	s := &simulation{
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		rng:        rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec
		now:        cfg.Start,
		librarian:  uuid.New(),
		byID:       make(map[uuid.UUID]*bookModel),
		totals:     newTotals(),
	}

	for range cfg.Users {
		s.users = append(s.users, uuid.New())
	}

	return s
}

// Run seeds the books and then runs the configured number of rounds. It stops early if ctx is done.
func (s *simulation) Run(ctx context.Context) (Totals, error) {
	if err := s.seed(ctx); err != nil {
		return s.totals, err
	}

	for round := 1; round <= s.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return s.totals, err
		}

		start := time.Now()
		if err := s.runBatch(ctx, s.nextBatch()); err != nil {
			return s.totals, err
		}

		s.logger.InfoContext(ctx, "round completed",
			"round", round,
			"simulated_day", s.now.Format(time.DateOnly),
			"duration_ms", shell.ToMilliseconds(time.Since(start)),
		)

		s.now = s.now.Add(24 * time.Hour)
	}

	return s.totals, nil
}

func (s *simulation) seed(ctx context.Context) error {
	commands := make([]shell.Command, 0, s.cfg.Books*(s.cfg.Copies+1))

	for range s.cfg.Books {
		book := &bookModel{
			id:           uuid.New(),
			loans:        make(map[uuid.UUID]loanModel),
			reservations: make(map[uuid.UUID]struct{}),
		}
		s.books = append(s.books, book)
		s.byID[book.id] = book

		commands = append(commands, catalogreaction.ReactToBookAdded(core.BuildBookAdded(book.id.String(), "", s.now)))

		for range s.cfg.Copies {
			itemID := uuid.New()
			book.items = append(book.items, itemID)
			commands = append(commands, appendinventory.BuildCommand(book.id, itemID, s.librarian, s.now))
		}
	}

	s.logger.InfoContext(ctx, "seeding inventory", "books", s.cfg.Books, "copies_per_book", s.cfg.Copies)

	return s.runBatch(ctx, commands)
}

func (s *simulation) runBatch(ctx context.Context, commands []shell.Command) error {
	results, err := s.dispatcher.DispatchBatch(ctx, commands)

	for _, result := range results {
		s.record(result)
	}

	return err
}

// record counts the outcome and moves the model along for commands that went through.
func (s *simulation) record(result shell.BatchResult) {
	s.totals.Commands++

	if result.Err != nil {
		s.totals.Outcomes[outcomeError]++
		s.logger.Warn("command failed", "command_type", result.Command.CommandType(), "error", result.Err.Error())

		return
	}

	s.totals.Outcomes[result.Result.Outcome]++

	if result.Result.IsRejected() {
		s.totals.Rejections[result.Result.Rejection.Reason]++

		return
	}

	if result.Result.Outcome != shell.StatusSuccess {
		return
	}

	switch command := result.Command.(type) {
	case borrowbook.Command:
		book := s.book(command.BookID)
		book.loans[command.UserID] = loanModel{loanID: command.LoanID, itemID: command.ItemID}
		delete(book.reservations, command.UserID)
	case returnbook.Command:
		delete(s.book(command.BookID).loans, command.UserID)
	case reservebook.Command:
		s.book(command.BookID).reservations[command.UserID] = struct{}{}
	case cancelreservation.Command:
		delete(s.book(command.BookID).reservations, command.UserID)
	}
}

func (s *simulation) book(id uuid.UUID) *bookModel {
	if book, ok := s.byID[id]; ok {
		return book
	}

	return &bookModel{loans: make(map[uuid.UUID]loanModel), reservations: make(map[uuid.UUID]struct{})}
}

// nextBatch picks BatchSize commands. Borrowing and returning dominate, like at a real counter.
func (s *simulation) nextBatch() []shell.Command {
	commands := make([]shell.Command, 0, s.cfg.BatchSize)

	for range s.cfg.BatchSize {
		book := s.books[s.rng.Intn(len(s.books))]
		commands = append(commands, s.nextCommand(book))
	}

	return commands
}

func (s *simulation) nextCommand(book *bookModel) shell.Command {
	roll := s.rng.Intn(100)

	switch {
	case roll < 35:
		return s.borrow(book)
	case roll < 65:
		if borrower, ok := pick(s.rng, book.loans); ok {
			loan := book.loans[borrower]

			return returnbook.BuildCommand(book.id, loan.itemID, borrower, s.now)
		}

		return s.borrow(book)
	case roll < 85:
		return reservebook.BuildCommand(book.id, s.randomUser(), s.now)
	case roll < 92:
		if holder, ok := pick(s.rng, book.reservations); ok {
			return cancelreservation.BuildCommand(book.id, holder, s.now)
		}

		return reservebook.BuildCommand(book.id, s.randomUser(), s.now)
	default:
		if borrower, ok := pick(s.rng, book.loans); ok {
			return extendloanperiod.BuildCommand(book.id, book.loans[borrower].loanID, borrower, s.now)
		}

		return s.borrow(book)
	}
}

// borrow picks a reservation holder half of the time, so that reservations turn into loans.
func (s *simulation) borrow(book *bookModel) shell.Command {
	userID := s.randomUser()
	if holder, ok := pick(s.rng, book.reservations); ok && s.rng.Intn(2) == 0 {
		userID = holder
	}

	itemID := book.items[s.rng.Intn(len(book.items))]

	return borrowbook.BuildCommand(book.id, itemID, userID, uuid.New(), s.now)
}

func (s *simulation) randomUser() uuid.UUID {
	return s.users[s.rng.Intn(len(s.users))]
}

// pick returns a random key of m. Keys are sorted first so that a seed always yields the same run.
func pick[V any](rng *rand.Rand, m map[uuid.UUID]V) (uuid.UUID, bool) {
	if len(m) == 0 {
		return uuid.UUID{}, false
	}

	keys := slices.SortedFunc(maps.Keys(m), func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	return keys[rng.Intn(len(keys))], true
}
