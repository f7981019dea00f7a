package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

//nolint:funlen
func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() eventstore.Filter
		validate func(t *testing.T, filter eventstore.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Empty(t, f.Items())
				assert.True(t, f.HasMatchAllItem())
				assert.True(t, f.OccurredFrom().IsZero())
				assert.True(t, f.OccurredUntil().IsZero())
				assert.Equal(t, uint(0), f.SequenceNumberHigherThan())
			},
		},
		{
			name: "single_predicate_per_book",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("BookID", "book-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Empty(t, f.Items()[0].EventTypes())
				assert.Equal(t, []eventstore.FilterPredicate{eventstore.P("BookID", "book-1")}, f.Items()[0].Predicates())
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
				assert.False(t, f.HasMatchAllItem())
			},
		},
		{
			name: "event_types_and_all_predicates",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("BookBorrowed", "BookReturned").
					AndAllPredicatesOf(eventstore.P("BookID", "book-1"), eventstore.P("UserID", "user-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"BookBorrowed", "BookReturned"}, f.Items()[0].EventTypes())
				assert.Len(t, f.Items()[0].Predicates(), 2)
				assert.True(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "predicates_and_event_types_or_matching",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("BookID", "book-1")).
					AndAnyEventTypeOf("BookLost").
					OrMatching().
					AnyEventTypeOf("InventoryRemoved").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 2)
				assert.Equal(t, []string{"BookLost"}, f.Items()[0].EventTypes())
				assert.Equal(t, []string{"InventoryRemoved"}, f.Items()[1].EventTypes())
				assert.Empty(t, f.Items()[1].Predicates())
			},
		},
		{
			name: "sequence_boundary",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("BookID", "book-1")).
					WithSequenceNumberHigherThan(42).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Equal(t, uint(42), f.SequenceNumberHigherThan())
				assert.True(t, f.OccurredFrom().IsZero())
				assert.True(t, f.OccurredUntil().IsZero())
			},
		},
		{
			name: "time_range_boundaries",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("BookBorrowed").
					OccurredFrom(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).
					AndOccurredUntil(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), f.OccurredFrom())
				assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), f.OccurredUntil())
				assert.Equal(t, uint(0), f.SequenceNumberHigherThan())
			},
		},
		{
			name: "occurred_until_only",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					OccurredUntil(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.True(t, f.OccurredFrom().IsZero())
				assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), f.OccurredUntil())
				assert.True(t, f.HasMatchAllItem())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_InputSanitization(t *testing.T) {
	// act
	f := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("BookReturned", "", "BookBorrowed", "BookReturned").
		AndAnyPredicateOf(
			eventstore.P("UserID", "user-1"),
			eventstore.P("", "empty-key"),
			eventstore.P("BookID", ""),
			eventstore.P("BookID", "book-1"),
			eventstore.P("UserID", "user-1")).
		Finalize()

	// assert
	assert.Equal(t, []string{"BookBorrowed", "BookReturned"}, f.Items()[0].EventTypes())
	assert.Equal(
		t,
		[]eventstore.FilterPredicate{eventstore.P("BookID", "book-1"), eventstore.P("UserID", "user-1")},
		f.Items()[0].Predicates(),
	)
}

func Test_Filter_ReopenForSequenceFiltering(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("BookID", "book-1")).
		Finalize()

	// act
	bounded := base.ReopenForSequenceFiltering().WithSequenceNumberHigherThan(7).Finalize()
	unchanged := base.ReopenForSequenceFiltering().Finalize()

	// assert
	assert.Equal(t, base.Items(), bounded.Items())
	assert.Equal(t, uint(7), bounded.SequenceNumberHigherThan())
	assert.Equal(t, uint(0), base.SequenceNumberHigherThan())
	assert.Equal(t, base.Hash(), unchanged.Hash())
	assert.Equal(t, base.Hash(), bounded.WithoutBoundaries().Hash())
}

func Test_Filter_Hash_Deterministic(t *testing.T) {
	// arrange
	build := func() eventstore.Filter {
		return eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf("EventA", "EventB").
			AndAllPredicatesOf(eventstore.P("Key1", "Value1"), eventstore.P("Key2", "Value2")).
			OrMatching().
			AnyPredicateOf(eventstore.P("Key3", "Value3")).
			Finalize()
	}

	// act
	hash1 := build().Hash()
	hash2 := build().Hash()

	// assert
	assert.Equal(t, hash1, hash2)
	assert.Contains(t, hash1, "sha256:")
	assert.Len(t, hash1, len("sha256:")+64)
}

func Test_Filter_Hash_DifferentFilters_DifferentHashes(t *testing.T) {
	filters := []eventstore.Filter{
		eventstore.BuildEventFilter().MatchingAnyEvent(),
		eventstore.BuildEventFilter().Matching().AnyEventTypeOf("EventA").Finalize(),
		eventstore.BuildEventFilter().Matching().AnyEventTypeOf("EventB").Finalize(),
		eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("K", "V1")).Finalize(),
		eventstore.BuildEventFilter().Matching().AllPredicatesOf(eventstore.P("K", "V1")).Finalize(),
		eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("K", "V1")).WithSequenceNumberHigherThan(1).Finalize(),
		eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("K", "V1")).
			OccurredFrom(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).Finalize(),
	}

	seen := make(map[string]int)
	for i, f := range filters {
		h := f.Hash()
		if prev, ok := seen[h]; ok {
			t.Fatalf("filters %d and %d produce the same hash", prev, i)
		}
		seen[h] = i
	}
}
