package eventstore

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
	"time"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter selects the events of a "dynamic event stream". For this module, that is typically all events that carry
// one BookID. The same Filter is used to Query a stream and to guard the Append to it.
type Filter struct {
	items                    []FilterItem
	occurredFrom             time.Time
	occurredUntil            time.Time
	sequenceNumberHigherThan MaxSequenceNumberUint
}

func (f Filter) Items() []FilterItem {
	return f.items
}

func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// HasMatchAllItem reports whether the Filter matches any event regardless of its items,
// which is the case for an empty Filter or when one FilterItem has neither EventTypes nor Predicates.
func (f Filter) HasMatchAllItem() bool {
	if len(f.items) == 0 {
		return true
	}

	for _, item := range f.items {
		if len(item.eventTypes) == 0 && len(item.predicates) == 0 {
			return true
		}
	}

	return false
}

// ReopenForSequenceFiltering returns a builder with the items of this Filter and without any boundaries,
// so that a sequence number boundary can be set, e.g. to query only events newer than a snapshot.
func (f Filter) ReopenForSequenceFiltering() ReopenedFilterBuilder {
	return filterBuilder{
		filter: Filter{items: slices.Clone(f.items)},
		reopen: true,
	}
}

// WithoutBoundaries returns a copy of the Filter with the same items but with no time or sequence boundaries.
// Appends must always be guarded with the unbounded Filter, otherwise the concurrency check would ignore history.
func (f Filter) WithoutBoundaries() Filter {
	return Filter{items: f.items}
}

// Hash returns a deterministic "sha256:<hex>" fingerprint of the Filter, e.g. to key snapshots.
func (f Filter) Hash() string {
	var b strings.Builder

	for i, item := range f.items {
		if i > 0 {
			b.WriteString("|OR|")
		}

		b.WriteString("types=")
		b.WriteString(strings.Join(item.eventTypes, ","))
		b.WriteString(";all=")
		b.WriteString(strconv.FormatBool(item.allPredicatesMustMatch))
		b.WriteString(";preds=")

		for j, p := range item.predicates {
			if j > 0 {
				b.WriteString(",")
			}

			b.WriteString(p.key)
			b.WriteString("=")
			b.WriteString(p.val)
		}
	}

	if !f.occurredFrom.IsZero() {
		b.WriteString(";from=")
		b.WriteString(f.occurredFrom.UTC().Format(time.RFC3339Nano))
	}

	if !f.occurredUntil.IsZero() {
		b.WriteString(";until=")
		b.WriteString(f.occurredUntil.UTC().Format(time.RFC3339Nano))
	}

	if f.sequenceNumberHigherThan > 0 {
		b.WriteString(";seq>")
		b.WriteString(strconv.FormatUint(uint64(f.sequenceNumberHigherThan), 10))
	}

	sum := sha256.Sum256([]byte(b.String()))

	return "sha256:" + hex.EncodeToString(sum[:])
}

/***** FilterItem *****/

type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

/***** FilterPredicate *****/

type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic event filter to be used in DB type-specific eventstore implementations to build queries for
// the specific query language, e.g.: Postgres, SQLite, ...
// It is designed with the idea to only allow "useful" filter combinations for event-sourced workflows:
//
//   - empty filter
//   - (eventType)
//   - (eventType OR eventType...)
//   - (predicate)
//   - (predicate OR predicate...)
//   - (predicate AND predicate...)
//   - (eventType AND predicate)
//   - (eventType AND (predicate OR predicate...))
//   - (eventType AND (predicate AND predicate...))
//   - ((eventType OR eventType...) AND (predicate OR predicate...))
//   - ((eventType OR eventType...) AND (predicate AND predicate...))
//   - ((eventType AND predicate) OR (eventType AND predicate)...) -> multiple FilterItem(s)
//
// Each of the above can be bounded either by a sequence number OR by an occurredAt time range, never both.
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter

	filterBoundaries
}

// filterBoundaries is embedded into all builder states that allow to set boundaries.
type filterBoundaries interface {
	// WithSequenceNumberHigherThan restricts the Filter to events with a sequence number higher than the given one.
	WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) CompletedFilterItemBuilderWithSequenceNumber

	// OccurredFrom restricts the Filter to events that occurred at or after the given time.
	OccurredFrom(occurredAtFrom time.Time) CompletedFilterItemBuilderWithOccurredFrom

	// OccurredUntil restricts the Filter to events that occurred at or before the given time.
	OccurredUntil(occurredAtUntil time.Time) CompletedFilterItemBuilderWithOccurredUntil
}

type EmptyFilterItemBuilder interface {
	// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	//
	// It sanitizes the input:
	//	- removing empty EventTypes ("")
	//	- sorting the EventTypes
	//	- removing duplicate EventTypes
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates

	// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem.
	//
	// It sanitizes the input:
	//	- removing empty/partial FilterPredicate(s) (key or val is "")
	//	- sorting the FilterPredicate(s)
	//	- removing duplicate FilterPredicate(s)
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes

	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

type FilterItemBuilderLackingPredicates interface {
	// AndAnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem.
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder

	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter once it has at least one FilterItem with at least one EventType OR one Predicate.
	Finalize() Filter

	filterBoundaries
}

type FilterItemBuilderLackingEventTypes interface {
	// AndAnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter once it has at least one FilterItem with at least one EventType OR one Predicate.
	Finalize() Filter

	filterBoundaries
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter once it has at least one FilterItem with at least one EventType OR one Predicate.
	Finalize() Filter

	filterBoundaries
}

type CompletedFilterItemBuilderWithSequenceNumber interface {
	Finalize() Filter
}

type CompletedFilterItemBuilderWithOccurredFrom interface {
	// AndOccurredUntil adds an upper time boundary to an existing lower one.
	AndOccurredUntil(occurredAtUntil time.Time) CompletedFilterItemBuilderWithOccurredFromToUntil

	Finalize() Filter
}

type CompletedFilterItemBuilderWithOccurredUntil interface {
	Finalize() Filter
}

type CompletedFilterItemBuilderWithOccurredFromToUntil interface {
	Finalize() Filter
}

// ReopenedFilterBuilder is returned by Filter.ReopenForSequenceFiltering.
type ReopenedFilterBuilder interface {
	WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) CompletedFilterItemBuilderWithSequenceNumber
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
	reopen            bool
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

// Matching starts a new FilterItem.
func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}

	return fb
}

// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem expecting ANY EventType to match.
//
// It sanitizes the input:
//   - removing empty EventTypes ("")
//   - sorting the EventTypes
//   - removing duplicate EventTypes
func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingPredicates {

	fb.currentFilterItem.eventTypes = append(
		fb.currentFilterItem.eventTypes,
		fb.sanitizeEventTypes(eventType, eventTypes...)...,
	)

	return fb
}

// AndAnyEventTypeOf adds one or multiple EventTypes to the current FilterItem expecting ANY EventType to match.
//
// It sanitizes the input:
//   - removing empty EventTypes ("")
//   - sorting the EventTypes
//   - removing duplicate EventTypes
func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

func (fb filterBuilder) sanitizeEventTypes(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) []FilterEventTypeString {

	allEventTypes := append([]FilterEventTypeString{eventType}, eventTypes...)
	allEventTypes = slices.DeleteFunc(
		allEventTypes,
		func(e FilterEventTypeString) bool {
			return e == ""
		})
	slices.Sort(allEventTypes)
	allEventTypes = slices.Compact(allEventTypes)
	allEventTypes = slices.Clip(allEventTypes)

	return allEventTypes
}

// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ANY predicate to match.
//
// It sanitizes the input:
//   - removing empty/partial FilterPredicate(s) (key or val is "")
//   - sorting the FilterPredicate(s)
//   - removing duplicate FilterPredicate(s)
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.predicates = append(
		fb.currentFilterItem.predicates,
		fb.sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

// AndAnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ANY predicate to match.
//
// It sanitizes the input:
//   - removing empty/partial FilterPredicate(s) (key or val is "")
//   - sorting the FilterPredicate(s)
//   - removing duplicate FilterPredicate(s)
func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

// AllPredicatesOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ALL predicates to match.
//
// It sanitizes the input:
//   - removing empty/partial FilterPredicate(s) (key or val is "")
//   - sorting the FilterPredicate(s)
//   - removing duplicate FilterPredicate(s)
func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.allPredicatesMustMatch = true

	fb.currentFilterItem.predicates = append(
		fb.currentFilterItem.predicates,
		fb.sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

// AndAllPredicatesOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ALL predicates to match.
//
// It sanitizes the input:
//   - removing empty/partial FilterPredicate(s) (key or val is "")
//   - sorting the FilterPredicate(s)
//   - removing duplicate FilterPredicate(s)
func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) sanitizePredicates(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) []FilterPredicate {

	allPredicates := append([]FilterPredicate{predicate}, predicates...)
	allPredicates = slices.DeleteFunc(allPredicates, func(e FilterPredicate) bool { return len(e.key) == 0 || len(e.val) == 0 })
	slices.SortFunc(
		allPredicates,
		func(a, b FilterPredicate) int {
			if a.key > b.key {
				return 1
			}

			if a.key < b.key {
				return -1
			}

			return 0
		})

	allPredicates = slices.Compact(allPredicates)
	allPredicates = slices.Clip(allPredicates)

	return allPredicates
}

// OrMatching finalizes the current FilterItem and starts a new one.
func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(fb.filter.items, fb.currentFilterItem)
	fb.currentFilterItem = FilterItem{}

	return fb
}

// MatchingAnyEvent directly creates an empty filter.
func (fb filterBuilder) MatchingAnyEvent() Filter {
	return fb.filter
}

// WithSequenceNumberHigherThan restricts the Filter to events with a sequence number higher than the given one.
func (fb filterBuilder) WithSequenceNumberHigherThan(
	sequenceNumber MaxSequenceNumberUint,
) CompletedFilterItemBuilderWithSequenceNumber {

	fb.filter.sequenceNumberHigherThan = sequenceNumber

	return fb
}

// OccurredFrom restricts the Filter to events that occurred at or after the given time.
func (fb filterBuilder) OccurredFrom(occurredAtFrom time.Time) CompletedFilterItemBuilderWithOccurredFrom {
	fb.filter.occurredFrom = occurredAtFrom

	return fb
}

// AndOccurredUntil adds an upper time boundary to an existing lower one.
func (fb filterBuilder) AndOccurredUntil(occurredAtUntil time.Time) CompletedFilterItemBuilderWithOccurredFromToUntil {
	fb.filter.occurredUntil = occurredAtUntil

	return fb
}

// OccurredUntil restricts the Filter to events that occurred at or before the given time.
func (fb filterBuilder) OccurredUntil(occurredAtUntil time.Time) CompletedFilterItemBuilderWithOccurredUntil {
	fb.filter.occurredUntil = occurredAtUntil

	return fb
}

// Finalize returns the Filter once it has at least one FilterItem with at least one EventType OR one Predicate.
func (fb filterBuilder) Finalize() Filter {
	if fb.reopen {
		return fb.filter
	}

	fb.filter.items = append(slices.Clip(fb.filter.items), fb.currentFilterItem)

	return fb.filter
}
