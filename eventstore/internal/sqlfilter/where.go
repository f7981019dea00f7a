// Package sqlfilter translates an eventstore.Filter into goqu expressions.
//
// It is shared by the SQL engines which only differ in how a single payload predicate is expressed
// (jsonb containment in Postgres, json_extract in SQLite).
package sqlfilter

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

const (
	ColEventType      = "event_type"
	ColOccurredAt     = "occurred_at"
	ColPayload        = "payload"
	ColMetadata       = "metadata"
	ColSequenceNumber = "sequence_number"
)

// Renderer holds the engine specific parts of a WHERE expression.
type Renderer struct {
	// Predicate renders one payload predicate.
	Predicate func(predicate eventstore.FilterPredicate) goqu.Expression

	// Time converts a time boundary to the representation of the occurred_at column, identity if nil.
	Time func(t time.Time) any
}

func (r Renderer) timeValue(t time.Time) any {
	if r.Time == nil {
		return t
	}

	return r.Time(t)
}

// Where builds the complete WHERE expression for the given Filter:
// items are OR-ed, event types inside an item are OR-ed and combined with the item's predicates with AND,
// boundaries are AND-ed to all of it.
func Where(filter eventstore.Filter, r Renderer) exp.ExpressionList {
	conditions := make([]goqu.Expression, 0, 4)

	if !filter.HasMatchAllItem() {
		conditions = append(conditions, goqu.Or(itemExpressions(filter, r)...))
	}

	if !filter.OccurredFrom().IsZero() {
		conditions = append(conditions, goqu.C(ColOccurredAt).Gte(r.timeValue(filter.OccurredFrom())))
	}

	if !filter.OccurredUntil().IsZero() {
		conditions = append(conditions, goqu.C(ColOccurredAt).Lte(r.timeValue(filter.OccurredUntil())))
	}

	if filter.SequenceNumberHigherThan() > 0 {
		conditions = append(conditions, goqu.C(ColSequenceNumber).Gt(filter.SequenceNumberHigherThan()))
	}

	return goqu.And(conditions...)
}

// ApplyTo adds the WHERE expression to the statement, if there is any condition at all.
func ApplyTo(stmt *goqu.SelectDataset, filter eventstore.Filter, r Renderer) *goqu.SelectDataset {
	where := Where(filter, r)
	if where.IsEmpty() {
		return stmt
	}

	return stmt.Where(where)
}

func itemExpressions(filter eventstore.Filter, r Renderer) []goqu.Expression {
	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0, len(item.EventTypes()))
		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{ColEventType: eventType})
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			predicateExpressions = append(predicateExpressions, r.Predicate(predicate))
		}

		var predicatesExpressionList exp.ExpressionList
		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		// eventTypes must always be filtered with OR
		itemsExpressions = append(itemsExpressions, goqu.And(goqu.Or(eventTypeExpressions...), predicatesExpressionList))
	}

	return itemsExpressions
}
