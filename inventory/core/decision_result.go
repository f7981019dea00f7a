package core

// DecisionResult is what a Decide function returns.
// Construct it only with IdempotentDecision, SuccessDecision or RejectionDecision.
type DecisionResult struct {
	Outcome   string       // "idempotent", "success" or "rejected"
	Events    DomainEvents // empty for idempotent decisions
	Rejection *Rejection   // set for rejected decisions only
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	rejectedOutcome   = "rejected"
)

// IdempotentDecision means the state already reflects the command, nothing gets appended.
func IdempotentDecision() DecisionResult {
	return DecisionResult{Outcome: idempotentOutcome}
}

// SuccessDecision carries the event(s) to append, which form one atomic unit.
func SuccessDecision(event DomainEvent, additionalEvents ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Events:  append(DomainEvents{event}, additionalEvents...),
	}
}

// RejectionDecision carries the failure event to append and the Rejection built from it.
func RejectionDecision(event FailureEvent) DecisionResult {
	rejection := BuildRejection(event)

	return DecisionResult{
		Outcome:   rejectedOutcome,
		Events:    DomainEvents{event},
		Rejection: &rejection,
	}
}

// HasEventsToAppend returns true unless the decision is idempotent.
func (r DecisionResult) HasEventsToAppend() bool {
	return len(r.Events) > 0
}

func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

func (r DecisionResult) IsRejected() bool {
	return r.Outcome == rejectedOutcome
}
