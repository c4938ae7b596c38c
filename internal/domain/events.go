package domain

import "time"

// Event types
const (
	EventTypeCreditAdded    = "credit.added"
	EventTypeCreditDeducted = "credit.deducted"
	EventTypeHoldCreated    = "hold.created"
	EventTypeHoldCaptured   = "hold.captured"
	EventTypeHoldVoided     = "hold.voided"
)

// Aggregate types
const (
	AggregateTypeBalance = "balance"
	AggregateTypeHold    = "hold"
)

// OutboxEvent represents an event to be published. Sequence is assigned by
// the database on insert, while the aggregate's row lock is held, so it
// orders the events of one aggregate the way their transactions committed.
type OutboxEvent struct {
	ID            string
	Sequence      int64
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceAggregateID identifies the balance row an event refers to.
func BalanceAggregateID(userID, currency string) string {
	return userID + ":" + currency
}
