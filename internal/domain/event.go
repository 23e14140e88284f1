package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventAccountRegistered     EventType = "arena.account.registered"
	EventTransactionPosted     EventType = "arena.wallet.transaction.posted"
	EventRegistrationCreated   EventType = "arena.registration.created"
	EventRegistrationCancelled EventType = "arena.registration.cancelled"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateAccount      AggregateType = "account"
	AggregateWallet       AggregateType = "wallet"
	AggregateRegistration AggregateType = "registration"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	ID            int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Topic is the Kafka topic the event is relayed to.
func (d OutboxDraft) Topic() string {
	return string(d.EventType)
}
