package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, aggID int64, evt EventType, payload interface{}) OutboxDraft {
	data, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   strconv.FormatInt(aggID, 10),
		EventType:     evt,
		Payload:       data,
		OccurredAt:    time.Now(),
	}
}

// NewTransactionPostedEvent creates the standard wallet event for a ledger entry.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	return newDraft(AggregateWallet, tx.UserID, EventTransactionPosted, tx)
}

// NewAccountRegisteredEvent creates an account lifecycle event.
func NewAccountRegisteredEvent(a *Account) OutboxDraft {
	return newDraft(AggregateAccount, a.ID, EventAccountRegistered, map[string]interface{}{
		"user_id":  a.ID,
		"username": a.Username,
		"role":     a.Role,
	})
}

// NewRegistrationEvent creates the event for a registration state change.
func NewRegistrationEvent(r *Registration) OutboxDraft {
	evt := EventRegistrationCreated
	if r.Status == RegistrationCancelled {
		evt = EventRegistrationCancelled
	}
	return newDraft(AggregateRegistration, r.ID, evt, r)
}
