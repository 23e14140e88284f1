package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationStatus is the state of one tournament entry.
// Transitions: registered -> cancelled. A cancelled row never reopens.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// PaymentStatus records whether an entry fee was charged.
type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "paid"
	PaymentFree PaymentStatus = "free"
)

// Registration is a row in tournament_registrations.
type Registration struct {
	ID            int64              `json:"id"`
	TournamentID  int64              `json:"tournament_id"`
	UserID        int64              `json:"user_id"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	TransactionID *int64             `json:"transaction_id"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ActiveRegistration is a registered row joined with the tournament fields
// needed to cancel it.
type ActiveRegistration struct {
	Registration
	TournamentName string
	EntryFee       decimal.Decimal
}

// Refundable reports whether cancelling should return the entry fee.
func (r *ActiveRegistration) Refundable() bool {
	return r.EntryFee.IsPositive() && r.PaymentStatus == PaymentPaid
}

// UserRegistration is a registration joined with its tournament for a user's history.
type UserRegistration struct {
	Registration
	TournamentName   string           `json:"tournament_name"`
	StartDate        time.Time        `json:"start_date"`
	EntryFee         decimal.Decimal  `json:"entry_fee"`
	TournamentStatus TournamentStatus `json:"tournament_status"`
}

// RegistrationListing is a registration joined with its tournament name for admin views.
type RegistrationListing struct {
	Registration
	TournamentName string `json:"tournament_name"`
}
