package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentOpen      TournamentStatus = "open"
	TournamentClosed    TournamentStatus = "closed"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

// ParseTournamentStatus converts a raw string into a TournamentStatus.
func ParseTournamentStatus(s string) (TournamentStatus, error) {
	switch st := TournamentStatus(s); st {
	case TournamentDraft, TournamentOpen, TournamentClosed, TournamentOngoing, TournamentCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown tournament status %q", s)
}

// Tournament is a row in tournaments.
type Tournament struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	EntryFee             decimal.Decimal  `json:"entry_fee"`
	MaxParticipants      *int             `json:"max_participants"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              *time.Time       `json:"end_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	Status               TournamentStatus `json:"status"`
	PrizePool            decimal.Decimal  `json:"prize_pool"`
	GameType             string           `json:"game_type"`
	Rules                string           `json:"rules"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// AcceptsRegistrationAt reports why a registration at now would be refused,
// or nil when the tournament is open and before its deadline.
func (t *Tournament) AcceptsRegistrationAt(now time.Time) *AppError {
	if t.Status != TournamentOpen {
		return ErrBadRequest("Tournament not available for registration")
	}
	if !now.Before(t.RegistrationDeadline) {
		return ErrBadRequest("Registration deadline has passed")
	}
	return nil
}

// IsFull reports whether registered participants have reached the cap.
func (t *Tournament) IsFull(registered int) bool {
	return t.MaxParticipants != nil && registered >= *t.MaxParticipants
}

// HasEntryFee reports whether registering costs money.
func (t *Tournament) HasEntryFee() bool {
	return t.EntryFee.IsPositive()
}

// TournamentWithCount adds the live participant count for admin listings.
type TournamentWithCount struct {
	Tournament
	CurrentParticipants int `json:"current_participants"`
}

// NewTournament is the input for creating a tournament.
type NewTournament struct {
	Name                 string
	Description          string
	EntryFee             decimal.Decimal
	MaxParticipants      *int
	StartDate            time.Time
	EndDate              *time.Time
	RegistrationDeadline time.Time
	Status               TournamentStatus
	PrizePool            decimal.Decimal
	GameType             string
	Rules                string
}
