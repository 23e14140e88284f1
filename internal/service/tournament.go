package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
	"github.com/shopspring/decimal"
)

// TournamentService manages the tournament catalogue and registration listings.
type TournamentService struct {
	db            DB
	tournaments   repository.TournamentRepository
	registrations repository.RegistrationRepository
	logger        *slog.Logger
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	db DB,
	tournaments repository.TournamentRepository,
	registrations repository.RegistrationRepository,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{db: db, tournaments: tournaments, registrations: registrations, logger: logger}
}

// CreateTournamentInput holds the admin's fields. Nil pointers take defaults.
type CreateTournamentInput struct {
	Name                 string
	Description          string
	EntryFee             *decimal.Decimal
	MaxParticipants      *int
	StartDate            *time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time
	Status               string
	PrizePool            *decimal.Decimal
	GameType             string
	Rules                string
}

// List returns every non-draft tournament by start date.
func (s *TournamentService) List(ctx context.Context) ([]domain.Tournament, error) {
	ts, err := s.tournaments.ListVisible(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if ts == nil {
		ts = []domain.Tournament{}
	}
	return ts, nil
}

// Get returns the tournament or nil when it does not exist.
func (s *TournamentService) Get(ctx context.Context, id int64) (*domain.Tournament, error) {
	t, err := s.tournaments.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	return t, nil
}

// Create validates the input, applies defaults and stores the tournament.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (int64, error) {
	nt, err := in.toNewTournament()
	if err != nil {
		return 0, err
	}
	id, err := s.tournaments.Create(ctx, s.db, nt)
	if err != nil {
		return 0, domain.ErrInternal("Database error", err)
	}
	s.logger.Info("tournament created", "tournament_id", id, "name", nt.Name, "status", nt.Status)
	return id, nil
}

func (in CreateTournamentInput) toNewTournament() (domain.NewTournament, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.StartDate == nil || in.RegistrationDeadline == nil {
		return domain.NewTournament{}, domain.ErrValidation("Name, start date and registration deadline are required")
	}

	nt := domain.NewTournament{
		Name:                 name,
		Description:          in.Description,
		EntryFee:             decimal.Zero,
		MaxParticipants:      in.MaxParticipants,
		StartDate:            *in.StartDate,
		EndDate:              in.EndDate,
		RegistrationDeadline: *in.RegistrationDeadline,
		Status:               domain.TournamentOpen,
		PrizePool:            decimal.Zero,
		GameType:             in.GameType,
		Rules:                in.Rules,
	}
	if in.EntryFee != nil {
		if in.EntryFee.IsNegative() {
			return domain.NewTournament{}, domain.ErrValidation("Entry fee cannot be negative")
		}
		if domain.ValidateMoneyScale(*in.EntryFee) != nil {
			return domain.NewTournament{}, domain.ErrValidation("Invalid amount")
		}
		nt.EntryFee = *in.EntryFee
	}
	if in.PrizePool != nil {
		if in.PrizePool.IsNegative() {
			return domain.NewTournament{}, domain.ErrValidation("Prize pool cannot be negative")
		}
		if domain.ValidateMoneyScale(*in.PrizePool) != nil {
			return domain.NewTournament{}, domain.ErrValidation("Invalid amount")
		}
		nt.PrizePool = *in.PrizePool
	}
	if in.MaxParticipants != nil && *in.MaxParticipants < 1 {
		return domain.NewTournament{}, domain.ErrValidation("Max participants must be at least 1")
	}
	if in.Status != "" {
		st, err := domain.ParseTournamentStatus(in.Status)
		if err != nil {
			return domain.NewTournament{}, domain.ErrValidation("Invalid status")
		}
		nt.Status = st
	}
	return nt, nil
}

// SetStatus moves a tournament to another lifecycle state. Completed is final.
func (s *TournamentService) SetStatus(ctx context.Context, id int64, raw string) error {
	status, err := domain.ParseTournamentStatus(raw)
	if err != nil {
		return domain.ErrValidation("Invalid status")
	}

	// The row lock orders concurrent changes, so nothing can reopen a
	// tournament that completes between the check and the write.
	var from domain.TournamentStatus
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		t, err := s.tournaments.LockForUpdate(ctx, tx, id)
		if err != nil {
			return domain.ErrInternal("Database error", err)
		}
		if t == nil {
			return domain.ErrNotFound("Tournament not found")
		}
		if t.Status == domain.TournamentCompleted && status != domain.TournamentCompleted {
			return domain.ErrBadRequest("Tournament is completed")
		}
		from = t.Status

		updated, err := s.tournaments.UpdateStatus(ctx, tx, id, status)
		if err != nil {
			return domain.ErrInternal("Database error", err)
		}
		if !updated {
			return domain.ErrNotFound("Tournament not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("tournament status changed", "tournament_id", id, "from", from, "to", status)
	return nil
}

// ListWithCounts returns every tournament, drafts included, with live participant counts.
func (s *TournamentService) ListWithCounts(ctx context.Context) ([]domain.TournamentWithCount, error) {
	ts, err := s.tournaments.ListWithCounts(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if ts == nil {
		ts = []domain.TournamentWithCount{}
	}
	return ts, nil
}

// ListUserRegistrations returns a user's registration history, newest first.
func (s *TournamentService) ListUserRegistrations(ctx context.Context, userID int64) ([]domain.UserRegistration, error) {
	regs, err := s.registrations.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if regs == nil {
		regs = []domain.UserRegistration{}
	}
	return regs, nil
}

// ListRegistrations returns registrations newest first, optionally for one tournament.
func (s *TournamentService) ListRegistrations(ctx context.Context, tournamentID *int64) ([]domain.RegistrationListing, error) {
	regs, err := s.registrations.List(ctx, s.db, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if regs == nil {
		regs = []domain.RegistrationListing{}
	}
	return regs, nil
}
