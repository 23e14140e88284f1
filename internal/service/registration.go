package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/ledger"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository"
)

// RegistrationService registers and cancels tournament entries. Each call is
// one transaction that holds the tournament row lock for its whole duration,
// so capacity checks and fee movements for a tournament are serialised.
type RegistrationService struct {
	db            DB
	engine        *ledger.Engine
	tournaments   repository.TournamentRepository
	registrations repository.RegistrationRepository
	outbox        repository.OutboxRepository
	cache         projection.Store
	logger        *slog.Logger
	now           func() time.Time
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	db DB,
	engine *ledger.Engine,
	tournaments repository.TournamentRepository,
	registrations repository.RegistrationRepository,
	outbox repository.OutboxRepository,
	cache projection.Store,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:            db,
		engine:        engine,
		tournaments:   tournaments,
		registrations: registrations,
		outbox:        outbox,
		cache:         cache,
		logger:        logger,
		now:           time.Now,
	}
}

// Register enters userID into the tournament, charging the entry fee if any.
//
// Order of checks:
//  1. tournament exists and is open
//  2. registration deadline not reached
//  3. no live registration for the pair
//  4. capacity not reached
//  5. wallet covers the fee
func (s *RegistrationService) Register(ctx context.Context, tournamentID, userID int64) (*domain.Registration, error) {
	if userID <= 0 {
		return nil, domain.ErrBadRequest("User ID required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	t, err := s.tournaments.LockForUpdate(ctx, tx, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("lock tournament", err)
	}
	if t == nil {
		return nil, domain.ErrBadRequest("Tournament not available for registration")
	}
	if refusal := t.AcceptsRegistrationAt(s.now()); refusal != nil {
		return nil, refusal
	}

	existing, err := s.registrations.FindActive(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, domain.ErrInternal("find registration", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("Already registered for this tournament")
	}

	if t.MaxParticipants != nil {
		count, err := s.registrations.CountActive(ctx, tx, tournamentID)
		if err != nil {
			return nil, domain.ErrInternal("count registrations", err)
		}
		if t.IsFull(count) {
			return nil, domain.ErrBadRequest("Tournament is full")
		}
	}

	reg := &domain.Registration{
		TournamentID:  tournamentID,
		UserID:        userID,
		PaymentStatus: domain.PaymentFree,
	}

	var charged *domain.Wallet
	if t.HasEntryFee() {
		res, err := s.engine.ExecuteEntryFee(ctx, tx, domain.TournamentChargeParams{
			UserID:         userID,
			TournamentID:   t.ID,
			TournamentName: t.Name,
			Amount:         t.EntryFee,
		})
		if err != nil {
			return nil, storageErr("charge entry fee", err)
		}
		reg.PaymentStatus = domain.PaymentPaid
		reg.TransactionID = &res.Transaction.ID
		charged = res.Wallet
	}

	if err := s.registrations.Create(ctx, tx, reg); err != nil {
		return nil, storageErr("create registration", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewRegistrationEvent(reg)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	if charged != nil {
		s.remember(ctx, charged)
	}
	s.logger.Info("tournament registration created",
		"registration_id", reg.ID,
		"tournament_id", tournamentID,
		"user_id", userID,
		"payment_status", reg.PaymentStatus,
	)
	return reg, nil
}

// Cancel withdraws userID's live registration and refunds a paid entry fee.
func (s *RegistrationService) Cancel(ctx context.Context, tournamentID, userID int64) error {
	if userID <= 0 {
		return domain.ErrBadRequest("User ID required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.tournaments.LockForUpdate(ctx, tx, tournamentID); err != nil {
		return domain.ErrInternal("lock tournament", err)
	}

	active, err := s.registrations.FindActive(ctx, tx, tournamentID, userID)
	if err != nil {
		return domain.ErrInternal("find registration", err)
	}
	if active == nil {
		return domain.ErrBadRequest("Registration not found")
	}

	cancelled, err := s.registrations.MarkCancelled(ctx, tx, active.ID)
	if err != nil {
		return domain.ErrInternal("cancel registration", err)
	}
	if cancelled == nil {
		return domain.ErrBadRequest("Registration not found")
	}

	var refunded *domain.Wallet
	if active.Refundable() {
		res, err := s.engine.ExecuteRefund(ctx, tx, domain.TournamentChargeParams{
			UserID:         userID,
			TournamentID:   tournamentID,
			TournamentName: active.TournamentName,
			Amount:         active.EntryFee,
		})
		if err != nil {
			return storageErr("refund entry fee", err)
		}
		refunded = res.Wallet
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewRegistrationEvent(cancelled)); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	if refunded != nil {
		s.remember(ctx, refunded)
	}
	s.logger.Info("tournament registration cancelled",
		"registration_id", cancelled.ID,
		"tournament_id", tournamentID,
		"user_id", userID,
		"refunded", refunded != nil,
	)
	return nil
}

func (s *RegistrationService) remember(ctx context.Context, w *domain.Wallet) {
	cacheWallet(ctx, s.cache, s.logger, w)
}
