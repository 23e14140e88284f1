package service

import (
	"context"
	"log/slog"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
)

// UserService is the admin view over accounts.
type UserService struct {
	db       repository.DBTX
	accounts repository.AccountRepository
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(db repository.DBTX, accounts repository.AccountRepository, logger *slog.Logger) *UserService {
	return &UserService{db: db, accounts: accounts, logger: logger}
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// Delete removes an account row. Wallet, ledger and registrations are kept.
func (s *UserService) Delete(ctx context.Context, callerID, id int64) error {
	if id == callerID {
		return domain.ErrBadRequest("Cannot delete your own account")
	}
	deleted, err := s.accounts.Delete(ctx, s.db, id)
	if err != nil {
		return domain.ErrInternal("Database error", err)
	}
	if !deleted {
		return domain.ErrNotFound("User not found")
	}
	s.logger.Info("account deleted", "user_id", id, "by", callerID)
	return nil
}

// SetRole changes an account's role.
func (s *UserService) SetRole(ctx context.Context, id int64, raw string) error {
	role, err := domain.ParseRole(raw)
	if err != nil {
		return domain.ErrBadRequest("Invalid role")
	}
	updated, err := s.accounts.UpdateRole(ctx, s.db, id, role)
	if err != nil {
		return domain.ErrInternal("Database error", err)
	}
	if !updated {
		return domain.ErrNotFound("User not found")
	}
	s.logger.Info("account role changed", "user_id", id, "role", role)
	return nil
}
