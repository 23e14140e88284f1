package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/auth"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration, login and the bootstrap admin.
type AuthService struct {
	db       DB
	accounts repository.AccountRepository
	outbox   repository.OutboxRepository
	jwtMgr   *auth.JWTManager
	logger   *slog.Logger
	cost     int
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	db DB,
	accounts repository.AccountRepository,
	outbox repository.OutboxRepository,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		accounts: accounts,
		outbox:   outbox,
		jwtMgr:   jwtMgr,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// Register creates a user account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if !domain.CredentialsComplete(in.Username, in.Email, in.Password) {
		return nil, domain.ErrValidation("All fields are required")
	}
	if err := domain.ValidateEmail(in.Email); err != nil {
		return nil, domain.ErrValidation("Invalid email format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, domain.ErrInternal("Server error", err)
	}

	account := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return storageErr("Database error", err)
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewAccountRegisteredEvent(account)); err != nil {
			return domain.ErrInternal("Database error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "user_id", account.ID, "username", account.Username)
	return account, nil
}

// Login verifies credentials, stamps last_login and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.ErrValidation("Username and password are required")
	}

	account, err := s.accounts.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, domain.ErrInternal("Database error", err)
	}
	if account == nil {
		return nil, domain.ErrUnauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("Invalid credentials")
	}

	if err := s.accounts.TouchLastLogin(ctx, s.db, account.ID); err != nil {
		s.logger.Warn("failed to update last_login", "user_id", account.ID, "error", err)
	}

	token, err := s.jwtMgr.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, domain.ErrInternal("Server error", err)
	}

	return &LoginResult{Token: token, Account: account}, nil
}

// EnsureBootstrapAdmin creates the admin account unless the username or email
// is already taken. Returns true when the account was created.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, username, email, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, domain.ErrInternal("hash bootstrap password", err)
	}

	created, err := s.accounts.EnsureExists(ctx, s.db, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return false, domain.ErrInternal("ensure bootstrap admin", err)
	}
	if created {
		s.logger.Info("bootstrap admin created", "username", username)
	}
	return created, nil
}
