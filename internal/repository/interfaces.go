package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/playhub/arena/internal/domain"
	"github.com/shopspring/decimal"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AccountRepository provides access to accounts.
type AccountRepository interface {
	// Create inserts an account and fills in its ID and CreatedAt.
	// A duplicate username or email yields a CONFLICT AppError.
	Create(ctx context.Context, db DBTX, account *domain.Account) error

	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.Account, error)
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Account, error)

	// List returns every account, newest first.
	List(ctx context.Context, db DBTX) ([]domain.Account, error)

	// Delete removes the account row only. Returns false if no row matched.
	Delete(ctx context.Context, db DBTX, id int64) (bool, error)

	// UpdateRole returns false if no row matched.
	UpdateRole(ctx context.Context, db DBTX, id int64, role domain.Role) (bool, error)

	TouchLastLogin(ctx context.Context, db DBTX, id int64) error

	// EnsureExists inserts the account unless the username or email is taken.
	// Returns true when a row was inserted.
	EnsureExists(ctx context.Context, db DBTX, account *domain.Account) (bool, error)
}

// WalletRepository provides access to user_wallets.
type WalletRepository interface {
	// GetOrCreate returns the wallet for userID, creating an empty one if absent.
	GetOrCreate(ctx context.Context, db DBTX, userID int64) (*domain.Wallet, error)

	// LockForUpdate creates the wallet if needed and holds a row lock on it
	// until tx ends.
	LockForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)

	// ApplyDelta adds a signed delta with server-side arithmetic and returns the updated row.
	ApplyDelta(ctx context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (*domain.Wallet, error)

	Stats(ctx context.Context, db DBTX) (*domain.WalletStats, error)

	// FindDrift returns wallets whose balance differs from the sum of their ledger
	// or from the last balance snapshot.
	FindDrift(ctx context.Context, db DBTX) ([]domain.WalletDrift, error)
}

// TransactionRepository provides access to wallet_transactions.
type TransactionRepository interface {
	// Insert appends a ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter decimal.Decimal) (*domain.Transaction, error)

	// ListByUser returns a user's entries, most recent first.
	ListByUser(ctx context.Context, db DBTX, userID int64, limit, offset int) ([]domain.Transaction, error)

	// ListAll returns every entry, most recent first.
	ListAll(ctx context.Context, db DBTX, limit, offset int) ([]domain.Transaction, error)

	// StatsByType aggregates completed entries per type.
	StatsByType(ctx context.Context, db DBTX) ([]domain.TransactionTypeStats, error)
}

// TournamentRepository provides access to tournaments.
type TournamentRepository interface {
	// ListVisible returns non-draft tournaments ordered by start date.
	ListVisible(ctx context.Context, db DBTX) ([]domain.Tournament, error)

	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Tournament, error)

	// LockForUpdate serialises registrations and cancellations for one tournament.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Tournament, error)

	Create(ctx context.Context, db DBTX, in domain.NewTournament) (int64, error)

	// UpdateStatus returns false if no row matched.
	UpdateStatus(ctx context.Context, db DBTX, id int64, status domain.TournamentStatus) (bool, error)

	// ListWithCounts returns every tournament with its registered count, newest first.
	ListWithCounts(ctx context.Context, db DBTX) ([]domain.TournamentWithCount, error)
}

// RegistrationRepository provides access to tournament_registrations.
type RegistrationRepository interface {
	// FindActive returns the registered row for the pair joined with its tournament.
	FindActive(ctx context.Context, db DBTX, tournamentID, userID int64) (*domain.ActiveRegistration, error)

	CountActive(ctx context.Context, db DBTX, tournamentID int64) (int, error)

	// Create inserts a registered row and fills in ID and timestamps.
	// A second live registration for the pair yields a CONFLICT AppError.
	Create(ctx context.Context, db DBTX, reg *domain.Registration) error

	// MarkCancelled moves a registered row to cancelled and returns it.
	MarkCancelled(ctx context.Context, db DBTX, id int64) (*domain.Registration, error)

	ListByUser(ctx context.Context, db DBTX, userID int64) ([]domain.UserRegistration, error)

	// List returns registrations newest first, optionally for a single tournament.
	List(ctx context.Context, db DBTX, tournamentID *int64) ([]domain.RegistrationListing, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	MarkPublished(ctx context.Context, db DBTX, id int64) error
}
