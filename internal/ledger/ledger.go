package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
)

// Engine provides the foundational ledger operations:
//  1. LockWallet: row-level pessimistic lock on the user's wallet
//  2. PostLedgerEntry: atomic balance update + append-only insert + outbox event
//
// Every typed command (deposit, withdraw, entry fee, refund, prize) is
// Lock -> check -> PostLedgerEntry inside the caller's transaction.
type Engine struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	now          func() time.Time
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outbox,
		now:          time.Now,
	}
}

// LockWallet acquires a row-level lock on the user's wallet, creating it if needed.
// Must be called within a transaction.
func (e *Engine) LockWallet(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	wallet, err := e.wallets.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("lock wallet: no wallet for user %d", userID)
	}
	return wallet, nil
}

// PostLedgerEntry atomically updates the wallet balance and appends a ledger entry.
//
// Steps:
//  1. Update the balance with server-side arithmetic
//  2. Insert the transaction with the post-update balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.Wallet, error) {
	if params.Type.IsDebit() != params.Amount.IsNegative() {
		return nil, nil, fmt.Errorf("amount sign %s does not match type %s", params.Amount, params.Type)
	}

	updated, err := e.wallets.ApplyDelta(ctx, tx, params.UserID, params.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("update balance: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updated.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}

func (e *Engine) millis() int64 {
	return e.now().UnixMilli()
}
