package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
)

// ExecuteWithdraw debits the user's wallet after a balance check under lock.
func (e *Engine) ExecuteWithdraw(ctx context.Context, tx pgx.Tx, params domain.WithdrawParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation("Invalid amount")
	}

	wallet, err := e.LockWallet(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	if !wallet.Covers(params.Amount) {
		return nil, domain.ErrInsufficientBalance("Insufficient balance")
	}

	entry, updated, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxWithdrawal,
		Amount:      params.Amount.Neg(),
		Description: "Withdrawal via " + domain.MethodOrUnknown(params.WithdrawalMethod),
		ReferenceID: fmt.Sprintf("withdrawal_%d", e.millis()),
	})
	if err != nil {
		return nil, fmt.Errorf("withdraw post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updated}, nil
}
