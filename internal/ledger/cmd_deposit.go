package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
)

// ExecuteDeposit credits the user's wallet.
// Pattern: Lock -> PostLedgerEntry
func (e *Engine) ExecuteDeposit(ctx context.Context, tx pgx.Tx, params domain.DepositParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation("Invalid amount")
	}

	if _, err := e.LockWallet(ctx, tx, params.UserID); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	ref := params.ExternalTransactionID
	if ref == "" {
		ref = fmt.Sprintf("deposit_%d", e.millis())
	}

	entry, wallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxDeposit,
		Amount:      params.Amount,
		Description: "Deposit via " + domain.MethodOrUnknown(params.PaymentMethod),
		ReferenceID: ref,
	})
	if err != nil {
		return nil, fmt.Errorf("deposit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
