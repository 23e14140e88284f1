package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
)

// ExecuteEntryFee charges a tournament entry fee.
func (e *Engine) ExecuteEntryFee(ctx context.Context, tx pgx.Tx, params domain.TournamentChargeParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, fmt.Errorf("entry fee: %w", err)
	}

	wallet, err := e.LockWallet(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("entry fee: %w", err)
	}

	if !wallet.Covers(params.Amount) {
		return nil, domain.ErrInsufficientBalance("Insufficient wallet balance")
	}

	entry, updated, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxTournamentFee,
		Amount:      params.Amount.Neg(),
		Description: "Entry fee for tournament: " + params.TournamentName,
		ReferenceID: fmt.Sprintf("tournament_%d", params.TournamentID),
	})
	if err != nil {
		return nil, fmt.Errorf("entry fee post: %w", err)
	}
	return &domain.CommandResult{Transaction: entry, Wallet: updated}, nil
}

// ExecuteRefund returns an entry fee for a cancelled registration.
func (e *Engine) ExecuteRefund(ctx context.Context, tx pgx.Tx, params domain.TournamentChargeParams) (*domain.CommandResult, error) {
	return e.credit(ctx, tx, params, domain.TxRefund,
		"Refund for cancelled tournament: "+params.TournamentName,
		fmt.Sprintf("refund_tournament_%d", params.TournamentID))
}

// ExecutePrizeWin credits tournament winnings.
func (e *Engine) ExecutePrizeWin(ctx context.Context, tx pgx.Tx, params domain.TournamentChargeParams) (*domain.CommandResult, error) {
	return e.credit(ctx, tx, params, domain.TxPrizeWin,
		"Prize for tournament: "+params.TournamentName,
		fmt.Sprintf("prize_tournament_%d", params.TournamentID))
}

func (e *Engine) credit(ctx context.Context, tx pgx.Tx, params domain.TournamentChargeParams, txType domain.TransactionType, desc, ref string) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation("Invalid amount")
	}

	if _, err := e.LockWallet(ctx, tx, params.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", txType, err)
	}

	entry, updated, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        txType,
		Amount:      params.Amount,
		Description: desc,
		ReferenceID: ref,
	})
	if err != nil {
		return nil, fmt.Errorf("%s post: %w", txType, err)
	}
	return &domain.CommandResult{Transaction: entry, Wallet: updated}, nil
}
