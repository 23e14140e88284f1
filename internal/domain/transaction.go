package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates ledger entry types.
type TransactionType string

const (
	TxDeposit       TransactionType = "deposit"
	TxWithdrawal    TransactionType = "withdrawal"
	TxTournamentFee TransactionType = "tournament_fee"
	TxRefund        TransactionType = "refund"
	TxPrizeWin      TransactionType = "prize_win"
)

// IsDebit reports whether entries of this type take money out of the wallet.
func (t TransactionType) IsDebit() bool {
	return t == TxWithdrawal || t == TxTournamentFee
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTournamentFee, TxRefund, TxPrizeWin:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const TxStatusCompleted TransactionStatus = "completed"

// Transaction is an append-only ledger entry in wallet_transactions.
type Transaction struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	Type         TransactionType   `json:"transaction_type"`
	Amount       decimal.Decimal   `json:"amount"`
	BalanceAfter decimal.Decimal   `json:"balance_after"`
	Description  string            `json:"description"`
	ReferenceID  string            `json:"reference_id"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PostLedgerEntryParams is the input to the ledger's core write primitive.
// Amount is signed: debits are negative.
type PostLedgerEntryParams struct {
	UserID      int64
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

// CommandResult is returned by every ledger command.
type CommandResult struct {
	Transaction *Transaction
	Wallet      *Wallet
}

// DepositParams holds deposit command input.
type DepositParams struct {
	UserID                int64
	Amount                decimal.Decimal
	PaymentMethod         string
	ExternalTransactionID string
}

// WithdrawParams holds withdrawal command input.
type WithdrawParams struct {
	UserID           int64
	Amount           decimal.Decimal
	WithdrawalMethod string
}

// TournamentChargeParams holds input for entry fee, refund and prize commands.
type TournamentChargeParams struct {
	UserID         int64
	TournamentID   int64
	TournamentName string
	Amount         decimal.Decimal
}
