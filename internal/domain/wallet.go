package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet is the single balance holder for an account.
type Wallet struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	// Version increases with every balance change.
	Version int64 `json:"-"`
}

// Covers reports whether the wallet can pay amount without going negative.
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// WalletStats is the aggregate view of all wallets.
type WalletStats struct {
	TotalWallets int64           `json:"total_wallets"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	AvgBalance   decimal.Decimal `json:"avg_balance"`
	MaxBalance   decimal.Decimal `json:"max_balance"`
}

// TransactionTypeStats aggregates completed transactions of one type.
type TransactionTypeStats struct {
	Type        TransactionType `json:"transaction_type"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// WalletDrift records a wallet whose balance disagrees with its ledger.
type WalletDrift struct {
	UserID       int64           `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	LastSnapshot decimal.Decimal `json:"last_snapshot"`
}
