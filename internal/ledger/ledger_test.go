package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository/memrepo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *memrepo.Store) {
	t.Helper()
	store := memrepo.New()
	store.Now = func() time.Time { return fixedNow }
	e := NewEngine(store.Wallets(), store.Transactions(), store.Outbox())
	e.now = func() time.Time { return fixedNow }
	return e, store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Deposit ---

func TestExecuteDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("credits wallet and records entry", func(t *testing.T) {
		e, store := newTestEngine(t)
		tx, _ := store.Begin(ctx)

		res, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("50.00"), PaymentMethod: "card"})
		require.NoError(t, err)

		assert.True(t, res.Wallet.Balance.Equal(dec("50")))
		assert.Equal(t, domain.TxDeposit, res.Transaction.Type)
		assert.True(t, res.Transaction.BalanceAfter.Equal(dec("50")))
		assert.Equal(t, "Deposit via card", res.Transaction.Description)
		assert.Equal(t, "deposit_1773480600000", res.Transaction.ReferenceID)
		assert.Equal(t, domain.TxStatusCompleted, res.Transaction.Status)

		events := store.OutboxEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventTransactionPosted, events[0].EventType)
		assert.Equal(t, "1", events[0].AggregateID)
	})

	t.Run("external id becomes the reference", func(t *testing.T) {
		e, store := newTestEngine(t)
		tx, _ := store.Begin(ctx)

		res, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("5"), ExternalTransactionID: "psp-991"})
		require.NoError(t, err)
		assert.Equal(t, "psp-991", res.Transaction.ReferenceID)
		assert.Equal(t, "Deposit via unknown", res.Transaction.Description)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		e, store := newTestEngine(t)
		tx, _ := store.Begin(ctx)

		for _, amt := range []string{"0", "-10", "0.004", "10.005"} {
			_, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec(amt)})
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "Invalid amount", appErr.Message)
		}
		assert.Empty(t, store.LedgerFor(1))
	})
}

// --- Withdraw ---

func TestExecuteWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("debits wallet", func(t *testing.T) {
		e, store := newTestEngine(t)
		store.SeedWallet(1, dec("100"))
		tx, _ := store.Begin(ctx)

		res, err := e.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{UserID: 1, Amount: dec("30"), WithdrawalMethod: "bank"})
		require.NoError(t, err)
		assert.True(t, res.Transaction.Amount.Equal(dec("-30")))
		assert.True(t, res.Wallet.Balance.Equal(dec("70")))
		assert.Equal(t, "Withdrawal via bank", res.Transaction.Description)
		assert.Equal(t, "withdrawal_1773480600000", res.Transaction.ReferenceID)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		e, store := newTestEngine(t)
		store.SeedWallet(1, dec("10"))
		tx, _ := store.Begin(ctx)

		_, err := e.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{UserID: 1, Amount: dec("10.01")})
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", appErr.Code)
		assert.Equal(t, "Insufficient balance", appErr.Message)
		assert.True(t, store.Balance(1).Equal(dec("10")))
		assert.Empty(t, store.OutboxEvents())
	})

	t.Run("sub-cent amount rejected without touching the balance", func(t *testing.T) {
		e, store := newTestEngine(t)
		store.SeedWallet(1, dec("10.01"))
		tx, _ := store.Begin(ctx)

		_, err := e.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{UserID: 1, Amount: dec("10.005")})
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Equal(t, "Invalid amount", appErr.Message)
		assert.True(t, store.Balance(1).Equal(dec("10.01")))
		assert.Empty(t, store.LedgerFor(1))
	})

	t.Run("exact balance allowed", func(t *testing.T) {
		e, store := newTestEngine(t)
		store.SeedWallet(1, dec("10"))
		tx, _ := store.Begin(ctx)

		res, err := e.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{UserID: 1, Amount: dec("10")})
		require.NoError(t, err)
		assert.True(t, res.Wallet.Balance.IsZero())
	})
}

// --- Tournament money ---

func TestExecuteEntryFee(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.SeedWallet(1, dec("50"))
	tx, _ := store.Begin(ctx)

	res, err := e.ExecuteEntryFee(ctx, tx, domain.TournamentChargeParams{UserID: 1, TournamentID: 7, TournamentName: "Spring Cup", Amount: dec("20")})
	require.NoError(t, err)
	assert.Equal(t, domain.TxTournamentFee, res.Transaction.Type)
	assert.True(t, res.Transaction.Amount.Equal(dec("-20")))
	assert.True(t, res.Wallet.Balance.Equal(dec("30")))
	assert.Equal(t, "Entry fee for tournament: Spring Cup", res.Transaction.Description)
	assert.Equal(t, "tournament_7", res.Transaction.ReferenceID)

	_, err = e.ExecuteEntryFee(ctx, tx, domain.TournamentChargeParams{UserID: 1, TournamentID: 8, Amount: dec("31")})
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Insufficient wallet balance", appErr.Message)
}

func TestExecuteRefundAndPrize(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	tx, _ := store.Begin(ctx)

	refund, err := e.ExecuteRefund(ctx, tx, domain.TournamentChargeParams{UserID: 2, TournamentID: 7, TournamentName: "Spring Cup", Amount: dec("20")})
	require.NoError(t, err)
	assert.Equal(t, domain.TxRefund, refund.Transaction.Type)
	assert.Equal(t, "Refund for cancelled tournament: Spring Cup", refund.Transaction.Description)
	assert.Equal(t, "refund_tournament_7", refund.Transaction.ReferenceID)
	assert.True(t, refund.Wallet.Balance.Equal(dec("20")))

	prize, err := e.ExecutePrizeWin(ctx, tx, domain.TournamentChargeParams{UserID: 2, TournamentID: 7, TournamentName: "Spring Cup", Amount: dec("150.50")})
	require.NoError(t, err)
	assert.Equal(t, domain.TxPrizeWin, prize.Transaction.Type)
	assert.Equal(t, "prize_tournament_7", prize.Transaction.ReferenceID)
	assert.True(t, prize.Wallet.Balance.Equal(dec("170.50")))
	assert.True(t, prize.Transaction.BalanceAfter.Equal(dec("170.50")))

	_, err = e.ExecutePrizeWin(ctx, tx, domain.TournamentChargeParams{UserID: 2, Amount: decimal.Zero})
	assert.Error(t, err)
	_, err = e.ExecutePrizeWin(ctx, tx, domain.TournamentChargeParams{UserID: 2, TournamentID: 7, Amount: dec("0.004")})
	assert.Error(t, err)
}

// --- PostLedgerEntry ---

func TestPostLedgerEntry_SignMustMatchType(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.SeedWallet(1, dec("100"))
	tx, _ := store.Begin(ctx)

	_, _, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{UserID: 1, Type: domain.TxWithdrawal, Amount: dec("10")})
	assert.Error(t, err)

	_, _, err = e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{UserID: 1, Type: domain.TxDeposit, Amount: dec("-10")})
	assert.Error(t, err)

	assert.True(t, store.Balance(1).Equal(dec("100")))
}

func TestPostLedgerEntry_OutboxFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.FailOn("outbox.Insert", errors.New("disk full"))
	tx, _ := store.Begin(ctx)

	_, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("5")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	require.NoError(t, tx.Rollback(ctx))
	assert.True(t, store.Balance(1).IsZero())
	assert.Empty(t, store.LedgerFor(1))
}

func TestBalanceSnapshotsChain(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	tx, _ := store.Begin(ctx)

	_, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("40")})
	require.NoError(t, err)
	_, err = e.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{UserID: 1, Amount: dec("15")})
	require.NoError(t, err)
	_, err = e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("0.25")})
	require.NoError(t, err)

	entries := store.LedgerFor(1)
	require.Len(t, entries, 3)
	running := decimal.Zero
	for _, entry := range entries {
		running = running.Add(entry.Amount)
		assert.True(t, entry.BalanceAfter.Equal(running), "entry %d", entry.ID)
	}
	assert.True(t, store.Balance(1).Equal(dec("25.25")))
}

// --- Reconciler ---

func TestReconciler(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	tx, _ := store.Begin(ctx)
	_, err := e.ExecuteDeposit(ctx, tx, domain.DepositParams{UserID: 1, Amount: dec("40")})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewReconciler(store.Wallets(), nil, logger)

	t.Run("clean ledger", func(t *testing.T) {
		drifts, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Empty(t, drifts)
		assert.Contains(t, buf.String(), "wallet reconciliation clean")
	})

	t.Run("tampered balance reported", func(t *testing.T) {
		buf.Reset()
		store.SeedWallet(1, dec("41"))

		drifts, err := r.Run(ctx)
		require.NoError(t, err)
		require.Len(t, drifts, 1)
		assert.Equal(t, int64(1), drifts[0].UserID)
		assert.True(t, drifts[0].LedgerSum.Equal(dec("40")))
		assert.Contains(t, buf.String(), "wallet ledger drift")
	})

	t.Run("repository error", func(t *testing.T) {
		store.FailOn("wallets.FindDrift", errors.New("timeout"))
		defer store.FailOn("wallets.FindDrift", nil)
		assert.Error(t, r.Job(ctx))
	})
}
