package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/infra"
	"github.com/shopspring/decimal"
)

type walletRepo struct{}

// NewWalletRepository returns a pgx-backed WalletRepository.
func NewWalletRepository() WalletRepository {
	return &walletRepo{}
}

const walletColumns = `id, user_id, balance, created_at, updated_at, version`

func ensureWallet(ctx context.Context, db DBTX, userID int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_wallets (user_id, balance) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

func (r *walletRepo) GetOrCreate(ctx context.Context, db DBTX, userID int64) (*domain.Wallet, error) {
	if err := ensureWallet(ctx, db, userID); err != nil {
		return nil, err
	}
	row := db.QueryRow(ctx, `SELECT `+walletColumns+` FROM user_wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

func (r *walletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	if err := ensureWallet(ctx, tx, userID); err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM user_wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return scanWallet(row)
}

// ApplyDelta never reads the balance client-side; the CHECK (balance >= 0)
// constraint rejects any update that would overdraw.
func (r *walletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (*domain.Wallet, error) {
	row := tx.QueryRow(ctx, `
		UPDATE user_wallets
		SET balance = balance + $1, updated_at = now(), version = version + 1
		WHERE user_id = $2
		RETURNING `+walletColumns,
		infra.DecimalToNumeric(delta), userID)
	w, err := scanWallet(row)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet for user %d vanished during update", userID)
	}
	return w, nil
}

func (r *walletRepo) Stats(ctx context.Context, db DBTX) (*domain.WalletStats, error) {
	var s domain.WalletStats
	var total, avg, maxBal pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COUNT(*), SUM(balance), ROUND(AVG(balance), 2), MAX(balance)
		FROM user_wallets`).Scan(&s.TotalWallets, &total, &avg, &maxBal)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: %w", err)
	}
	if s.TotalBalance, err = infra.NullableNumericToDecimal(total); err != nil {
		return nil, err
	}
	if s.AvgBalance, err = infra.NullableNumericToDecimal(avg); err != nil {
		return nil, err
	}
	if s.MaxBalance, err = infra.NullableNumericToDecimal(maxBal); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *walletRepo) FindDrift(ctx context.Context, db DBTX) ([]domain.WalletDrift, error) {
	rows, err := db.Query(ctx, `
		WITH ledger AS (
		    SELECT user_id, SUM(amount) AS total
		    FROM wallet_transactions
		    WHERE status = 'completed'
		    GROUP BY user_id
		), snap AS (
		    SELECT DISTINCT ON (user_id) user_id, balance_after
		    FROM wallet_transactions
		    ORDER BY user_id, created_at DESC, id DESC
		)
		SELECT w.user_id, w.balance, COALESCE(l.total, 0), COALESCE(s.balance_after, 0)
		FROM user_wallets w
		LEFT JOIN ledger l ON l.user_id = w.user_id
		LEFT JOIN snap s ON s.user_id = w.user_id
		WHERE w.balance <> COALESCE(l.total, 0)
		   OR w.balance <> COALESCE(s.balance_after, 0)
		ORDER BY w.user_id`)
	if err != nil {
		return nil, fmt.Errorf("query wallet drift: %w", err)
	}
	defer rows.Close()

	var drifts []domain.WalletDrift
	for rows.Next() {
		var d domain.WalletDrift
		var bal, sum, snap pgtype.Numeric
		if err := rows.Scan(&d.UserID, &bal, &sum, &snap); err != nil {
			return nil, fmt.Errorf("scan wallet drift: %w", err)
		}
		if d.Balance, err = infra.NumericToDecimal(bal); err != nil {
			return nil, err
		}
		if d.LedgerSum, err = infra.NumericToDecimal(sum); err != nil {
			return nil, err
		}
		if d.LastSnapshot, err = infra.NumericToDecimal(snap); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var bal pgtype.Numeric
	err := row.Scan(&w.ID, &w.UserID, &bal, &w.CreatedAt, &w.UpdatedAt, &w.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	if w.Balance, err = infra.NumericToDecimal(bal); err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return w, nil
}
