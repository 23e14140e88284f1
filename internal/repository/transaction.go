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

const (
	DefaultPageSize      = 50
	DefaultAdminPageSize = 100
	MaxPageSize          = 500
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const transactionColumns = `id, user_id, transaction_type, amount, balance_after,
	description, reference_id, status, created_at`

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter decimal.Decimal) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO wallet_transactions
		  (user_id, transaction_type, amount, balance_after, description, reference_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		params.UserID,
		string(params.Type),
		infra.DecimalToNumeric(params.Amount),
		infra.DecimalToNumeric(balanceAfter),
		params.Description,
		params.ReferenceID,
		string(domain.TxStatusCompleted),
	)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("insert transaction returned no row")
	}
	return tx, nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID int64, limit, offset int) ([]domain.Transaction, error) {
	limit, offset = clampPage(limit, offset, DefaultPageSize)
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *transactionRepo) ListAll(ctx context.Context, db DBTX, limit, offset int) ([]domain.Transaction, error) {
	limit, offset = clampPage(limit, offset, DefaultAdminPageSize)
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query all transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *transactionRepo) StatsByType(ctx context.Context, db DBTX) ([]domain.TransactionTypeStats, error) {
	rows, err := db.Query(ctx, `
		SELECT transaction_type, COUNT(*), SUM(amount)
		FROM wallet_transactions
		WHERE status = 'completed'
		GROUP BY transaction_type
		ORDER BY transaction_type`)
	if err != nil {
		return nil, fmt.Errorf("query transaction stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.TransactionTypeStats{}
	for rows.Next() {
		var s domain.TransactionTypeStats
		var txType string
		var total pgtype.Numeric
		if err := rows.Scan(&txType, &s.Count, &total); err != nil {
			return nil, fmt.Errorf("scan transaction stats: %w", err)
		}
		s.Type = domain.TransactionType(txType)
		if s.TotalAmount, err = infra.NullableNumericToDecimal(total); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// clampPage applies the default page size and bounds a limit/offset pair.
func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var txType, status string
	var amountNum, balNum pgtype.Numeric
	err := row.Scan(&tx.ID, &tx.UserID, &txType, &amountNum, &balNum,
		&tx.Description, &tx.ReferenceID, &status, &tx.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = domain.TransactionType(txType)
	tx.Status = domain.TransactionStatus(status)

	if tx.Amount, err = infra.NumericToDecimal(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if tx.BalanceAfter, err = infra.NumericToDecimal(balNum); err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}
