package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/ledger"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository"
	"github.com/shopspring/decimal"
)

// WalletService exposes the ledger commands as single-transaction operations
// and keeps the cached wallet projection in step with committed balances.
type WalletService struct {
	db           DB
	engine       *ledger.Engine
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	tournaments  repository.TournamentRepository
	cache        projection.Store
	logger       *slog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	db DB,
	engine *ledger.Engine,
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	tournaments repository.TournamentRepository,
	cache projection.Store,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		db:           db,
		engine:       engine,
		wallets:      wallets,
		transactions: transactions,
		tournaments:  tournaments,
		cache:        cache,
		logger:       logger,
	}
}

// WalletReport is the admin overview of balances and ledger volume.
type WalletReport struct {
	WalletStats      *domain.WalletStats           `json:"wallet_stats"`
	TransactionStats []domain.TransactionTypeStats `json:"transaction_stats"`
}

// Get returns the user's wallet, creating an empty one on first access.
func (s *WalletService) Get(ctx context.Context, userID int64) (*domain.Wallet, error) {
	cached, err := projection.GetWallet(ctx, s.cache, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, projection.ErrMiss) {
		s.logger.Warn("wallet projection read failed", "user_id", userID, "error", err)
	}

	w, err := s.wallets.GetOrCreate(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("DB error", err)
	}
	s.remember(ctx, w)
	return w, nil
}

// Deposit credits the wallet in one transaction.
func (s *WalletService) Deposit(ctx context.Context, params domain.DepositParams) (*domain.CommandResult, error) {
	return s.run(ctx, "deposit", func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteDeposit(ctx, tx, params)
	})
}

// Withdraw debits the wallet in one transaction.
func (s *WalletService) Withdraw(ctx context.Context, params domain.WithdrawParams) (*domain.CommandResult, error) {
	return s.run(ctx, "withdraw", func(tx pgx.Tx) (*domain.CommandResult, error) {
		return s.engine.ExecuteWithdraw(ctx, tx, params)
	})
}

// AwardPrize credits tournament winnings to a user.
func (s *WalletService) AwardPrize(ctx context.Context, tournamentID, userID int64, amount decimal.Decimal) (*domain.CommandResult, error) {
	if userID <= 0 {
		return nil, domain.ErrValidation("User ID required")
	}
	return s.run(ctx, "prize", func(tx pgx.Tx) (*domain.CommandResult, error) {
		t, err := s.tournaments.FindByID(ctx, tx, tournamentID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, domain.ErrNotFound("Tournament not found")
		}
		return s.engine.ExecutePrizeWin(ctx, tx, domain.TournamentChargeParams{
			UserID:         userID,
			TournamentID:   t.ID,
			TournamentName: t.Name,
			Amount:         amount,
		})
	})
}

// ListTransactions returns one page of a user's ledger, newest first.
func (s *WalletService) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, error) {
	txs, err := s.transactions.ListByUser(ctx, s.db, userID, limit, offset)
	if err != nil {
		return nil, domain.ErrInternal("DB error", err)
	}
	return nonNil(txs), nil
}

// ListAllTransactions returns one page of the whole ledger, newest first.
func (s *WalletService) ListAllTransactions(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	txs, err := s.transactions.ListAll(ctx, s.db, limit, offset)
	if err != nil {
		return nil, domain.ErrInternal("DB error", err)
	}
	return nonNil(txs), nil
}

// Report aggregates wallet balances and completed ledger entries per type.
func (s *WalletService) Report(ctx context.Context) (*WalletReport, error) {
	stats, err := s.wallets.Stats(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("DB error", err)
	}
	byType, err := s.transactions.StatsByType(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("DB error", err)
	}
	if byType == nil {
		byType = []domain.TransactionTypeStats{}
	}
	return &WalletReport{WalletStats: stats, TransactionStats: byType}, nil
}

func (s *WalletService) run(ctx context.Context, op string, cmd func(tx pgx.Tx) (*domain.CommandResult, error)) (*domain.CommandResult, error) {
	var res *domain.CommandResult
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		res, err = cmd(tx)
		if err != nil {
			return storageErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, res.Wallet)
	s.logger.Info("ledger entry posted",
		"op", op,
		"user_id", res.Transaction.UserID,
		"transaction_id", res.Transaction.ID,
		"amount", res.Transaction.Amount.String(),
		"balance", res.Wallet.Balance.String(),
	)
	return res, nil
}

func (s *WalletService) remember(ctx context.Context, w *domain.Wallet) {
	cacheWallet(ctx, s.cache, s.logger, w)
}

func nonNil(txs []domain.Transaction) []domain.Transaction {
	if txs == nil {
		return []domain.Transaction{}
	}
	return txs
}
