package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository"
)

// DB is the pool surface services need: plain queries plus transactions.
// *pgxpool.Pool satisfies it.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// storageErr passes AppErrors through and wraps anything else as INTERNAL_ERROR.
func storageErr(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal(msg, err)
}

// inTx runs fn inside one transaction and commits only if fn succeeds.
func inTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// cacheWallet writes a committed wallet snapshot to the projection. A snapshot
// older than the cached one is dropped, so reads that race a mutation cannot
// overwrite the newer balance.
func cacheWallet(ctx context.Context, cache projection.Store, logger *slog.Logger, w *domain.Wallet) {
	written, err := projection.PutWallet(ctx, cache, w)
	if err != nil {
		logger.Warn("wallet projection write failed", "user_id", w.UserID, "error", err)
		return
	}
	if !written {
		logger.Debug("stale wallet snapshot not cached", "user_id", w.UserID, "version", w.Version)
	}
}
