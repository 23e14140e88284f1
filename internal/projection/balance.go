package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/playhub/arena/internal/domain"
)

const balanceTTL = 5 * time.Minute

func balanceKey(userID int64) string {
	return fmt.Sprintf("projection:wallet:{%d}", userID)
}

// PutWallet caches a committed wallet snapshot. A snapshot older than the
// cached one, by wallet version, is dropped and reported as false.
func PutWallet(ctx context.Context, store Store, w *domain.Wallet) (bool, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return false, fmt.Errorf("marshal projection: %w", err)
	}
	return store.SetIfNewer(ctx, balanceKey(w.UserID), w.Version, data, balanceTTL)
}

// GetWallet returns the cached wallet, or an error wrapping ErrMiss.
func GetWallet(ctx context.Context, store Store, userID int64) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := GetJSON(ctx, store, balanceKey(userID), &w); err != nil {
		return nil, err
	}
	return &w, nil
}
