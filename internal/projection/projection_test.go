package projection

import (
	"context"
	"testing"
	"time"

	"github.com/playhub/arena/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
}

func TestInMemoryStore_KeyNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 0)
	_ = store.Delete(ctx, "k1")

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), time.Minute)
	_, err := store.Get(ctx, "k1")
	require.NoError(t, err)

	now = now.Add(time.Minute + time.Second)
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestWalletProjection_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	w := &domain.Wallet{ID: 3, UserID: 42, Balance: decimal.RequireFromString("30.50")}
	written, err := PutWallet(ctx, store, w)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := GetWallet(ctx, store, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("30.5")))

	raw, err := store.Get(ctx, "projection:wallet:{42}")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"balance":30.5`)
}

func TestInMemoryStore_SetIfNewer(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.SetIfNewer(ctx, "k", 2, []byte("v2"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetIfNewer(ctx, "k", 1, []byte("v1"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	val, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), val)

	ok, _ = store.SetIfNewer(ctx, "k", 2, []byte("v2 again"), time.Minute)
	assert.True(t, ok, "equal versions refresh the entry")

	// An expired entry no longer guards its version.
	now = now.Add(2 * time.Minute)
	ok, _ = store.SetIfNewer(ctx, "k", 1, []byte("v1"), time.Minute)
	assert.True(t, ok)
}

func TestWalletProjection_OlderSnapshotIsDropped(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	newer := &domain.Wallet{UserID: 42, Balance: decimal.NewFromInt(50), Version: 1}
	older := &domain.Wallet{UserID: 42, Balance: decimal.Zero, Version: 0}

	written, err := PutWallet(ctx, store, newer)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = PutWallet(ctx, store, older)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := GetWallet(ctx, store, 42)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(50)))
}
