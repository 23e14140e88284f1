//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table and resets identities.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `TRUNCATE TABLE
		tournament_registrations,
		wallet_transactions,
		user_wallets,
		tournaments,
		event_outbox,
		accounts
		RESTART IDENTITY CASCADE`)
	if err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
