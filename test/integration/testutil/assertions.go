//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertError checks the status and message of an error response.
func AssertError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	AssertStatus(t, resp, status)
	var errResp struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Success {
		t.Errorf("expected success=false")
	}
	if errResp.Message != message {
		t.Errorf("expected message %q, got %q (code: %s)", message, errResp.Message, errResp.Code)
	}
}

// Balance reads the wallet balance straight from user_wallets.
func Balance(t *testing.T, env *TestEnv, userID int64) decimal.Decimal {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var bal decimal.Decimal
	err := env.Pool.QueryRow(ctx,
		"SELECT balance::text FROM user_wallets WHERE user_id = $1", userID).Scan(&bal)
	if err != nil {
		t.Fatalf("Balance: query: %v", err)
	}
	return bal
}

// AssertBalance compares the stored wallet balance with want.
func AssertBalance(t *testing.T, env *TestEnv, userID int64, want string) {
	t.Helper()
	got := Balance(t, env, userID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("balance: expected %s, got %s", want, got)
	}
}

// CountTransactions returns the number of ledger entries for a user.
func CountTransactions(t *testing.T, env *TestEnv, userID int64) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox rows of the given event type.
func CountOutboxEvents(t *testing.T, env *TestEnv, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = $1", eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
