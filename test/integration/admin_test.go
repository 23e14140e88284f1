//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/playhub/arena/test/integration/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUsers_RequireAdmin(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterAndLogin("eve")

	testutil.AssertError(t, env.AuthGET("/api/users", token), http.StatusForbidden, "Access denied")
	testutil.AssertError(t, env.GET("/api/admin/wallet-stats"), http.StatusUnauthorized, "Not logged in")
}

func TestUsers_ListOmitsPasswordHash(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("frank", "frank@test.com", "securepass123")
	admin := env.AdminToken()

	resp := env.AuthGET("/api/users", admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var users []map[string]interface{}
	testutil.DecodeJSON(t, resp, &users)

	assert.Len(t, users, 2)
	assert.Equal(t, "frank", users[0]["username"], "newest first")
	for _, u := range users {
		assert.NotContains(t, u, "password_hash")
	}
}

func TestUsers_DeleteAndRole(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, userID := env.RegisterAndLogin("grace")
	admin, adminID := env.Login(testutil.AdminUsername, testutil.AdminPassword)
	env.Deposit(userID, "10")

	t.Run("cannot delete self", func(t *testing.T) {
		resp := env.DELETE(fmt.Sprintf("/api/users/%d", adminID), nil, admin)
		testutil.AssertError(t, resp, http.StatusBadRequest, "Cannot delete your own account")
	})

	t.Run("invalid role", func(t *testing.T) {
		resp := env.AuthPUT(fmt.Sprintf("/api/users/%d/role", userID), map[string]string{"role": "root"}, admin)
		testutil.AssertError(t, resp, http.StatusBadRequest, "Invalid role")
	})

	t.Run("promote", func(t *testing.T) {
		resp := env.AuthPUT(fmt.Sprintf("/api/users/%d/role", userID), map[string]string{"role": "admin"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	})

	t.Run("delete keeps wallet history", func(t *testing.T) {
		resp := env.DELETE(fmt.Sprintf("/api/users/%d", userID), nil, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		testutil.AssertBalance(t, env, userID, "10")
		assert.Equal(t, 1, testutil.CountTransactions(t, env, userID))

		resp = env.DELETE(fmt.Sprintf("/api/users/%d", userID), nil, admin)
		testutil.AssertError(t, resp, http.StatusNotFound, "User not found")
	})
}

func TestAdmin_WalletStatsAndTransactions(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, u1 := env.RegisterAndLogin("heidi")
	_, u2 := env.RegisterAndLogin("ivan")
	env.Deposit(u1, "100")
	env.Deposit(u2, "50")
	admin := env.AdminToken()

	resp := env.AuthGET("/api/admin/wallet-stats", admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var stats struct {
		WalletStats struct {
			TotalWallets int64   `json:"total_wallets"`
			TotalBalance float64 `json:"total_balance"`
			MaxBalance   float64 `json:"max_balance"`
		} `json:"wallet_stats"`
		TransactionStats []struct {
			Type  string `json:"transaction_type"`
			Count int64  `json:"count"`
		} `json:"transaction_stats"`
	}
	testutil.DecodeJSON(t, resp, &stats)
	assert.Equal(t, int64(2), stats.WalletStats.TotalWallets)
	assert.Equal(t, 150.0, stats.WalletStats.TotalBalance)
	assert.Equal(t, 100.0, stats.WalletStats.MaxBalance)
	if assert.Len(t, stats.TransactionStats, 1) {
		assert.Equal(t, "deposit", stats.TransactionStats[0].Type)
		assert.Equal(t, int64(2), stats.TransactionStats[0].Count)
	}

	resp = env.AuthGET("/api/admin/transactions?limit=1", admin)
	var txs []map[string]interface{}
	testutil.DecodeJSON(t, resp, &txs)
	assert.Len(t, txs, 1)
}
