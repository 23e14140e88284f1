package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/playhub/arena/internal/ledger"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository/memrepo"
	"github.com/playhub/arena/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type endpoints struct {
	store       *memrepo.Store
	tournaments *service.TournamentService
	router      chi.Router
}

func newEndpoints(t *testing.T) *endpoints {
	t.Helper()
	logger := noopLogger()
	store := memrepo.New()
	cache := projection.NewInMemoryStore()
	engine := ledger.NewEngine(store.Wallets(), store.Transactions(), store.Outbox())

	wallets := service.NewWalletService(store, engine, store.Wallets(), store.Transactions(), store.Tournaments(), cache, logger)
	tournaments := service.NewTournamentService(store, store.Tournaments(), store.Registrations(), logger)
	registrations := service.NewRegistrationService(store, engine, store.Tournaments(), store.Registrations(), store.Outbox(), cache, logger)

	wh := NewWalletHandler(wallets)
	th := NewTournamentHandler(tournaments)
	rh := NewRegistrationHandler(registrations)

	r := chi.NewRouter()
	r.Get("/api/tournaments", th.List)
	r.Get("/api/tournaments/{id}", th.Get)
	r.Post("/api/tournaments/{id}/register", rh.Register)
	r.Delete("/api/tournaments/{id}/register", rh.Cancel)
	r.Get("/api/wallet/{userId}", wh.GetWallet)
	r.Post("/api/wallet/{userId}/deposit", wh.Deposit)
	r.Post("/api/wallet/{userId}/withdraw", wh.Withdraw)
	r.Get("/api/wallet/{userId}/transactions", wh.GetTransactions)

	return &endpoints{store: store, tournaments: tournaments, router: r}
}

func (e *endpoints) do(method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *endpoints) openTournament(t *testing.T, fee string) int64 {
	t.Helper()
	f := decimal.RequireFromString(fee)
	start := time.Now().Add(48 * time.Hour)
	deadline := time.Now().Add(24 * time.Hour)
	id, err := e.tournaments.Create(context.Background(), service.CreateTournamentInput{
		Name:                 "Weekly Cup",
		EntryFee:             &f,
		StartDate:            &start,
		RegistrationDeadline: &deadline,
	})
	require.NoError(t, err)
	return id
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWalletEndpoints(t *testing.T) {
	e := newEndpoints(t)

	t.Run("deposit returns the new balance", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/wallet/7/deposit", `{"amount": 20.5, "payment_method": "card"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeMap(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Deposit successful", body["message"])
		assert.Equal(t, 20.5, body["new_balance"])
		assert.NotZero(t, body["transaction_id"])
	})

	t.Run("withdraw more than balance", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/wallet/7/withdraw", `{"amount": 100}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient balance", decodeMap(t, w)["message"])
	})

	t.Run("malformed amount", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/wallet/7/deposit", `{"amount": "lots"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid amount", decodeMap(t, w)["message"])
	})

	t.Run("non-numeric user id", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/wallet/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid userId", decodeMap(t, w)["message"])
	})

	t.Run("transactions newest first", func(t *testing.T) {
		e.do(http.MethodPost, "/api/wallet/7/withdraw", `{"amount": 0.5}`)
		w := e.do(http.MethodGet, "/api/wallet/7/transactions?limit=1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var txs []map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&txs))
		require.Len(t, txs, 1)
		assert.Equal(t, "withdrawal", txs[0]["transaction_type"])
	})
}

func TestTournamentEndpoints(t *testing.T) {
	e := newEndpoints(t)
	id := e.openTournament(t, "0")

	t.Run("unknown tournament is an empty object", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/tournaments/4242", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("catalogue lists the open tournament", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/tournaments", "")
		require.Equal(t, http.StatusOK, w.Code)
		var ts []map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&ts))
		require.Len(t, ts, 1)
		assert.Equal(t, float64(id), ts[0]["id"])
	})
}

func TestRegistrationEndpoints(t *testing.T) {
	e := newEndpoints(t)
	id := e.openTournament(t, "5")
	path := "/api/tournaments/" + jsonID(id) + "/register"

	t.Run("missing user id", func(t *testing.T) {
		w := e.do(http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User ID required", decodeMap(t, w)["message"])
	})

	t.Run("unfunded wallet", func(t *testing.T) {
		w := e.do(http.MethodPost, path, `{"user_id": 3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient wallet balance", decodeMap(t, w)["message"])
	})

	t.Run("register then cancel refunds", func(t *testing.T) {
		e.store.SeedWallet(3, decimal.NewFromInt(5))

		w := e.do(http.MethodPost, path, `{"user_id": 3}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Successfully registered for tournament", decodeMap(t, w)["message"])
		assert.True(t, e.store.Balance(3).IsZero())

		w = e.do(http.MethodDelete, path, `{"user_id": 3}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Registration cancelled successfully", decodeMap(t, w)["message"])
		assert.True(t, e.store.Balance(3).Equal(decimal.NewFromInt(5)))
	})
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
