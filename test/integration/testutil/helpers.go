//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Credentials of the bootstrap admin created by NewTestEnv.
const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
)

// noRedirect keeps 303 responses visible to tests.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

// Do performs a request with an optional JSON body and bearer token.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body, token)
}

// DELETE performs a DELETE request with an optional body and token.
func (env *TestEnv) DELETE(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, body, token)
}

// RegisterUser creates an account through the API.
func (env *TestEnv) RegisterUser(username, email, password string) {
	env.t.Helper()
	resp := env.POST("/api/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("RegisterUser: expected 200, got %d", resp.StatusCode)
	}
}

// Login authenticates and returns the session token and account id.
func (env *TestEnv) Login(username, password string) (token string, userID int64) {
	env.t.Helper()
	resp := env.POST("/api/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	DecodeJSON(env.t, resp, &result)

	session := env.AuthGET("/api/session", result.Token)
	var s struct {
		ID int64 `json:"id"`
	}
	DecodeJSON(env.t, session, &s)
	return result.Token, s.ID
}

// RegisterAndLogin creates an account named username and logs it in.
func (env *TestEnv) RegisterAndLogin(username string) (token string, userID int64) {
	env.t.Helper()
	env.RegisterUser(username, username+"@test.com", "securepass123")
	return env.Login(username, "securepass123")
}

// AdminToken logs in as the bootstrap admin.
func (env *TestEnv) AdminToken() string {
	env.t.Helper()
	token, _ := env.Login(AdminUsername, AdminPassword)
	return token
}

// Deposit credits userID through the wallet endpoint.
func (env *TestEnv) Deposit(userID int64, amount string) {
	env.t.Helper()
	resp := env.POST(fmt.Sprintf("/api/wallet/%d/deposit", userID), map[string]interface{}{
		"amount":         json.Number(amount),
		"payment_method": "card",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("Deposit: expected 200, got %d", resp.StatusCode)
	}
}

// TournamentFields holds the admin create fields tests usually vary.
type TournamentFields struct {
	Name            string
	EntryFee        string
	MaxParticipants int
	Deadline        time.Time
	Status          string
}

// CreateTournament creates a tournament as admin and returns its id.
func (env *TestEnv) CreateTournament(adminToken string, f TournamentFields) int64 {
	env.t.Helper()
	if f.Deadline.IsZero() {
		f.Deadline = time.Now().Add(24 * time.Hour)
	}
	body := map[string]interface{}{
		"name":                  f.Name,
		"start_date":            f.Deadline.Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"registration_deadline": f.Deadline.UTC().Format(time.RFC3339),
	}
	if f.EntryFee != "" {
		body["entry_fee"] = json.Number(f.EntryFee)
	}
	if f.MaxParticipants > 0 {
		body["max_participants"] = f.MaxParticipants
	}
	if f.Status != "" {
		body["status"] = f.Status
	}

	resp := env.POST("/api/admin/tournaments", body, adminToken)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("CreateTournament: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		TournamentID int64 `json:"tournament_id"`
	}
	DecodeJSON(env.t, resp, &result)
	return result.TournamentID
}
