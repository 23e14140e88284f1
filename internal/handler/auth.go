package handler

import (
	"net/http"

	"github.com/playhub/arena/internal/auth"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/service"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	authSvc      *service.AuthService
	jwtMgr       *auth.JWTManager
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, jwtMgr *auth.JWTManager, secureCookie bool) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, jwtMgr: jwtMgr, secureCookie: secureCookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionUser struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    sessionUser `json:"user"`
	Token   string      `json:"token"`
}

type sessionResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	if _, err := h.authSvc.Register(r.Context(), input); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

// Login handles POST /api/login. The token is returned in the body and set as
// the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.authSvc.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		RespondError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.jwtMgr.Expiry(), h.secureCookie)
	RespondJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    sessionUser{Username: result.Account.Username, Role: result.Account.Role},
		Token:   result.Token,
	})
}

// Logout handles POST /api/logout. It never fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Session handles GET /api/session. Runs behind auth.RequireSession.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	id, err := SessionAccountID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessionResponse{ID: id, Username: claims.Username, Role: claims.Role})
}

// SessionAccountID returns the account id of the authenticated caller.
func SessionAccountID(r *http.Request) (int64, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return 0, domain.ErrUnauthorized("Not logged in")
	}
	id, err := claims.AccountID()
	if err != nil {
		return 0, domain.ErrUnauthorized("Invalid token")
	}
	return id, nil
}
