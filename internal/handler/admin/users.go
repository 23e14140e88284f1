package admin

import (
	"net/http"

	"github.com/playhub/arena/internal/handler"
	"github.com/playhub/arena/internal/service"
)

// UserAdminHandler handles admin account management.
type UserAdminHandler struct {
	users *service.UserService
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(users *service.UserService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

type roleRequest struct {
	Role string `json:"role"`
}

// ListUsers handles GET /api/users.
func (h *UserAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.users.List(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, accounts)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *UserAdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	callerID, err := handler.SessionAccountID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	id, err := handler.PathID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), callerID, id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// UpdateRole handles PUT /api/users/{id}/role.
func (h *UserAdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req roleRequest
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.users.SetRole(r.Context(), id, req.Role); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"message": "User role updated successfully"})
}
