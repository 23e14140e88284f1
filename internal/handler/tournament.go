package handler

import (
	"net/http"

	"github.com/playhub/arena/internal/service"
)

// TournamentHandler serves the public tournament catalogue.
type TournamentHandler struct {
	tournaments *service.TournamentService
}

// NewTournamentHandler creates a new TournamentHandler.
func NewTournamentHandler(tournaments *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

// List handles GET /api/tournaments.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	ts, err := h.tournaments.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ts)
}

// Get handles GET /api/tournaments/{id}. An unknown id answers {}.
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	t, err := h.tournaments.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if t == nil {
		RespondJSON(w, http.StatusOK, struct{}{})
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

// ListUserRegistrations handles GET /api/user/{userId}/registrations.
func (h *TournamentHandler) ListUserRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		RespondError(w, err)
		return
	}

	regs, err := h.tournaments.ListUserRegistrations(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, regs)
}
