package handler

import (
	"net/http"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/service"
)

// RegistrationHandler handles tournament sign-up and cancellation.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

type registrationRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type registrationResponse struct {
	Success        bool   `json:"success"`
	RegistrationID int64  `json:"registration_id,omitempty"`
	Message        string `json:"message"`
}

// parse reads the tournament id and the body's user_id.
func (h *RegistrationHandler) parse(r *http.Request) (tournamentID, userID int64, err error) {
	tournamentID, err = PathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	var req registrationRequest
	if DecodeJSON(r, &req) != nil || Validate(&req) != nil {
		return 0, 0, domain.ErrBadRequest("User ID required")
	}
	return tournamentID, req.UserID, nil
}

// Register handles POST /api/tournaments/{id}/register.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, userID, err := h.parse(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	reg, err := h.registrations.Register(r.Context(), tournamentID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, registrationResponse{
		Success:        true,
		RegistrationID: reg.ID,
		Message:        "Successfully registered for tournament",
	})
}

// Cancel handles DELETE /api/tournaments/{id}/register.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tournamentID, userID, err := h.parse(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.registrations.Cancel(r.Context(), tournamentID, userID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, registrationResponse{
		Success: true,
		Message: "Registration cancelled successfully",
	})
}
