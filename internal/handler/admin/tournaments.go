package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/handler"
	"github.com/playhub/arena/internal/service"
	"github.com/shopspring/decimal"
)

// TournamentAdminHandler handles tournament administration and prize awards.
type TournamentAdminHandler struct {
	tournaments *service.TournamentService
	wallets     *service.WalletService
}

// NewTournamentAdminHandler creates a new TournamentAdminHandler.
func NewTournamentAdminHandler(tournaments *service.TournamentService, wallets *service.WalletService) *TournamentAdminHandler {
	return &TournamentAdminHandler{tournaments: tournaments, wallets: wallets}
}

// createTournamentRequest carries dates as strings so both RFC 3339 and the
// datetime-local form format are accepted.
type createTournamentRequest struct {
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	EntryFee             *decimal.Decimal `json:"entry_fee"`
	MaxParticipants      *int             `json:"max_participants"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	RegistrationDeadline string           `json:"registration_deadline"`
	Status               string           `json:"status"`
	PrizePool            *decimal.Decimal `json:"prize_pool"`
	GameType             string           `json:"game_type"`
	Rules                string           `json:"rules"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type prizeRequest struct {
	UserID int64           `json:"user_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate returns nil for an empty string.
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.ErrValidation("Invalid " + field)
}

func (req createTournamentRequest) toInput() (service.CreateTournamentInput, error) {
	in := service.CreateTournamentInput{
		Name:            req.Name,
		Description:     req.Description,
		EntryFee:        req.EntryFee,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
		PrizePool:       req.PrizePool,
		GameType:        req.GameType,
		Rules:           req.Rules,
	}
	var err error
	if in.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return in, err
	}
	if in.RegistrationDeadline, err = parseDate("registration_deadline", req.RegistrationDeadline); err != nil {
		return in, err
	}
	return in, nil
}

// ListTournaments handles GET /api/admin/tournaments.
func (h *TournamentAdminHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ts, err := h.tournaments.ListWithCounts(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, ts)
}

// CreateTournament handles POST /api/admin/tournaments.
func (h *TournamentAdminHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	id, err := h.tournaments.Create(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"tournament_id": id,
		"message":       "Tournament created successfully",
	})
}

// UpdateStatus handles PUT /api/admin/tournaments/{id}/status.
func (h *TournamentAdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req statusRequest
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.tournaments.SetStatus(r.Context(), id, req.Status); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Status updated successfully",
	})
}

// AwardPrize handles POST /api/admin/tournaments/{id}/prizes.
func (h *TournamentAdminHandler) AwardPrize(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req prizeRequest
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}
	if err := handler.Validate(&req); err != nil {
		handler.RespondError(w, err)
		return
	}

	res, err := h.wallets.AwardPrize(r.Context(), id, req.UserID, req.Amount)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"transaction_id": res.Transaction.ID,
		"new_balance":    res.Wallet.Balance,
		"message":        "Prize awarded successfully",
	})
}
