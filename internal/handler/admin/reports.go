package admin

import (
	"net/http"
	"strconv"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/handler"
	"github.com/playhub/arena/internal/repository"
	"github.com/playhub/arena/internal/service"
)

// ReportsHandler handles admin wallet and registration reports.
type ReportsHandler struct {
	wallets     *service.WalletService
	tournaments *service.TournamentService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(wallets *service.WalletService, tournaments *service.TournamentService) *ReportsHandler {
	return &ReportsHandler{wallets: wallets, tournaments: tournaments}
}

// GetWalletStats handles GET /api/admin/wallet-stats.
func (h *ReportsHandler) GetWalletStats(w http.ResponseWriter, r *http.Request) {
	report, err := h.wallets.Report(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, report)
}

// GetTransactions handles GET /api/admin/transactions?limit&offset.
func (h *ReportsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Page(r, repository.DefaultAdminPageSize)
	txs, err := h.wallets.ListAllTransactions(r.Context(), limit, offset)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, txs)
}

// GetRegistrations handles GET /api/admin/registrations?tournament_id.
func (h *ReportsHandler) GetRegistrations(w http.ResponseWriter, r *http.Request) {
	var tournamentID *int64
	if raw := r.URL.Query().Get("tournament_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			handler.RespondError(w, domain.ErrBadRequest("Invalid tournament_id"))
			return
		}
		tournamentID = &id
	}

	regs, err := h.tournaments.ListRegistrations(r.Context(), tournamentID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, regs)
}
