package handler

import (
	"net/http"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
	"github.com/playhub/arena/internal/service"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet balance, ledger commands and history.
type WalletHandler struct {
	wallets *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type depositRequest struct {
	Amount                decimal.Decimal `json:"amount"`
	PaymentMethod         string          `json:"payment_method"`
	ExternalTransactionID string          `json:"external_transaction_id"`
}

type withdrawRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	WithdrawalMethod string          `json:"withdrawal_method"`
}

// commandResponse is the shape of every successful ledger command.
type commandResponse struct {
	Success       bool            `json:"success"`
	TransactionID int64           `json:"transaction_id"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Message       string          `json:"message"`
}

func respondCommand(w http.ResponseWriter, res *domain.CommandResult, message string) {
	RespondJSON(w, http.StatusOK, commandResponse{
		Success:       true,
		TransactionID: res.Transaction.ID,
		NewBalance:    res.Wallet.Balance,
		Message:       message,
	})
}

// GetWallet handles GET /api/wallet/{userId}.
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		RespondError(w, err)
		return
	}

	wallet, err := h.wallets.Get(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, wallet)
}

// Deposit handles POST /api/wallet/{userId}/deposit.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		RespondError(w, err)
		return
	}
	h.deposit(w, r, userID)
}

// Withdraw handles POST /api/wallet/{userId}/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		RespondError(w, err)
		return
	}
	h.withdraw(w, r, userID)
}

// DepositOwn handles POST /api/wallet/deposit for the session's account.
func (h *WalletHandler) DepositOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := SessionAccountID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.deposit(w, r, userID)
}

// WithdrawOwn handles POST /api/wallet/withdraw for the session's account.
func (h *WalletHandler) WithdrawOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := SessionAccountID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.withdraw(w, r, userID)
}

func (h *WalletHandler) deposit(w http.ResponseWriter, r *http.Request, userID int64) {
	var req depositRequest
	// A malformed amount is the only way this body fails to decode.
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("Invalid amount"))
		return
	}

	res, err := h.wallets.Deposit(r.Context(), domain.DepositParams{
		UserID:                userID,
		Amount:                req.Amount,
		PaymentMethod:         req.PaymentMethod,
		ExternalTransactionID: req.ExternalTransactionID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	respondCommand(w, res, "Deposit successful")
}

func (h *WalletHandler) withdraw(w http.ResponseWriter, r *http.Request, userID int64) {
	var req withdrawRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("Invalid amount"))
		return
	}

	res, err := h.wallets.Withdraw(r.Context(), domain.WithdrawParams{
		UserID:           userID,
		Amount:           req.Amount,
		WithdrawalMethod: req.WithdrawalMethod,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	respondCommand(w, res, "Withdrawal successful")
}

// GetTransactions handles GET /api/wallet/{userId}/transactions?limit&offset.
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		RespondError(w, err)
		return
	}

	limit, offset := Page(r, repository.DefaultPageSize)
	txs, err := h.wallets.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, txs)
}
