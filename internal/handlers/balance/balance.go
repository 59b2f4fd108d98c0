package balance

import (
	"context"
	"errors"
	"net/http"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/money"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

type Service interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	Deposit(ctx context.Context, userID int, amount string) (int64, error)
	Withdraw(ctx context.Context, userID int, amount string) (int64, error)
	History(ctx context.Context, userID, limit, offset int) ([]domain.BalanceTransaction, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balance"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, balanceResponse(balance))
}

// Deposit godoc
//
//	@Summary		Add funds
//	@Description	Credit a dollar amount such as "12.50" to the user balance.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.AmountRequestDTO	true	"Amount to deposit"
//	@Success		200		{object}	dto.BalanceResponseDTO	"Balance after the deposit"
//	@Failure		400		{object}	utils.Response			"Invalid amount"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance/deposit [post]
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.balanceService.Deposit)
}

// Withdraw godoc
//
//	@Summary		Withdraw funds
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.AmountRequestDTO	true	"Amount to withdraw"
//	@Success		200		{object}	dto.BalanceResponseDTO	"Balance after the withdrawal"
//	@Failure		400		{object}	utils.Response			"Invalid amount"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		402		{object}	utils.Response			"Insufficient funds"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance/withdraw [post]
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.balanceService.Withdraw)
}

func (h *BalanceHandler) adjust(w http.ResponseWriter, r *http.Request, apply func(context.Context, int, string) (int64, error)) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.AmountRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := apply(r.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, balanceservice.ErrInvalidAmount):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, balanceservice.ErrInsufficientFunds):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, balanceResponse(balance))
}

// GetHistory godoc
//
//	@Summary		Get balance history
//	@Description	Balance changes of the authenticated user, newest first, one page at a time.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int					false	"Entries per page, default 20, at most 50"
//	@Param			offset	query		int					false	"Entries to skip"
//	@Success		200	{array}		dto.TransactionDTO	"Balance history"
//	@Success		204	{object}	utils.Response		"No balance changes yet"
//	@Failure		400	{object}	utils.Response		"Invalid limit or offset"
//	@Failure		401	{object}	utils.Response		"User not authorized"
//	@Failure		500	{object}	utils.Response		"Internal server error"
//	@Router			/api/user/balance/history [get]
func (h *BalanceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	limit, err := validate.QueryInt(r, "limit", 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := validate.QueryInt(r, "offset", 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.balanceService.History(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch balance history")
		return
	}

	if len(transactions) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	response := make([]dto.TransactionDTO, len(transactions))
	for i, tx := range transactions {
		response[i] = dto.TransactionDTO{
			ID:          tx.ID,
			AmountCents: tx.AmountCents,
			Amount:      money.Format(tx.AmountCents),
			Note:        tx.Note,
			CreatedAt:   tx.CreatedAt,
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func balanceResponse(cents int64) dto.BalanceResponseDTO {
	return dto.BalanceResponseDTO{
		BalanceCents: cents,
		Balance:      money.Format(cents),
	}
}
