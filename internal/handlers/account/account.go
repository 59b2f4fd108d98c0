package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/authservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/money"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=account.go -destination=mock_account.go -package=account

type Service interface {
	Me(ctx context.Context, userID int) (*domain.Account, error)
	UpdateProfile(ctx context.Context, userID int, upd domain.ProfileUpdate) (*domain.Account, error)
	UpdatePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	SearchUsers(ctx context.Context, query string) ([]domain.UserMatch, error)
}

type AccountHandler struct {
	accountService Service
}

func New(accountService Service) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GetMe godoc
//
//	@Summary		Get own account
//	@Description	Profile of the authenticated user together with the current balance.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.AccountDTO	"Account"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/me [get]
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	account, err := h.accountService.Me(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, accountResponse(account))
}

// UpdateProfile godoc
//
//	@Summary		Update own profile
//	@Description	Fields left out of the body keep their value. The email must not belong to another account.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.UpdateProfileRequestDTO	true	"Fields to change"
//	@Success		200		{object}	dto.AccountDTO				"Updated account"
//	@Failure		400		{object}	utils.Response				"Invalid profile"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		404		{object}	utils.Response				"User not found"
//	@Failure		409		{object}	utils.Response				"Email already registered"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/user/me [patch]
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.UpdateProfileRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accountService.UpdateProfile(r.Context(), userID, domain.ProfileUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Address:  req.Address,
	})
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, accountResponse(account))
}

// ChangePassword godoc
//
//	@Summary	Change password
//	@Tags		Account
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.ChangePasswordRequestDTO	true	"Current and new password"
//	@Success	200		{object}	utils.Response					"Password changed"
//	@Failure	400		{object}	utils.Response					"Invalid new password"
//	@Failure	401		{object}	utils.Response					"Wrong current password"
//	@Failure	404		{object}	utils.Response					"User not found"
//	@Failure	500		{object}	utils.Response					"Internal server error"
//	@Router		/api/user/me/password [put]
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.ChangePasswordRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accountService.UpdatePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Password changed"})
}

// SearchUsers godoc
//
//	@Summary		Search users
//	@Description	Users whose full name contains q, at most 25, ordered by name.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Param			q	query		string				true	"Part of a full name"
//	@Success		200	{array}		dto.UserMatchDTO	"Matching users"
//	@Failure		401	{object}	utils.Response		"User not authorized"
//	@Failure		500	{object}	utils.Response		"Internal server error"
//	@Router			/api/user/search [get]
func (h *AccountHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	matches, err := h.accountService.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.UserMatchDTO, len(matches))
	for i, m := range matches {
		response[i] = dto.UserMatchDTO{
			ID:        m.ID,
			FullName:  m.FullName,
			Email:     m.Email,
			Address:   m.Address,
			CreatedAt: m.CreatedAt,
			IsSeller:  m.IsSeller,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *AccountHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrInvalidProfile):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, authservice.ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, "Current password is wrong")
	case errors.Is(err, authservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, authservice.ErrEmailTaken):
		utils.RespondWithError(w, http.StatusConflict, "Email already registered")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func accountResponse(account *domain.Account) dto.AccountDTO {
	return dto.AccountDTO{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     account.FullName,
		Address:      account.Address,
		CreatedAt:    account.CreatedAt,
		BalanceCents: account.BalanceCents,
		Balance:      money.Format(account.BalanceCents),
	}
}
