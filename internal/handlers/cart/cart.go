package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/cartservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=cart.go -destination=mock_cart.go -package=cart

type Service interface {
	Get(ctx context.Context, userID int) ([]domain.CartLine, error)
	Add(ctx context.Context, userID, productID, delta int) error
	Set(ctx context.Context, userID, productID, quantity int) error
	Clear(ctx context.Context, userID int) error
}

type CartHandler struct {
	cartService Service
}

func New(cartService Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart godoc
//
//	@Summary	Get the cart
//	@Tags		Cart
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	dto.CartResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	lines, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	items := make([]dto.CartLineDTO, len(lines))
	for i, line := range lines {
		items[i] = dto.CartLineDTO{
			ItemID:    line.ItemID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Name:      line.Name,
			Price:     dto.Price(line.Price),
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CartResponseDTO{Items: items})
}

// AddItem godoc
//
//	@Summary		Change a cart quantity
//	@Description	Adds quantity (default 1) to the product's line. A negative quantity removes units; the line is dropped at zero.
//	@Tags			Cart
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CartAddRequestDTO	true	"Product and quantity change"
//	@Success		200		{object}	utils.Response
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Product not found"
//	@Failure		422		{object}	utils.Response	"Product is not available"
//	@Router			/api/user/cart/add [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CartAddRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	err := h.cartService.Add(r.Context(), userID, req.ProductID, req.Quantity)
	h.respond(w, err, "Cart updated")
}

// SetItem godoc
//
//	@Summary		Set a cart quantity
//	@Description	Replaces the product's quantity. Zero or below removes the line.
//	@Tags			Cart
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CartSetRequestDTO	true	"Product and new quantity"
//	@Success		200		{object}	utils.Response
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Product not found"
//	@Failure		422		{object}	utils.Response	"Product is not available"
//	@Router			/api/user/cart/set [post]
func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CartSetRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.cartService.Set(r.Context(), userID, req.ProductID, req.Quantity)
	h.respond(w, err, "Cart updated")
}

// ClearCart godoc
//
//	@Summary	Empty the cart
//	@Tags		Cart
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	utils.Response
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/cart/clear [post]
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	err := h.cartService.Clear(r.Context(), userID)
	h.respond(w, err, "Cart cleared")
}

func (h *CartHandler) respond(w http.ResponseWriter, err error, message string) {
	if err != nil {
		switch {
		case errors.Is(err, cartservice.ErrProductNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, cartservice.ErrProductUnavailable):
			utils.RespondWithError(w, http.StatusUnprocessableEntity, "Product is not available")
		case errors.Is(err, cartservice.ErrInvalidQuantity):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: message})
}
