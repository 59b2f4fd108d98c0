package inventory

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/inventoryservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=inventory.go -destination=mock_inventory.go -package=inventory

type Service interface {
	AddStock(ctx context.Context, sellerID, productID, quantity int) error
	SetQuantity(ctx context.Context, sellerID, productID, quantity int) error
	Remove(ctx context.Context, sellerID, productID int) error
	List(ctx context.Context, userID int) ([]domain.InventoryItem, error)
}

type InventoryHandler struct {
	inventoryService Service
}

func New(inventoryService Service) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// GetMyInventory godoc
//
//	@Summary	List own inventory
//	@Tags		Inventory
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.InventoryItemDTO
//	@Success	204	{object}	utils.Response	"Inventory is empty"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/inventory [get]
func (h *InventoryHandler) GetMyInventory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	h.list(w, r, userID)
}

// GetUserInventory godoc
//
//	@Summary	List a user's inventory
//	@Tags		Inventory
//	@Produce	json
//	@Param		userID	path		int	true	"User ID"
//	@Success	200		{array}		dto.InventoryItemDTO
//	@Success	204		{object}	utils.Response	"Inventory is empty"
//	@Failure	400		{object}	utils.Response	"Invalid user id"
//	@Router		/api/users/{userID}/inventory [get]
func (h *InventoryHandler) GetUserInventory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	h.list(w, r, userID)
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request, userID int) {
	items, err := h.inventoryService.List(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(items) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	resp := make([]dto.InventoryItemDTO, len(items))
	for i, item := range items {
		resp[i] = dto.InventoryItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     dto.Price(item.Price),
			Available: item.Available,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// AddStock godoc
//
//	@Summary		Add stock
//	@Description	Adds quantity to the caller's stock of a product, creating the entry when missing.
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.InventoryAddRequestDTO	true	"Product and quantity"
//	@Success		200		{object}	utils.Response
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Product not found"
//	@Router			/api/user/inventory [post]
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.InventoryAddRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.inventoryService.AddStock(r.Context(), userID, req.ProductID, req.Quantity)
	h.respond(w, err, "Stock added")
}

// SetQuantity godoc
//
//	@Summary	Set stock quantity
//	@Tags		Inventory
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		productID	path		int							true	"Product ID"
//	@Param		request		body		dto.InventorySetRequestDTO	true	"New quantity"
//	@Success	200			{object}	utils.Response
//	@Failure	400			{object}	utils.Response	"Invalid request"
//	@Failure	404			{object}	utils.Response	"Product not found"
//	@Router		/api/user/inventory/{productID} [put]
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	productID, ok := productParam(w, r)
	if !ok {
		return
	}

	var req dto.InventorySetRequestDTO
	if err := validate.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.inventoryService.SetQuantity(r.Context(), userID, productID, req.Quantity)
	h.respond(w, err, "Stock updated")
}

// RemoveEntry godoc
//
//	@Summary		Remove a product from inventory
//	@Description	Fails while the caller still has unfulfilled order lines for the product.
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	utils.Response
//	@Failure		404			{object}	utils.Response	"Inventory entry not found"
//	@Failure		409			{object}	utils.Response	"Product has unfulfilled orders"
//	@Router			/api/user/inventory/{productID} [delete]
func (h *InventoryHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	productID, ok := productParam(w, r)
	if !ok {
		return
	}

	err := h.inventoryService.Remove(r.Context(), userID, productID)
	h.respond(w, err, "Stock removed")
}

func productParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || productID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return productID, true
}

func (h *InventoryHandler) respond(w http.ResponseWriter, err error, message string) {
	if err != nil {
		switch {
		case errors.Is(err, inventoryservice.ErrInvalidQuantity):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, inventoryservice.ErrProductNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, inventoryservice.ErrEntryNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Inventory entry not found")
		case errors.Is(err, inventoryservice.ErrHasOutstandingOrders):
			utils.RespondWithError(w, http.StatusConflict, "Product has unfulfilled orders")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: message})
}
