package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/internal/service/orderservice"
	"github.com/GlebRadaev/campusmart/internal/service/purchaseservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/money"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

type Service interface {
	SubmitOrder(ctx context.Context, buyerID int) (int, error)
	GetOrderDetail(ctx context.Context, orderID int) (*domain.Order, error)
	FulfillLine(ctx context.Context, sellerID, lineID int) error
}
type PurchaseService interface {
	GetPurchasesForUser(ctx context.Context, buyerID, limit, offset int, filter domain.PurchaseFilter) (*domain.PurchasePage, error)
	GetSalesForSeller(ctx context.Context, sellerID, limit, offset int, filter domain.PurchaseFilter) (*domain.PurchasePage, error)
	GetPurchasePage(ctx context.Context, buyerID, page, perPage int, filter domain.PurchaseFilter) (*domain.PurchasePage, int, error)
	GetPurchaseSummary(ctx context.Context, userID int) (*domain.PurchaseSummary, error)
}

type OrderHandler struct {
	orderService    Service
	purchaseService PurchaseService
}

func New(orderService Service, purchaseService PurchaseService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		purchaseService: purchaseService,
	}
}

// SubmitOrder godoc
//
//	@Summary		Check out the cart
//	@Description	Converts the cart into an order, moving stock and money atomically.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Success		201	{object}	dto.SubmitOrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Cart cannot be checked out"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		409	{object}	utils.Response	"Stock or balance changed during checkout"
//	@Failure		500	{object}	utils.Response	"Error processing order"
//	@Router			/api/user/orders [post]
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	orderID, err := h.orderService.SubmitOrder(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, orderservice.ErrInsufficientBalance):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		case orderservice.IsValidation(err):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, orderservice.ErrInventoryConflict), errors.Is(err, balanceservice.ErrInsufficientFunds):
			utils.RespondWithError(w, http.StatusConflict, "Stock or balance changed during checkout, please retry")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Error processing order")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.SubmitOrderResponseDTO{
		OrderID: orderID,
		Message: "Order placed",
	})
}

// GetOrders godoc
//
//	@Summary		List own purchases
//	@Description	Orders newest first. Use page/per_page, or limit/offset when page is absent.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page		query		int		false	"1-based page, clamped to the last page"
//	@Param			per_page	query		int		false	"Orders per page"
//	@Param			limit		query		int		false	"Orders per page"
//	@Param			offset		query		int		false	"Orders to skip"
//	@Param			item		query		string	false	"Product name contains"
//	@Param			seller_id	query		int		false	"Seller id"
//	@Param			seller		query		string	false	"Seller name contains"
//	@Param			start		query		string	false	"Created at or after (RFC3339 or YYYY-MM-DD)"
//	@Param			end			query		string	false	"Created before (RFC3339, or YYYY-MM-DD inclusive)"
//	@Success		200			{object}	dto.PurchasePageDTO
//	@Failure		400			{object}	utils.Response	"Invalid query"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/user/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Has("page") {
		page, perPage, err := pageParams(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, served, err := h.purchaseService.GetPurchasePage(r.Context(), userID, page, perPage, filter)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		resp := purchasePage(result)
		resp.Page = served
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	limit, offset, err := limitParams(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.purchaseService.GetPurchasesForUser(r.Context(), userID, limit, offset, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, purchasePage(result))
}

// GetSales godoc
//
//	@Summary	List orders containing own sales
//	@Tags		Orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit		query		int		false	"Orders per page"
//	@Param		offset		query		int		false	"Orders to skip"
//	@Param		item		query		string	false	"Product name contains"
//	@Param		start		query		string	false	"Created at or after"
//	@Param		end			query		string	false	"Created before"
//	@Success	200			{object}	dto.PurchasePageDTO
//	@Failure	400			{object}	utils.Response	"Invalid query"
//	@Failure	500			{object}	utils.Response	"Internal server error"
//	@Router		/api/user/sales [get]
func (h *OrderHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset, err := limitParams(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.purchaseService.GetSalesForSeller(r.Context(), userID, limit, offset, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, purchasePage(result))
}

// GetOrder godoc
//
//	@Summary		Get order detail
//	@Description	Visible to the buyer and to sellers of any of its lines.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Param			orderID	path		int	true	"Order ID"
//	@Success		200		{object}	dto.OrderDTO
//	@Failure		400		{object}	utils.Response	"Invalid order id"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Router			/api/user/orders/{orderID} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, orderservice.ErrOrderNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !order.Involves(userID) {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	resp := dto.OrderDTO{
		ID:         order.ID,
		BuyerID:    order.BuyerID,
		CreatedAt:  order.CreatedAt,
		TotalCents: order.TotalCents,
		Total:      money.Format(order.TotalCents),
		Fulfilled:  order.Fulfilled,
		Lines:      make([]dto.OrderLineDTO, len(order.Lines)),
	}
	for i, line := range order.Lines {
		resp.Lines[i] = dto.OrderLineDTO{
			ID:             line.ID,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			SellerID:       line.SellerID,
			SellerName:     line.SellerName,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.LineTotalCents(),
			FulfilledAt:    line.FulfilledAt,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// FulfillLine godoc
//
//	@Summary	Mark a sold line as fulfilled
//	@Tags		Orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		lineID	path		int	true	"Order line ID"
//	@Success	200		{object}	utils.Response
//	@Failure	404		{object}	utils.Response	"Order line not found"
//	@Failure	409		{object}	utils.Response	"Order line already fulfilled"
//	@Router		/api/user/sales/{lineID}/fulfill [post]
func (h *OrderHandler) FulfillLine(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	lineID, ok := pathID(w, r, "lineID")
	if !ok {
		return
	}

	err := h.orderService.FulfillLine(r.Context(), userID, lineID)
	if err != nil {
		switch {
		case errors.Is(err, orderservice.ErrLineNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order line not found")
		case errors.Is(err, orderservice.ErrAlreadyFulfilled):
			utils.RespondWithError(w, http.StatusConflict, "Order line already fulfilled")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Order line fulfilled"})
}

// GetSummary godoc
//
//	@Summary	Purchase summary of a user
//	@Tags		Orders
//	@Produce	json
//	@Param		userID	path		int	true	"User ID"
//	@Success	200		{object}	dto.PurchaseSummaryDTO
//	@Failure	404		{object}	utils.Response	"User not found"
//	@Router		/api/users/{userID}/summary [get]
func (h *OrderHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	summary, err := h.purchaseService.GetPurchaseSummary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, purchaseservice.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PurchaseSummaryDTO{
		OrderCount:  summary.OrderCount,
		TotalCents:  summary.TotalCents,
		Total:       money.Format(summary.TotalCents),
		LastOrderAt: summary.LastOrderAt,
	})
}

func purchasePage(page *domain.PurchasePage) dto.PurchasePageDTO {
	resp := dto.PurchasePageDTO{
		Orders:      make([]dto.PurchaseOrderDTO, len(page.Orders)),
		TotalOrders: page.TotalOrders,
	}
	for i, order := range page.Orders {
		lines := make([]dto.PurchaseLineDTO, len(order.Lines))
		for j, line := range order.Lines {
			lines[j] = dto.PurchaseLineDTO{
				LineID:         line.LineID,
				ProductID:      line.ProductID,
				ProductName:    line.ProductName,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
				LineTotalCents: line.LineTotalCents,
				Fulfilled:      line.Fulfilled,
				SellerID:       line.SellerID,
				SellerName:     line.SellerName,
			}
		}
		resp.Orders[i] = dto.PurchaseOrderDTO{
			OrderID:      order.OrderID,
			CreatedAt:    order.CreatedAt,
			TotalCents:   order.TotalCents,
			ItemCount:    order.ItemCount,
			AllFulfilled: order.AllFulfilled,
			Lines:        lines,
		}
	}
	return resp
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return id, true
}

func limitParams(r *http.Request) (int, int, error) {
	limit, err := validate.QueryInt(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	offset, err := validate.QueryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func pageParams(r *http.Request) (int, int, error) {
	page, err := validate.QueryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	perPage, err := validate.QueryInt(r, "per_page", 0)
	if err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

const dateLayout = "2006-01-02"

func parseFilter(r *http.Request) (domain.PurchaseFilter, error) {
	q := r.URL.Query()
	filter := domain.PurchaseFilter{
		ItemQuery:  strings.TrimSpace(q.Get("item")),
		SellerName: strings.TrimSpace(q.Get("seller")),
	}

	if q.Get("seller_id") != "" {
		sellerID, err := validate.QueryInt(r, "seller_id", 0)
		if err != nil {
			return filter, err
		}
		filter.SellerID = &sellerID
	}

	if raw := q.Get("start"); raw != "" {
		start, _, err := parseTime(raw)
		if err != nil {
			return filter, fmt.Errorf("start: %w", err)
		}
		filter.StartAt = &start
	}
	if raw := q.Get("end"); raw != "" {
		end, dateOnly, err := parseTime(raw)
		if err != nil {
			return filter, fmt.Errorf("end: %w", err)
		}
		// a bare date includes the whole day
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		filter.EndBefore = &end
	}
	if filter.StartAt != nil && filter.EndBefore != nil && !filter.StartAt.Before(*filter.EndBefore) {
		return filter, errors.New("start must be before end")
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, errors.New("expected RFC3339 timestamp or YYYY-MM-DD date")
	}
	return t, true, nil
}
