package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/internal/service/orderservice"
	"github.com/GlebRadaev/campusmart/internal/service/purchaseservice"
	"github.com/GlebRadaev/campusmart/pkg/auth"
)

func NewMock(t *testing.T) (*OrderHandler, *MockService, *MockPurchaseService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	purchases := NewMockPurchaseService(ctrl)
	handler := New(service, purchases)
	defer ctrl.Finish()
	return handler, service, purchases
}

func withUser(r *http.Request, userID int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSubmitOrderHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Order placed",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(42, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Empty cart",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, orderservice.ErrCartEmpty)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "No seller",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, fmt.Errorf("wrapped: %w", orderservice.ErrNoSeller))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Insufficient balance",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, orderservice.ErrInsufficientBalance)
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name: "Inventory changed",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, orderservice.ErrInventoryConflict)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Balance changed",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, balanceservice.ErrInsufficientFunds)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Processing failure",
			prepareMock: func() {
				service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(0, fmt.Errorf("%w: %w", orderservice.ErrOrderProcessing, errors.New("db")))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.SubmitOrder(w, withUser(httptest.NewRequest(http.MethodPost, "/api/user/orders", nil), 1))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestSubmitOrderHandler_Body(t *testing.T) {
	handler, service, _ := NewMock(t)
	service.EXPECT().SubmitOrder(gomock.Any(), 1).Return(42, nil)

	w := httptest.NewRecorder()
	handler.SubmitOrder(w, withUser(httptest.NewRequest(http.MethodPost, "/api/user/orders", nil), 1))

	var body dto.SubmitOrderResponseDTO
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 42, body.OrderID)
}

func TestGetOrdersHandler(t *testing.T) {
	handler, _, purchases := NewMock(t)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := &domain.PurchasePage{
		Orders: []domain.PurchaseOrder{{
			OrderID:    5,
			CreatedAt:  createdAt,
			TotalCents: 2500,
			ItemCount:  1,
			Lines:      []domain.PurchaseLine{{LineID: 9, ProductID: 10, ProductName: "Lamp", Quantity: 2, UnitPriceCents: 1250, LineTotalCents: 2500, SellerID: 2, SellerName: "Bob"}},
		}},
		TotalOrders: 1,
	}
	sellerID := 2
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		url          string
		prepareMock  func()
		expectedCode int
		expectedPage int
	}{
		{
			name: "Defaults use limit and offset",
			url:  "/api/user/orders",
			prepareMock: func() {
				purchases.EXPECT().GetPurchasesForUser(gomock.Any(), 1, 0, 0, domain.PurchaseFilter{}).Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Filters are parsed",
			url:  "/api/user/orders?limit=5&offset=10&item=lamp&seller_id=2&seller=bo&start=2026-01-01&end=2026-01-31",
			prepareMock: func() {
				purchases.EXPECT().GetPurchasesForUser(gomock.Any(), 1, 5, 10, domain.PurchaseFilter{
					ItemQuery:  "lamp",
					SellerID:   &sellerID,
					SellerName: "bo",
					StartAt:    &start,
					EndBefore:  &end,
				}).Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Page mode reports the served page",
			url:  "/api/user/orders?page=9&per_page=10",
			prepareMock: func() {
				purchases.EXPECT().GetPurchasePage(gomock.Any(), 1, 9, 10, domain.PurchaseFilter{}).Return(page, 1, nil)
			},
			expectedCode: http.StatusOK,
			expectedPage: 1,
		},
		{
			name:         "Bad limit",
			url:          "/api/user/orders?limit=ten",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Bad date",
			url:          "/api/user/orders?start=yesterday",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Start after end",
			url:          "/api/user/orders?start=2026-02-01&end=2026-01-01",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Service failure",
			url:  "/api/user/orders",
			prepareMock: func() {
				purchases.EXPECT().GetPurchasesForUser(gomock.Any(), 1, 0, 0, domain.PurchaseFilter{}).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.GetOrders(w, withUser(httptest.NewRequest(http.MethodGet, tt.url, nil), 1))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.PurchasePageDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, 1, body.TotalOrders)
				assert.Equal(t, tt.expectedPage, body.Page)
				assert.Equal(t, int64(2500), body.Orders[0].Lines[0].LineTotalCents)
			}
		})
	}
}

func TestGetSalesHandler(t *testing.T) {
	handler, _, purchases := NewMock(t)

	purchases.EXPECT().GetSalesForSeller(gomock.Any(), 2, 10, 0, domain.PurchaseFilter{}).
		Return(&domain.PurchasePage{Orders: []domain.PurchaseOrder{}}, nil)
	w := httptest.NewRecorder()
	handler.GetSales(w, withUser(httptest.NewRequest(http.MethodGet, "/api/user/sales?limit=10", nil), 2))
	assert.Equal(t, http.StatusOK, w.Code)

	var body dto.PurchasePageDTO
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotNil(t, body.Orders)
	assert.Empty(t, body.Orders)
}

func TestGetOrderHandler(t *testing.T) {
	handler, service, _ := NewMock(t)
	order := &domain.Order{
		ID:         5,
		BuyerID:    1,
		TotalCents: 2500,
		Lines:      []domain.OrderLine{{ID: 9, OrderID: 5, ProductID: 10, SellerID: 2, Quantity: 2, UnitPriceCents: 1250}},
	}

	tests := []struct {
		name         string
		userID       int
		param        string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:   "Buyer sees order",
			userID: 1,
			param:  "5",
			prepareMock: func() {
				service.EXPECT().GetOrderDetail(gomock.Any(), 5).Return(order, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Seller sees order",
			userID: 2,
			param:  "5",
			prepareMock: func() {
				service.EXPECT().GetOrderDetail(gomock.Any(), 5).Return(order, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Stranger gets not found",
			userID: 3,
			param:  "5",
			prepareMock: func() {
				service.EXPECT().GetOrderDetail(gomock.Any(), 5).Return(order, nil)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:   "Missing order",
			userID: 1,
			param:  "6",
			prepareMock: func() {
				service.EXPECT().GetOrderDetail(gomock.Any(), 6).Return(nil, orderservice.ErrOrderNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Invalid id",
			userID:       1,
			param:        "abc",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withParam(httptest.NewRequest(http.MethodGet, "/api/user/orders/"+tt.param, nil), "orderID", tt.param)
			w := httptest.NewRecorder()
			handler.GetOrder(w, withUser(r, tt.userID))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.OrderDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "$25.00", body.Total)
				assert.Equal(t, int64(2500), body.Lines[0].LineTotalCents)
			}
		})
	}
}

func TestFulfillLineHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Fulfilled",
			prepareMock: func() {
				service.EXPECT().FulfillLine(gomock.Any(), 2, 9).Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Not the seller",
			prepareMock: func() {
				service.EXPECT().FulfillLine(gomock.Any(), 2, 9).Return(orderservice.ErrLineNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Already fulfilled",
			prepareMock: func() {
				service.EXPECT().FulfillLine(gomock.Any(), 2, 9).Return(orderservice.ErrAlreadyFulfilled)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withParam(httptest.NewRequest(http.MethodPost, "/api/user/sales/9/fulfill", nil), "lineID", "9")
			w := httptest.NewRecorder()
			handler.FulfillLine(w, withUser(r, 2))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetSummaryHandler(t *testing.T) {
	handler, _, purchases := NewMock(t)
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	purchases.EXPECT().GetPurchaseSummary(gomock.Any(), 1).
		Return(&domain.PurchaseSummary{OrderCount: 2, TotalCents: 4200, LastOrderAt: &last}, nil)
	w := httptest.NewRecorder()
	handler.GetSummary(w, withParam(httptest.NewRequest(http.MethodGet, "/api/users/1/summary", nil), "userID", "1"))
	assert.Equal(t, http.StatusOK, w.Code)

	var body dto.PurchaseSummaryDTO
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "$42.00", body.Total)
	assert.Equal(t, 2, body.OrderCount)

	purchases.EXPECT().GetPurchaseSummary(gomock.Any(), 8).Return(nil, purchaseservice.ErrUserNotFound)
	w = httptest.NewRecorder()
	handler.GetSummary(w, withParam(httptest.NewRequest(http.MethodGet, "/api/users/8/summary", nil), "userID", "8"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
