package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/pos/internal/client"
	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/service"
	"github.com/greenbasket/pos/pkg/httpclient"
)

func testOrderBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"order": {
				"id": 42,
				"userId": 5,
				"shopId": 1,
				"total": "6.40",
				"status": "completed",
				"paymentMethod": "cash",
				"orderItems": [
					{"id": 1, "productId": 12, "quantity": 2, "priceAtOrderTime": "3.20", "subtotal": "6.40", "product": {"id": 12, "name": "Whole Milk 1L"}}
				]
			},
			"message": "order created"
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testCheckoutHandler(t *testing.T, carts *mockCartRepository, cashbook *mockCashbookRepository, backendURL string) *CheckoutHandler {
	t.Helper()
	logger := testLogger()
	orders := client.NewOrderClient(httpclient.New(httpclient.DefaultConfig()), backendURL, logger)
	svc := service.NewCheckoutService(carts, carts, cashbook, orders, testEventProducer(), logger,
		service.StoreIdentity{UserID: 5, ShopID: 1, LocationCode: "main"})
	return NewCheckoutHandler(svc, logger)
}

func setupCheckoutRouter(handler *CheckoutHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(TerminalIDFromHeader)
		r.Use(ContentTypeJSON)

		r.Post("/checkout", handler.Checkout)
	})
	return r
}

func TestCheckout_CashSuccess(t *testing.T) {
	carts := new(mockCartRepository)
	cashbook := new(mockCashbookRepository)
	srv := testOrderBackend(t)
	router := setupCheckoutRouter(testCheckoutHandler(t, carts, cashbook, srv.URL))

	carts.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	carts.On("Acquire", mock.Anything, "till-01", mock.Anything).Return(true, nil)
	carts.On("Release", mock.Anything, "till-01").Return(nil)
	carts.On("Delete", mock.Anything, "till-01").Return(nil)
	cashbook.On("Record", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionSale && tx.Amount == 640
	})).Return(nil)

	body, _ := json.Marshal(map[string]any{"payment_method": "cash", "received_amount": "10.00"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	var sale domain.CompletedSale
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &sale))

	assert.Equal(t, int64(42), sale.Order.ID)
	require.NotNil(t, sale.CashDetails)
	assert.Equal(t, domain.Money(360), sale.CashDetails.Change)

	carts.AssertExpectations(t)
	cashbook.AssertExpectations(t)
}

func TestCheckout_MissingTerminalID_Returns401(t *testing.T) {
	srv := testOrderBackend(t)
	router := setupCheckoutRouter(testCheckoutHandler(t, new(mockCartRepository), new(mockCashbookRepository), srv.URL))

	body, _ := json.Marshal(map[string]any{"payment_method": "card"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_InvalidPaymentMethod_Returns400(t *testing.T) {
	srv := testOrderBackend(t)
	router := setupCheckoutRouter(testCheckoutHandler(t, new(mockCartRepository), new(mockCashbookRepository), srv.URL))

	body, _ := json.Marshal(map[string]any{"payment_method": "crypto"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCheckout_InsufficientTender_Returns400(t *testing.T) {
	carts := new(mockCartRepository)
	srv := testOrderBackend(t)
	router := setupCheckoutRouter(testCheckoutHandler(t, carts, new(mockCashbookRepository), srv.URL))

	carts.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)

	// Cart total is 6.40.
	body, _ := json.Marshal(map[string]any{"payment_method": "cash", "received_amount": "5.00"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_TENDER", resp.Error.Code)
	carts.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_InFlight_Returns409(t *testing.T) {
	carts := new(mockCartRepository)
	srv := testOrderBackend(t)
	router := setupCheckoutRouter(testCheckoutHandler(t, carts, new(mockCashbookRepository), srv.URL))

	carts.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	carts.On("Acquire", mock.Anything, "till-01", mock.Anything).Return(false, nil)

	body, _ := json.Marshal(map[string]any{"payment_method": "card"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CHECKOUT_IN_PROGRESS", resp.Error.Code)
}

func TestCheckout_BackendDown_KeepsCart(t *testing.T) {
	carts := new(mockCartRepository)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"product 12 is out of stock"}}`))
	}))
	t.Cleanup(srv.Close)
	router := setupCheckoutRouter(testCheckoutHandler(t, carts, new(mockCashbookRepository), srv.URL))

	carts.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	carts.On("Acquire", mock.Anything, "till-01", mock.Anything).Return(true, nil)
	carts.On("Release", mock.Anything, "till-01").Return(nil)

	body, _ := json.Marshal(map[string]any{"payment_method": "card"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/checkout", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	carts.AssertExpectations(t)
}
