package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/event"
	"github.com/greenbasket/pos/internal/repository"
	"github.com/greenbasket/pos/internal/service"
	apperrors "github.com/greenbasket/pos/pkg/errors"
	"github.com/greenbasket/pos/pkg/httputil"
	pkgkafka "github.com/greenbasket/pos/pkg/kafka"
)

// ============================================================================
// Mock CartRepository (also serves as the checkout guard)
// ============================================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, terminalID string) (*domain.Cart, error) {
	args := m.Called(ctx, terminalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, terminalID string) error {
	args := m.Called(ctx, terminalID)
	return args.Error(0)
}

func (m *mockCartRepository) Acquire(ctx context.Context, terminalID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, terminalID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Release(ctx context.Context, terminalID string) error {
	args := m.Called(ctx, terminalID)
	return args.Error(0)
}

// ============================================================================
// Mock CashbookRepository
// ============================================================================

type mockCashbookRepository struct {
	mock.Mock
}

func (m *mockCashbookRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockCashbookRepository) List(ctx context.Context, shopID int64, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	args := m.Called(ctx, shopID, filter)
	return args.Get(0).([]domain.Transaction), args.Int(1), args.Error(2)
}

func (m *mockCashbookRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockCashbookRepository) DaySummary(ctx context.Context, shopID int64, day time.Time) (*domain.DaySummary, error) {
	args := m.Called(ctx, shopID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DaySummary), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testCartService(repo *mockCartRepository) *service.CartService {
	return service.NewCartService(repo, testEventProducer(), testLogger(), 12*time.Hour)
}

func testCartHandler(repo *mockCartRepository) *CartHandler {
	return NewCartHandler(testCartService(repo), testLogger())
}

// setupCartRouter mirrors the production route layout including the
// TerminalIDFromHeader and ContentTypeJSON middleware, so the header
// requirement is tested end-to-end.
func setupCartRouter(handler *CartHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(TerminalIDFromHeader)
		r.Use(ContentTypeJSON)

		r.Get("/cart", handler.GetCart)
		r.Delete("/cart", handler.ClearCart)
		r.Post("/cart/items", handler.AddItem)
		r.Put("/cart/items/{productID}", handler.SetQuantity)
		r.Delete("/cart/items/{productID}", handler.RemoveItem)
	})
	return r
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func moneyPtr(m domain.Money) *domain.Money { return &m }

// sampleCart returns a cart with one line, suitable for test assertions.
func sampleCart() *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:         "cart-001",
		TerminalID: "till-01",
		Items: []domain.Line{
			{
				ProductID: 12,
				Product:   domain.Product{ID: 12, Name: "Whole Milk 1L", POSPrice: moneyPtr(320)},
				Quantity:  2,
				UnitPrice: 320,
				Total:     640,
			},
		},
		TotalItems:  2,
		TotalAmount: 640,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(12 * time.Hour),
	}
}

// ============================================================================
// GET /api/v1/pos/cart - GetCart
// ============================================================================

func TestGetCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/cart", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestGetCart_NoCartYet_ReturnsEmpty(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	// A till with no stored cart gets a fresh empty one.
	repo.On("Get", mock.Anything, "till-01").Return(nil, apperrors.NotFound("cart", "till-01"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/cart", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestGetCart_MissingTerminalID_Returns401(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/cart", nil)
	// No X-Terminal-ID header.
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestGetCart_ServiceError(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(nil, fmt.Errorf("redis connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/cart", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	repo.AssertExpectations(t)
}

// ============================================================================
// POST /api/v1/pos/cart/items - AddItem
// ============================================================================

func validAddItemJSON() []byte {
	body := AddItemRequest{
		Product: domain.Product{
			ID:       12,
			Name:     "Whole Milk 1L",
			POSPrice: moneyPtr(320),
			Barcode:  "1012345678901",
		},
	}
	b, _ := json.Marshal(body)
	return b
}

func TestAddItem_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(nil, apperrors.NotFound("cart", "till-01"))
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return c.TerminalID == "till-01" && c.TotalItems == 1 && c.TotalAmount == 320
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/items", bytes.NewReader(validAddItemJSON()))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestAddItem_MalformedJSON_Returns400(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/items", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_PricelessProduct_Returns400(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	body, _ := json.Marshal(AddItemRequest{Product: domain.Product{ID: 9, Name: "Mystery Item"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/items", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_WrongContentType_Returns415(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/items", bytes.NewReader(validAddItemJSON()))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// PUT /api/v1/pos/cart/items/{productID} - SetQuantity
// ============================================================================

func TestSetQuantity_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return c.TotalItems == 5 && c.TotalAmount == 1600
	})).Return(nil)

	body, _ := json.Marshal(SetQuantityRequest{Quantity: 5})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pos/cart/items/12", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSetQuantity_InvalidProductID_Returns400(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	body, _ := json.Marshal(SetQuantityRequest{Quantity: 5})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pos/cart/items/abc", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetQuantity_Zero_RemovesLine(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Items) == 0 && c.TotalAmount == 0
	})).Return(nil)

	body, _ := json.Marshal(SetQuantityRequest{Quantity: 0})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pos/cart/items/12", bytes.NewReader(body))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// DELETE /api/v1/pos/cart/items/{productID} - RemoveItem
// ============================================================================

func TestRemoveItem_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Items) == 0
	})).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/pos/cart/items/12", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// DELETE /api/v1/pos/cart - ClearCart
// ============================================================================

func TestClearCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, "till-01").Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Items) == 0 && c.TotalItems == 0 && c.TotalAmount == 0
	})).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/pos/cart", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}
