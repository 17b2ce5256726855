package http

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/pos/internal/printing"
)

func setupPrintRouter() *chi.Mux {
	handler := NewPrintHandler(printing.NewReceiptRenderer(0.08), testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(TerminalIDFromHeader)
		r.Use(ContentTypeJSON)

		r.Post("/print/receipt", handler.Receipt)
		r.Post("/print/drawer", handler.OpenDrawer)
		r.Post("/barcodes", handler.GenerateBarcode)
		r.Get("/barcodes/{value}/image", handler.BarcodeImage)
	})
	return r
}

func completedSaleJSON() []byte {
	return []byte(`{
		"order": {
			"id": 42,
			"total": "6.40",
			"paymentMethod": "cash",
			"createdAt": "2026-08-28T10:30:00Z",
			"orderItems": [
				{"id": 1, "productId": 12, "quantity": 2, "priceAtOrderTime": "3.24", "subtotal": "6.48", "product": {"id": 12, "name": "Whole Milk 1L"}}
			],
			"shop": {"id": 1, "name": "Green Basket", "address": "1 Market St"}
		},
		"cash_details": {"received_amount": "10.00", "change": "3.60"}
	}`)
}

func TestReceipt_Success(t *testing.T) {
	router := setupPrintRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/print/receipt", bytes.NewReader(completedSaleJSON()))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	text, _ := data["text"].(string)
	assert.Contains(t, text, "Green Basket")
	assert.Contains(t, text, "Received:")

	// The job rides as base64; cash sales carry the drawer kick.
	job, err := base64.StdEncoding.DecodeString(data["job"].(string))
	require.NoError(t, err)
	assert.Contains(t, string(job), string(printing.OpenDrawerCommand(false)))
}

func TestReceipt_UnpersistedOrder_Returns400(t *testing.T) {
	router := setupPrintRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/print/receipt",
		bytes.NewReader([]byte(`{"order": {"id": 0, "orderItems": []}}`)))
	req.Header.Set("X-Terminal-ID", "till-01")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenDrawer_AltTiming(t *testing.T) {
	router := setupPrintRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/print/drawer?alt=true", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	cmd, err := base64.StdEncoding.DecodeString(data["command"].(string))
	require.NoError(t, err)
	assert.Equal(t, printing.OpenDrawerCommand(true), cmd)
}

func TestGenerateBarcode(t *testing.T) {
	router := setupPrintRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/barcodes", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	code, _ := data["barcode"].(string)
	assert.Len(t, code, 12)
	assert.Equal(t, "10", code[:2])
}

func TestBarcodeImage_ReturnsPNG(t *testing.T) {
	router := setupPrintRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/barcodes/1012345678901/image?width=300&height=80", nil)
	req.Header.Set("X-Terminal-ID", "till-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}
