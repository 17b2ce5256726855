package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/pos/internal/client"
	"github.com/greenbasket/pos/pkg/httputil"
)

// CatalogHandler proxies product lookups to the catalog backend so the till
// UI talks to one origin.
type CatalogHandler struct {
	catalog *client.CatalogClient
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *client.CatalogClient, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GetByBarcode handles GET /api/v1/pos/products/barcode/{barcode}
// @Summary Resolve a scanned barcode
// @Tags catalog
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param barcode path string true "Scanned barcode"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/pos/products/barcode/{barcode} [get]
func (h *CatalogHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if barcode == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "barcode is required"},
		})
		return
	}

	product, err := h.catalog.GetByBarcode(r.Context(), barcode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Search handles GET /api/v1/pos/products/search
// @Summary Search the catalog
// @Description Searches products by name or SKU fragment via the q query parameter.
// @Tags catalog
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/pos/products/search [get]
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "q query parameter is required"},
		})
		return
	}

	page := httputil.PageFromRequest(r)
	products, total, err := h.catalog.Search(r.Context(), query, page.PerPage, page.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: httputil.NewPaginated(products, total, page),
	})
}
