package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/service"
	"github.com/greenbasket/pos/pkg/httputil"
	"github.com/greenbasket/pos/pkg/validator"
)

// CartHandler handles HTTP requests for the terminal's session cart.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest carries the catalog snapshot of the scanned product. The
// snapshot is embedded whole so the cart line survives later catalog edits.
type AddItemRequest struct {
	Product domain.Product `json:"product" validate:"required"`
}

// SetQuantityRequest is the JSON request body for overwriting a line's quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/pos/cart
// @Summary Get the session cart
// @Description Returns the till's current cart, creating an empty one if none exists. Requires X-Terminal-ID header.
// @Tags cart
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	cart, err := h.service.GetCart(r.Context(), tid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/pos/cart/items
// @Summary Add a product to the cart
// @Description Adds one unit of the product, or bumps the existing line's quantity. The line keeps the price it was opened at.
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param request body AddItemRequest true "Catalog product snapshot"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), tid, &req.Product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// SetQuantity handles PUT /api/v1/pos/cart/items/{productID}
// @Summary Overwrite a line's quantity
// @Description Sets the quantity for the product's line. Zero or negative removes the line.
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param productID path int true "Product ID"
// @Param request body SetQuantityRequest true "New quantity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cart/items/{productID} [put]
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id must be a positive integer"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), tid, productID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/pos/cart/items/{productID}
// @Summary Remove a line from the cart
// @Tags cart
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param productID path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cart/items/{productID} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id must be a positive integer"},
		})
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), tid, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/pos/cart
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cart [delete]
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	cart, err := h.service.ClearCart(r.Context(), tid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}
