package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/greenbasket/pos/internal/service"
	"github.com/greenbasket/pos/pkg/httputil"
	"github.com/greenbasket/pos/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout submission.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// Checkout handles POST /api/v1/pos/checkout
// @Summary Submit the session cart as a sale
// @Description Validates preconditions, submits the cart to the order backend, and clears the cart on success. Cash payments must tender at least the cart total; change is computed from the backend's authoritative total. A second submission while one is in flight is rejected with 409.
// @Tags checkout
// @Accept json
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param request body service.CheckoutInput true "Payment details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/checkout [post]
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	tid, ok := terminalIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "terminal identity missing"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var input service.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sale, err := h.service.Checkout(r.Context(), tid, &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sale})
}
