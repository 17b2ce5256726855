package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/pos/internal/repository"
	"github.com/greenbasket/pos/internal/service"
	"github.com/greenbasket/pos/pkg/httputil"
	"github.com/greenbasket/pos/pkg/validator"
)

// CashbookHandler handles HTTP requests for the drawer ledger.
type CashbookHandler struct {
	service *service.CashbookService
	logger  *slog.Logger
}

// NewCashbookHandler creates a new cashbook HTTP handler.
func NewCashbookHandler(svc *service.CashbookService, logger *slog.Logger) *CashbookHandler {
	return &CashbookHandler{
		service: svc,
		logger:  logger,
	}
}

// RecordEntry handles POST /api/v1/pos/cashbook
// @Summary Record a manual drawer movement
// @Description Records a withdrawal or deposit. Sales and returns are written by their own flows.
// @Tags cashbook
// @Accept json
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param request body service.RecordEntryInput true "Drawer movement"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cashbook [post]
func (h *CashbookHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var input service.RecordEntryInput
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

	tx, err := h.service.RecordEntry(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: tx})
}

// ListTransactions handles GET /api/v1/pos/cashbook
// @Summary List ledger entries
// @Description Returns entries newest first, filtered by type, payment_method, start_date, and end_date (RFC 3339 dates), paginated by page/per_page.
// @Tags cashbook
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cashbook [get]
func (h *CashbookHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page := httputil.PageFromRequest(r)
	filter := repository.TransactionFilter{
		Type:          r.URL.Query().Get("type"),
		PaymentMethod: r.URL.Query().Get("payment_method"),
		Limit:         page.PerPage,
		Offset:        page.Offset,
	}

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "start_date must be RFC 3339"},
			})
			return
		}
		filter.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "end_date must be RFC 3339"},
			})
			return
		}
		filter.EndDate = &t
	}

	transactions, total, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: httputil.NewPaginated(transactions, total, page),
	})
}

// GetTransaction handles GET /api/v1/pos/cashbook/{id}
// @Summary Get one ledger entry
// @Tags cashbook
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param id path int true "Transaction ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cashbook/{id} [get]
func (h *CashbookHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "transaction id must be a positive integer"},
		})
		return
	}

	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tx})
}

// DaySummary handles GET /api/v1/pos/cashbook/summary
// @Summary Daily drawer summary
// @Description Aggregates one calendar day of drawer activity. The date query parameter is YYYY-MM-DD and defaults to today.
// @Tags cashbook
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/pos/cashbook/summary [get]
func (h *CashbookHandler) DaySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "date must be YYYY-MM-DD"},
			})
			return
		}
		day = t
	}

	summary, err := h.service.DaySummary(r.Context(), day)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Derived balances ride along so clients never recompute them.
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"summary":      summary,
		"closing_cash": summary.ClosingCash(),
		"closing_card": summary.ClosingCard(),
	}})
}
