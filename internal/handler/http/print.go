package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/printing"
	"github.com/greenbasket/pos/pkg/httputil"
)

// PrintHandler renders receipts and raw printer commands for the till's
// locally attached hardware. The service never talks to the printer itself;
// the till forwards the returned bytes to its serial port.
type PrintHandler struct {
	renderer *printing.ReceiptRenderer
	logger   *slog.Logger
}

// NewPrintHandler creates a new print HTTP handler.
func NewPrintHandler(renderer *printing.ReceiptRenderer, logger *slog.Logger) *PrintHandler {
	return &PrintHandler{
		renderer: renderer,
		logger:   logger,
	}
}

// ReceiptResponse carries the rendered receipt both as plain text for
// preview and as a complete ESC/POS job, base64-encoded by JSON.
type ReceiptResponse struct {
	Text string `json:"text"`
	Job  []byte `json:"job"`
}

// Receipt handles POST /api/v1/pos/print/receipt
// @Summary Render a sale receipt
// @Description Lays the completed sale out for a 58mm thermal roll and returns the ESC/POS job. Cash sales include a drawer kick.
// @Tags printing
// @Accept json
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Param request body domain.CompletedSale true "Completed sale"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/pos/print/receipt [post]
func (h *PrintHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var sale domain.CompletedSale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if sale.Order.ID == 0 || len(sale.Order.Items) == 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "a persisted order with items is required"},
		})
		return
	}

	now := time.Now()
	resp := ReceiptResponse{
		Text: h.renderer.Render(&sale, now),
		Job:  h.renderer.Job(&sale, now),
	}

	h.logger.InfoContext(r.Context(), "receipt rendered",
		slog.Int64("order_id", sale.Order.ID),
		slog.String("payment_method", sale.Order.PaymentMethod),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// OpenDrawer handles POST /api/v1/pos/print/drawer
// @Summary Get the drawer kick command
// @Description Returns the standalone ESC/POS drawer open sequence. Pass alt=true for printers needing the longer pulse.
// @Tags printing
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/pos/print/drawer [post]
func (h *PrintHandler) OpenDrawer(w http.ResponseWriter, r *http.Request) {
	alt := r.URL.Query().Get("alt") == "true"

	h.logger.InfoContext(r.Context(), "drawer kick issued", slog.Bool("alt_timing", alt))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"command": printing.OpenDrawerCommand(alt),
	}})
}

// GenerateBarcode handles POST /api/v1/pos/barcodes
// @Summary Generate an internal barcode number
// @Description Returns a fresh 12-digit internal barcode. The 10 prefix keeps it out of the EAN/UPC ranges.
// @Tags printing
// @Produce json
// @Param X-Terminal-ID header string true "Till identifier"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/pos/barcodes [post]
func (h *PrintHandler) GenerateBarcode(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{
		"barcode": printing.GenerateBarcodeNumber(),
	}})
}

// BarcodeImage handles GET /api/v1/pos/barcodes/{value}/image
// @Summary Render a barcode as PNG
// @Description Encodes the value as Code 128. Width and height query parameters are in pixels.
// @Tags printing
// @Produce png
// @Param X-Terminal-ID header string true "Till identifier"
// @Param value path string true "Barcode value"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/pos/barcodes/{value}/image [get]
func (h *PrintHandler) BarcodeImage(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "value")

	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))

	img, err := printing.RenderCode128(value, width, height)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
