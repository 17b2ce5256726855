package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenbasket/pos/internal/client"
	"github.com/greenbasket/pos/internal/printing"
	"github.com/greenbasket/pos/internal/service"
	"github.com/greenbasket/pos/pkg/health"
	"github.com/greenbasket/pos/pkg/middleware"
)

// NewRouter creates a chi router with all POS service routes registered.
func NewRouter(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	cashbookService *service.CashbookService,
	catalogClient *client.CatalogClient,
	renderer *printing.ReceiptRenderer,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing("pos-service"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(cartService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	cashbookHandler := NewCashbookHandler(cashbookService, logger)
	catalogHandler := NewCatalogHandler(catalogClient, logger)
	printHandler := NewPrintHandler(renderer, logger)

	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(TerminalIDFromHeader)
		r.Use(ContentTypeJSON)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.SetQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/cashbook", func(r chi.Router) {
			r.Post("/", cashbookHandler.RecordEntry)
			r.Get("/", cashbookHandler.ListTransactions)
			r.Get("/summary", cashbookHandler.DaySummary)
			r.Get("/{id}", cashbookHandler.GetTransaction)
		})

		r.Get("/products/barcode/{barcode}", catalogHandler.GetByBarcode)
		r.Get("/products/search", catalogHandler.Search)

		r.Post("/print/receipt", printHandler.Receipt)
		r.Post("/print/drawer", printHandler.OpenDrawer)
		r.Post("/barcodes", printHandler.GenerateBarcode)
		r.Get("/barcodes/{value}/image", printHandler.BarcodeImage)
	})

	return r
}
