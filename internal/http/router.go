package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Terminal       *session.Terminal
	Reports        Reports
	RequestTimeout time.Duration
	Log            *zap.Logger
}

// NewRouter mounts the till API under /api/v1.
func NewRouter(opts RouterOptions) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	menuHandler := NewMenuHandler(opts.Terminal, opts.RequestTimeout)
	cartHandler := NewCartHandler(opts.Terminal)
	checkoutHandler := NewCheckoutHandler(opts.Terminal, opts.RequestTimeout)
	reportHandler := NewReportHandler(opts.Reports, opts.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", menuHandler.GetMenu)
		r.Post("/menu/refresh", menuHandler.RefreshMenu)
		r.Get("/payment-methods", menuHandler.GetPaymentMethods)
		r.Get("/orders/recent", menuHandler.GetRecentOrders)
		r.Get("/kitchen/tickets", menuHandler.GetKitchenTickets)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{line_id}/quantity", cartHandler.ChangeQuantity)
			r.Post("/items/{line_id}/price", cartHandler.AdjustPrice)
			r.Put("/discount", cartHandler.SetDiscount)
			r.Put("/extra-fee", cartHandler.SetExtraFee)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetCheckout)
			r.Post("/open", checkoutHandler.Open)
			r.Post("/method", checkoutHandler.SelectMethod)
			r.Post("/cash", checkoutHandler.SetCashReceived)
			r.Post("/cancel", checkoutHandler.Cancel)
			r.Post("/confirm", checkoutHandler.Confirm)
		})
		r.Get("/receipts/last.png", checkoutHandler.LastReceipt)

		if opts.Reports != nil {
			r.Route("/reports", func(r chi.Router) {
				r.Get("/dashboard", reportHandler.GetDashboard)
				r.With(middleware.Compress(5)).Get("/sales.csv", reportHandler.ExportSales)
				r.With(middleware.Compress(5)).Get("/menu-sales.csv", reportHandler.ExportMenuSales)
			})
			r.Post("/finance/expenses", reportHandler.CreateExpense)
			r.Post("/finance/income", reportHandler.CreateIncome)
		}
	})

	return otelhttp.NewHandler(r, "pos-terminal")
}
