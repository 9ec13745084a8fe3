package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"stockledger/internal/auth"
	catalogctrl "stockledger/internal/catalog/controller"
	invoicectrl "stockledger/internal/invoice/controller"
	lpoctrl "stockledger/internal/lpo/controller"
	partyctrl "stockledger/internal/party/controller"
	salectrl "stockledger/internal/sale/controller"
)

// NewRouter mounts every module under /api behind the bearer-token
// middleware. Only the health probe is open.
func NewRouter(
	catalogCtrl *catalogctrl.CatalogController,
	saleCtrl *salectrl.SaleController,
	invoiceCtrl *invoicectrl.InvoiceController,
	lpoCtrl *lpoctrl.LPOController,
	partyCtrl *partyctrl.PartyController,
	jwtSecret []byte,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(jwtSecret))

		api.Route("/products", func(pr chi.Router) {
			pr.Post("/search", catalogCtrl.Search)
			pr.Get("/low-stock", catalogCtrl.ListLowStock)
			pr.Get("/{productId}", catalogCtrl.Get)
			pr.Delete("/{productId}", catalogCtrl.Delete)
			pr.Get("/{productId}/stock-entries", catalogCtrl.ListStockEntries)
			pr.Post("/{productId}/adjust-stock", catalogCtrl.AdjustStock)
			pr.Post("/{productId}/opening-stock", catalogCtrl.RecordOpeningStock)
		})

		api.Route("/sales", func(sr chi.Router) {
			sr.Post("/", saleCtrl.Create)
			sr.Get("/outstanding", saleCtrl.ListOutstanding)
			sr.Get("/{saleId}", saleCtrl.Get)
			sr.Post("/{saleId}/supply", saleCtrl.UpdateSupply)
		})

		api.Route("/invoices", func(ir chi.Router) {
			ir.Post("/", invoiceCtrl.Create)
			ir.Get("/outstanding", invoiceCtrl.ListOutstanding)
			ir.Get("/{invoiceId}", invoiceCtrl.Get)
			ir.Post("/{invoiceId}/payments", invoiceCtrl.RecordPayment)
		})

		api.Route("/lpos", func(lr chi.Router) {
			lr.Post("/", lpoCtrl.Create)
			lr.Get("/pending", lpoCtrl.ListPending)
			lr.Get("/{lpoId}", lpoCtrl.Get)
			lr.Post("/{lpoId}/deliveries", lpoCtrl.RecordDelivery)
			lr.Post("/{lpoId}/cancel", lpoCtrl.Cancel)
		})

		api.Get("/suppliers/search", partyCtrl.SearchSuppliers)
		api.Get("/customers/search", partyCtrl.SearchCustomers)
	})

	logger.Info("router initialised")

	return r
}
