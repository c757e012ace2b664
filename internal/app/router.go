package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gemdesk/gemdesk/internal/auth"
	"github.com/gemdesk/gemdesk/internal/catalog"
	"github.com/gemdesk/gemdesk/internal/documents"
	"github.com/gemdesk/gemdesk/internal/inventory"
	"github.com/gemdesk/gemdesk/internal/orders"
	"github.com/gemdesk/gemdesk/internal/partners"
	"github.com/gemdesk/gemdesk/internal/products"
	"github.com/gemdesk/gemdesk/internal/shared"
	"github.com/gemdesk/gemdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler      *auth.Handler
	CatalogModule    *catalog.Module
	ProductsHandler  *products.Handler
	PartnersHandler  *partners.Handler
	InventoryHandler *inventory.Handler
	OrdersHandler    *orders.Handler
	DocumentsHandler *documents.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with gateway defaults. Everything
// except the health check and the auth endpoints requires a logged-in
// operator.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireLogin)

		r.Route("/catalog", params.CatalogModule.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/partners", params.PartnersHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/documents", params.DocumentsHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
