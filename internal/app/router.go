package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/catalog/customers"
	"github.com/fabriq-erp/fabriq/internal/catalog/labor"
	"github.com/fabriq-erp/fabriq/internal/catalog/processes"
	"github.com/fabriq-erp/fabriq/internal/catalog/products"
	"github.com/fabriq-erp/fabriq/internal/observability"
	"github.com/fabriq-erp/fabriq/internal/quotes"
	"github.com/fabriq-erp/fabriq/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	CustomersHandler *customers.Handler
	ProductsHandler  *products.Handler
	ProcessesHandler *processes.Handler
	LaborHandler     *labor.Handler
	CostHandler      *bom.Handler
	OrdersHandler    *quotes.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Fabriq defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.ProcessesHandler != nil {
		r.Route("/processes", params.ProcessesHandler.MountRoutes)
	}
	if params.LaborHandler != nil {
		r.Route("/labor-types", params.LaborHandler.MountRoutes)
	}
	if params.ProductsHandler != nil {
		r.Route("/products", func(r chi.Router) {
			params.ProductsHandler.MountRoutes(r)
			if params.CostHandler != nil {
				params.CostHandler.MountRoutes(r)
			}
		})
	}
	if params.OrdersHandler != nil {
		r.Route("/orders", params.OrdersHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
