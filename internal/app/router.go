package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/backstock/backstock/internal/auth"
	"github.com/backstock/backstock/internal/authz"
	"github.com/backstock/backstock/internal/masterdata/branches"
	"github.com/backstock/backstock/internal/masterdata/categories"
	"github.com/backstock/backstock/internal/masterdata/products"
	"github.com/backstock/backstock/internal/masterdata/providers"
	"github.com/backstock/backstock/internal/observability"
	"github.com/backstock/backstock/internal/purchases"
	"github.com/backstock/backstock/internal/roles"
	"github.com/backstock/backstock/internal/sales"
	"github.com/backstock/backstock/internal/sales/customers"
	"github.com/backstock/backstock/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Guard   authz.Guard
	Metrics *observability.Metrics

	AuthHandler       *auth.Handler
	RolesHandler      *roles.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	ProvidersHandler  *providers.Handler
	BranchesHandler   *branches.Handler
	CustomersHandler  *customers.Handler
	SalesHandler      *sales.Handler
	PurchasesHandler  *purchases.Handler
}

// NewRouter constructs the chi.Router. Everything under /api sits behind
// the authentication guard except the auth endpoints themselves.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}
	r.Use(chimw.Logger)

	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			params.AuthHandler.MountRoutes(ar)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(params.Guard.Authenticate)

			protected.Route("/roles", func(rr chi.Router) { params.RolesHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/users", func(rr chi.Router) { params.UsersHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/categories", func(rr chi.Router) { params.CategoriesHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/products", func(rr chi.Router) { params.ProductsHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/providers", func(rr chi.Router) { params.ProvidersHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/branches", func(rr chi.Router) { params.BranchesHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/customers", func(rr chi.Router) { params.CustomersHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/sales", func(rr chi.Router) { params.SalesHandler.MountRoutes(rr, params.Guard) })
			protected.Route("/purchases", func(rr chi.Router) { params.PurchasesHandler.MountRoutes(rr, params.Guard) })
		})
	})

	return r
}
