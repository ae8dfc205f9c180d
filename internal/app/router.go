package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hivemart/hivemart/internal/auth"
	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/catalog/categories"
	"github.com/hivemart/hivemart/internal/catalog/producers"
	"github.com/hivemart/hivemart/internal/catalog/products"
	"github.com/hivemart/hivemart/internal/favorites"
	"github.com/hivemart/hivemart/internal/moderation"
	"github.com/hivemart/hivemart/internal/observability"
	"github.com/hivemart/hivemart/internal/shared"
	"github.com/hivemart/hivemart/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	Guard             authz.Middleware
	AuthHandler       *auth.Handler
	CategoryHandler   *categories.Handler
	ProducerHandler   *producers.Handler
	ProductHandler    *products.Handler
	FavoritesHandler  *favorites.Handler
	ModerationHandler *moderation.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with hivemart defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Home is where the guard sends denied navigations.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"app":"hivemart"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.CategoryHandler != nil {
		r.Route("/categories", params.CategoryHandler.MountRoutes)
	}
	if params.ProducerHandler != nil {
		r.Route("/producers", params.ProducerHandler.MountRoutes)
	}
	if params.ProductHandler != nil {
		r.Route("/products", params.ProductHandler.MountRoutes)
	}
	if params.FavoritesHandler != nil {
		r.Route("/users/favorites", params.FavoritesHandler.MountRoutes)
	}
	if params.ModerationHandler != nil {
		r.Route("/requests", params.ModerationHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.Guard.Require(authz.TargetJobsInspect))
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
