package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storerate-backend/api/controllers"
	"github.com/angelmondragon/storerate-backend/api/middleware"
	"github.com/angelmondragon/storerate-backend/internal/auth"
	"github.com/angelmondragon/storerate-backend/internal/directory"
	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
	"github.com/angelmondragon/storerate-backend/pkg/metrics"
)

// Role sets per route group. Controllers never re-check roles.
var (
	anyAccount = []enums.Role{enums.RoleAdmin, enums.RoleOwner, enums.RoleUser}
	ownerOnly  = []enums.Role{enums.RoleOwner}
	adminOnly  = []enums.Role{enums.RoleAdmin}
)

// Deps are the services and infrastructure the HTTP surface is built from.
// Readiness, HTTPMetrics and Gatherer are optional.
type Deps struct {
	Auth      auth.Service
	Catalog   stores.Catalog
	Ledger    ratings.Ledger
	Directory directory.Service

	Readiness   []controllers.ReadinessCheck
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", controllers.AuthSignup(deps.Auth, logg))
			r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(
				middleware.Authenticate(cfg.JWT, logg),
				middleware.RequireRole(logg, anyAccount...),
			).Post("/change-password", controllers.AuthChangePassword(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWT, logg))

			r.Route("/stores", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, anyAccount...))
				r.Get("/", controllers.StoreList(deps.Catalog, logg))
				r.Post("/{id}/ratings", controllers.StoreSubmitRating(deps.Ledger, logg))
			})

			r.Route("/owner", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, ownerOnly...))
				r.Get("/ratings", controllers.OwnerRatings(deps.Catalog, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, adminOnly...))
				r.Post("/users", controllers.AdminCreateUser(deps.Directory, logg))
				r.Get("/users", controllers.AdminListUsers(deps.Directory, logg))
				r.Get("/users/{id}", controllers.AdminGetUser(deps.Directory, logg))
				r.Post("/stores", controllers.AdminCreateStore(deps.Directory, logg))
				r.Get("/stores", controllers.AdminListStores(deps.Directory, logg))
				r.Get("/metrics", controllers.AdminMetrics(deps.Directory, logg))
			})
		})
	})

	return r
}
