package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubsupply/supplydesk-backend/api/controllers"
	"github.com/clubsupply/supplydesk-backend/api/middleware"
	authsvc "github.com/clubsupply/supplydesk-backend/internal/auth"
	cartsvc "github.com/clubsupply/supplydesk-backend/internal/cart"
	catalogsvc "github.com/clubsupply/supplydesk-backend/internal/catalog"
	reconcilesvc "github.com/clubsupply/supplydesk-backend/internal/reconcile"
	"github.com/clubsupply/supplydesk-backend/pkg/auth/session"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
	"github.com/clubsupply/supplydesk-backend/pkg/metrics"
	"github.com/clubsupply/supplydesk-backend/pkg/redis"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      db.Pinger
	RedisClient   *redis.Client
	Sessions      session.AccessSessionChecker
	Metrics       *metrics.HTTPMetrics
	MetricsGather prometheus.Gatherer
	AuthService   authsvc.Service
	CatalogSvc    catalogsvc.Service
	CartSvc       cartsvc.Service
	ReconcileSvc  reconcilesvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	challengePolicy := middleware.NewAuthRateLimitPolicy(
		"challenge",
		cfg.AuthRateLimit.ChallengeWindow,
		cfg.AuthRateLimit.ChallengeIPLimit,
		cfg.AuthRateLimit.ChallengeEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DBPinger, d.RedisClient))
	})

	if d.MetricsGather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.MetricsGather, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(challengePolicy, d.RedisClient, logg)).
			Post("/challenge", controllers.AuthChallenge(d.AuthService, logg))
		r.Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(challengePolicy, d.RedisClient, logg)).
			Post("/password-reset", controllers.AuthPasswordResetChallenge(d.AuthService, logg))
		r.Post("/password", controllers.AuthPasswordReset(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(d.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleUser), logg))
		r.Get("/", controllers.CartFetch(d.CartSvc, logg))
		r.Post("/items", controllers.CartAddItems(d.CartSvc, logg))
		r.Post("/custom-items", controllers.CartAddCustomItem(d.CartSvc, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleBosslevel), logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Post("/", controllers.CatalogCreate(d.CatalogSvc, logg))
			r.Get("/", controllers.CatalogList(d.CatalogSvc, logg))
			r.Patch("/{id}", controllers.CatalogUpdate(d.CatalogSvc, logg))
			r.Delete("/{id}", controllers.CatalogDelete(d.CatalogSvc, logg))
			r.Post("/annotations", controllers.CatalogAnnotateBatch(d.CatalogSvc, logg))
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", controllers.AdminListCarts(d.CartSvc, logg))
			r.Get("/{cartId}", controllers.AdminGetCart(d.CartSvc, logg))
			r.Delete("/{cartId}", controllers.AdminDeleteCart(d.CartSvc, logg))
			r.Delete("/{cartId}/items/{name}", controllers.AdminRemoveCartItem(d.CartSvc, logg))
		})

		r.Route("/line-items", func(r chi.Router) {
			r.Patch("/", controllers.LineItemBatchUpdate(d.CartSvc, logg))
			r.Patch("/catalog-filtered", controllers.LineItemBatchUpdateFiltered(d.CartSvc, logg))
			r.Patch("/{id}", controllers.LineItemUpdate(d.CartSvc, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/catalog", controllers.ReportCatalog(d.ReconcileSvc, logg))
			r.Get("/custom", controllers.ReportCustom(d.ReconcileSvc, logg))
		})
	})

	return r
}
