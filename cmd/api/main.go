package main

import (
	"context"
	"net/http"
	"os"

	"github.com/clubsupply/supplydesk-backend/api/routes"
	"github.com/clubsupply/supplydesk-backend/internal/allowlist"
	authsvc "github.com/clubsupply/supplydesk-backend/internal/auth"
	cartsvc "github.com/clubsupply/supplydesk-backend/internal/cart"
	catalogsvc "github.com/clubsupply/supplydesk-backend/internal/catalog"
	reconcilesvc "github.com/clubsupply/supplydesk-backend/internal/reconcile"
	"github.com/clubsupply/supplydesk-backend/internal/users"
	"github.com/clubsupply/supplydesk-backend/pkg/auth/session"
	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/clubsupply/supplydesk-backend/pkg/db"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
	"github.com/clubsupply/supplydesk-backend/pkg/mailer"
	"github.com/clubsupply/supplydesk-backend/pkg/metrics"
	"github.com/clubsupply/supplydesk-backend/pkg/migrate"
	"github.com/clubsupply/supplydesk-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	allowed, err := allowlist.Load(cfg.Allowlist.CSVPath)
	if err != nil {
		logg.Error(context.Background(), "failed to load allowlist", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	challengeRepo := authsvc.NewRepository(dbClient.DB())
	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(
		userRepo, challengeRepo, allowed, sessionManager, mailClient,
		cfg.JWT, cfg.Password, cfg.Challenge,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogRepo, cartRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	reconcileService, err := reconcilesvc.NewService(catalogRepo, cartRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			RedisClient:   redisClient,
			Sessions:      sessionManager,
			Metrics:       httpMetrics,
			MetricsGather: registry,
			AuthService:   authService,
			CatalogSvc:    catalogService,
			CartSvc:       cartService,
			ReconcileSvc:  reconcileService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
