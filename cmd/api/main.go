package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/storerate-backend/api/controllers"
	"github.com/angelmondragon/storerate-backend/api/routes"
	"github.com/angelmondragon/storerate-backend/internal/auth"
	"github.com/angelmondragon/storerate-backend/internal/directory"
	"github.com/angelmondragon/storerate-backend/internal/ratings"
	"github.com/angelmondragon/storerate-backend/internal/stores"
	"github.com/angelmondragon/storerate-backend/internal/users"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/db"
	"github.com/angelmondragon/storerate-backend/pkg/instance"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
	"github.com/angelmondragon/storerate-backend/pkg/metrics"
	"github.com/angelmondragon/storerate-backend/pkg/migrate"
	"github.com/angelmondragon/storerate-backend/pkg/redis"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

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
	if cfg.JWT.Defaulted {
		logg.Warn(logg.WithField(context.Background(), "env", cfg.App.Env),
			"STORERATE_JWT_SECRET is not set; signing tokens with the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	}

	registry := metrics.NewRegistry()
	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	ratingRepo := ratings.NewRepository(dbClient.DB())

	ledgerParams := ratings.LedgerParams{
		Repo:    ratingRepo,
		Stores:  storeRepo,
		Metrics: metrics.NewRatingMetrics(registry),
		Logger:  logg,
	}
	if redisClient != nil {
		ledgerParams.Cache = redisClient
	}
	ledger, err := ratings.NewLedger(ledgerParams)
	mustBuild(ctx, logg, "rating ledger", err)

	catalog, err := stores.NewCatalog(stores.CatalogParams{
		Stores:   storeRepo,
		Ratings:  ratingRepo,
		Accounts: userRepo,
		Ledger:   ledger,
	})
	mustBuild(ctx, logg, "store catalog", err)

	directoryParams := directory.ServiceParams{
		Tx:             dbClient,
		Accounts:       userRepo,
		Stores:         storeRepo,
		Ratings:        ratingRepo,
		Ledger:         ledger,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}
	readiness := []controllers.ReadinessCheck{{Name: "database", Pinger: dbClient}}
	if redisClient != nil {
		directoryParams.Cache = redisClient
		directoryParams.CacheTTL = cfg.Redis.MetricsCacheTTL
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}
	directoryService, err := directory.NewService(directoryParams)
	mustBuild(ctx, logg, "directory service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	mustBuild(ctx, logg, "auth service", err)

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"driver":   dbClient.Driver(),
		"redis":    redisClient != nil,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Auth:        authService,
			Catalog:     catalog,
			Ledger:      ledger,
			Directory:   directoryService,
			Readiness:   readiness,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: cfg.App.ReadTimeout,
		ReadTimeout:       cfg.App.ReadTimeout,
		WriteTimeout:      cfg.App.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		closeErr = multierr.Append(closeErr, err)
	}
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "api server stopped")
}

func mustBuild(ctx context.Context, logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+component, err)
	os.Exit(1)
}
