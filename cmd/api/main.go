package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gasflow-backend/api/controllers"
	"github.com/angelmondragon/gasflow-backend/api/middleware"
	"github.com/angelmondragon/gasflow-backend/api/routes"
	"github.com/angelmondragon/gasflow-backend/internal/app"
	"github.com/angelmondragon/gasflow-backend/internal/sales"
	"github.com/angelmondragon/gasflow-backend/pkg/config"
	"github.com/angelmondragon/gasflow-backend/pkg/db"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
	"github.com/angelmondragon/gasflow-backend/pkg/metrics"
	"github.com/angelmondragon/gasflow-backend/pkg/migrate"
	"github.com/angelmondragon/gasflow-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	logg = logger.ForApp("api", cfg.App, nil)

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	locker, err := buildLocker(cfg, logg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales locker", err)
		os.Exit(1)
	}

	services, err := app.BuildServices(app.Params{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Locker:  locker,
		Metrics: metrics.NewSalesMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	infra := routes.Infra{DB: dbClient, Gatherer: registry}
	if redisClient != nil {
		infra.Redis = controllers.Pinger(redisClient)
		infra.Idempotency = middleware.IdempotencyStore(redisClient)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"lockBackend": cfg.Sales.LockBackend,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, infra, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	errs = multierr.Append(errs, server.Shutdown(shutdownCtx))
	if redisClient != nil {
		errs = multierr.Append(errs, redisClient.Close())
	}
	errs = multierr.Append(errs, dbClient.Close())
	if errs != nil {
		logg.Error(ctx, "errors during shutdown", errs)
		exitCode = 1
	}

	logg.Info(ctx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// buildLocker picks the sale lock backend. Redis locks are needed as soon as
// more than one API instance shares the database.
func buildLocker(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (sales.Locker, error) {
	if cfg.Sales.LockBackend != config.LockBackendRedis {
		return sales.NewLocalLocker(), nil
	}
	if redisClient == nil {
		return nil, errors.New("redis lock backend selected without redis")
	}
	return sales.NewRedisLocker(redislock.New(redisClient.Raw()), sales.RedisLockerOptions{
		TTL:       cfg.Sales.LockTTL,
		Retry:     cfg.Sales.LockRetry,
		Wait:      cfg.Sales.LockWait,
		KeyPrefix: redisClient.LockKey("sales") + ":",
		Logger:    logg,
	})
}
