package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/venue-platform/cmd/mainconfig"
	"github.com/wolfman30/venue-platform/internal/api/router"
	"github.com/wolfman30/venue-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/internal/events"
	"github.com/wolfman30/venue-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/venue-platform/internal/http/middleware"
	observemetrics "github.com/wolfman30/venue-platform/internal/observability/metrics"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting venue booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"venue", cfg.VenueName,
		"timezone", cfg.VenueTimezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required and must be reachable")
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	metricsHandler, bookingMetrics := setupBookingMetrics()

	messenger, gateway, err := bootstrap.BuildMessenger(cfg, logger)
	if err != nil {
		logger.Error("failed to build sms messenger", "error", err)
		os.Exit(1)
	}
	model, closeModel := bootstrap.BuildIntentModel(ctx, cfg, awsCfg, logger)
	defer closeModel()

	deps := bootstrap.BookingDeps{
		Pool:      pool,
		Messenger: messenger,
		Model:     model,
		Metrics:   bookingMetrics,
		Logger:    logger,
	}
	staff := bootstrap.BuildStaffNotifier(cfg, awsCfg, venue.Location(cfg.VenueTimezone), logger)
	if outbox, deliverer := bootstrap.BuildStaffOutbox(pool, staff, logger); outbox != nil {
		deps.Notifier = outbox
		go deliverer.Start(ctx)
	} else {
		logger.Warn("STAFF_NOTIFY_EMAILS not set; staff are not notified of SMS bookings")
	}
	stack := bootstrap.BuildBookingStack(cfg, deps)

	webhookCfg := handlers.SMSWebhookConfig{
		Engine:  stack.Engine,
		Metrics: bookingMetrics,
		Logger:  logger,
	}
	if gateway != nil && strings.TrimSpace(cfg.OpenPhoneWebhookSecret) != "" {
		webhookCfg.Verifier = gateway
	} else {
		logger.Warn("OPENPHONE_WEBHOOK_SECRET not set; webhook signatures are not verified")
	}
	checks := map[string]router.Pinger{"postgres": pool.Ping}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		webhookCfg.Processed = events.NewProcessedStore(redisClient, cfg.WebhookDedupeTTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := router.New(&router.Config{
		Logger:     logger,
		SMSWebhook: handlers.NewSMSWebhookHandler(webhookCfg),
		AdminBooking: handlers.NewAdminBookingHandler(handlers.AdminBookingConfig{
			Parser:   stack.Parser,
			Resolver: stack.Resolver,
			Windows:  stack.Store,
			Location: stack.Location,
			Duration: cfg.ReservationDuration,
			Logger:   logger,
		}),
		Health:             router.NewHealthHandler(checks),
		MetricsHandler:     metricsHandler,
		WebhookLimiter:     httpmiddleware.NewRateLimiter(ctx, cfg.WebhookRateLimit, cfg.WebhookRateBurst),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupBookingMetrics registers the booking collectors on a private registry
// alongside the Go runtime collectors.
func setupBookingMetrics() (http.Handler, *observemetrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := observemetrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// connectPostgresPool returns nil when the URL is empty or the database is
// unreachable.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Error("invalid DATABASE_URL", "error", err)
		return nil
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(connectCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}
