package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/venue-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/venue-platform/internal/http/middleware"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SMSWebhook         *handlers.SMSWebhookHandler
	AdminBooking       *handlers.AdminBookingHandler
	Health             *HealthHandler
	MetricsHandler     http.Handler
	WebhookLimiter     *httpmiddleware.RateLimiter
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	health := cfg.Health
	if health == nil {
		health = NewHealthHandler(nil)
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", health.ServeHTTP)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.SMSWebhook != nil {
			webhook := public.With()
			if cfg.WebhookLimiter != nil {
				webhook = public.With(httpmiddleware.RateLimit(cfg.WebhookLimiter))
			}
			webhook.Post("/webhooks/sms", cfg.SMSWebhook.Handle)
		}
	})

	if cfg.AdminBooking != nil {
		r.Route("/admin/booking", func(admin chi.Router) {
			if len(cfg.CORSAllowedOrigins) > 0 {
				admin.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(middleware.AllowContentType("application/json"))
			admin.Post("/parse", cfg.AdminBooking.Parse)
			admin.Post("/availability", cfg.AdminBooking.Availability)
			admin.Get("/window", cfg.AdminBooking.GetWindow)
			admin.Put("/window", cfg.AdminBooking.PutWindow)
		})
	}

	return r
}
