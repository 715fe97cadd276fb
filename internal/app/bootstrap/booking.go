package bootstrap

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/booking"
	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/internal/intent"
	"github.com/wolfman30/venue-platform/internal/llm"
	"github.com/wolfman30/venue-platform/internal/members"
	"github.com/wolfman30/venue-platform/internal/messaging"
	"github.com/wolfman30/venue-platform/internal/messaging/compliance"
	"github.com/wolfman30/venue-platform/internal/observability/metrics"
	"github.com/wolfman30/venue-platform/internal/reservations"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// BookingDeps are the runtime collaborators of the booking engine.
type BookingDeps struct {
	Pool      *pgxpool.Pool
	Messenger messaging.Messenger
	Model     llm.Client
	Notifier  booking.ReservationNotifier
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger
}

// BookingStack is everything built around one venue configuration.
type BookingStack struct {
	Engine   *booking.Engine
	Parser   *intent.Parser
	Resolver *availability.Resolver
	Store    *availability.PostgresStore
	Location *time.Location
}

// BuildIntentParser orders the strategies: model first when configured,
// then the deterministic pattern parser.
func BuildIntentParser(cfg *appconfig.Config, model llm.Client, logger *logging.Logger) *intent.Parser {
	opts := intent.Options{
		Location:     venue.Location(cfg.VenueTimezone),
		Duration:     cfg.ReservationDuration,
		DefaultLabel: cfg.ReservationLabel,
	}
	var ai intent.Strategy
	if model != nil {
		ai = intent.NewAIStrategy(model, "", opts, logger)
	}
	return intent.NewParser(ai, intent.NewPatternStrategy(opts))
}

// BuildBookingStack wires the engine against Postgres.
func BuildBookingStack(cfg *appconfig.Config, deps BookingDeps) *BookingStack {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := venue.Location(cfg.VenueTimezone)
	store := availability.NewPostgresStore(deps.Pool)
	resolver := availability.NewResolver(store, loc)
	parser := BuildIntentParser(cfg, deps.Model, logger)

	engineCfg := booking.Config{
		Members:  members.NewRepository(deps.Pool),
		Parser:   parser,
		Resolver: resolver,
		Writer:   reservations.NewWriter(deps.Pool, logger),
		Responder: booking.NewResponder(booking.ResponderConfig{
			Messenger:     deps.Messenger,
			Location:      loc,
			VenueName:     cfg.VenueName,
			BookingURL:    cfg.VenueBookingURL,
			MembershipURL: cfg.VenueMembershipURL,
			Metrics:       deps.Metrics,
			Logger:        logger,
		}),
		Keywords: compliance.NewDetector(),
		Metrics:  deps.Metrics,
		Logger:   logger,
	}
	if deps.Notifier != nil {
		engineCfg.Notifier = deps.Notifier
	}

	return &BookingStack{
		Engine:   booking.NewEngine(engineCfg),
		Parser:   parser,
		Resolver: resolver,
		Store:    store,
		Location: loc,
	}
}
