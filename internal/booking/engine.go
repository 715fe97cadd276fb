// Package booking runs the SMS reservation flow: membership gate, intent
// parsing, availability, table assignment, persistence and the reply.
package booking

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/intent"
	"github.com/wolfman30/venue-platform/internal/members"
	"github.com/wolfman30/venue-platform/internal/messaging/compliance"
	"github.com/wolfman30/venue-platform/internal/observability/metrics"
	"github.com/wolfman30/venue-platform/internal/reservations"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

var tracer = otel.Tracer("venue.internal.booking")

const defaultTableAttempts = 3

// OutcomeKind classifies how an inbound message was handled.
type OutcomeKind string

const (
	OutcomeConfirmed   OutcomeKind = "confirmed"
	OutcomeParseFailed OutcomeKind = "parse_failed"
	OutcomeNonMember   OutcomeKind = "non_member"
	OutcomeRejected    OutcomeKind = "rejected"
	OutcomeWriteFailed OutcomeKind = "write_failed"
	OutcomeUnavailable OutcomeKind = "unavailable"
	OutcomeIgnored     OutcomeKind = "ignored"
)

// Outcome describes what the engine did with one message.
type Outcome struct {
	Kind        OutcomeKind
	Layer       availability.Layer
	Strategy    string
	Reply       string
	Reservation *venue.Reservation
	Table       venue.Table
}

type MemberLookup interface {
	FindByPhone(ctx context.Context, phone string) (venue.Member, error)
}

type IntentParser interface {
	Parse(ctx context.Context, text string) (intent.Intent, string, error)
}

type AvailabilityResolver interface {
	Resolve(ctx context.Context, req availability.Request) (availability.Result, error)
}

type ReservationWriter interface {
	Create(ctx context.Context, in reservations.NewReservation) (venue.Reservation, error)
}

type ReservationNotifier interface {
	NotifyReservation(ctx context.Context, res venue.Reservation, table venue.Table) error
}

// Config wires the engine's collaborators. Notifier, Keywords and Metrics
// are optional.
type Config struct {
	Members   MemberLookup
	Parser    IntentParser
	Resolver  AvailabilityResolver
	Writer    ReservationWriter
	Responder *Responder
	Notifier  ReservationNotifier
	Keywords  *compliance.Detector
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger
	// TableAttempts bounds how many tables are tried when writes lose races.
	TableAttempts int
}

// Engine handles inbound booking messages. It keeps no state between
// calls; every rule is read fresh from the store.
type Engine struct {
	members       MemberLookup
	parser        IntentParser
	resolver      AvailabilityResolver
	writer        ReservationWriter
	responder     *Responder
	notifier      ReservationNotifier
	keywords      *compliance.Detector
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
	tableAttempts int
}

func NewEngine(cfg Config) *Engine {
	switch {
	case cfg.Members == nil:
		panic("booking: member lookup required")
	case cfg.Parser == nil:
		panic("booking: intent parser required")
	case cfg.Resolver == nil:
		panic("booking: availability resolver required")
	case cfg.Writer == nil:
		panic("booking: reservation writer required")
	case cfg.Responder == nil:
		panic("booking: responder required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.TableAttempts <= 0 {
		cfg.TableAttempts = defaultTableAttempts
	}
	return &Engine{
		members:       cfg.Members,
		parser:        cfg.Parser,
		resolver:      cfg.Resolver,
		writer:        cfg.Writer,
		responder:     cfg.Responder,
		notifier:      cfg.Notifier,
		keywords:      cfg.Keywords,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		tableAttempts: cfg.TableAttempts,
	}
}

// HandleInbound processes one message from a guest and sends the reply.
// Every failure becomes an Outcome; nothing here is fatal to the caller.
func (e *Engine) HandleInbound(ctx context.Context, from, text string) Outcome {
	ctx, span := tracer.Start(ctx, "booking.handle_inbound")
	defer span.End()

	out := e.decide(ctx, from, strings.TrimSpace(text))
	span.SetAttributes(
		attribute.String("booking.outcome", string(out.Kind)),
		attribute.String("booking.layer", string(out.Layer)),
		attribute.String("booking.strategy", out.Strategy),
	)
	e.metrics.ObserveOutcome(string(out.Kind), string(out.Layer))

	if out.Reply != "" {
		_ = e.responder.Send(ctx, from, out.Reply)
	}
	if out.Kind == OutcomeConfirmed && e.notifier != nil && out.Reservation != nil {
		if err := e.notifier.NotifyReservation(ctx, *out.Reservation, out.Table); err != nil {
			e.logger.Warn("staff notification failed", "reservation_id", out.Reservation.ID.String(), "error", err)
		}
	}
	e.logger.Info("sms booking handled",
		"outcome", out.Kind,
		"layer", out.Layer,
		"strategy", out.Strategy,
	)
	return out
}

func (e *Engine) decide(ctx context.Context, from, text string) Outcome {
	if text == "" {
		return Outcome{Kind: OutcomeIgnored}
	}
	switch e.keywords.Classify(text) {
	case compliance.KeywordStop, compliance.KeywordStart:
		return Outcome{Kind: OutcomeIgnored}
	case compliance.KeywordHelp:
		return Outcome{Kind: OutcomeIgnored, Reply: e.responder.Help()}
	}

	member, err := e.members.FindByPhone(ctx, from)
	if errors.Is(err, members.ErrNotFound) {
		return Outcome{Kind: OutcomeNonMember, Reply: e.responder.NonMember()}
	}
	if err != nil {
		e.logger.Error("member lookup failed", "error", err)
		return Outcome{Kind: OutcomeUnavailable, Reply: e.responder.WriteFailure()}
	}

	in, strategy, err := e.parser.Parse(ctx, text)
	e.metrics.ObserveParser(strategy)
	if err != nil {
		return Outcome{Kind: OutcomeParseFailed, Reply: e.responder.ParseFailure()}
	}

	out := e.book(ctx, member, from, in)
	out.Strategy = strategy
	return out
}

// book resolves and writes, moving to the next table when a concurrent
// booking wins the race for the chosen one.
func (e *Engine) book(ctx context.Context, member venue.Member, from string, in intent.Intent) Outcome {
	req := availability.Request{Start: in.Start, End: in.End, PartySize: in.PartySize}
	for attempt := 0; attempt < e.tableAttempts; attempt++ {
		result, err := e.resolver.Resolve(ctx, req)
		if err != nil {
			e.logger.Error("availability check failed", "error", err)
			return Outcome{Kind: OutcomeUnavailable, Reply: e.responder.WriteFailure()}
		}
		if !result.Approved {
			return Outcome{Kind: OutcomeRejected, Layer: result.Layer, Reply: result.Message}
		}

		res, err := e.writer.Create(ctx, reservations.NewReservation{
			TableID:   result.Table.ID,
			Start:     in.Start,
			End:       in.End,
			PartySize: in.PartySize,
			Phone:     from,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Label:     in.Label,
			Notes:     in.Notes,
		})
		switch {
		case err == nil:
			return Outcome{
				Kind:        OutcomeConfirmed,
				Layer:       result.Layer,
				Reply:       e.responder.Confirmation(res),
				Reservation: &res,
				Table:       result.Table,
			}
		case errors.Is(err, reservations.ErrTableTaken):
			e.metrics.ObserveWriteRetry()
			e.logger.Warn("table taken by concurrent booking, trying next", "table_id", result.Table.ID, "attempt", attempt+1)
			if req.ExcludeTables == nil {
				req.ExcludeTables = make(map[string]bool)
			}
			req.ExcludeTables[result.Table.ID] = true
		default:
			e.logger.Error("reservation write failed", "table_id", result.Table.ID, "error", err)
			return Outcome{Kind: OutcomeWriteFailed, Layer: result.Layer, Reply: e.responder.WriteFailure()}
		}
	}
	return Outcome{Kind: OutcomeRejected, Layer: availability.LayerTables, Reply: availability.NoTablesMessage}
}
