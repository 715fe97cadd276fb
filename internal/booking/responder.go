package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/messaging"
	"github.com/wolfman30/venue-platform/internal/observability/metrics"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

const exampleRequest = `"Table for 4 tomorrow at 7pm"`

// ResponderConfig carries the venue details replies mention.
type ResponderConfig struct {
	Messenger     messaging.Messenger
	Location      *time.Location
	VenueName     string
	BookingURL    string
	MembershipURL string
	Metrics       *metrics.BookingMetrics
	Logger        *logging.Logger
}

// Responder composes guest replies and sends them. Sends are never retried.
type Responder struct {
	messenger     messaging.Messenger
	loc           *time.Location
	venueName     string
	bookingURL    string
	membershipURL string
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

func NewResponder(cfg ResponderConfig) *Responder {
	if cfg.Messenger == nil {
		panic("booking: messenger required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Responder{
		messenger:     cfg.Messenger,
		loc:           cfg.Location,
		venueName:     strings.TrimSpace(cfg.VenueName),
		bookingURL:    strings.TrimSpace(cfg.BookingURL),
		membershipURL: strings.TrimSpace(cfg.MembershipURL),
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
}

// Confirmation names party size, long date and 12-hour time in venue time.
func (r *Responder) Confirmation(res venue.Reservation) string {
	start := res.Start.In(r.loc)
	greeting := "You're all set!"
	if name := strings.TrimSpace(res.FirstName); name != "" {
		greeting = "You're all set, " + name + "!"
	}
	where := ""
	if r.venueName != "" {
		where = " at " + r.venueName
	}
	return fmt.Sprintf("%s Your reservation for %d%s is confirmed for %s at %s.",
		greeting, res.PartySize, where, venue.FormatLongDate(start), venue.FormatTime(start))
}

func (r *Responder) ParseFailure() string {
	if r.bookingURL == "" {
		return "Sorry, we couldn't understand your reservation request. Please include a date and time, for example " + exampleRequest + "."
	}
	return "Sorry, we couldn't understand your reservation request. Please book online at " + r.bookingURL + "."
}

func (r *Responder) NonMember() string {
	url := r.membershipURL
	if url == "" {
		url = r.bookingURL
	}
	if url == "" {
		return "Sorry, SMS reservations are available to members only."
	}
	return "Sorry, SMS reservations are available to members only. Visit " + url + " to book or learn about membership."
}

func (r *Responder) WriteFailure() string {
	if r.bookingURL == "" {
		return "Sorry, something went wrong while booking your table. Please try again shortly."
	}
	return "Sorry, something went wrong while booking your table. Please reserve online at " + r.bookingURL + "."
}

func (r *Responder) Help() string {
	name := r.venueName
	if name == "" {
		name = "Reservations"
	}
	return fmt.Sprintf("%s: text us a date, time and party size to book, for example %s. Reply STOP to opt out.", name, exampleRequest)
}

// Send delivers body to the guest. Failures are logged and counted; the
// returned error is informational only.
func (r *Responder) Send(ctx context.Context, to, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	if err := r.messenger.Send(ctx, messaging.OutboundMessage{To: to, Body: body}); err != nil {
		r.metrics.ObserveOutbound("failed")
		r.logger.Error("sms reply failed", "to", to, "error", err)
		return err
	}
	r.metrics.ObserveOutbound("sent")
	return nil
}
