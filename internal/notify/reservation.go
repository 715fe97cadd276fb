package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// ReservationNotifier tells staff about reservations booked over SMS.
type ReservationNotifier struct {
	sender     EmailSender
	recipients []string
	venueName  string
	loc        *time.Location
	logger     *logging.Logger
}

func NewReservationNotifier(sender EmailSender, recipients []string, venueName string, loc *time.Location, logger *logging.Logger) *ReservationNotifier {
	if sender == nil {
		panic("notify: email sender required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReservationNotifier{
		sender:     sender,
		recipients: recipients,
		venueName:  venueName,
		loc:        loc,
		logger:     logger,
	}
}

// NotifyReservation emails every staff recipient. Failures are joined; one
// bad address does not stop the others.
func (n *ReservationNotifier) NotifyReservation(ctx context.Context, res venue.Reservation, table venue.Table) error {
	if len(n.recipients) == 0 {
		return nil
	}
	msg := reservationEmail(res, table, n.venueName, n.loc)

	var errs []error
	for _, to := range n.recipients {
		msg.To = to
		if err := n.sender.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		n.logger.Warn("reservation notification incomplete", "reservation_id", res.ID.String(), "error", err)
		return err
	}
	return nil
}

func reservationEmail(res venue.Reservation, table venue.Table, venueName string, loc *time.Location) EmailMessage {
	start := res.Start.In(loc)
	guest := strings.TrimSpace(res.FirstName + " " + res.LastName)
	if guest == "" {
		guest = res.Phone
	}

	subject := fmt.Sprintf("New SMS reservation: %s, party of %d", guest, res.PartySize)
	if venueName != "" {
		subject = "[" + venueName + "] " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Guest: %s\n", guest)
	fmt.Fprintf(&b, "Phone: %s\n", res.Phone)
	fmt.Fprintf(&b, "Party size: %d\n", res.PartySize)
	fmt.Fprintf(&b, "Date: %s\n", venue.FormatLongDate(start))
	fmt.Fprintf(&b, "Time: %s - %s\n", venue.FormatTime(start), venue.FormatTime(res.End.In(loc)))
	fmt.Fprintf(&b, "Table: %d (seats %d)\n", table.Number, table.Capacity)
	if res.Notes != "" && res.Notes != res.Label {
		fmt.Fprintf(&b, "Notes: %s\n", res.Notes)
	}
	fmt.Fprintf(&b, "Reservation ID: %s\n", res.ID)

	return EmailMessage{Subject: subject, Body: b.String()}
}
