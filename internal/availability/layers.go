package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/venue"
)

// NoTablesMessage is sent when every fitting table is taken.
const NoTablesMessage = "Sorry, no tables are available for the requested time. Please try a different time."

const (
	msgOutsideWindow   = "Sorry, reservations are not available for this date."
	msgNoRegularHours  = "Sorry, we are not currently taking reservations. Please contact the venue directly."
	msgRegularHoursFmt = "Sorry, that time is outside our regular hours. We're open:\n%s"
)

func checkBookingWindow(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error) {
	bw, ok, err := r.store.BookingWindow(ctx)
	if err != nil {
		return nil, err
	}
	// No configured window means every date is open for booking.
	if !ok {
		return nil, nil
	}
	if !bw.Contains(ev.date) {
		return reject(LayerBookingWindow, msgOutsideWindow), nil
	}
	return nil, nil
}

func checkPrivateEvents(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error) {
	events, err := r.store.PrivateEvents(ctx, ev.day)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.Active() && e.FullDay {
			return reject(LayerPrivateEvents, fmt.Sprintf(
				"Sorry, we're closed on %s for a private event.", longDate(ev.date, r.loc))), nil
		}
	}
	for _, e := range events {
		if !e.Active() || !e.Window().Overlaps(ev.window) {
			continue
		}
		return reject(LayerPrivateEvents, fmt.Sprintf(
			"Sorry, we have a private event from %s to %s on %s. Please send a new request for a time outside that window.",
			venue.FormatTime(e.Start.In(r.loc)), venue.FormatTime(e.End.In(r.loc)), longDate(ev.date, r.loc))), nil
	}
	return nil, nil
}

func checkClosures(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error) {
	closure, err := r.store.Closure(ctx, ev.date)
	if err != nil {
		return nil, err
	}
	if closure == nil {
		return nil, nil
	}
	ev.closure = closure

	if msg := strings.TrimSpace(closure.SMSMessage); msg != "" {
		return reject(LayerClosures, msg), nil
	}
	if closure.ClosesWholeDay() {
		return reject(LayerClosures, fmt.Sprintf("Sorry, we're closed on %s.", longDate(ev.date, r.loc))), nil
	}
	// A closed range blocks any reservation whose seating window touches
	// it, not only one that starts inside it.
	for _, rg := range closure.Ranges {
		if rg.On(ev.date, r.loc).Overlaps(ev.window) {
			return reject(LayerClosures, fmt.Sprintf(
				"Sorry, we're closed from %s to %s on %s. Please choose a different time.",
				rg.Start.Format(), rg.End.Format(), longDate(ev.date, r.loc))), nil
		}
	}
	return nil, nil
}

func checkBaseHours(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error) {
	rows, err := r.store.BaseHours(ctx)
	if err != nil {
		return nil, err
	}
	byDay := groupHours(rows)

	var open []venue.Window
	for _, rg := range byDay[ev.date.Weekday()] {
		open = append(open, rg.On(ev.date, r.loc))
	}
	// Overnight ranges from the previous evening still cover early hours.
	prev := ev.date.AddDays(-1)
	for _, rg := range byDay[prev.Weekday()] {
		if rg.Overnight() {
			open = append(open, rg.On(prev, r.loc))
		}
	}
	if ev.closure != nil {
		var closed []venue.Window
		for _, rg := range ev.closure.Ranges {
			closed = append(closed, rg.On(ev.date, r.loc))
		}
		open = subtract(open, closed)
	}

	for _, w := range open {
		if w.Contains(ev.window.Start) {
			return nil, nil
		}
	}
	return reject(LayerBaseHours, HoursMessage(rows)), nil
}

// HoursMessage lists every weekday with configured hours, Sunday first.
func HoursMessage(rows []venue.HoursRow) string {
	byDay := groupHours(rows)
	var lines []string
	for day := time.Sunday; day <= time.Saturday; day++ {
		ranges := byDay[day]
		if len(ranges) == 0 {
			continue
		}
		formatted := make([]string, 0, len(ranges))
		for _, rg := range ranges {
			formatted = append(formatted, rg.Format())
		}
		lines = append(lines, day.String()+": "+strings.Join(formatted, ", "))
	}
	if len(lines) == 0 {
		return msgNoRegularHours
	}
	return fmt.Sprintf(msgRegularHoursFmt, strings.Join(lines, "\n"))
}

func groupHours(rows []venue.HoursRow) map[time.Weekday][]venue.Range {
	out := make(map[time.Weekday][]venue.Range, 7)
	for _, row := range rows {
		out[row.DayOfWeek] = append(out[row.DayOfWeek], row.Ranges...)
	}
	return out
}

// subtract removes every closed window from the open windows.
func subtract(open, closed []venue.Window) []venue.Window {
	for _, c := range closed {
		var next []venue.Window
		for _, o := range open {
			if !o.Overlaps(c) {
				next = append(next, o)
				continue
			}
			if o.Start.Before(c.Start) {
				next = append(next, venue.Window{Start: o.Start, End: c.Start})
			}
			if c.End.Before(o.End) {
				next = append(next, venue.Window{Start: c.End, End: o.End})
			}
		}
		open = next
	}
	return open
}

func longDate(d venue.Date, loc *time.Location) string {
	return venue.FormatLongDate(d.In(loc))
}
