// Package venue holds the booking engine's domain model: calendar dates,
// local clock ranges, seating inventory and the rows the availability layers
// read.
package venue

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Window is a half-open UTC interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows share any time. Touching windows
// (one ends exactly when the other starts) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayBounds returns the UTC window covering the local calendar day d.
func DayBounds(d Date, loc *time.Location) Window {
	start := d.In(loc)
	end := d.AddDays(1).In(loc)
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Range is a local wall-clock range. An End at or before Start means the
// range runs past midnight into the following day.
type Range struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Overnight reports whether the range closes on the next calendar day.
func (r Range) Overnight() bool {
	return r.End.Minutes() <= r.Start.Minutes()
}

// On resolves the range against a calendar date in loc and returns it in UTC.
func (r Range) On(d Date, loc *time.Location) Window {
	start := r.Start.On(d, loc)
	endDate := d
	if r.Overnight() {
		endDate = d.AddDays(1)
	}
	end := r.End.On(endDate, loc)
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Format renders the range in 12-hour form, e.g. "5:00 PM - 11:00 PM".
func (r Range) Format() string {
	return r.Start.Format() + " - " + r.End.Format()
}

// Member is a venue member allowed to book by SMS.
type Member struct {
	ID        string
	Phone     string
	FirstName string
	LastName  string
	Email     string
}

// HoursRow is one recurring weekly opening entry.
type HoursRow struct {
	DayOfWeek time.Weekday
	Ranges    []Range
}

// Closure is a date-specific override of the recurring hours.
type Closure struct {
	Date       Date
	FullDay    bool
	Ranges     []Range
	SMSMessage string
}

// ClosesWholeDay reports whether nothing on the date is bookable. A closure
// row without any closed ranges counts as a full-day closure.
func (c Closure) ClosesWholeDay() bool {
	return c.FullDay || len(c.Ranges) == 0
}

// Private event statuses.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
)

// PrivateEvent blocks part or all of a date for a separate booking.
type PrivateEvent struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	FullDay bool
	Status  string
}

// Window returns the event's UTC window.
func (e PrivateEvent) Window() Window {
	return Window{Start: e.Start, End: e.End}
}

// Active reports whether the event participates in conflict checks.
func (e PrivateEvent) Active() bool {
	return strings.EqualFold(e.Status, EventStatusActive)
}

// Table is a physical table in the seating inventory.
type Table struct {
	ID       string
	Number   int
	Capacity int
}

// SourceSMS marks reservations created by the SMS booking engine.
const SourceSMS = "sms"

// Reservation is a persisted table booking.
type Reservation struct {
	ID        uuid.UUID
	TableID   string
	Start     time.Time
	End       time.Time
	PartySize int
	Phone     string
	FirstName string
	LastName  string
	Source    string
	Label     string
	Notes     string
	CreatedAt time.Time
}

// Window returns the reservation's UTC window.
func (r Reservation) Window() Window {
	return Window{Start: r.Start, End: r.End}
}

// BookingWindow bounds the calendar dates that accept reservations at all.
// Both ends are inclusive.
type BookingWindow struct {
	Start Date
	End   Date
}

// Contains reports whether d lies within the window.
func (b BookingWindow) Contains(d Date) bool {
	return !d.Before(b.Start) && !d.After(b.End)
}
