// Package availability decides whether a requested window can be booked.
// A request passes through five ordered layers; the first layer that
// blocks it ends evaluation and supplies the guest-facing reason.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/venue-platform/internal/venue"
)

// Layer names the rule stage that produced a decision.
type Layer string

const (
	LayerBookingWindow Layer = "booking_window"
	LayerPrivateEvents Layer = "private_events"
	LayerClosures      Layer = "closures"
	LayerBaseHours     Layer = "base_hours"
	LayerTables        Layer = "tables"
)

// Request is a window to check.
type Request struct {
	Start     time.Time
	End       time.Time
	PartySize int
	// ExcludeTables skips tables already lost to a concurrent booking.
	ExcludeTables map[string]bool
}

// Window returns the requested UTC window.
func (r Request) Window() venue.Window {
	return venue.Window{Start: r.Start.UTC(), End: r.End.UTC()}
}

// Result is the resolver's verdict. Approved results always carry a table.
type Result struct {
	Approved bool
	Table    venue.Table
	Layer    Layer
	Message  string
}

func reject(layer Layer, msg string) *Result {
	return &Result{Layer: layer, Message: msg}
}

// evaluation is the per-call state shared by the stages.
type evaluation struct {
	req     Request
	window  venue.Window
	date    venue.Date
	day     venue.Window
	closure *venue.Closure
}

// stage returns a non-nil Result to stop evaluation.
type stage struct {
	layer Layer
	check func(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error)
}

var stages = []stage{
	{LayerBookingWindow, checkBookingWindow},
	{LayerPrivateEvents, checkPrivateEvents},
	{LayerClosures, checkClosures},
	{LayerBaseHours, checkBaseHours},
	{LayerTables, assignTable},
}

// Resolver runs the layers against fresh store reads on every call.
type Resolver struct {
	store Store
	loc   *time.Location
}

func NewResolver(store Store, loc *time.Location) *Resolver {
	if store == nil {
		panic("availability: store required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{store: store, loc: loc}
}

// Location returns the venue time zone messages are rendered in.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve evaluates req. A returned error means a store read failed and no
// decision could be made.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if req.PartySize <= 0 {
		return Result{}, fmt.Errorf("availability: party size must be positive, got %d", req.PartySize)
	}
	if !req.End.After(req.Start) {
		return Result{}, fmt.Errorf("availability: window end must follow start")
	}
	date := venue.DateOf(req.Start.In(r.loc))
	ev := &evaluation{
		req:    req,
		window: req.Window(),
		date:   date,
		day:    venue.DayBounds(date, r.loc),
	}
	for _, s := range stages {
		res, err := s.check(ctx, r, ev)
		if err != nil {
			return Result{}, fmt.Errorf("availability: %s: %w", s.layer, err)
		}
		if res != nil {
			return *res, nil
		}
	}
	return Result{}, fmt.Errorf("availability: no layer produced a decision")
}
