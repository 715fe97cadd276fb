package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/venue-platform/internal/venue"
)

var newYork = venue.Location("America/New_York")

type stubStore struct {
	window    *venue.BookingWindow
	events    []venue.PrivateEvent
	closure   *venue.Closure
	hours     []venue.HoursRow
	tables    []venue.Table
	bookings  map[string][]venue.Window
	err       error
	calls     []string
	bookingOn []string
}

func (s *stubStore) BookingWindow(context.Context) (venue.BookingWindow, bool, error) {
	s.calls = append(s.calls, "window")
	if s.err != nil {
		return venue.BookingWindow{}, false, s.err
	}
	if s.window == nil {
		return venue.BookingWindow{}, false, nil
	}
	return *s.window, true, nil
}

func (s *stubStore) PrivateEvents(_ context.Context, within venue.Window) ([]venue.PrivateEvent, error) {
	s.calls = append(s.calls, "events")
	var out []venue.PrivateEvent
	for _, e := range s.events {
		if e.Window().Overlaps(within) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) Closure(context.Context, venue.Date) (*venue.Closure, error) {
	s.calls = append(s.calls, "closure")
	return s.closure, nil
}

func (s *stubStore) BaseHours(context.Context) ([]venue.HoursRow, error) {
	s.calls = append(s.calls, "hours")
	return s.hours, nil
}

func (s *stubStore) Tables(_ context.Context, partySize int) ([]venue.Table, error) {
	s.calls = append(s.calls, "tables")
	var out []venue.Table
	for _, t := range s.tables {
		if t.Capacity >= partySize {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) TableBookings(_ context.Context, tableID string, _ venue.Window) ([]venue.Window, error) {
	s.bookingOn = append(s.bookingOn, tableID)
	return s.bookings[tableID], nil
}

func clock(h, m int) venue.Clock { return venue.Clock{Hour: h, Minute: m} }

func rng(sh, sm, eh, em int) venue.Range {
	return venue.Range{Start: clock(sh, sm), End: clock(eh, em)}
}

func openStore() *stubStore {
	return &stubStore{
		hours: []venue.HoursRow{
			{DayOfWeek: time.Thursday, Ranges: []venue.Range{rng(17, 0, 23, 0)}},
			{DayOfWeek: time.Friday, Ranges: []venue.Range{rng(17, 0, 23, 0)}},
			{DayOfWeek: time.Saturday, Ranges: []venue.Range{rng(20, 0, 2, 0)}},
		},
		tables: []venue.Table{
			{ID: "t-6", Number: 6, Capacity: 6},
			{ID: "t-2", Number: 2, Capacity: 2},
			{ID: "t-4b", Number: 5, Capacity: 4},
			{ID: "t-4a", Number: 4, Capacity: 4},
		},
		bookings: map[string][]venue.Window{},
	}
}

// local builds a 2 hour request starting at a New York wall-clock time.
func local(y int, m time.Month, d, h, min, party int) Request {
	start := time.Date(y, m, d, h, min, 0, 0, newYork).UTC()
	return Request{Start: start, End: start.Add(2 * time.Hour), PartySize: party}
}

func TestResolveApprovesSmallestFreeTable(t *testing.T) {
	store := openStore()
	res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 3))
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "t-4a", res.Table.ID)
	assert.Equal(t, LayerTables, res.Layer)
	assert.Equal(t, []string{"window", "events", "closure", "hours", "tables"}, store.calls)
}

func TestResolveSkipsConflictingTables(t *testing.T) {
	store := openStore()
	booked := local(2025, 12, 12, 20, 0, 4).Window()
	store.bookings["t-4a"] = []venue.Window{booked}

	res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 3))
	require.NoError(t, err)
	require.True(t, res.Approved)
	assert.Equal(t, "t-4b", res.Table.ID)
	assert.Equal(t, []string{"t-4a", "t-4b"}, store.bookingOn)
}

func TestResolveTouchingBookingIsNotAConflict(t *testing.T) {
	store := openStore()
	store.bookings["t-2"] = []venue.Window{local(2025, 12, 12, 17, 0, 2).Window()}

	res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 2))
	require.NoError(t, err)
	require.True(t, res.Approved)
	assert.Equal(t, "t-2", res.Table.ID)
}

func TestResolveHonoursExcludedTables(t *testing.T) {
	store := openStore()
	req := local(2025, 12, 12, 19, 0, 3)
	req.ExcludeTables = map[string]bool{"t-4a": true}

	res, err := NewResolver(store, newYork).Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "t-4b", res.Table.ID)
}

func TestResolveNoTables(t *testing.T) {
	store := openStore()
	res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 8))
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, LayerTables, res.Layer)
	assert.Equal(t, NoTablesMessage, res.Message)
}

func TestResolveTableChoiceIsDeterministic(t *testing.T) {
	for i := 0; i < 20; i++ {
		store := openStore()
		store.tables[1], store.tables[3] = store.tables[3], store.tables[1]
		res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 4))
		require.NoError(t, err)
		assert.Equal(t, "t-4a", res.Table.ID)
	}
}

func TestResolveOutsideBookingWindowStopsAtFirstLayer(t *testing.T) {
	store := openStore()
	store.window = &venue.BookingWindow{
		Start: venue.Date{Year: 2026, Month: time.January, Day: 1},
		End:   venue.Date{Year: 2026, Month: time.June, Day: 30},
	}
	store.events = []venue.PrivateEvent{{
		Start:   time.Date(2025, 12, 12, 5, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 12, 13, 5, 0, 0, 0, time.UTC),
		FullDay: true,
		Status:  venue.EventStatusActive,
	}}

	for _, req := range []Request{
		local(2025, 12, 12, 19, 0, 2),
		local(2026, 7, 1, 19, 0, 2),
		local(2025, 12, 31, 21, 0, 40),
	} {
		store.calls = nil
		res, err := NewResolver(store, newYork).Resolve(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.Approved)
		assert.Equal(t, LayerBookingWindow, res.Layer)
		assert.Equal(t, msgOutsideWindow, res.Message)
		assert.Equal(t, []string{"window"}, store.calls)
	}
}

func TestResolveFullDayPrivateEventStopsAtSecondLayer(t *testing.T) {
	store := openStore()
	store.events = []venue.PrivateEvent{{
		Title:   "Holiday buyout",
		Start:   time.Date(2025, 12, 25, 5, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 12, 26, 5, 0, 0, 0, time.UTC),
		FullDay: true,
		Status:  venue.EventStatusActive,
	}}
	store.closure = &venue.Closure{SMSMessage: "closure layer reached"}

	for hour := 0; hour < 22; hour++ {
		store.calls = nil
		res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 25, hour, 0, 2))
		require.NoError(t, err)
		assert.False(t, res.Approved)
		assert.Equal(t, LayerPrivateEvents, res.Layer)
		assert.Contains(t, res.Message, "Thursday, December 25, 2025")
		assert.Equal(t, []string{"window", "events"}, store.calls)
	}
}

func TestResolvePartialPrivateEvent(t *testing.T) {
	store := openStore()
	store.events = []venue.PrivateEvent{
		{
			Start:  time.Date(2025, 12, 12, 23, 0, 0, 0, newYork),
			End:    time.Date(2025, 12, 12, 23, 30, 0, 0, newYork),
			Status: venue.EventStatusCancelled,
		},
		{
			Start:  time.Date(2025, 12, 12, 18, 0, 0, 0, newYork),
			End:    time.Date(2025, 12, 12, 20, 0, 0, 0, newYork),
			Status: venue.EventStatusActive,
		},
	}
	r := NewResolver(store, newYork)

	res, err := r.Resolve(context.Background(), local(2025, 12, 12, 19, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, LayerPrivateEvents, res.Layer)
	assert.Contains(t, res.Message, "from 6:00 PM to 8:00 PM")

	res, err = r.Resolve(context.Background(), local(2025, 12, 12, 20, 0, 2))
	require.NoError(t, err)
	assert.True(t, res.Approved)
}

func TestResolveClosures(t *testing.T) {
	tests := []struct {
		name     string
		closure  venue.Closure
		hour     int
		approved bool
		message  string
	}{
		{
			name:    "sms override wins regardless of time",
			closure: venue.Closure{Ranges: []venue.Range{rng(12, 0, 13, 0)}, SMSMessage: "Closed for inventory, see you Saturday!"},
			hour:    19,
			message: "Closed for inventory, see you Saturday!",
		},
		{
			name:    "full day",
			closure: venue.Closure{FullDay: true},
			hour:    19,
			message: "Sorry, we're closed on Friday, December 12, 2025.",
		},
		{
			name:    "no ranges means full day",
			closure: venue.Closure{},
			hour:    19,
			message: "Sorry, we're closed on Friday, December 12, 2025.",
		},
		{
			name:    "partial overlapping",
			closure: venue.Closure{Ranges: []venue.Range{rng(18, 0, 20, 0)}},
			hour:    19,
			message: "Sorry, we're closed from 6:00 PM to 8:00 PM on Friday, December 12, 2025. Please choose a different time.",
		},
		{
			name:    "partial starting during the reservation",
			closure: venue.Closure{Ranges: []venue.Range{rng(18, 0, 20, 0)}},
			hour:    17,
			message: "Sorry, we're closed from 6:00 PM to 8:00 PM on Friday, December 12, 2025. Please choose a different time.",
		},
		{
			name:     "partial ending as the reservation starts",
			closure:  venue.Closure{Ranges: []venue.Range{rng(17, 0, 19, 0)}},
			hour:     19,
			approved: true,
		},
		{
			name:     "partial elsewhere",
			closure:  venue.Closure{Ranges: []venue.Range{rng(17, 0, 18, 0)}},
			hour:     19,
			approved: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore()
			closure := tt.closure
			store.closure = &closure
			res, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, tt.hour, 0, 2))
			require.NoError(t, err)
			assert.Equal(t, tt.approved, res.Approved)
			if !tt.approved {
				assert.Equal(t, LayerClosures, res.Layer)
				assert.Equal(t, tt.message, res.Message)
			}
		})
	}
}

func TestResolveBaseHours(t *testing.T) {
	store := openStore()
	r := NewResolver(store, newYork)

	// Before opening on a configured day.
	res, err := r.Resolve(context.Background(), local(2025, 12, 12, 15, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, LayerBaseHours, res.Layer)
	assert.Equal(t, "Sorry, that time is outside our regular hours. We're open:\n"+
		"Thursday: 5:00 PM - 11:00 PM\n"+
		"Friday: 5:00 PM - 11:00 PM\n"+
		"Saturday: 8:00 PM - 2:00 AM", res.Message)

	// Monday has no hours at all.
	res, err = r.Resolve(context.Background(), local(2025, 12, 15, 19, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, LayerBaseHours, res.Layer)
	assert.Contains(t, res.Message, "Saturday: 8:00 PM - 2:00 AM")

	// Early Sunday is still covered by Saturday's overnight range.
	res, err = r.Resolve(context.Background(), local(2025, 12, 14, 0, 30, 2))
	require.NoError(t, err)
	assert.True(t, res.Approved)

	// Closing time itself is not bookable.
	res, err = r.Resolve(context.Background(), local(2025, 12, 12, 23, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, LayerBaseHours, res.Layer)
}

func TestHoursMessageWithoutHours(t *testing.T) {
	assert.Equal(t, msgNoRegularHours, HoursMessage(nil))
}

func TestSubtract(t *testing.T) {
	base := time.Date(2025, 12, 12, 22, 0, 0, 0, time.UTC)
	open := []venue.Window{{Start: base, End: base.Add(6 * time.Hour)}}
	closed := []venue.Window{{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}}

	got := subtract(open, closed)
	require.Len(t, got, 2)
	assert.Equal(t, venue.Window{Start: base, End: base.Add(time.Hour)}, got[0])
	assert.Equal(t, venue.Window{Start: base.Add(2 * time.Hour), End: base.Add(6 * time.Hour)}, got[1])

	assert.Empty(t, subtract(open, open))
}

func TestResolveWrapsStoreErrors(t *testing.T) {
	store := openStore()
	store.err = errors.New("connection reset")
	_, err := NewResolver(store, newYork).Resolve(context.Background(), local(2025, 12, 12, 19, 0, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking_window")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestResolveRejectsInvalidRequests(t *testing.T) {
	r := NewResolver(openStore(), newYork)
	_, err := r.Resolve(context.Background(), local(2025, 12, 12, 19, 0, 0))
	assert.Error(t, err)

	req := local(2025, 12, 12, 19, 0, 2)
	req.End = req.Start
	_, err = r.Resolve(context.Background(), req)
	assert.Error(t, err)
}
