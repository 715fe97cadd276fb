package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/venue-platform/internal/venue"
)

// BookingWindowKey is the settings row holding the booking window.
const BookingWindowKey = "booking_window"

// Store reads the rules the layers evaluate.
type Store interface {
	// BookingWindow reports ok=false when no window is configured.
	BookingWindow(ctx context.Context) (venue.BookingWindow, bool, error)
	// PrivateEvents returns active events overlapping the window.
	PrivateEvents(ctx context.Context, within venue.Window) ([]venue.PrivateEvent, error)
	// Closure returns the exceptional closure for a date, or nil.
	Closure(ctx context.Context, date venue.Date) (*venue.Closure, error)
	BaseHours(ctx context.Context) ([]venue.HoursRow, error)
	// Tables returns tables seating at least partySize.
	Tables(ctx context.Context, partySize int) ([]venue.Table, error)
	// TableBookings returns reservation and event windows on a table that
	// overlap within.
	TableBookings(ctx context.Context, tableID string, within venue.Window) ([]venue.Window, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store over the venue schema.
type PostgresStore struct {
	db querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithQuerier(db querier) *PostgresStore {
	if db == nil {
		panic("availability: querier required")
	}
	return &PostgresStore{db: db}
}

type bookingWindowValue struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *PostgresStore) BookingWindow(ctx context.Context) (venue.BookingWindow, bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, BookingWindowKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return venue.BookingWindow{}, false, nil
	}
	if err != nil {
		return venue.BookingWindow{}, false, fmt.Errorf("load booking window: %w", err)
	}
	var v bookingWindowValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return venue.BookingWindow{}, false, fmt.Errorf("decode booking window: %w", err)
	}
	start, err := venue.ParseDate(v.StartDate)
	if err != nil {
		return venue.BookingWindow{}, false, err
	}
	end, err := venue.ParseDate(v.EndDate)
	if err != nil {
		return venue.BookingWindow{}, false, err
	}
	return venue.BookingWindow{Start: start, End: end}, true, nil
}

// SetBookingWindow upserts the booking window setting.
func (s *PostgresStore) SetBookingWindow(ctx context.Context, bw venue.BookingWindow) error {
	if bw.End.Before(bw.Start) {
		return fmt.Errorf("availability: booking window ends before it starts")
	}
	raw, err := json.Marshal(bookingWindowValue{StartDate: bw.Start.String(), EndDate: bw.End.String()})
	if err != nil {
		return fmt.Errorf("availability: encode booking window: %w", err)
	}
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.db.Exec(ctx, query, BookingWindowKey, raw); err != nil {
		return fmt.Errorf("availability: save booking window: %w", err)
	}
	return nil
}

func (s *PostgresStore) PrivateEvents(ctx context.Context, within venue.Window) ([]venue.PrivateEvent, error) {
	query := `
		SELECT id::text, title, start_time, end_time, full_day, status
		FROM private_events
		WHERE status = 'active' AND start_time < $2 AND end_time > $1
		ORDER BY start_time
	`
	rows, err := s.db.Query(ctx, query, within.Start, within.End)
	if err != nil {
		return nil, fmt.Errorf("query private events: %w", err)
	}
	defer rows.Close()

	var out []venue.PrivateEvent
	for rows.Next() {
		var e venue.PrivateEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.FullDay, &e.Status); err != nil {
			return nil, fmt.Errorf("scan private event: %w", err)
		}
		e.Start, e.End = e.Start.UTC(), e.End.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Closure(ctx context.Context, date venue.Date) (*venue.Closure, error) {
	query := `
		SELECT full_day, ranges, COALESCE(sms_message, '')
		FROM venue_hours
		WHERE kind = 'exceptional_closure' AND date = $1
	`
	var (
		c   = venue.Closure{Date: date}
		raw []byte
	)
	err := s.db.QueryRow(ctx, query, date.String()).Scan(&c.FullDay, &raw, &c.SMSMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load closure: %w", err)
	}
	if c.Ranges, err = decodeRanges(raw); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) BaseHours(ctx context.Context) ([]venue.HoursRow, error) {
	query := `
		SELECT day_of_week, ranges
		FROM venue_hours
		WHERE kind = 'base'
		ORDER BY day_of_week, id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query base hours: %w", err)
	}
	defer rows.Close()

	var out []venue.HoursRow
	for rows.Next() {
		var (
			day int
			raw []byte
		)
		if err := rows.Scan(&day, &raw); err != nil {
			return nil, fmt.Errorf("scan base hours: %w", err)
		}
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("base hours: invalid day_of_week %d", day)
		}
		ranges, err := decodeRanges(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, venue.HoursRow{DayOfWeek: time.Weekday(day), Ranges: ranges})
	}
	return out, rows.Err()
}

func (s *PostgresStore) Tables(ctx context.Context, partySize int) ([]venue.Table, error) {
	query := `
		SELECT id::text, number, capacity
		FROM tables
		WHERE capacity >= $1
		ORDER BY capacity, number
	`
	rows, err := s.db.Query(ctx, query, partySize)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var out []venue.Table
	for rows.Next() {
		var t venue.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) TableBookings(ctx context.Context, tableID string, within venue.Window) ([]venue.Window, error) {
	rows, err := s.db.Query(ctx, TableBookingsQuery, tableID, within.Start, within.End)
	if err != nil {
		return nil, fmt.Errorf("query table bookings: %w", err)
	}
	defer rows.Close()

	var out []venue.Window
	for rows.Next() {
		var w venue.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("scan table booking: %w", err)
		}
		out = append(out, venue.Window{Start: w.Start.UTC(), End: w.End.UTC()})
	}
	return out, rows.Err()
}

// TableBookingsQuery selects reservation and event windows for one table.
// Shared with the reservation writer's in-transaction re-check.
const TableBookingsQuery = `
	SELECT start_time, end_time FROM reservations
	WHERE table_id = $1::uuid AND start_time < $3 AND end_time > $2
	UNION ALL
	SELECT start_time, end_time FROM events
	WHERE table_id = $1::uuid AND status = 'active' AND start_time < $3 AND end_time > $2
`

func decodeRanges(raw []byte) ([]venue.Range, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var ranges []venue.Range
	if err := json.Unmarshal(raw, &ranges); err != nil {
		return nil, fmt.Errorf("decode hours ranges: %w", err)
	}
	return ranges, nil
}
