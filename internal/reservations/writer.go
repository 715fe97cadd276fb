// Package reservations persists bookings made by the SMS engine.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

var tracer = otel.Tracer("venue.reservations")

var (
	// ErrTableTaken means another booking claimed the table first. The
	// caller may retry on a different table.
	ErrTableTaken = errors.New("reservations: table already booked for that time")
	// ErrCreateFailed covers every other write failure.
	ErrCreateFailed = errors.New("reservations: could not create reservation")
)

// Postgres error codes that mean we lost a race for the table.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgExclusionViolation   = "23P01"
)

// NewReservation is the approved request to persist.
type NewReservation struct {
	TableID   string
	Start     time.Time
	End       time.Time
	PartySize int
	Phone     string
	FirstName string
	LastName  string
	Label     string
	Notes     string
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Writer inserts reservations inside a serializable transaction that
// re-checks the table before inserting.
type Writer struct {
	db     txBeginner
	logger *logging.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewWriter(pool *pgxpool.Pool, logger *logging.Logger) *Writer {
	if pool == nil {
		panic("reservations: pgx pool required")
	}
	return newWriterWithDB(pool, logger)
}

func newWriterWithDB(db txBeginner, logger *logging.Logger) *Writer {
	if db == nil {
		panic("reservations: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{db: db, logger: logger, now: time.Now, newID: uuid.New}
}

const insertReservation = `
	INSERT INTO reservations (
		id, table_id, start_time, end_time, party_size,
		phone, first_name, last_name, source, label, notes
	) VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at
`

// Create writes the reservation with source "sms". It never retries.
func (w *Writer) Create(ctx context.Context, in NewReservation) (venue.Reservation, error) {
	ctx, span := tracer.Start(ctx, "reservations.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("reservation.table_id", in.TableID),
		attribute.Int("reservation.party_size", in.PartySize),
	)

	res, err := w.create(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return venue.Reservation{}, err
	}
	return res, nil
}

func (w *Writer) create(ctx context.Context, in NewReservation) (venue.Reservation, error) {
	if strings.TrimSpace(in.TableID) == "" || in.PartySize <= 0 || !in.End.After(in.Start) {
		return venue.Reservation{}, fmt.Errorf("%w: invalid reservation", ErrCreateFailed)
	}

	tx, err := w.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return venue.Reservation{}, classify("begin", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			w.logger.Warn("reservation rollback failed", "error", rbErr)
		}
	}()

	want := venue.Window{Start: in.Start.UTC(), End: in.End.UTC()}
	taken, err := tableBooked(ctx, tx, in.TableID, want)
	if err != nil {
		return venue.Reservation{}, classify("recheck", err)
	}
	if taken {
		return venue.Reservation{}, ErrTableTaken
	}

	res := venue.Reservation{
		ID:        w.newID(),
		TableID:   in.TableID,
		Start:     want.Start,
		End:       want.End,
		PartySize: in.PartySize,
		Phone:     in.Phone,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Source:    venue.SourceSMS,
		Label:     in.Label,
		Notes:     in.Notes,
	}
	err = tx.QueryRow(ctx, insertReservation,
		res.ID, res.TableID, res.Start, res.End, res.PartySize,
		res.Phone, res.FirstName, res.LastName, res.Source, res.Label, res.Notes,
	).Scan(&res.CreatedAt)
	if err != nil {
		return venue.Reservation{}, classify("insert", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return venue.Reservation{}, classify("commit", err)
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

func tableBooked(ctx context.Context, tx pgx.Tx, tableID string, want venue.Window) (bool, error) {
	rows, err := tx.Query(ctx, availability.TableBookingsQuery, tableID, want.Start, want.End)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var b venue.Window
		if err := rows.Scan(&b.Start, &b.End); err != nil {
			return false, err
		}
		if b.Overlaps(want) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// classify maps lost races to ErrTableTaken and everything else to
// ErrCreateFailed, keeping the cause in the chain.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgExclusionViolation:
			return fmt.Errorf("%w: %s: %w", ErrTableTaken, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrCreateFailed, op, err)
}
