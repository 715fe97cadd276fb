package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/venue-platform/internal/venue"
)

type recordingAppender struct {
	aggregate string
	evt       Event
	err       error
}

func (r *recordingAppender) Append(_ context.Context, aggregate string, evt Event) (uuid.UUID, error) {
	r.aggregate, r.evt = aggregate, evt
	return uuid.New(), r.err
}

type recordingNotifier struct {
	res   venue.Reservation
	table venue.Table
	err   error
}

func (r *recordingNotifier) NotifyReservation(_ context.Context, res venue.Reservation, table venue.Table) error {
	r.res, r.table = res, table
	return r.err
}

func sampleReservation() (venue.Reservation, venue.Table) {
	start := time.Date(2025, 12, 26, 0, 30, 0, 0, time.UTC)
	return venue.Reservation{
			ID:        uuid.MustParse("0b7d5a61-1a55-4a53-9b2f-51e9f1a3a0c4"),
			TableID:   "t-6",
			Start:     start,
			End:       start.Add(2 * time.Hour),
			PartySize: 5,
			Phone:     "+15551234567",
			FirstName: "Sam",
			LastName:  "Rivera",
			Source:    venue.SourceSMS,
			Label:     "Table Reservation",
		},
		venue.Table{ID: "t-6", Number: 12, Capacity: 6}
}

func TestReservationOutboxRoundTripsThroughDelivery(t *testing.T) {
	res, table := sampleReservation()
	app := &recordingAppender{}
	confirmedAt := time.Date(2025, 12, 10, 20, 0, 0, 0, time.UTC)
	outbox := &ReservationOutbox{store: app, now: func() time.Time { return confirmedAt }}

	require.NoError(t, outbox.NotifyReservation(context.Background(), res, table))
	assert.Equal(t, "reservation:"+res.ID.String(), app.aggregate)

	payload, err := json.Marshal(app.evt)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	delivery := NewReservationDelivery(notifier)
	require.NoError(t, delivery.Handle(context.Background(), OutboxEntry{Type: EventTypeReservationConfirmed, Payload: payload}))

	assert.Equal(t, res.ID, notifier.res.ID)
	assert.True(t, res.Start.Equal(notifier.res.Start))
	assert.Equal(t, 5, notifier.res.PartySize)
	assert.Equal(t, "Sam", notifier.res.FirstName)
	assert.Equal(t, confirmedAt, notifier.res.CreatedAt)
	assert.Equal(t, table, notifier.table)
}

func TestReservationOutboxWrapsAppendError(t *testing.T) {
	res, table := sampleReservation()
	outbox := &ReservationOutbox{store: &recordingAppender{err: errors.New("db down")}, now: time.Now}
	err := outbox.NotifyReservation(context.Background(), res, table)
	assert.ErrorContains(t, err, "queue reservation notification")
}

func TestReservationDeliveryIgnoresOtherTypes(t *testing.T) {
	notifier := &recordingNotifier{}
	err := NewReservationDelivery(notifier).Handle(context.Background(), OutboxEntry{Type: "other.v1", Payload: []byte("not json")})
	assert.NoError(t, err)
	assert.Equal(t, venue.Reservation{}, notifier.res)
}

func TestReservationDeliveryErrors(t *testing.T) {
	delivery := NewReservationDelivery(&recordingNotifier{err: errors.New("smtp down")})

	err := delivery.Handle(context.Background(), OutboxEntry{Type: EventTypeReservationConfirmed, Payload: []byte("{")})
	assert.ErrorContains(t, err, "decode")

	err = delivery.Handle(context.Background(), OutboxEntry{Type: EventTypeReservationConfirmed, Payload: []byte(`{"reservation_id":"nope"}`)})
	assert.ErrorContains(t, err, "reservation id")

	res, table := sampleReservation()
	outbox := &ReservationOutbox{store: &recordingAppender{}, now: time.Now}
	app := outbox.store.(*recordingAppender)
	require.NoError(t, outbox.NotifyReservation(context.Background(), res, table))
	payload, _ := json.Marshal(app.evt)
	err = delivery.Handle(context.Background(), OutboxEntry{Type: EventTypeReservationConfirmed, Payload: payload})
	assert.ErrorContains(t, err, "smtp down")
}

func TestConstructorsPanicWithoutDeps(t *testing.T) {
	assert.Panics(t, func() { NewReservationOutbox(nil) })
	assert.Panics(t, func() { NewReservationDelivery(nil) })
	assert.Panics(t, func() { NewOutboxStore(nil) })
}
