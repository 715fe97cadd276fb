package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/venue-platform/internal/venue"
)

type appender interface {
	Append(ctx context.Context, aggregate string, evt Event) (uuid.UUID, error)
}

// ReservationOutbox queues staff notifications instead of sending them
// inline, so a slow or failing mail provider never delays the SMS reply.
type ReservationOutbox struct {
	store appender
	now   func() time.Time
}

func NewReservationOutbox(store *OutboxStore) *ReservationOutbox {
	if store == nil {
		panic("events: outbox store required")
	}
	return &ReservationOutbox{store: store, now: time.Now}
}

// NotifyReservation appends a ReservationConfirmedV1 event.
func (o *ReservationOutbox) NotifyReservation(ctx context.Context, res venue.Reservation, table venue.Table) error {
	evt := ReservationConfirmedV1{
		ReservationID: res.ID.String(),
		TableID:       table.ID,
		TableNumber:   table.Number,
		TableCapacity: table.Capacity,
		Start:         res.Start.UTC(),
		End:           res.End.UTC(),
		PartySize:     res.PartySize,
		Phone:         res.Phone,
		FirstName:     res.FirstName,
		LastName:      res.LastName,
		Source:        res.Source,
		Label:         res.Label,
		Notes:         res.Notes,
		ConfirmedAt:   o.now().UTC(),
	}
	if _, err := o.store.Append(ctx, "reservation:"+evt.ReservationID, evt); err != nil {
		return fmt.Errorf("events: queue reservation notification: %w", err)
	}
	return nil
}

type reservationNotifier interface {
	NotifyReservation(ctx context.Context, res venue.Reservation, table venue.Table) error
}

// ReservationDelivery hands queued reservation events to the staff notifier.
type ReservationDelivery struct {
	notifier reservationNotifier
}

func NewReservationDelivery(notifier reservationNotifier) *ReservationDelivery {
	if notifier == nil {
		panic("events: reservation notifier required")
	}
	return &ReservationDelivery{notifier: notifier}
}

// Handle implements DeliveryHandler. Unknown event types are acknowledged
// without side effects.
func (d *ReservationDelivery) Handle(ctx context.Context, entry OutboxEntry) error {
	if entry.Type != EventTypeReservationConfirmed {
		return nil
	}
	var evt ReservationConfirmedV1
	if err := json.Unmarshal(entry.Payload, &evt); err != nil {
		return fmt.Errorf("events: decode %s: %w", entry.Type, err)
	}
	id, err := uuid.Parse(evt.ReservationID)
	if err != nil {
		return fmt.Errorf("events: reservation id %q: %w", evt.ReservationID, err)
	}
	res := venue.Reservation{
		ID:        id,
		TableID:   evt.TableID,
		Start:     evt.Start,
		End:       evt.End,
		PartySize: evt.PartySize,
		Phone:     evt.Phone,
		FirstName: evt.FirstName,
		LastName:  evt.LastName,
		Source:    evt.Source,
		Label:     evt.Label,
		Notes:     evt.Notes,
		CreatedAt: evt.ConfirmedAt,
	}
	table := venue.Table{ID: evt.TableID, Number: evt.TableNumber, Capacity: evt.TableCapacity}
	return d.notifier.NotifyReservation(ctx, res, table)
}
