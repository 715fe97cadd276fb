package events

import "time"

// Event is a versioned payload written to the outbox.
type Event interface {
	EventType() string
}

// EventTypeReservationConfirmed is emitted after an SMS booking commits.
const EventTypeReservationConfirmed = "reservation.confirmed.v1"

// ReservationConfirmedV1 carries everything staff notifications need, so
// delivery never has to read the reservation back.
type ReservationConfirmedV1 struct {
	ReservationID string    `json:"reservation_id"`
	TableID       string    `json:"table_id"`
	TableNumber   int       `json:"table_number"`
	TableCapacity int       `json:"table_capacity"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PartySize     int       `json:"party_size"`
	Phone         string    `json:"phone"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Source        string    `json:"source"`
	Label         string    `json:"label,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

func (ReservationConfirmedV1) EventType() string { return EventTypeReservationConfirmed }
