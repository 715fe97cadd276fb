package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

func TestConfirmationUsesVenueLocalTime(t *testing.T) {
	r := NewResponder(ResponderConfig{Messenger: &stubMessenger{}, Location: newYork, Logger: logging.Discard()})
	res := venue.Reservation{
		PartySize: 6,
		FirstName: "Sam",
		// 00:30 UTC on the 26th is 7:30 PM on Christmas in New York.
		Start: time.Date(2025, 12, 26, 0, 30, 0, 0, time.UTC),
	}

	got := r.Confirmation(res)

	assert.Equal(t, "You're all set, Sam! Your reservation for 6 is confirmed for Thursday, December 25, 2025 at 7:30 PM.", got)
}

func TestNonMemberFallsBackToBookingURL(t *testing.T) {
	r := NewResponder(ResponderConfig{Messenger: &stubMessenger{}, BookingURL: "https://club.test/book"})
	assert.Contains(t, r.NonMember(), "https://club.test/book")

	bare := NewResponder(ResponderConfig{Messenger: &stubMessenger{}})
	assert.Equal(t, "Sorry, SMS reservations are available to members only.", bare.NonMember())
	assert.Contains(t, bare.ParseFailure(), "Table for 4 tomorrow at 7pm")
}

func TestSendSkipsBlankBodies(t *testing.T) {
	m := &stubMessenger{}
	r := NewResponder(ResponderConfig{Messenger: m})

	assert.NoError(t, r.Send(context.Background(), memberPhone, "  "))
	assert.Empty(t, m.sent)
}

func TestNewResponderRequiresMessenger(t *testing.T) {
	assert.Panics(t, func() { NewResponder(ResponderConfig{}) })
}
