package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VENUE_TIMEZONE", "")
	t.Setenv("RESERVATION_DURATION", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("STAFF_NOTIFY_EMAILS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "America/New_York", cfg.VenueTimezone)
	assert.Equal(t, 2*time.Hour, cfg.ReservationDuration)
	assert.Equal(t, 4*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "auto", cfg.LLMProvider)
	assert.Nil(t, cfg.StaffNotifyEmails)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VENUE_TIMEZONE", "America/Chicago")
	t.Setenv("RESERVATION_DURATION", "90m")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("WEBHOOK_RATE_LIMIT", "2.5")
	t.Setenv("STAFF_NOTIFY_EMAILS", "host@venue.test, ,manager@venue.test")

	cfg := Load()
	assert.Equal(t, "America/Chicago", cfg.VenueTimezone)
	assert.Equal(t, 90*time.Minute, cfg.ReservationDuration)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 2.5, cfg.WebhookRateLimit)
	assert.Equal(t, []string{"host@venue.test", "manager@venue.test"}, cfg.StaffNotifyEmails)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "soon")
	cfg := Load()
	assert.Equal(t, 4*time.Second, cfg.LLMTimeout)
}
