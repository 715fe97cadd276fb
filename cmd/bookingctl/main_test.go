package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VENUE_TIMEZONE", "America/New_York")
	t.Setenv("RESERVATION_DURATION", "2h")
	t.Setenv("DATABASE_URL", "")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommandPrintsIntent(t *testing.T) {
	out, err := run(t, "parse", "--pattern-only", "--now", "2025-12-10T15:00:00-05:00", "reservation for 4 guests tomorrow at 7pm")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy:   pattern")
	assert.Contains(t, out, "party size: 4")
	assert.Contains(t, out, "Thursday, December 11, 2025")
	assert.Contains(t, out, "7:00 PM")
	assert.Contains(t, out, "2025-12-12T00:00:00Z - 2025-12-12T02:00:00Z UTC")
}

func TestParseCommandRejectsGibberish(t *testing.T) {
	_, err := run(t, "parse", "--pattern-only", "hey can I come by sometime")
	assert.Error(t, err)
}

func TestCheckCommandValidatesBeforeConnecting(t *testing.T) {
	_, err := run(t, "check", "--date", "12/25", "--party", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")

	_, err = run(t, "check", "--date", "2025-12-25", "--party", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestWindowSetValidatesOrder(t *testing.T) {
	_, err := run(t, "window", "set", "--start", "2026-06-01", "--end", "2026-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before")
}
