// Package intent extracts a structured reservation request from free-text
// SMS messages using an ordered chain of parsing strategies.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/venue"
)

const (
	defaultPartySize = 2
	defaultDuration  = 2 * time.Hour
	defaultLabel     = "Table Reservation"
)

var defaultClock = venue.Clock{Hour: 20}

// Intent is the structured request extracted from one message.
type Intent struct {
	PartySize int
	Start     time.Time
	End       time.Time
	Label     string
	Notes     string
}

// Window returns the requested UTC window.
func (i Intent) Window() venue.Window {
	return venue.Window{Start: i.Start, End: i.End}
}

// Options carries the venue context shared by all strategies.
type Options struct {
	Location     *time.Location
	Now          func() time.Time
	Duration     time.Duration
	DefaultLabel string
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Duration <= 0 {
		o.Duration = defaultDuration
	}
	if strings.TrimSpace(o.DefaultLabel) == "" {
		o.DefaultLabel = defaultLabel
	}
	return o
}

// build anchors a local date and clock to a UTC window of the configured
// duration.
func (o Options) build(date venue.Date, clock venue.Clock, partySize int, label, notes string) Intent {
	start := clock.On(date, o.Location).UTC()
	label = strings.TrimSpace(label)
	if label == "" {
		label = o.DefaultLabel
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = label
	}
	return Intent{
		PartySize: partySize,
		Start:     start,
		End:       start.Add(o.Duration),
		Label:     label,
		Notes:     notes,
	}
}

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*(a\.?m\.?|p\.?m\.?)?$`)

// parseClock reads "19:30", "7:30pm", "7 pm" or a bare hour. With
// assumeEvening, hours from 1 to 11 without am/pm are read as evening times.
func parseClock(raw string, assumeEvening bool) (venue.Clock, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return venue.Clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	return toClock(hour, minute, m[3], assumeEvening)
}

func toClock(hour, minute int, meridiem string, assumeEvening bool) (venue.Clock, bool) {
	meridiem = strings.ToLower(strings.ReplaceAll(meridiem, ".", ""))
	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return venue.Clock{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return venue.Clock{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if assumeEvening && hour >= 1 && hour <= 11 {
			hour += 12
		}
	}
	return venue.NewClock(hour, minute)
}
