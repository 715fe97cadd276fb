package intent

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/venue"
)

// ErrUnresolvableDate is returned when no recognised date form is present.
var ErrUnresolvableDate = errors.New("intent: unresolvable date")

const weekdayPattern = `sunday|monday|tuesday|wednesday|thursday|friday|saturday|sun|mon|tues|tue|wed|thurs|thur|thu|fri|sat`

const monthPattern = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var (
	relativeDayRe = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow)\b`)
	weekdayRe     = regexp.MustCompile(`(?i)\b(this|next)\s+(` + weekdayPattern + `)\b`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	shortDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:[^/\d]|$)`)
	fullDateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
	bareWeekdayRe = regexp.MustCompile(`(?i)\b(` + weekdayPattern + `)\b`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// DateResolver turns natural date phrases into calendar dates relative to
// "today" in the venue's time zone.
type DateResolver struct {
	loc *time.Location
	now func() time.Time
}

// NewDateResolver builds a resolver. A nil now uses time.Now.
func NewDateResolver(loc *time.Location, now func() time.Time) *DateResolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DateResolver{loc: loc, now: now}
}

// Today returns the venue-local calendar date.
func (r *DateResolver) Today() venue.Date {
	return venue.DateOf(r.now().In(r.loc))
}

// Resolve converts a free-text date fragment into a calendar date. Forms are
// tried in priority order and the first match wins:
//
//	today / tomorrow
//	this|next <weekday>
//	<Month> <day>[st|nd|rd|th]
//	MM/DD
//	MM/DD/YY or MM/DD/YYYY
//	<weekday> (read as "this <weekday>")
func (r *DateResolver) Resolve(fragment string) (venue.Date, error) {
	text := strings.ToLower(strings.TrimSpace(fragment))
	if text == "" {
		return venue.Date{}, ErrUnresolvableDate
	}
	today := r.Today()

	if m := relativeDayRe.FindStringSubmatch(text); m != nil {
		if m[1] == "tomorrow" {
			return today.AddDays(1), nil
		}
		return today, nil
	}
	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		return nextWeekday(today, weekdayFor(m[2]), m[1] == "next"), nil
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		return r.InferYear(monthFor(m[1]), day)
	}
	if m := shortDateRe.FindStringSubmatch(text); m != nil && !fullDateRe.MatchString(text) {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return r.InferYear(time.Month(month), day)
	}
	if m := fullDateRe.FindStringSubmatch(text); m != nil {
		return explicitDate(m[1], m[2], m[3])
	}
	if m := bareWeekdayRe.FindStringSubmatch(text); m != nil {
		return nextWeekday(today, weekdayFor(m[1]), false), nil
	}
	return venue.Date{}, ErrUnresolvableDate
}

// InferYear picks the year for a month/day given without one. A month more
// than two months ahead of the current one, or more than ten months behind
// it, belongs to next year. A date that would still be in the past then
// rolls forward a year.
func (r *DateResolver) InferYear(month time.Month, day int) (venue.Date, error) {
	today := r.Today()
	year := today.Year
	if int(month) > int(today.Month)+2 || int(month) < int(today.Month)-10 {
		year++
	}
	d, ok := venue.NewDate(year, month, day)
	if !ok {
		return venue.Date{}, ErrUnresolvableDate
	}
	if d.Before(today) {
		if d, ok = venue.NewDate(year+1, month, day); !ok {
			return venue.Date{}, ErrUnresolvableDate
		}
	}
	return d, nil
}

// explicitDate builds a date from MM, DD and a 2 or 4 digit year. Two-digit
// years are read as 20YY.
func explicitDate(mm, dd, yy string) (venue.Date, error) {
	month, err := strconv.Atoi(mm)
	if err != nil {
		return venue.Date{}, ErrUnresolvableDate
	}
	day, err := strconv.Atoi(dd)
	if err != nil {
		return venue.Date{}, ErrUnresolvableDate
	}
	if len(yy) == 2 {
		yy = "20" + yy
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return venue.Date{}, ErrUnresolvableDate
	}
	d, ok := venue.NewDate(year, time.Month(month), day)
	if !ok {
		return venue.Date{}, ErrUnresolvableDate
	}
	return d, nil
}

// nextWeekday returns the nearest occurrence of target on or after today.
// "next" pushes it a further week out.
func nextWeekday(today venue.Date, target time.Weekday, next bool) venue.Date {
	ahead := (int(target) - int(today.Weekday()) + 7) % 7
	if next {
		ahead += 7
	}
	return today.AddDays(ahead)
}

func weekdayFor(name string) time.Weekday {
	return weekdays[strings.ToLower(name)[:3]]
}

func monthFor(name string) time.Month {
	return months[strings.ToLower(name)[:3]]
}
