package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

const numberWords = `one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve`

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var triggerRe = regexp.MustCompile(`(?i)\b(reservations?|reserve|book(?:ing)?|table)\b`)

// Party size patterns in priority order. The "for N" pattern captures what
// follows the number so "for 12/25" or "for 8pm" are not read as guests.
var partySizeRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfor\s+(\d{1,2}|` + numberWords + `)\b(\s*(?:/|:|am\b|pm\b|a\.m|p\.m|o'?clock))?`),
	regexp.MustCompile(`(?i)\b(\d{1,2}|` + numberWords + `)\s+guests?\b()`),
	regexp.MustCompile(`(?i)\b(\d{1,2}|` + numberWords + `)\s+(?:people|persons?|ppl)\b()`),
	regexp.MustCompile(`(?i)\bparty\s+of\s+(\d{1,2}|` + numberWords + `)\b()`),
}

// Date expressions in priority order; each is tried after "on"/"for" first
// and then anywhere in the message.
var dateExprs = []string{
	`\d{1,2}/\d{1,2}/(?:\d{4}|\d{2})\b`,
	`\d{1,2}/\d{1,2}\b`,
	`(?:` + monthPattern + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?\b`,
	`(?:this|next)\s+(?:` + weekdayPattern + `)\b`,
	`(?:today|tonight|tomorrow)\b`,
	`(?:` + weekdayPattern + `)\b`,
}

var (
	primaryDateRes  = compileDateRes(`(?i)\b(?:on|for)\s+(`)
	fallbackDateRes = compileDateRes(`(?i)\b(`)
)

var (
	primaryTimeRe   = regexp.MustCompile(`(?i)\bat\s+(\d{1,2}(?::\d{2})?\s*(?:a\.?m\.?|p\.?m\.?)?)(?:\s|$|[,.!?])`)
	fallbackTimeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*(?:a\.?m\.?|p\.?m\.?)?)`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s*(?:a\.?m\.?|p\.?m\.?))`),
	}
)

func compileDateRes(prefix string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(dateExprs))
	for _, expr := range dateExprs {
		out = append(out, regexp.MustCompile(prefix+expr+`)`))
	}
	return out
}

// PatternStrategy is the deterministic regex parser used when the model is
// unavailable or cannot make sense of the message.
type PatternStrategy struct {
	opts  Options
	dates *DateResolver
}

func NewPatternStrategy(opts Options) *PatternStrategy {
	opts = opts.withDefaults()
	return &PatternStrategy{opts: opts, dates: NewDateResolver(opts.Location, opts.Now)}
}

func (p *PatternStrategy) Name() string { return "pattern" }

// Parse requires a reservation trigger word and a resolvable date. Party
// size defaults to 2 and the time to 8:00 PM.
func (p *PatternStrategy) Parse(_ context.Context, text string) (Intent, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if !triggerRe.MatchString(msg) {
		return Intent{}, false
	}

	fragment := extractDate(msg)
	if fragment == "" {
		return Intent{}, false
	}
	date, err := p.dates.Resolve(fragment)
	if err != nil {
		return Intent{}, false
	}

	clock, ok := parseClock(extractTime(msg), true)
	if !ok {
		clock = defaultClock
	}
	return p.opts.build(date, clock, extractPartySize(msg), "", ""), true
}

func extractPartySize(msg string) int {
	for _, re := range partySizeRes {
		for _, m := range re.FindAllStringSubmatch(msg, -1) {
			if strings.TrimSpace(m[2]) != "" {
				continue
			}
			if n := toNumber(m[1]); n > 0 {
				return n
			}
		}
	}
	return defaultPartySize
}

func extractDate(msg string) string {
	if fragment := firstMatch(primaryDateRes, msg); fragment != "" {
		return fragment
	}
	return firstMatch(fallbackDateRes, msg)
}

func extractTime(msg string) string {
	if m := primaryTimeRe.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	return firstMatch(fallbackTimeRes, msg)
}

func firstMatch(res []*regexp.Regexp, msg string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(msg); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func toNumber(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if n, ok := wordNumbers[raw]; ok {
		return n
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
