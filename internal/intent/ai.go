package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/llm"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

const aiSystemPrompt = `You read SMS messages sent to a members-only venue and extract table reservation requests.
Respond with ONLY one JSON object and nothing else.

If the message asks for a reservation, respond with:
{"party_size": <integer>, "date": "<date>", "time": "<HH:MM in 24-hour time>", "event_type": "<optional short label>", "notes": "<optional notes>"}

Date rules:
- If the guest wrote "today", "tomorrow", "this <weekday>" or "next <weekday>", copy that phrase exactly.
- Otherwise use MM/DD/YYYY, or MM/DD when the guest gave no year.
Omit "time" if the guest gave none. Omit event_type and notes unless the guest mentioned them.

If the message is not a reservation request or has no date, respond with:
{"error": "<short reason>"}`

var (
	relativeAIDateRe = regexp.MustCompile(`^(?:today|tonight|tomorrow|(?:this|next)\s+\w+)$`)
	slashAIDateRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?$`)
)

// aiReply is the JSON contract the model is asked to emit.
type aiReply struct {
	PartySize flexInt `json:"party_size"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	EventType string  `json:"event_type"`
	Notes     string  `json:"notes"`
	Error     string  `json:"error"`
}

// flexInt accepts 4, "4" or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("intent: party_size %q is not a number", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// AIStrategy asks a language model to turn the message into JSON. Any
// provider error, timeout or malformed reply is a miss, never an error.
type AIStrategy struct {
	client llm.Client
	model  string
	opts   Options
	dates  *DateResolver
	logger *logging.Logger
}

func NewAIStrategy(client llm.Client, model string, opts Options, logger *logging.Logger) *AIStrategy {
	if client == nil {
		panic("intent: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	opts = opts.withDefaults()
	return &AIStrategy{
		client: client,
		model:  model,
		opts:   opts,
		dates:  NewDateResolver(opts.Location, opts.Now),
		logger: logger,
	}
}

func (a *AIStrategy) Name() string { return "ai" }

func (a *AIStrategy) Parse(ctx context.Context, text string) (Intent, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return Intent{}, false
	}
	today := a.opts.Now().In(a.opts.Location)
	resp, err := a.client.Complete(ctx, llm.Request{
		Model: a.model,
		System: []string{
			aiSystemPrompt,
			"Today is " + venue.FormatLongDate(today) + ".",
		},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		a.logger.Warn("intent model unavailable, falling back", "error", err)
		return Intent{}, false
	}

	reply, err := decodeAIReply(resp.Text)
	if err != nil {
		a.logger.Warn("intent model returned unparseable reply", "error", err)
		return Intent{}, false
	}
	if strings.TrimSpace(reply.Error) != "" {
		a.logger.Info("intent model declined message", "reason", reply.Error)
		return Intent{}, false
	}
	return a.toIntent(reply)
}

func (a *AIStrategy) toIntent(reply aiReply) (Intent, bool) {
	partySize := int(reply.PartySize)
	if partySize < 0 {
		return Intent{}, false
	}
	if partySize == 0 {
		partySize = defaultPartySize
	}

	date, ok := a.resolveDate(reply.Date)
	if !ok {
		return Intent{}, false
	}

	clock := defaultClock
	if raw := strings.TrimSpace(reply.Time); raw != "" {
		if clock, ok = parseClock(raw, false); !ok {
			return Intent{}, false
		}
	}
	return a.opts.build(date, clock, partySize, reply.EventType, reply.Notes), true
}

// resolveDate sends relative phrases through the date resolver and parses
// slash and ISO dates directly.
func (a *AIStrategy) resolveDate(raw string) (venue.Date, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return venue.Date{}, false
	}
	if relativeAIDateRe.MatchString(raw) {
		d, err := a.dates.Resolve(raw)
		return d, err == nil
	}
	if m := slashAIDateRe.FindStringSubmatch(raw); m != nil {
		if m[3] != "" {
			d, err := explicitDate(m[1], m[2], m[3])
			return d, err == nil
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d, err := a.dates.InferYear(time.Month(month), day)
		return d, err == nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return venue.DateOf(t), true
	}
	d, err := a.dates.Resolve(raw)
	return d, err == nil
}

// decodeAIReply keeps only the outermost {...} span before decoding, since
// models like to wrap JSON in prose or code fences.
func decodeAIReply(text string) (aiReply, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return aiReply{}, fmt.Errorf("intent: no json object in model reply")
	}
	var reply aiReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return aiReply{}, fmt.Errorf("intent: decode model reply: %w", err)
	}
	return reply, nil
}
