package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/intent"
	"github.com/wolfman30/venue-platform/internal/venue"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

type intentParser interface {
	Parse(ctx context.Context, text string) (intent.Intent, string, error)
}

type availabilityResolver interface {
	Resolve(ctx context.Context, req availability.Request) (availability.Result, error)
}

type bookingWindowStore interface {
	BookingWindow(ctx context.Context) (venue.BookingWindow, bool, error)
	SetBookingWindow(ctx context.Context, bw venue.BookingWindow) error
}

// AdminBookingConfig wires the staff dry-run endpoints.
type AdminBookingConfig struct {
	Parser   intentParser
	Resolver availabilityResolver
	Windows  bookingWindowStore
	Location *time.Location
	Duration time.Duration
	Logger   *logging.Logger
}

// AdminBookingHandler lets staff exercise the parser and resolver without
// sending SMS or writing reservations, and manage the booking window.
type AdminBookingHandler struct {
	parser   intentParser
	resolver availabilityResolver
	windows  bookingWindowStore
	loc      *time.Location
	duration time.Duration
	logger   *logging.Logger
}

func NewAdminBookingHandler(cfg AdminBookingConfig) *AdminBookingHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 2 * time.Hour
	}
	return &AdminBookingHandler{
		parser:   cfg.Parser,
		resolver: cfg.Resolver,
		windows:  cfg.Windows,
		loc:      cfg.Location,
		duration: cfg.Duration,
		logger:   cfg.Logger,
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Strategy  string    `json:"strategy"`
	PartySize int       `json:"party_size"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	LocalDate string    `json:"local_date"`
	LocalTime string    `json:"local_time"`
	Label     string    `json:"label,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Parse handles POST /admin/booking/parse.
func (h *AdminBookingHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if h.parser == nil {
		jsonError(w, "parser not configured", http.StatusServiceUnavailable)
		return
	}
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	in, strategy, err := h.parser.Parse(r.Context(), req.Text)
	if errors.Is(err, intent.ErrNotUnderstood) {
		jsonError(w, "could not understand request", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Error("admin parse failed", "error", err)
		jsonError(w, "parse failed", http.StatusInternalServerError)
		return
	}
	local := in.Start.In(h.loc)
	writeJSON(w, http.StatusOK, parseResponse{
		Strategy:  strategy,
		PartySize: in.PartySize,
		Start:     in.Start.UTC(),
		End:       in.End.UTC(),
		LocalDate: venue.FormatLongDate(local),
		LocalTime: venue.FormatTime(local),
		Label:     in.Label,
		Notes:     in.Notes,
	})
}

type availabilityRequest struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	PartySize       int    `json:"party_size"`
	DurationMinutes int    `json:"duration_minutes"`
}

type tableResponse struct {
	ID       string `json:"id"`
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
}

type availabilityResponse struct {
	Approved bool           `json:"approved"`
	Layer    string         `json:"layer"`
	Message  string         `json:"message,omitempty"`
	Table    *tableResponse `json:"table,omitempty"`
}

// Availability handles POST /admin/booking/availability.
func (h *AdminBookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil {
		jsonError(w, "resolver not configured", http.StatusServiceUnavailable)
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid payload", http.StatusBadRequest)
		return
	}
	date, err := venue.ParseDate(req.Date)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	clock, err := venue.ParseClock(req.Time)
	if err != nil {
		jsonError(w, "time must be HH:MM", http.StatusBadRequest)
		return
	}
	if req.PartySize <= 0 {
		jsonError(w, "party_size must be positive", http.StatusBadRequest)
		return
	}
	duration := h.duration
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}

	start := clock.On(date, h.loc).UTC()
	result, err := h.resolver.Resolve(r.Context(), availability.Request{
		Start:     start,
		End:       start.Add(duration),
		PartySize: req.PartySize,
	})
	if err != nil {
		h.logger.Error("admin availability check failed", "error", err)
		jsonError(w, "availability check failed", http.StatusInternalServerError)
		return
	}
	resp := availabilityResponse{Approved: result.Approved, Layer: string(result.Layer), Message: result.Message}
	if result.Approved {
		resp.Table = &tableResponse{ID: result.Table.ID, Number: result.Table.Number, Capacity: result.Table.Capacity}
	}
	writeJSON(w, http.StatusOK, resp)
}

type bookingWindowPayload struct {
	Configured bool   `json:"configured"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// GetWindow handles GET /admin/booking/window.
func (h *AdminBookingHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	if h.windows == nil {
		jsonError(w, "settings store not configured", http.StatusServiceUnavailable)
		return
	}
	bw, ok, err := h.windows.BookingWindow(r.Context())
	if err != nil {
		h.logger.Error("load booking window failed", "error", err)
		jsonError(w, "failed to load booking window", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, bookingWindowPayload{})
		return
	}
	writeJSON(w, http.StatusOK, bookingWindowPayload{
		Configured: true,
		StartDate:  bw.Start.String(),
		EndDate:    bw.End.String(),
	})
}

// PutWindow handles PUT /admin/booking/window.
func (h *AdminBookingHandler) PutWindow(w http.ResponseWriter, r *http.Request) {
	if h.windows == nil {
		jsonError(w, "settings store not configured", http.StatusServiceUnavailable)
		return
	}
	var req bookingWindowPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid payload", http.StatusBadRequest)
		return
	}
	start, err := venue.ParseDate(req.StartDate)
	if err != nil {
		jsonError(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := venue.ParseDate(req.EndDate)
	if err != nil {
		jsonError(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		jsonError(w, "end_date is before start_date", http.StatusBadRequest)
		return
	}
	bw := venue.BookingWindow{Start: start, End: end}
	if err := h.windows.SetBookingWindow(r.Context(), bw); err != nil {
		h.logger.Error("save booking window failed", "error", err)
		jsonError(w, "failed to save booking window", http.StatusInternalServerError)
		return
	}
	h.logger.Info("booking window updated", "start_date", start.String(), "end_date", end.String())
	writeJSON(w, http.StatusOK, bookingWindowPayload{Configured: true, StartDate: start.String(), EndDate: end.String()})
}
