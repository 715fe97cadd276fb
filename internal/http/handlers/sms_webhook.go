package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/venue-platform/internal/booking"
	"github.com/wolfman30/venue-platform/internal/messaging/openphone"
	observemetrics "github.com/wolfman30/venue-platform/internal/observability/metrics"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

const (
	gatewayProvider = "openphone"
	maxWebhookBody  = 1 << 20
)

type bookingEngine interface {
	HandleInbound(ctx context.Context, from, text string) booking.Outcome
}

type processedTracker interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
	Release(ctx context.Context, provider, eventID string) error
}

type signatureVerifier interface {
	VerifyWebhookSignature(header string, payload []byte) error
}

// SMSWebhookConfig wires the inbound gateway adapter. Verifier and
// Processed are optional: without a verifier signatures are not checked,
// without a tracker redeliveries are not deduplicated.
type SMSWebhookConfig struct {
	Engine    bookingEngine
	Processed processedTracker
	Verifier  signatureVerifier
	Metrics   *observemetrics.BookingMetrics
	Logger    *logging.Logger
}

// SMSWebhookHandler turns gateway webhooks into booking engine calls.
type SMSWebhookHandler struct {
	engine    bookingEngine
	processed processedTracker
	verifier  signatureVerifier
	metrics   *observemetrics.BookingMetrics
	logger    *logging.Logger
}

func NewSMSWebhookHandler(cfg SMSWebhookConfig) *SMSWebhookHandler {
	if cfg.Engine == nil {
		panic("handlers: booking engine required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &SMSWebhookHandler{
		engine:    cfg.Engine,
		processed: cfg.Processed,
		verifier:  cfg.Verifier,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Handle processes POST /webhooks/sms. Once the payload is authentic and
// well formed the gateway always gets a 200 so it does not redeliver.
func (h *SMSWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.metrics.ObserveInbound("unknown", "bad_request")
		jsonError(w, "invalid body", http.StatusBadRequest)
		return
	}
	if h.verifier != nil {
		if err := h.verifier.VerifyWebhookSignature(r.Header.Get(openphone.SignatureHeader), body); err != nil {
			h.logger.Warn("invalid sms webhook signature", "error", err)
			h.metrics.ObserveInbound("unknown", "unauthorized")
			jsonError(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var evt openphone.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.metrics.ObserveInbound("unknown", "bad_request")
		jsonError(w, "invalid payload", http.StatusBadRequest)
		return
	}
	eventType := defaultString(strings.TrimSpace(evt.Type), "unknown")

	msg := evt.Data.Object
	if eventType != openphone.EventMessageReceived || strings.TrimSpace(msg.From) == "" {
		h.metrics.ObserveInbound(eventType, "ignored")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	eventID := defaultString(strings.TrimSpace(evt.ID), msg.ID)
	if h.processed != nil {
		claimed, err := h.processed.MarkProcessed(r.Context(), gatewayProvider, eventID)
		if err != nil {
			// Dedupe is best effort; a Redis outage must not drop bookings.
			h.logger.Error("webhook dedupe unavailable", "error", err, "event_id", eventID)
		} else if !claimed {
			h.metrics.ObserveInbound(eventType, "duplicate")
			writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
			return
		}
	}

	if err := r.Context().Err(); err != nil {
		// The gateway gave up before we started; let its retry through.
		h.release(eventID)
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	out := h.engine.HandleInbound(r.Context(), msg.From, msg.Content())

	h.metrics.ObserveInbound(eventType, "processed")
	h.metrics.ObserveWebhookLatency(eventType, time.Since(start).Seconds())
	h.logger.Info("sms webhook processed",
		"event_id", eventID,
		"outcome", out.Kind,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "outcome": string(out.Kind)})
}

func (h *SMSWebhookHandler) release(eventID string) {
	if h.processed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.processed.Release(ctx, gatewayProvider, eventID); err != nil {
		h.logger.Warn("failed to release webhook event", "error", err, "event_id", eventID)
	}
}
