// Package messaging sends SMS replies and normalises phone numbers.
package messaging

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/venue-platform/internal/messaging/openphone"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

var sendTracer = otel.Tracer("venue.internal.messaging.send")

// OutboundMessage is one SMS to a guest.
type OutboundMessage struct {
	To   string
	Body string
}

// Messenger delivers outbound SMS. Implementations do not retry.
type Messenger interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

type openPhoneAPI interface {
	SendMessage(ctx context.Context, req openphone.SendMessageRequest) (*openphone.MessageResponse, error)
}

// OpenPhoneSender sends from the venue's line through the gateway API.
type OpenPhoneSender struct {
	client openPhoneAPI
	from   string
	logger *logging.Logger
}

func NewOpenPhoneSender(client openPhoneAPI, from string, logger *logging.Logger) *OpenPhoneSender {
	if client == nil {
		panic("messaging: openphone client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpenPhoneSender{client: client, from: strings.TrimSpace(from), logger: logger}
}

var _ Messenger = (*OpenPhoneSender)(nil)

func (s *OpenPhoneSender) Send(ctx context.Context, msg OutboundMessage) error {
	to := NormalizeE164(msg.To)
	if to == "" {
		return errors.New("messaging: to required")
	}
	if s.from == "" {
		return errors.New("messaging: from number not configured")
	}

	ctx, span := sendTracer.Start(ctx, "messaging.openphone.send")
	defer span.End()
	span.SetAttributes(attribute.String("venue.to", to))

	resp, err := s.client.SendMessage(ctx, openphone.SendMessageRequest{
		From:    s.from,
		To:      []string{to},
		Content: msg.Body,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("sms sent", "to", to, "provider_message_id", resp.ID, "status", resp.Status)
	return nil
}

// LogMessenger only logs. Used when no gateway credentials are configured.
type LogMessenger struct {
	logger *logging.Logger
}

func NewLogMessenger(logger *logging.Logger) *LogMessenger {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogMessenger{logger: logger}
}

func (l *LogMessenger) Send(_ context.Context, msg OutboundMessage) error {
	l.logger.Info("sms send skipped (no gateway configured)", "to", msg.To, "body", msg.Body)
	return nil
}
