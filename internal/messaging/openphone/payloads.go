package openphone

import (
	"errors"
	"strings"
	"time"
)

// EventMessageReceived is the only webhook type the booking engine acts on.
const EventMessageReceived = "message.received"

// SendMessageRequest is the outbound message body.
type SendMessageRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Content string   `json:"content"`
}

func (r SendMessageRequest) validate() error {
	if strings.TrimSpace(r.From) == "" {
		return errors.New("openphone: from required")
	}
	if len(r.To) == 0 || strings.TrimSpace(r.To[0]) == "" {
		return errors.New("openphone: to required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("openphone: content required")
	}
	return nil
}

// MessageResponse is the gateway's record of a queued message.
type MessageResponse struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
}

// WebhookEvent is the envelope of every inbound webhook delivery.
type WebhookEvent struct {
	ID        string    `json:"id"`
	Object    string    `json:"object"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Data      struct {
		Object MessageObject `json:"object"`
	} `json:"data"`
}

// MessageObject is the message carried by message.* events.
type MessageObject struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Text      string `json:"text"`
	Body      string `json:"body"`
	Direction string `json:"direction"`
}

// Content returns the message text, accepting either field name.
func (m MessageObject) Content() string {
	if strings.TrimSpace(m.Text) != "" {
		return m.Text
	}
	return m.Body
}
