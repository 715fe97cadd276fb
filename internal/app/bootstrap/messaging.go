package bootstrap

import (
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/internal/messaging"
	"github.com/wolfman30/venue-platform/internal/messaging/openphone"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// BuildMessenger returns the outbound SMS sender and the gateway client used
// to verify webhooks. Without an API key replies are only logged and the
// client is nil.
func BuildMessenger(cfg *appconfig.Config, logger *logging.Logger) (messaging.Messenger, *openphone.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.OpenPhoneAPIKey) == "" {
		logger.Warn("OPENPHONE_API_KEY not set; SMS replies will be logged, not sent")
		return messaging.NewLogMessenger(logger), nil, nil
	}
	client, err := openphone.New(openphone.Config{
		BaseURL:       cfg.OpenPhoneBaseURL,
		APIKey:        cfg.OpenPhoneAPIKey,
		WebhookSecret: cfg.OpenPhoneWebhookSecret,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: openphone client: %w", err)
	}
	return messaging.NewOpenPhoneSender(client, cfg.OpenPhoneFromNumber, logger), client, nil
}
