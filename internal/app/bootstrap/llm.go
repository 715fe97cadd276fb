package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/internal/llm"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// BuildIntentModel assembles the language model used by the AI intent
// strategy. LLM_PROVIDER selects "bedrock", "gemini" or "auto" (Bedrock
// first, Gemini second). The result is bounded by LLM_TIMEOUT so the
// pattern strategy stays reachable. A nil client means no model is
// configured and parsing is pattern-only. The returned func releases
// provider resources.
func BuildIntentModel(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (llm.Client, func()) {
	noop := func() {}
	if cfg == nil {
		return nil, noop
	}
	if logger == nil {
		logger = logging.Default()
	}

	var bedrock, gemini llm.Client
	cleanup := noop
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	if provider != "gemini" && awsCfg != nil && strings.TrimSpace(cfg.BedrockModelID) != "" {
		bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
	}
	if provider != "bedrock" && strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else {
			gemini = client
			cleanup = func() { _ = client.Close() }
		}
	}

	var client llm.Client
	switch {
	case bedrock != nil:
		client = llm.NewFallbackClient(bedrock, gemini, logger)
	case gemini != nil:
		client = gemini
	default:
		logger.Warn("no intent model configured; using pattern parsing only", "provider", provider)
		return nil, cleanup
	}
	logger.Info("intent model configured",
		"provider", provider,
		"bedrock", bedrock != nil,
		"gemini", gemini != nil,
		"timeout", cfg.LLMTimeout.String(),
	)
	return llm.WithTimeout(client, cfg.LLMTimeout), cleanup
}
