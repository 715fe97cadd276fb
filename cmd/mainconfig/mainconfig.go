// Package mainconfig builds the AWS configuration shared by the API server
// and bookingctl.
package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/wolfman30/venue-platform/internal/config"
)

// UsesAWS reports whether the venue is configured for the Bedrock intent
// model or SES staff email.
func UsesAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	bedrock := cfg.LLMProvider != "gemini" && strings.TrimSpace(cfg.BedrockModelID) != ""
	ses := cfg.EmailProvider == "ses" || (cfg.EmailProvider == "" && strings.TrimSpace(cfg.SESFromEmail) != "")
	return bedrock || ses
}

// LoadAWSConfig returns nil when nothing in the venue config talks to AWS.
// AWS_ENDPOINT_OVERRIDE (LocalStack) becomes the base endpoint of every
// client built from the result, which is only Bedrock and SES.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (*aws.Config, error) {
	if !UsesAWS(cfg) {
		return nil, nil
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	return &awsCfg, nil
}

func loadOptions(cfg *appconfig.Config) []func(*config.LoadOptions) error {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey)
	if key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	return opts
}
