package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Venue
	VenueName           string
	VenueTimezone       string
	VenueBookingURL     string
	VenueMembershipURL  string
	ReservationLabel    string
	ReservationDuration time.Duration

	// SMS gateway (OpenPhone)
	OpenPhoneAPIKey        string
	OpenPhoneBaseURL       string
	OpenPhoneFromNumber    string
	OpenPhoneWebhookSecret string
	WebhookDedupeTTL       time.Duration
	WebhookRateLimit       float64
	WebhookRateBurst       int

	// Intent model
	LLMProvider         string
	LLMTimeout          time.Duration
	BedrockModelID      string
	GeminiAPIKey        string
	GeminiModelID       string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Admin
	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Staff notifications
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	StaffNotifyEmails []string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honoured when present; real environment wins.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		VenueName:           getEnv("VENUE_NAME", "The Club"),
		VenueTimezone:       getEnv("VENUE_TIMEZONE", "America/New_York"),
		VenueBookingURL:     getEnv("VENUE_BOOKING_URL", ""),
		VenueMembershipURL:  getEnv("VENUE_MEMBERSHIP_URL", ""),
		ReservationLabel:    getEnv("RESERVATION_LABEL", "Table Reservation"),
		ReservationDuration: getEnvAsDuration("RESERVATION_DURATION", 2*time.Hour),

		OpenPhoneAPIKey:        getEnv("OPENPHONE_API_KEY", ""),
		OpenPhoneBaseURL:       getEnv("OPENPHONE_BASE_URL", ""),
		OpenPhoneFromNumber:    getEnv("OPENPHONE_FROM_NUMBER", ""),
		OpenPhoneWebhookSecret: getEnv("OPENPHONE_WEBHOOK_SECRET", ""),
		WebhookDedupeTTL:       getEnvAsDuration("WEBHOOK_DEDUPE_TTL", 24*time.Hour),
		WebhookRateLimit:       getEnvAsFloat("WEBHOOK_RATE_LIMIT", 5),
		WebhookRateBurst:       getEnvAsInt("WEBHOOK_RATE_BURST", 20),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "auto"))),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 4*time.Second),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Reservations"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Reservations"),
		StaffNotifyEmails: getEnvAsList("STAFF_NOTIFY_EMAILS"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
