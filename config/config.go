package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment string

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUserID       string

	// Mail configuration
	MailFromDomain string
	MailFromName   string
	MailReplyTo    string

	// Booking rules
	BookingFeePercent      decimal.Decimal
	CancellationFeePercent decimal.Decimal
	CancellationWindow     time.Duration
	MaxSeatsPerBooking     int
	SeatHoldTTL            time.Duration
	CatalogPageSize        int

	// Outbox relay
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int

	// Reminders
	ReminderScanInterval time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// Monitoring
	EnableMetrics bool
}

// LoadConfig reads the environment, after loading an optional .env file
// from the working directory.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "ticket-storefront"),

		// Mail
		MailFromDomain: getEnv("MAIL_FROM_DOMAIN", "tickethub.com"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "TicketHub"),
		MailReplyTo:    getEnv("MAIL_REPLY_TO", "support@tickethub.com"),

		// Booking rules
		BookingFeePercent:      getEnvAsDecimal("BOOKING_FEE_PERCENT", "5"),
		CancellationFeePercent: getEnvAsDecimal("CANCELLATION_FEE_PERCENT", "10"),
		CancellationWindow:     getEnvAsDuration("CANCELLATION_WINDOW", "24h"),
		MaxSeatsPerBooking:     getEnvAsInt("MAX_SEATS_PER_BOOKING", 8),
		SeatHoldTTL:            getEnvAsDuration("SEAT_HOLD_TTL", "5m"),
		CatalogPageSize:        getEnvAsInt("CATALOG_PAGE_SIZE", 20),

		// Outbox
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", "2s"),
		OutboxBatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxAttempts:  getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 10),

		// Reminders
		ReminderScanInterval: getEnvAsDuration("REMINDER_SCAN_INTERVAL", "5m"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PubNubEnabled reports whether realtime publishing is configured.
func (c *Config) PubNubEnabled() bool {
	return c.PubNubPublishKey != "" && c.PubNubSubscribeKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil && !value.IsNegative() {
		return value
	}
	return decimal.RequireFromString(defaultValue)
}
