package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("BOOKING_FEE_PERCENT", "")
	t.Setenv("CANCELLATION_WINDOW", "")
	t.Setenv("MAX_SEATS_PER_BOOKING", "")

	cfg := LoadConfig()

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "5", cfg.BookingFeePercent.String())
	assert.Equal(t, "10", cfg.CancellationFeePercent.String())
	assert.Equal(t, 24*time.Hour, cfg.CancellationWindow)
	assert.Equal(t, 8, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 5*time.Minute, cfg.SeatHoldTTL)
	assert.Equal(t, 20, cfg.CatalogPageSize)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BOOKING_FEE_PERCENT", "7.5")
	t.Setenv("SEAT_HOLD_TTL", "90s")
	t.Setenv("OUTBOX_BATCH_SIZE", "10")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("PUBNUB_PUBLISH_KEY", "pub-c-1")
	t.Setenv("PUBNUB_SUBSCRIBE_KEY", "sub-c-1")

	cfg := LoadConfig()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "7.5", cfg.BookingFeePercent.String())
	assert.Equal(t, 90*time.Second, cfg.SeatHoldTTL)
	assert.Equal(t, 10, cfg.OutboxBatchSize)
	assert.False(t, cfg.EnableMetrics)
	assert.True(t, cfg.PubNubEnabled())
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "many")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")
	t.Setenv("TEST_DECIMAL", "-3")

	assert.Equal(t, 4, getEnvAsInt("TEST_INT", 4))
	assert.True(t, getEnvAsBool("TEST_BOOL", true))
	assert.Equal(t, time.Minute, getEnvAsDuration("TEST_DURATION", "1m"))
	assert.Equal(t, "5", getEnvAsDecimal("TEST_DECIMAL", "5").String())
}
