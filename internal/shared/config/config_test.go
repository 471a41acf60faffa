package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, 30*time.Minute, cfg.Engine.OfferTTL)
	assert.Equal(t, 5*time.Minute, cfg.Engine.ClockSkewTolerance)
	assert.Equal(t, 3, cfg.Engine.AdmissionMaxAttempts)
	assert.Equal(t, 24, cfg.Policy.FreeCancellationHours)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OFFER_TTL", "10m")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("EVENT_TRANSPORT", "local")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ADMISSION_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("REDIS_HOST", "cache")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.Engine.OfferTTL)
	assert.True(t, cfg.UsesMemoryStore())
	assert.False(t, cfg.UsesKafka())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Engine.AdmissionMaxAttempts, "unparsable values fall back")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}
