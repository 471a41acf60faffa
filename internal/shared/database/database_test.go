package database

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestHealth_Healthy(t *testing.T) {
	tests := []struct {
		name   string
		health Health
		want   bool
	}{
		{"no backends", Health{}, true},
		{"all ok", Health{"postgres": "ok", "redis": "ok"}, true},
		{"one failing", Health{"postgres": "ok", "redis": "dial tcp: connection refused"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.health.Healthy())
		})
	}
}

func TestHealthCheck_SkipsUnconfiguredBackends(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	db := &DB{Redis: rdb}
	defer db.Close()

	report := db.HealthCheck(context.Background())

	assert.NotContains(t, report, "postgres")
	assert.NotEqual(t, "ok", report["redis"])
	assert.False(t, report.Healthy())
}
