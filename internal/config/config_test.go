package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", 32)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(true)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, EventStorePostgres, cfg.EventStore)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, 10000, cfg.CartSessionsMax)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("EVENT_STORE", "Dynamo")
	t.Setenv("CART_TTL", "2h")
	t.Setenv("CART_SESSIONS_MAX", "50")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load(true)

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, EventStoreDynamo, cfg.EventStore)
	assert.Equal(t, 2*time.Hour, cfg.CartTTL)
	assert.Equal(t, 50, cfg.CartSessionsMax)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func TestLoad_JWTSecret(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load(true)
		assert.ErrorIs(t, err, ErrJWTSecretRequired)
	})

	t.Run("too short", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")
		_, err := Load(true)
		assert.ErrorContains(t, err, "at least 32")
	})

	t.Run("not required for workers", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load(false)
		assert.NoError(t, err)
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"CART_TTL", "forever", "invalid CART_TTL"},
		{"JWT_EXPIRY", "soon", "invalid JWT_EXPIRY"},
		{"CART_SESSIONS_MAX", "many", "invalid CART_SESSIONS_MAX"},
		{"CART_SESSIONS_MAX", "0", "must be positive"},
		{"EVENT_STORE", "mongo", "unknown EVENT_STORE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(tt.key, tt.value)

			_, err := Load(true)

			assert.ErrorContains(t, err, tt.want)
		})
	}
}
