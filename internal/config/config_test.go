package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/taxwizard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"TAXWIZARD_ADDR", "TAXWIZARD_STORE", "TAXWIZARD_REDIS_ADDR", "TAXWIZARD_POSTGRES_DSN",
		"TAXWIZARD_LOG_LEVEL", "TAXWIZARD_LOG_FORMAT", "TAXWIZARD_SESSION_TTL", "TAXWIZARD_KAFKA_BROKERS",
		"TAXWIZARD_ENCRYPTION_KEY", "TAXWIZARD_ENCRYPTION_FALLBACK_KEYS",
	} {
		t.Setenv(k, "")
	}

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.SessionTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.EncryptionFallbackKeys)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TAXWIZARD_ADDR", ":9090")
	t.Setenv("TAXWIZARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("TAXWIZARD_REDIS_DB", "2")
	t.Setenv("TAXWIZARD_POSTGRES_DSN", "")
	t.Setenv("TAXWIZARD_STORE", "")
	t.Setenv("TAXWIZARD_LOG_LEVEL", "debug")
	t.Setenv("TAXWIZARD_LOG_FORMAT", "json")
	t.Setenv("TAXWIZARD_SESSION_TTL", "24h")
	t.Setenv("TAXWIZARD_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TAXWIZARD_KAFKA_TOPIC", "routing")
	t.Setenv("TAXWIZARD_ENCRYPTION_KEY", "active")
	t.Setenv("TAXWIZARD_ENCRYPTION_FALLBACK_KEYS", "old1, old2")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, config.StoreRedis, cfg.Store, "inferred from redis address")
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "routing", cfg.KafkaTopic)
	assert.Equal(t, "active", cfg.EncryptionKey)
	assert.Equal(t, []string{"old1", "old2"}, cfg.EncryptionFallbackKeys)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad ttl", map[string]string{"TAXWIZARD_SESSION_TTL": "soon"}},
		{"bad level", map[string]string{"TAXWIZARD_LOG_LEVEL": "loud"}},
		{"bad redis db", map[string]string{"TAXWIZARD_REDIS_DB": "x"}},
		{"unknown store", map[string]string{"TAXWIZARD_STORE": "s3"}},
		{"redis without addr", map[string]string{"TAXWIZARD_STORE": "redis", "TAXWIZARD_REDIS_ADDR": ""}},
		{"postgres without dsn", map[string]string{"TAXWIZARD_STORE": "postgres", "TAXWIZARD_POSTGRES_DSN": ""}},
		{"bad format", map[string]string{"TAXWIZARD_LOG_FORMAT": "xml"}},
		{"fallback keys without active key", map[string]string{"TAXWIZARD_ENCRYPTION_KEY": "", "TAXWIZARD_ENCRYPTION_FALLBACK_KEYS": "old"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.FromEnv()
			assert.Error(t, err)
		})
	}
}
