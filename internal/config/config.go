package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable through TAXWIZARD_STORE.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures host configuration shared by the serve, mcp and run commands.
type Server struct {
	Addr      string
	LogLevel  slog.Level
	LogFormat string // text or json

	Catalog string // YAML catalog path; empty selects the built-in catalog

	Store         string
	SessionDir    string
	SessionTTL    time.Duration
	EncryptionKey string // base64 AES-256 key; empty disables encryption at rest
	// Retired base64 keys still accepted for decryption during key rotation.
	EncryptionFallbackKeys []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string

	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Flags override these values in cmd/taxwizard.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                   getenv("TAXWIZARD_ADDR", ":8080"),
		LogFormat:              getenv("TAXWIZARD_LOG_FORMAT", "text"),
		Catalog:                os.Getenv("TAXWIZARD_CATALOG"),
		Store:                  os.Getenv("TAXWIZARD_STORE"),
		SessionDir:             os.Getenv("TAXWIZARD_SESSION_DIR"),
		EncryptionKey:          os.Getenv("TAXWIZARD_ENCRYPTION_KEY"),
		EncryptionFallbackKeys: splitList(os.Getenv("TAXWIZARD_ENCRYPTION_FALLBACK_KEYS")),
		RedisAddr:              os.Getenv("TAXWIZARD_REDIS_ADDR"),
		RedisPassword:          os.Getenv("TAXWIZARD_REDIS_PASSWORD"),
		PostgresDSN:            os.Getenv("TAXWIZARD_POSTGRES_DSN"),
		KafkaBrokers:           splitList(os.Getenv("TAXWIZARD_KAFKA_BROKERS")),
		KafkaTopic:             os.Getenv("TAXWIZARD_KAFKA_TOPIC"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("TAXWIZARD_LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("TAXWIZARD_LOG_LEVEL: %w", err)
	}

	if v := os.Getenv("TAXWIZARD_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("TAXWIZARD_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	if v := os.Getenv("TAXWIZARD_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("TAXWIZARD_REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if cfg.Store == "" {
		cfg.Store = cfg.inferStore()
	}
	return cfg, cfg.Validate()
}

// inferStore picks the most durable backend that has connection settings.
func (c Server) inferStore() string {
	switch {
	case c.PostgresDSN != "":
		return StorePostgres
	case c.RedisAddr != "":
		return StoreRedis
	default:
		return StoreMemory
	}
}

// Validate checks that the selected backends have what they need.
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("store %q requires TAXWIZARD_REDIS_ADDR", c.Store)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("store %q requires TAXWIZARD_POSTGRES_DSN", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or postgres)", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session ttl must not be negative")
	}
	if len(c.EncryptionFallbackKeys) > 0 && c.EncryptionKey == "" {
		return fmt.Errorf("TAXWIZARD_ENCRYPTION_FALLBACK_KEYS requires TAXWIZARD_ENCRYPTION_KEY")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
