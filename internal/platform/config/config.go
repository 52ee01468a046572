package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. FromEnv keeps main lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	LogLevel      slog.Level
	DatabaseURL   string

	Ledger LedgerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
}

// LedgerConfig configures the anchoring client. Timeout bounds the blocking
// external call; expiry is treated as a creation failure by callers.
type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig configures the notification push queue. An empty URL disables
// push delivery; notifications are still persisted.
type RedisConfig struct {
	URL       string
	QueueKey  string
	PopBlock  time.Duration
	DialRetry time.Duration
}

// KafkaConfig configures the optional audit event sink. No brokers means the
// sink is disabled and audit events are only persisted locally.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables with development
// defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("DOCKET_ADDR", ":8080"),
		JWTSigningKey: envOr("DOCKET_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LogLevel:      slog.LevelInfo,
		DatabaseURL:   os.Getenv("DOCKET_DATABASE_URL"),
		Ledger: LedgerConfig{
			BaseURL: envOr("DOCKET_LEDGER_URL", "http://localhost:9090"),
			Timeout: envDurationOr("DOCKET_LEDGER_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("DOCKET_REDIS_URL"),
			QueueKey: envOr("DOCKET_PUSH_QUEUE_KEY", "docket:notifications:push"),
			PopBlock: envDurationOr("DOCKET_PUSH_POP_BLOCK", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("DOCKET_AUDIT_TOPIC", "docket.audit"),
		},
	}
	if brokers := os.Getenv("DOCKET_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitCSV(brokers)
	}
	if os.Getenv("DOCKET_LOG_DEBUG") == "true" {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitCSV(v string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if part := v[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
