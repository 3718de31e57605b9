// Package config builds the process configuration from environment
// variables once at startup. The resulting structs are passed explicitly to
// the components that need them; nothing here is global or mutable.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration for one classifier-router instance.
type Config struct {
	App   AppConfig
	Kafka KafkaConfig
	Redis RedisConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	// OpsAddr is the listen address for the operational HTTP surface
	// (health, readiness, metrics, detector listing).
	OpsAddr string

	// DetectorConfigPath points at the detector descriptor JSON file.
	// Changing it requires a restart; there is no hot reload.
	DetectorConfigPath string

	// MaxTextLength bounds inbound text size in characters. Oversize
	// documents fail validation and are dead-lettered.
	MaxTextLength int

	// ProcessTimeout bounds one message's classification dispatch.
	ProcessTimeout time.Duration

	// Workers bounds concurrent classification dispatches.
	Workers int

	// DrainGrace bounds how long shutdown waits for in-flight dispatches.
	DrainGrace time.Duration

	// IdempotencyTTL is the lifetime of idempotency keys. It must exceed
	// the longest legitimate redelivery window across the whole pipeline.
	IdempotencyTTL time.Duration

	LogLevel string
}

// KafkaConfig captures broker, topic, and consumer-group settings.
type KafkaConfig struct {
	Brokers         []string
	InputTopic      string
	OutputTopic     string
	DeadLetterTopic string
	ConsumerGroup   string

	// MaxPollRecords bounds one poll batch for backpressure and fairness.
	MaxPollRecords int

	// PublishRetryMax bounds publish retries before dead-lettering.
	PublishRetryMax uint64
}

// RedisConfig captures connection settings for the idempotency store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Defaults suit local development against docker-compose services.
func FromEnv() Config {
	return Config{
		App: AppConfig{
			OpsAddr:            envStr("OPS_ADDR", ":8081"),
			DetectorConfigPath: envStr("APP_DETECTOR_CONFIG", "config/detectors.json"),
			MaxTextLength:      envInt("APP_MAX_TEXT_LENGTH", 1_000_000),
			ProcessTimeout:     envDuration("APP_PROCESS_TIMEOUT", 30*time.Second),
			Workers:            envInt("APP_WORKERS", 8),
			DrainGrace:         envDuration("APP_DRAIN_GRACE", 20*time.Second),
			IdempotencyTTL:     envDuration("APP_IDEMPOTENCY_TTL", 24*time.Hour),
			LogLevel:           envStr("APP_LOG_LEVEL", "info"),
		},
		Kafka: KafkaConfig{
			Brokers:         strings.Split(envStr("KAFKA_BROKERS", "localhost:9092"), ","),
			InputTopic:      envStr("KAFKA_INPUT_TOPIC", "text-extraction"),
			OutputTopic:     envStr("KAFKA_OUTPUT_TOPIC", "llm-requests"),
			DeadLetterTopic: envStr("KAFKA_DLQ_TOPIC", "classifier-router.dlq"),
			ConsumerGroup:   envStr("KAFKA_GROUP_ID", "classifier-router"),
			MaxPollRecords:  envInt("KAFKA_MAX_POLL_RECORDS", 100),
			PublishRetryMax: uint64(envInt("KAFKA_PUBLISH_RETRY_MAX", 5)),
		},
		Redis: RedisConfig{
			URL:          envStr("REDIS_URL", "redis://localhost:6379"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
