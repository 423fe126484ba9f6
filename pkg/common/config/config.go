package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers  []string
	KafkaGroupID  string
	OrderTopic    string
	OrderDLQTopic string

	// LLM
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModelName string
	LLMTimeout   time.Duration

	// Ordering API
	OrderingAPIBaseURL      string
	OrderingAPITokenURL     string
	OrderingAPIClientID     string
	OrderingAPIClientSecret string
	OrderingAPITimeout      time.Duration
	SubmitRetryAttempts     int
	SubmitRetryBaseDelay    time.Duration

	// Extraction
	TaxonomyPath   string
	OrderCacheTTL  time.Duration
	OrderRecordTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "carebridge"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "carebridge123"),
		PostgresDB:       getEnv("POSTGRES_DB", "dme_orders"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "dme-orders"),
		OrderTopic:    getEnv("ORDER_TOPIC", "dme.orders.extracted"),
		OrderDLQTopic: getEnv("ORDER_DLQ_TOPIC", "dme.orders.dlq"),

		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName: getEnv("LLM_MODEL_NAME", "gpt-4"),
		LLMTimeout:   getDuration("LLM_TIMEOUT", 30*time.Second),

		OrderingAPIBaseURL:      getEnv("ORDERING_API_BASE_URL", "http://localhost:9090"),
		OrderingAPITokenURL:     getEnv("ORDERING_API_TOKEN_URL", ""),
		OrderingAPIClientID:     getEnv("ORDERING_API_CLIENT_ID", ""),
		OrderingAPIClientSecret: getEnv("ORDERING_API_CLIENT_SECRET", ""),
		OrderingAPITimeout:      getDuration("ORDERING_API_TIMEOUT", 10*time.Second),
		SubmitRetryAttempts:     getIntEnv("SUBMIT_RETRY_ATTEMPTS", 3),
		SubmitRetryBaseDelay:    getDuration("SUBMIT_RETRY_BASE_DELAY", 250*time.Millisecond),

		TaxonomyPath:   getEnv("TAXONOMY_PATH", ""),
		OrderCacheTTL:  getDuration("ORDER_CACHE_TTL", 15*time.Minute),
		OrderRecordTTL: getDuration("ORDER_RECORD_TTL", 30*24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
