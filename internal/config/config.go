package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server settings
	APIPort string

	// DynamoDB settings
	AWSRegion        string
	DynamoEndpoint   string
	TransactionTable string
	APIKeyTable      string

	// Redis settings
	RedisAddr string

	// Cache expiration policy
	CacheAbsoluteTTL time.Duration
	CacheSlidingTTL  time.Duration

	// Kafka settings
	KafkaBroker   string
	KafkaTopic    string
	KafkaDLQTopic string

	// Elasticsearch settings (auditor)
	ElasticURL   string
	ElasticIndex string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Rate limiting settings
	RateLimitRPS   int
	RateLimitBurst int

	// Feature flags
	MockMode bool
	DevMode  bool
}

func Load() *Config {
	return &Config{
		APIPort:          getEnv("API_PORT", "8080"),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoEndpoint:   getEnv("DYNAMODB_ENDPOINT", ""),
		TransactionTable: getEnv("TRANSACTION_TABLE", "transactions"),
		APIKeyTable:      getEnv("APIKEY_TABLE", "apikeys"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		CacheAbsoluteTTL: getDurationEnv("CACHE_ABSOLUTE_TTL_MIN", 60) * time.Minute,
		CacheSlidingTTL:  getDurationEnv("CACHE_SLIDING_TTL_MIN", 30) * time.Minute,
		KafkaBroker:      getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "transaction-events"),
		KafkaDLQTopic:    getEnv("KAFKA_DLQ_TOPIC", "transaction-events-dlq"),
		ElasticURL:       getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		ElasticIndex:     getEnv("ELASTICSEARCH_INDEX", "transaction-events"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		RateLimitRPS:     getIntEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 20),
		MockMode:         getBoolEnv("MOCK_MODE", false),
		DevMode:          getBoolEnv("DEV_MODE", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
	}
	return time.Duration(fallback)
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
