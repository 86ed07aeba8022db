package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                  string
	KVDriver              string
	RedisAddr             string
	DatabaseURL           string
	SnapshotBaseURL       string
	SnapshotTTL           time.Duration
	SnapshotStaleFallback bool
	SubmitEndpoint        string
	SubmitTimeout         time.Duration
	FlushInterval         time.Duration
	RateLimitPerMinute    int
	RateLimitBurst        int
	OTLPEndpoint          string
	OTLPInsecure          bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	driver := os.Getenv("KV_DRIVER")
	if driver == "" {
		driver = "memory"
	}

	baseURL := os.Getenv("SNAPSHOT_BASE_URL")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/clean-scan-data"
	}

	submitEndpoint := os.Getenv("SUBMIT_ENDPOINT")
	if submitEndpoint == "" {
		submitEndpoint = baseURL + "/cleanings"
	}

	return Config{
		Port:                  port,
		KVDriver:              driver,
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		DatabaseURL:           os.Getenv("DB_DSN"),
		SnapshotBaseURL:       baseURL,
		SnapshotTTL:           readDurationSeconds("SNAPSHOT_TTL_SECONDS", 600),
		SnapshotStaleFallback: readBool("SNAPSHOT_STALE_FALLBACK", false),
		SubmitEndpoint:        submitEndpoint,
		SubmitTimeout:         readDurationSeconds("SUBMIT_TIMEOUT_SECONDS", 4),
		FlushInterval:         readDurationSeconds("FLUSH_INTERVAL_SECONDS", 60),
		RateLimitPerMinute:    readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:        readInt("RATE_LIMIT_BURST", 30),
		OTLPEndpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:          readBool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
