package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AllowedLocations are the only locations accepted for new reviews.
var AllowedLocations = []string{
	"San Diego, California",
	"Denver, Colorado",
	"New York, New York",
}

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	DataFile       string
	Store          string // memory|mysql
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	SentimentURL   string
	SentimentKey   string
	SentimentRPS   int
	KafkaBrokers   []string
	KafkaTopic     string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Workers        int
	BatchSize      int
}

func Load() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       ":" + env("PORT", "8000"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		DataFile:       env("DATA_FILE", "data/reviews.csv"),
		Store:          strings.ToLower(env("STORE", "memory")),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?charset=utf8mb4&loc=Local"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		SentimentURL:   env("SENTIMENT_API_URL", ""),
		SentimentKey:   env("SENTIMENT_API_KEY", ""),
		SentimentRPS:   atoi("SENTIMENT_API_RPS", 10),
		KafkaBrokers:   splitList(env("KAFKA_BROKERS", "")),
		KafkaTopic:     env("KAFKA_TOPIC", "reviews"),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "*")),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		Workers:        atoi("INGEST_WORKERS", 4),
		BatchSize:      atoi("INGEST_BATCH_SIZE", 500),
	}
	if c.Store != "memory" && c.Store != "mysql" {
		log.Warn().Str("store", c.Store).Msg("unknown STORE, falling back to memory")
		c.Store = "memory"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
