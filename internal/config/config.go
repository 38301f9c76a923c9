package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const DefaultBookingAPIURL = "https://flight-booking-simulator-ig6q.onrender.com/api"

type Config struct {
	HTTPAddr           string
	BookingAPIURL      string
	BookingAPITimeout  time.Duration
	DisplayLocation    *time.Location
	RedisAddr          string
	SessionTTL         time.Duration
	SecureCookies      bool
	MongoURI           string
	MongoDB            string
	CRDBDSN            string
	RabbitURL          string
	OutboxInterval     time.Duration
	RateLimitPerMinute int
	OTLPEndpoint       string
	LogLevel           string
	LogFile            string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	apiTimeout, err := duration("BOOKING_API_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := positiveDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	outboxInterval, err := positiveDuration("OUTBOX_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(getenv("DISPLAY_TIMEZONE", "UTC"))
	if err != nil {
		return nil, errors.Wrap(err, "DISPLAY_TIMEZONE")
	}

	rate, err := strconv.Atoi(getenv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil {
		return nil, errors.Wrap(err, "RATE_LIMIT_PER_MINUTE")
	}

	return &Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		BookingAPIURL:      getenv("BOOKING_API_URL", DefaultBookingAPIURL),
		BookingAPITimeout:  apiTimeout,
		DisplayLocation:    loc,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		SessionTTL:         sessionTTL,
		SecureCookies:      os.Getenv("SESSION_COOKIE_SECURE") == "true",
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getenv("MONGO_DB", "flightbook"),
		CRDBDSN:            os.Getenv("CRDB_DSN"),
		RabbitURL:          os.Getenv("RABBIT_URL"),
		OutboxInterval:     outboxInterval,
		RateLimitPerMinute: rate,
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// duration returns def when the variable is unset; a malformed or negative
// value is an error.
func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	if d < 0 {
		return 0, errors.Newf("%s must not be negative, got %s", key, v)
	}
	return d, nil
}

func positiveDuration(key string, def time.Duration) (time.Duration, error) {
	d, err := duration(key, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, errors.Newf("%s must be positive", key)
	}
	return d, nil
}
