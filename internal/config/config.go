package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	PocketBase PocketBase `validate:"required"`

	Kafka Kafka `validate:"required"`

	Session Session `validate:"required"`

	Cache Cache `validate:"required"`
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

// PocketBase описывает внешнее хранилище записей и сервисную учётную запись,
// под которой действует консоль.
type PocketBase struct {
	URL string `validate:"required,url"`

	ServiceIdentity   string `validate:"required"`
	ServiceSecret     string `validate:"required"`
	ServiceCollection string `validate:"required"`

	Timeout time.Duration `validate:"gt=0"`
}

type Kafka struct {
	GroupID string   `validate:"required"`
	Brokers []string `validate:"required,min=1,dive,hostname_port"`
	Topic   string   `validate:"required"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`
}

type Session struct {
	Secret string        `validate:"required"`
	MaxAge time.Duration `validate:"gt=0"`
}

type Cache struct {
	Capacity int           `validate:"gte=1"`
	TTL      time.Duration `validate:"gt=0"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		PocketBase: PocketBase{
			URL: env("PB_URL", "http://localhost:8090"),

			ServiceIdentity:   env("PB_ADMIN_EMAIL", ""),
			ServiceSecret:     env("PB_ADMIN_PASS", ""),
			ServiceCollection: env("PB_SERVICE_COLLECTION", "_superusers"),

			Timeout: envDuration("PB_TIMEOUT", 10*time.Second),
		},

		Kafka: Kafka{
			GroupID: env("KAFKA_GROUP_ID", "depo-service"),
			Topic:   env("KAFKA_SCAN_TOPIC", "scans"),
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Session: Session{
			Secret: env("SESSION_SECRET", ""),
			MaxAge: envDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		},

		Cache: Cache{
			Capacity: envInt("CACHE_CAPACITY", 512),
			TTL:      envDuration("CACHE_TTL", 5*time.Minute),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
