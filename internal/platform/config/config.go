// Package config builds all runtime configuration from the environment so
// main stays lean. Values come from ROOST_* variables with development
// defaults; a .env file is loaded by the caller before FromEnv runs.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Mongo configures the document store holding listings and users.
type Mongo struct {
	URI      string
	Database string
}

// Redis configures sessions, flash notices, and the geocode cache.
type Redis struct {
	URL string
}

// MinIO configures the object storage backend for listing images.
type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Geocoder configures the forward-geocoding provider.
type Geocoder struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
	// OnUpdate decides whether editing a listing's location re-derives its
	// coordinates: "never", "always", or "if-changed".
	OnUpdate string
}

// Kafka configures the audit event bus.
type Kafka struct {
	Brokers []string
	Topic   string
}

// AuditDB configures the Postgres archive fed by the audit consumer. Empty
// DSN disables the archive.
type AuditDB struct {
	DSN string
}

// Auth configures token issuance and session retention.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	SessionTTL    time.Duration
	LoginURL      string
}

// Config aggregates every section.
type Config struct {
	Server   Server
	Mongo    Mongo
	Redis    Redis
	MinIO    MinIO
	Geocoder Geocoder
	Kafka    Kafka
	AuditDB  AuditDB
	Auth     Auth
}

// FromEnv builds the config from environment variables with development
// defaults. Defaults are safe for local docker-compose; production overrides
// everything.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("ROOST_ADDR", ":8080"),
			ShutdownTimeout: getDuration("ROOST_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Mongo: Mongo{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "roost"),
		},
		Redis: Redis{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		MinIO: MinIO{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "listing-images"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
		},
		Geocoder: Geocoder{
			BaseURL:  getEnv("GEOCODER_BASE_URL", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
			Token:    os.Getenv("GEOCODER_TOKEN"),
			Timeout:  getDuration("GEOCODER_TIMEOUT", 5*time.Second),
			CacheTTL: getDuration("GEOCODER_CACHE_TTL", 24*time.Hour),
			OnUpdate: getEnv("GEOCODE_ON_UPDATE", "if-changed"),
		},
		Kafka: Kafka{
			Brokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "roost.audit"),
		},
		AuditDB: AuditDB{
			DSN: os.Getenv("AUDIT_DB_DSN"),
		},
		Auth: Auth{
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      getDuration("AUTH_TOKEN_TTL", time.Hour),
			SessionTTL:    getDuration("AUTH_SESSION_TTL", 30*24*time.Hour),
			LoginURL:      getEnv("AUTH_LOGIN_URL", "/login"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
