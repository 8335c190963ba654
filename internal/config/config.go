package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Portal  PortalConfig
	Session SessionConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// APIConfig points at the remote expo API that owns all business data.
type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	LookupTimeout time.Duration
}

type PortalConfig struct {
	PublicOrigin string
	DefaultHall  string
	DemoAmount   float64
	FontPath     string
}

type SessionConfig struct {
	Store        string // memory | redis
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
	GuardTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	Enabled     bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8085"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		API: APIConfig{
			BaseURL:       strings.TrimRight(getEnv("EXPO_API_BASE_URL", "https://masmaexpo.demovoting.com/api"), "/"),
			Timeout:       time.Duration(getEnvInt("EXPO_API_TIMEOUT_SECONDS", 10)) * time.Second,
			LookupTimeout: time.Duration(getEnvInt("EXPO_API_LOOKUP_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Portal: PortalConfig{
			PublicOrigin: strings.TrimRight(getEnv("PORTAL_PUBLIC_ORIGIN", "http://localhost:8085"), "/"),
			DefaultHall:  getEnv("PORTAL_DEFAULT_HALL", "Hall 2"),
			DemoAmount:   getEnvFloat("PORTAL_DEMO_AMOUNT", 29500),
			FontPath:     getEnv("PORTAL_FONT_PATH", "./fonts/DejaVuSans.ttf"),
		},
		Session: SessionConfig{
			Store:        strings.ToLower(getEnv("SESSION_STORE", "memory")),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "expo_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
			TTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
			GuardTTL:     time.Duration(getEnvInt("BOOKING_GUARD_TTL_SECONDS", 30)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "expo"),
			Enabled:     getEnvBool("KAFKA_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
