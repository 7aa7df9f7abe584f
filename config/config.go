package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Portal    PortalConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// PortalConfig controls how the e-SAJ portal is queried.
type PortalConfig struct {
	// BaseURL is the origin that search and redirect URLs are resolved against.
	BaseURL string // default: "https://esaj.tjsp.jus.br"

	// Host overrides the Host header sent to the portal. Empty keeps the URL host.
	Host string // default: "esaj.tjsp.jus.br"

	// UserAgent is the desktop browser identity presented to the portal.
	UserAgent string

	// Timeout bounds every HTTP round-trip (TEMPO_LIMITE, in seconds).
	Timeout time.Duration // default: 180s

	// MaxRetries is the attempt ceiling for one logical fetch
	// (TENTATIVAS_MAXIMAS_RECURSIVAS).
	MaxRetries int // default: 30

	// InsecureTLS disables certificate verification.
	InsecureTLS bool // default: true
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of inbound API calls.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// WebhookConfig controls callback delivery.
type WebhookConfig struct {
	// Secret signs callback payloads. Empty disables signing.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36 Edg/134.0.0.0"

// Load reads configuration from environment variables with sane defaults.
// It is meant to be called once at startup.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MONITOR_HOST", "0.0.0.0"),
			Port: envIntOr("MONITOR_PORT", 8080),
			Mode: envOr("MONITOR_MODE", "release"),
		},
		Portal: PortalConfig{
			BaseURL:     envOr("TJSP_BASE_URL", "https://esaj.tjsp.jus.br"),
			Host:        envOr("TJSP_HOST", "esaj.tjsp.jus.br"),
			UserAgent:   envOr("TJSP_USER_AGENT", defaultUserAgent),
			Timeout:     envSecondsOr("TEMPO_LIMITE", 180*time.Second),
			MaxRetries:  envIntOr("TENTATIVAS_MAXIMAS_RECURSIVAS", 30),
			InsecureTLS: envBoolOr("TJSP_INSECURE_TLS", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MONITOR_AUTH_ENABLED", false),
			APIKeys: envSliceOr("MONITOR_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MONITOR_RATE_RPS", 2.0),
			Burst:             envIntOr("MONITOR_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envSecondsOr accepts either a bare integer number of seconds ("180") or a
// Go duration string ("3m").
func envSecondsOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
