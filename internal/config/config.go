// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

const defaultMaxUploadBytes = 10 << 20

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at the JSON catalog {category: [item, ...]}.
	CatalogPath string `koanf:"catalog_path"`
	// Captions overrides or extends the built-in caption table.
	Captions map[string]string `koanf:"captions"`
	// Hashtags is shown with every result.
	Hashtags string `koanf:"hashtags"`
	// ClassifierSeed fixes the random classifier; 0 seeds from the clock.
	ClassifierSeed int64 `koanf:"classifier_seed"`

	// MaxUploadBytes caps the multipart body of POST /api/uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
	// UploadRatePerSec and UploadBurst shape the per-client upload token bucket.
	UploadRatePerSec float64 `koanf:"upload_rate_per_sec"`
	UploadBurst      int     `koanf:"upload_burst"`

	// SessionBackend is memory or redis.
	SessionBackend string `koanf:"session_backend"`
	// SessionTTLMinutes expires idle sessions.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`
	// MaxSessions bounds the in-memory session registry.
	MaxSessions int `koanf:"max_sessions"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsRefreshSeconds is how often the gauge updaters poll.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		CatalogPath:           "style_data/suggestions.json",
		Captions:              map[string]string{},
		Hashtags:              "#StylePulseAI #FashionTrends",
		MaxUploadBytes:        defaultMaxUploadBytes,
		UploadRatePerSec:      2,
		UploadBurst:           10,
		SessionBackend:        SessionBackendMemory,
		SessionTTLMinutes:     30,
		MaxSessions:           10_000,
		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
		RedisAddr:             "localhost:6379",
	}
}

// SessionTTL returns the idle expiry as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MetricsRefresh returns the gauge polling period as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// Validate checks the fields that cannot be defaulted at use sites.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.CatalogPath) == "":
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive", ErrInvalidConfig)
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis session backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session_backend %q", ErrInvalidConfig, c.SessionBackend)
	}
	return nil
}
