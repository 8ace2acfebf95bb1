package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SWEET_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string        `usage:"PostgreSQL connection URL (SWEET_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL     string        `usage:"Redis connection URL; empty keeps carts and sessions in process memory" flag:"redis-url"`
	ImageBaseURL string        `default:"/images" usage:"Public URL prefix for stored images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	ImageDir     string        `default:"./data/images" usage:"Directory for uploaded images" flag:"image-dir"`
	CartTTL      time.Duration `default:"720h" usage:"How long an untouched cart survives" flag:"cart-ttl"`
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// AdminConfig holds the back-office credential and session settings. The
// configuration never carries the admin password itself, only its
// HMAC-SHA256 hash under the pepper.
type AdminConfig struct {
	Username      string        `default:"admin" usage:"Admin username"`
	PasswordHash  string        `usage:"Hex HMAC-SHA256 of the admin password under the session pepper" flag:"admin-password-hash"`
	SessionPepper string        `usage:"HMAC pepper for password hashing (SWEET_ADMIN_SESSION_PEPPER)" flag:"session-pepper"`
	SessionTTL    time.Duration `default:"12h" usage:"Admin session lifetime" flag:"session-ttl"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SWEET",
		Files:     []string{"config.yaml", "/etc/sweet/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SWEET_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Admin.PasswordHash == "" {
		return nil, errors.New("admin password hash is required: set SWEET_ADMIN_PASSWORD_HASH")
	}
	if cfg.Admin.SessionPepper == "" {
		return nil, errors.New("session pepper is required: set SWEET_ADMIN_SESSION_PEPPER")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SWEET_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
