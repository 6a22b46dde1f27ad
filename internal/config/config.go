// Package config loads gateway configuration from the environment and
// the per-resource staleness policy file.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the gateway's environment configuration.
type Config struct {
	Server struct {
		Host            string        `env:"SERVER_HOST,default=0.0.0.0"`
		Port            int           `env:"SERVER_PORT,default=8080"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	}

	Backend struct {
		BaseURL string        `env:"BACKEND_BASE_URL,required"`
		APIKey  string        `env:"BACKEND_API_KEY"`
		Timeout time.Duration `env:"BACKEND_TIMEOUT,default=30s"`
		// Resilience applies retries and a circuit breaker to reads.
		Resilience bool `env:"BACKEND_RESILIENCE,default=true"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET,required"`
	}

	Redis struct {
		// Addr enables the cross-replica invalidation bus when set.
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB,default=0"`
		Channel  string `env:"REDIS_INVALIDATION_CHANNEL,default=panel:invalidations"`
	}

	Realtime struct {
		// Enabled turns on the WebSocket change feed from the backend.
		Enabled bool `env:"REALTIME_ENABLED,default=false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,default=info"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS,default=10"`
		Burst int     `env:"RATE_LIMIT_BURST,default=20"`
	}

	CORS struct {
		AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	}

	Revalidate struct {
		// Spec is a cron expression for the periodic focus sweep that
		// marks refresh-on-focus families stale.
		Spec string `env:"REVALIDATE_CRON,default=@every 5m"`
	}

	// PolicyFile points at the YAML staleness policy file. Empty means
	// built-in defaults only.
	PolicyFile string `env:"RESOURCE_POLICY_FILE"`
}

// Load reads .env (when present) and decodes the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
