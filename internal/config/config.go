package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config.yaml"
	defaultEnvPath    = ".env"

	EnvProduction  = "production"
	EnvDevelopment = "development"

	defaultKeepAliveSchedule = "*/14 * * * *"
)

// Config holds the application configuration.
type Config struct {
	Port       string `yaml:"port"`
	HealthPort string `yaml:"health_port"` // empty: health and metrics routes share the API listener

	// AppEnv selects the runtime mode; the keep-alive job only runs in production.
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	// HTTP server timeouts (optional, defaults apply in server.go)
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	KeepAliveURL      string `yaml:"keepalive_url"`
	KeepAliveSchedule string `yaml:"keepalive_schedule"`

	// UniqueFavourites enforces one favourite per (user, recipe) pair.
	UniqueFavourites bool `yaml:"unique_favourites"`
	// AutoMigrate is a pointer so that an absent key keeps the default (true).
	AutoMigrate *bool `yaml:"auto_migrate"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Database configuration (env vars only, secrets must not live in config.yaml).
	// DatabaseURL wins over the individual POSTGRES_* settings.
	DatabaseURL string `yaml:"-"`
	DBHost      string `yaml:"-"`
	DBPort      string `yaml:"-"`
	DBUser      string `yaml:"-"`
	DBPassword  string `yaml:"-"`
	DBName      string `yaml:"-"`
}

// Load reads configuration with the following precedence (highest wins):
//  1. Environment variables (APP_ENV falls back to NODE_ENV)
//  2. .env file (path from ENV_FILE env var, or ".env"); never overrides variables already set
//  3. YAML config file (path from CONFIG_PATH env var, or "config.yaml")
//
// Database settings are loaded exclusively from the environment.
func Load() (*Config, error) {
	envPath := os.Getenv("ENV_FILE")
	if envPath == "" {
		envPath = defaultEnvPath
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %s: %w", envPath, err)
	}

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.HealthPort, "HEALTH_PORT")
	// NODE_ENV is a fallback; APP_ENV wins when both are set.
	overrideString(&cfg.AppEnv, "NODE_ENV")
	overrideString(&cfg.AppEnv, "APP_ENV")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.KeepAliveURL, "KEEPALIVE_URL")
	overrideString(&cfg.KeepAliveSchedule, "KEEPALIVE_SCHEDULE")

	if err := overrideBool(&cfg.UniqueFavourites, "UNIQUE_FAVOURITES"); err != nil {
		return nil, err
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AUTO_MIGRATE must be a boolean, got %q", v)
		}
		cfg.AutoMigrate = &b
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	// HTTP server timeouts (optional, defaults apply in server.go if zero)
	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"READ_TIMEOUT", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"IDLE_TIMEOUT", &cfg.IdleTimeout},
	} {
		if v := os.Getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("%s must be a duration, got %q", d.env, v)
			}
			*d.dst = parsed
		}
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("port is required (set via config file or PORT env var)")
	}

	// Defaults
	if cfg.AppEnv == "" {
		cfg.AppEnv = EnvDevelopment
	}
	if cfg.KeepAliveSchedule == "" {
		cfg.KeepAliveSchedule = defaultKeepAliveSchedule
	}
	if cfg.AutoMigrate == nil {
		enabled := true
		cfg.AutoMigrate = &enabled
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Database configuration from environment variables
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBHost = os.Getenv("POSTGRES_HOST")
	cfg.DBPort = os.Getenv("POSTGRES_PORT")
	cfg.DBUser = os.Getenv("POSTGRES_USER")
	cfg.DBPassword = os.Getenv("POSTGRES_PASSWORD")
	cfg.DBName = os.Getenv("POSTGRES_DB")

	if cfg.DatabaseURL == "" {
		if cfg.DBHost == "" {
			return nil, fmt.Errorf("POSTGRES_HOST env var is required when DATABASE_URL is not set")
		}
		if cfg.DBPort == "" {
			return nil, fmt.Errorf("POSTGRES_PORT env var is required when DATABASE_URL is not set")
		}
		if cfg.DBUser == "" {
			return nil, fmt.Errorf("POSTGRES_USER env var is required when DATABASE_URL is not set")
		}
		if cfg.DBPassword == "" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD env var is required when DATABASE_URL is not set")
		}
		if cfg.DBName == "" {
			return nil, fmt.Errorf("POSTGRES_DB env var is required when DATABASE_URL is not set")
		}
	}

	return cfg, nil
}

// PostgresConnString returns a PostgreSQL connection string.
func (c *Config) PostgresConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// APIAddr returns the listen address for the API server.
func (c *Config) APIAddr() string {
	return ":" + c.Port
}

// HealthAddr returns the listen address for the health check server, or "" when it shares the API listener.
func (c *Config) HealthAddr() string {
	if c.HealthPort == "" {
		return ""
	}
	return ":" + c.HealthPort
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// KeepAliveEnabled reports whether the keep-alive job should be started.
func (c *Config) KeepAliveEnabled() bool {
	return c.IsProduction() && c.KeepAliveURL != ""
}

// MigrateOnStart reports whether the schema should be migrated at startup.
func (c *Config) MigrateOnStart() bool {
	return c.AutoMigrate == nil || *c.AutoMigrate
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got %q", env, v)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
