package config

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

const (
	CacheBackendFile     = "file"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"

	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

// Config stores all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	ProjectRoot string `mapstructure:"PROJECT_ROOT"`

	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	CachePath     string `mapstructure:"CACHE_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`

	FetchMode             string   `mapstructure:"FETCH_MODE"`
	FetchTimeoutSeconds   int      `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	BrowserTimeoutSeconds int      `mapstructure:"BROWSER_TIMEOUT_SECONDS"`
	UserAgent             string   `mapstructure:"USER_AGENT"`
	Proxies               []string `mapstructure:"PROXIES"`

	Target      string `mapstructure:"LINKCARD_TARGET"`
	ClassPrefix string `mapstructure:"LINKCARD_CLASS_PREFIX"`
	DefaultLogo string `mapstructure:"DEFAULT_LOGO"`
}

// Load reads configuration from envFile (if present) and environment
// variables, which take precedence.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	_ = v.ReadInConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROJECT_ROOT", ".")
	v.SetDefault("CACHE_BACKEND", CacheBackendFile)
	v.SetDefault("CACHE_PATH", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("FETCH_MODE", FetchModeHTTP)
	v.SetDefault("FETCH_TIMEOUT_SECONDS", 0) // no timeout
	v.SetDefault("BROWSER_TIMEOUT_SECONDS", 30)
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("PROXIES", "")
	v.SetDefault("LINKCARD_TARGET", "_blank")
	v.SetDefault("LINKCARD_CLASS_PREFIX", "")
	v.SetDefault("DEFAULT_LOGO", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late. The card
// target is passed through as given.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServerPort, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.CacheBackend, validation.Required,
			validation.In(CacheBackendFile, CacheBackendRedis, CacheBackendPostgres)),
		validation.Field(&c.RedisAddr, validation.When(c.CacheBackend == CacheBackendRedis, validation.Required)),
		validation.Field(&c.RedisDB, validation.Min(0)),
		validation.Field(&c.PostgresURL, validation.When(c.CacheBackend == CacheBackendPostgres, validation.Required)),
		validation.Field(&c.FetchMode, validation.Required, validation.In(FetchModeHTTP, FetchModeBrowser)),
		validation.Field(&c.FetchTimeoutSeconds, validation.Min(0)),
		validation.Field(&c.BrowserTimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

// FetchTimeout is the HTTP fetch timeout; zero means none.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.BrowserTimeoutSeconds) * time.Second
}
