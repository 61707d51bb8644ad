package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerHost         string `mapstructure:"SERVER_HOST"`
	ServerPort         int    `mapstructure:"SERVER_PORT"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	RequestTimeout     int    `mapstructure:"REQUEST_TIMEOUT"` // in seconds
	FetchTimeout       int    `mapstructure:"FETCH_TIMEOUT"`   // in seconds
	MaxBodyBytes       int64  `mapstructure:"MAX_BODY_BYTES"`
	MaxRedirects       int    `mapstructure:"MAX_REDIRECTS"`
	ProxyURLs          string `mapstructure:"PROXY_URLS"`
	BrowserRender      bool   `mapstructure:"BROWSER_RENDER"`
	BrowserTimeout     int    `mapstructure:"BROWSER_TIMEOUT"` // in seconds
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	InstagramGraphQL   string `mapstructure:"INSTAGRAM_GRAPHQL_URL"`
	TwitterGraphQL     string `mapstructure:"TWITTER_GRAPHQL_URL"`
}

var defaults = map[string]any{
	"SERVER_HOST":           "",
	"SERVER_PORT":           8080,
	"LOG_LEVEL":             "info",
	"REQUEST_TIMEOUT":       60,
	"FETCH_TIMEOUT":         30,
	"MAX_BODY_BYTES":        20 << 20,
	"MAX_REDIRECTS":         10,
	"PROXY_URLS":            "",
	"BROWSER_RENDER":        false,
	"BROWSER_TIMEOUT":       30,
	"CORS_ALLOWED_ORIGINS":  "*",
	"INSTAGRAM_GRAPHQL_URL": "https://www.instagram.com/graphql/query/",
	"TWITTER_GRAPHQL_URL":   "https://api.x.com/graphql/aFvUsJm2c-oDkJV75blV6g/TweetResultByRestId",
}

// Load reads configuration from .env in the working directory and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads configuration from an env-format file, if present, and the
// environment. Environment variables win over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing file is fine: production configures through the environment only.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.ServerPort))
	}
	for name, n := range map[string]int{
		"REQUEST_TIMEOUT": c.RequestTimeout,
		"FETCH_TIMEOUT":   c.FetchTimeout,
		"MAX_REDIRECTS":   c.MaxRedirects,
		"BROWSER_TIMEOUT": c.BrowserTimeout,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, n))
		}
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.InstagramGraphQL == "" || c.TwitterGraphQL == "" {
		errs = append(errs, errors.New("graphql endpoints must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Config) BrowserTimeoutDuration() time.Duration {
	return time.Duration(c.BrowserTimeout) * time.Second
}

// Proxies splits PROXY_URLS.
func (c *Config) Proxies() []string {
	return splitList(c.ProxyURLs)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
