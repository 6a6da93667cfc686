// Package config resolves runtime configuration from defaults, an optional
// .env file, FOURDEVS_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/base"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "FOURDEVS"

// Keys used in viper and bound to flags in main.
const (
	KeyEndpoint        = "endpoint"
	KeyTimeout         = "timeout"
	KeyUserAgent       = "user_agent"
	KeyMaxConcurrent   = "max_concurrent"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyHTTPAddr        = "http_addr"
	KeyRateLimit       = "rate_limit"
	KeyMaxBodySize     = "max_body_size"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyAuthEnabled     = "auth.enabled"
	KeyAuthJWKSURI     = "auth.jwks_uri"
	KeyAuthIssuer      = "auth.issuer"
	KeyAuthClockSkew   = "auth.clock_skew"
	KeyAuthBypassPaths = "auth.bypass_paths"
	KeyRedisAddr       = "redis.addr"
	KeyRedisPassword   = "redis.password"
	KeyRedisDB         = "redis.db"
	KeyRedisPrefix     = "redis.prefix"
)

// Config is the resolved server configuration.
type Config struct {
	Provider ProviderSettings
	Log      LogSettings
	HTTP     HTTPSettings
	Auth     AuthSettings
	Redis    RedisSettings
}

type ProviderSettings struct {
	Endpoint      string
	Timeout       time.Duration
	UserAgent     string
	MaxConcurrent int
}

type LogSettings struct {
	Level  string
	Format string // "text" or "json"
}

// HTTPSettings apply only when the streamable HTTP transport is enabled.
type HTTPSettings struct {
	Addr            string
	RateLimit       int // requests per minute per client IP, 0 disables
	MaxBodySize     int64
	ShutdownTimeout time.Duration
}

type AuthSettings struct {
	Enabled     bool
	JWKSetURI   string
	IssuerURI   string
	ClockSkew   time.Duration
	BypassPaths []string
}

// RedisSettings enable rate-limit decision stats when Addr is set.
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper, version string) {
	v.SetDefault(KeyEndpoint, fourdevs.DefaultEndpoint)
	v.SetDefault(KeyTimeout, base.DefaultTimeout)
	v.SetDefault(KeyUserAgent, "fourdevs-mcp-server/"+version)
	v.SetDefault(KeyMaxConcurrent, base.MaxConcurrentRequests)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyHTTPAddr, "")
	v.SetDefault(KeyRateLimit, 60)
	v.SetDefault(KeyMaxBodySize, int64(1<<20))
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyAuthEnabled, false)
	v.SetDefault(KeyAuthJWKSURI, "")
	v.SetDefault(KeyAuthIssuer, "")
	v.SetDefault(KeyAuthClockSkew, 30*time.Second)
	v.SetDefault(KeyAuthBypassPaths, []string{"/health"})
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisPrefix, "fourdevs:ratelimit")
}

// NewViper returns a viper instance wired to the FOURDEVS_* environment.
func NewViper(version string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v, version)
	return v
}

// LoadDotEnv loads a .env file if present. Variables already set in the
// process environment take precedence.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load resolves the configuration from v. If configFile is non-empty it is
// read first; environment variables and bound flags still take precedence.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Provider: ProviderSettings{
			Endpoint:      v.GetString(KeyEndpoint),
			Timeout:       v.GetDuration(KeyTimeout),
			UserAgent:     v.GetString(KeyUserAgent),
			MaxConcurrent: v.GetInt(KeyMaxConcurrent),
		},
		Log: LogSettings{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
		HTTP: HTTPSettings{
			Addr:            v.GetString(KeyHTTPAddr),
			RateLimit:       v.GetInt(KeyRateLimit),
			MaxBodySize:     v.GetInt64(KeyMaxBodySize),
			ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		},
		Auth: AuthSettings{
			Enabled:     v.GetBool(KeyAuthEnabled),
			JWKSetURI:   v.GetString(KeyAuthJWKSURI),
			IssuerURI:   v.GetString(KeyAuthIssuer),
			ClockSkew:   v.GetDuration(KeyAuthClockSkew),
			BypassPaths: splitList(v.GetStringSlice(KeyAuthBypassPaths)),
		},
		Redis: RedisSettings{
			Addr:     v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPassword),
			DB:       v.GetInt(KeyRedisDB),
			Prefix:   v.GetString(KeyRedisPrefix),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Provider.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("endpoint must be an absolute URL, got %q", c.Provider.Endpoint))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Provider.MaxConcurrent < 1 {
		errs = append(errs, errors.New("max_concurrent must be at least 1"))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if c.Auth.Enabled && c.Auth.JWKSetURI == "" {
		errs = append(errs, errors.New("auth.jwks_uri is required when auth is enabled"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// HTTPEnabled reports whether the streamable HTTP transport was requested.
func (c *Config) HTTPEnabled() bool {
	return c.HTTP.Addr != ""
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// splitList accepts both repeated values and a single comma separated value,
// which is how list settings arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
