// Package config loads the gateway configuration from config.yml and
// SPEAKERHUB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SPEAKERHUB_JWT_SECRET_KEY for jwt.secret_key.
const EnvPrefix = "SPEAKERHUB"

var (
	ErrMissingSecret = errors.New("config: jwt.secret_key is required")
	ErrNoUsers       = errors.New("config: system_auth.users must list at least one user")
	ErrInvalidPort   = errors.New("config: api.port must be between 1 and 65535")
	ErrInvalidValue  = errors.New("config: invalid value")
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	API        APIConfig        `mapstructure:"api"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	SystemAuth SystemAuthConfig `mapstructure:"system_auth"`
	Vendor     VendorConfig     `mapstructure:"vendor"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
}

type APIConfig struct {
	Host           string        `mapstructure:"host"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Addr returns host:port for the HTTP listener.
func (c APIConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type JWTConfig struct {
	SecretKey                   string `mapstructure:"secret_key"`
	AccessTokenExpireMinutes    int    `mapstructure:"access_token_expire_minutes"`
	RefreshTokenExpireDays      int    `mapstructure:"refresh_token_expire_days"`
	AutoRefreshThresholdMinutes int    `mapstructure:"auto_refresh_threshold_minutes"`
}

func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

func (c JWTConfig) RefreshThreshold() time.Duration {
	return time.Duration(c.AutoRefreshThresholdMinutes) * time.Minute
}

type SystemAuthConfig struct {
	Users []UserConfig `mapstructure:"users"`
}

// UserConfig is one system account. Password is plain text or a bcrypt hash.
type UserConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type VendorConfig struct {
	// Username and Password are used when a vendor login request carries no credentials.
	Username       string            `mapstructure:"username"`
	Password       string            `mapstructure:"password"`
	TTSCommands    map[string]string `mapstructure:"tts_commands"`
	TokenFile      string            `mapstructure:"token_file"`
	Accounts       []UserConfig      `mapstructure:"accounts"`
	Devices        []DeviceConfig    `mapstructure:"devices"`
	DeviceCacheTTL time.Duration     `mapstructure:"device_cache_ttl"`
	WatchInterval  time.Duration     `mapstructure:"watch_interval"`
}

// DeviceConfig describes a speaker of the built-in demo platform.
type DeviceConfig struct {
	DeviceID string `mapstructure:"device_id"`
	Name     string `mapstructure:"name"`
	Alias    string `mapstructure:"alias"`
	MiotDID  string `mapstructure:"miot_did"`
	Hardware string `mapstructure:"hardware"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// Load reads configuration. An explicit path must exist; without one,
// config.yml is searched in the working directory and /etc/speakerhub and
// may be absent, leaving defaults and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/speakerhub")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "speakerhub")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.description", "Smart speaker control gateway")

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.request_timeout", 30*time.Second)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.access_token_expire_minutes", 60)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("jwt.auto_refresh_threshold_minutes", 10)

	v.SetDefault("vendor.username", "")
	v.SetDefault("vendor.password", "")
	v.SetDefault("vendor.token_file", ".vendor_session.json")
	v.SetDefault("vendor.device_cache_ttl", 30*time.Second)
	v.SetDefault("vendor.watch_interval", 2*time.Second)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "speakerhub")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// Validate checks the values the gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if len(c.SystemAuth.Users) == 0 {
		errs = append(errs, ErrNoUsers)
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.JWT.AccessTokenExpireMinutes <= 0 || c.JWT.RefreshTokenExpireDays <= 0 {
		errs = append(errs, fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidValue))
	}
	if c.JWT.AutoRefreshThresholdMinutes < 0 {
		errs = append(errs, fmt.Errorf("%w: jwt.auto_refresh_threshold_minutes must not be negative", ErrInvalidValue))
	}
	if c.Vendor.DeviceCacheTTL <= 0 || c.Vendor.WatchInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: vendor durations must be positive", ErrInvalidValue))
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: api.request_timeout must not be negative", ErrInvalidValue))
	}

	return errors.Join(errs...)
}
