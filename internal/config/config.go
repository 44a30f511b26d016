// Package config loads runtime configuration from defaults, an optional YAML
// file, a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"meowscale/internal/domain"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Log       LogConfig      `mapstructure:"log"`
	Store     StoreConfig    `mapstructure:"store"`
	Mongo     MongoConfig    `mapstructure:"mongo"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Auth      AuthConfig     `mapstructure:"auth"`
	App       AppConfig      `mapstructure:"app"`
	Reminders ReminderConfig `mapstructure:"reminders"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	WebDir          string        `mapstructure:"web_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects the persistence backend: memory, mongo or postgres.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI           string        `mapstructure:"uri"`
	Database      string        `mapstructure:"database"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig enables the profile cache when Addr is set.
type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	TTL           time.Duration `mapstructure:"ttl"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// AuthConfig controls how requests are attributed to a user. With Disabled
// the X-User-ID header is trusted as is.
type AuthConfig struct {
	Disabled    bool       `mapstructure:"disabled"`
	ForwardAuth bool       `mapstructure:"forward_auth"`
	OIDC        OIDCConfig `mapstructure:"oidc"`
}

type OIDCConfig struct {
	Issuer       string `mapstructure:"issuer"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type AppConfig struct {
	Timezone      string    `mapstructure:"timezone"`
	BMIThresholds []float64 `mapstructure:"bmi_thresholds"`
}

type ReminderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Spec       string        `mapstructure:"spec"`
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.web_dir":          "web",
	"server.shutdown_timeout": 10 * time.Second,
	"log.level":               "info",
	"log.format":              "text",
	"store.driver":            "memory",
	"mongo.uri":               "",
	"mongo.database":          "meowscale",
	"mongo.slow_threshold":    200 * time.Millisecond,
	"postgres.url":            "",
	"redis.addr":              "",
	"redis.password":          "",
	"redis.db":                0,
	"redis.ttl":               10 * time.Minute,
	"redis.slow_threshold":    50 * time.Millisecond,
	"auth.disabled":           false,
	"auth.forward_auth":       false,
	"auth.oidc.issuer":        "",
	"auth.oidc.client_id":     "",
	"auth.oidc.client_secret": "",
	"auth.oidc.redirect_url":  "",
	"app.timezone":            "UTC",
	"app.bmi_thresholds":      []float64{18.5, 24, 28},
	"reminders.enabled":       true,
	"reminders.spec":          "0 * * * * *",
	"reminders.webhook_url":   "",
	"reminders.timeout":       30 * time.Second,
}

// Env names kept for deployments that predate the nested keys.
var aliases = map[string][]string{
	"server.addr":    {"ADDR"},
	"server.web_dir": {"WEB_DIR"},
	"postgres.url":   {"DATABASE_URL"},
}

// Load reads configuration. path names a YAML file; when empty, config.yaml
// is looked up in the working directory and ./configs and may be absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)...); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("config: mongo.uri is required for the mongo store")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return errors.New("config: postgres.url is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.OIDCEnabled() && (c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.RedirectURL == "") {
		return errors.New("config: auth.oidc.client_id and auth.oidc.redirect_url are required with an issuer")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.BMI(); err != nil {
		return err
	}
	return nil
}

// OIDCEnabled reports whether an OIDC issuer is configured.
func (c *Config) OIDCEnabled() bool {
	return c.Auth.OIDC.Issuer != ""
}

// Location is the default zone for calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: app.timezone: %w", err)
	}
	return loc, nil
}

// BMI returns the configured category thresholds.
func (c *Config) BMI() (domain.BMIThresholds, error) {
	t, err := domain.ThresholdsFromSlice(c.App.BMIThresholds)
	if err != nil {
		return t, fmt.Errorf("config: app.bmi_thresholds: %w", err)
	}
	return t, nil
}
