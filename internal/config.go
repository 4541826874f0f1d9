package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/hotlines/internal/action"
	"github.com/starford/hotlines/internal/kv"
	"github.com/starford/hotlines/internal/session"
	"github.com/starford/hotlines/internal/web"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Store   StoreConfig       `yaml:"store"`
	Share   ShareConfig       `yaml:"share"`
	Session SessionConfig     `yaml:"session"`
	Catalog CatalogConfig     `yaml:"catalog"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel      slog.Level `yaml:"log_level"`
	HTTP          HTTPConfig `yaml:"http"`
	BaseURL       string     `yaml:"base_url"`
	FeedbackEmail string     `yaml:"feedback_email"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.FeedbackEmail, is.EmailFormat),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	return c.RateLimit.Validate()
}

// RateLimitConfig bounds the JSON API request rate. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RPS, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0), validation.When(c.RPS > 0, validation.Required)),
	)
}

// StoreConfig selects the preference backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(kv.DriverSQLite, kv.DriverBolt, kv.DriverMemory)),
		validation.Field(&c.Path, validation.When(c.Driver != kv.DriverMemory, validation.Required)),
	)
}

// ShareConfig controls native sharing.
type ShareConfig struct {
	// TrustedHosts are served over plain HTTP but treated as secure contexts.
	TrustedHosts []string `yaml:"trusted_hosts"`
}

// SessionConfig controls the lifetime of rendered pages.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IdleTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SweepInterval, validation.Required, validation.Min(time.Second)),
	)
}

// CatalogConfig tunes card behaviour.
type CatalogConfig struct {
	ConfirmWindow time.Duration `yaml:"confirm_window"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ConfirmWindow, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
				RateLimit: RateLimitConfig{
					RPS:   20,
					Burst: 40,
				},
			},
		},
		Store: StoreConfig{
			Driver: kv.DriverSQLite,
			Path:   "./hotlines.db",
		},
		Share: ShareConfig{
			TrustedHosts: append([]string(nil), web.DefaultTrustedHosts...),
		},
		Session: SessionConfig{
			IdleTTL:       session.DefaultIdleTTL,
			SweepInterval: time.Minute,
		},
		Catalog: CatalogConfig{
			ConfirmWindow: action.DefaultConfirmWindow,
		},
	}
}
