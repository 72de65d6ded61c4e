// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ConfigurationError reports missing or invalid configuration. It is
// fatal: no query can be attempted without a complete store configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Err.Error()
}

// Unwrap returns the underlying parse or validation error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Content store. All four are required; there is no partial mode.
	SanityProjectID  string        `env:"SANITY_PROJECT_ID,required,notEmpty"`
	SanityDataset    string        `env:"SANITY_DATASET,required,notEmpty"`
	SanityAPIVersion string        `env:"SANITY_API_VERSION,required,notEmpty"`
	SanityUseCDN     bool          `env:"SANITY_USE_CDN,required"`
	SanityToken      string        `env:"SANITY_TOKEN"`                    // Optional read token for private datasets
	SanityTimeout    time.Duration `env:"SANITY_TIMEOUT" envDefault:"10s"` // Per-request timeout

	ServerHost string `env:"CONTENTD_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CONTENTD_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CONTENTD_ENV" envDefault:"development"`
	LogLevel   string `env:"CONTENTD_LOG_LEVEL" envDefault:"info"`

	// Public site
	SiteURL        string `env:"CONTENTD_SITE_URL" envDefault:"https://www.involv.com"`
	SiteName       string `env:"CONTENTD_SITE_NAME" envDefault:"Involv"`
	DefaultSite    string `env:"CONTENTD_DEFAULT_SITE" envDefault:"involv"`                     // Site tag used when a request names none
	DefaultOGImage string `env:"CONTENTD_DEFAULT_OG_IMAGE" envDefault:"/images/og-default.png"` // Path or URL used when an item has no image

	// API
	CORSOrigins    string        `env:"CONTENTD_CORS_ORIGINS"`                     // Comma-separated allowed origins
	RateLimitRPS   float64       `env:"CONTENTD_RATE_LIMIT_RPS" envDefault:"10"`   // Per client IP
	RateLimitBurst int           `env:"CONTENTD_RATE_LIMIT_BURST" envDefault:"20"` // Per client IP
	MaxLimit       int           `env:"CONTENTD_MAX_LIMIT" envDefault:"100"`       // Cap on ?limit= for API list requests
	RequestTimeout time.Duration `env:"CONTENTD_REQUEST_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AllowedOrigins returns the configured CORS origins.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load parses environment variables and returns a Config struct.
// Any failure is a *ConfigurationError.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if !strings.HasPrefix(c.SanityAPIVersion, "v") && !isDate(c.SanityAPIVersion) {
		errs = append(errs, fmt.Errorf("SANITY_API_VERSION must be a date (YYYY-MM-DD) or a v-prefixed version, got %q", c.SanityAPIVersion))
	}
	if c.SanityTimeout <= 0 {
		errs = append(errs, errors.New("SANITY_TIMEOUT must be positive"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("CONTENTD_SERVER_PORT out of range: %d", c.ServerPort))
	}
	if c.MaxLimit <= 0 {
		errs = append(errs, errors.New("CONTENTD_MAX_LIMIT must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("CONTENTD_RATE_LIMIT_RPS and CONTENTD_RATE_LIMIT_BURST must be positive"))
	}
	c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")
	return errors.Join(errs...)
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
