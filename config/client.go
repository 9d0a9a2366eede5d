package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/resilience"
	"github.com/kbukum/bookstore/security"
	"github.com/kbukum/bookstore/session"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://api.example/api"
	DefaultTimeoutMS = 30000
)

// APIConfig describes the remote bookstore API.
type APIConfig struct {
	// BaseURL is prepended to every endpoint path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// TimeoutMS bounds every call, in milliseconds.
	TimeoutMS int `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// Timeout returns TimeoutMS as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// HTTPSConfig holds the transport security switches. Unset switches follow
// the environment: both are on in production and off elsewhere.
type HTTPSConfig struct {
	Enforce            *bool  `yaml:"enforce" mapstructure:"enforce"`
	VerifyCertificates *bool  `yaml:"verify_certificates" mapstructure:"verify_certificates"`
	CAFile             string `yaml:"ca_file" mapstructure:"ca_file"`
}

// ClientConfig is the configuration of the bookstore CLI and of any program
// embedding the API client.
type ClientConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	API     APIConfig      `yaml:"api" mapstructure:"api"`
	HTTPS   HTTPSConfig    `yaml:"https" mapstructure:"https"`
	Session session.Config `yaml:"session" mapstructure:"session"`
	// Retry is the caller-side retry policy of the CLI. The client itself
	// never retries.
	Retry   resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Tracing observability.Config   `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.Config   `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills zero values.
func (c *ClientConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "bookstore"
	}
	c.ServiceConfig.ApplyDefaults()

	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.TimeoutMS <= 0 {
		c.API.TimeoutMS = DefaultTimeoutMS
	}

	prod := c.IsProduction()
	if c.HTTPS.Enforce == nil {
		c.HTTPS.Enforce = &prod
	}
	if c.HTTPS.VerifyCertificates == nil {
		verify := prod
		c.HTTPS.VerifyCertificates = &verify
	}

	c.Session.ApplyDefaults()
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 1
	}
	c.Retry.ApplyDefaults()
	c.Tracing.ApplyDefaults(c.Name, c.Version, c.Environment)
	c.Metrics.ApplyDefaults(c.Name, c.Version, c.Environment)
}

// Validate checks the configuration after ApplyDefaults.
func (c *ClientConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTPSPolicy().CheckURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("config.api.base_url: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("config.session: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("config.metrics: %w", err)
	}
	return nil
}

// HTTPSPolicy returns the resolved transport security policy. Certificate
// checks are skipped only when verify_certificates resolved to false.
func (c *ClientConfig) HTTPSPolicy() security.HTTPSPolicy {
	return security.HTTPSPolicy{
		Enforce:    c.HTTPS.Enforce != nil && *c.HTTPS.Enforce,
		SkipVerify: c.HTTPS.VerifyCertificates != nil && !*c.HTTPS.VerifyCertificates,
		CAFile:     c.HTTPS.CAFile,
	}
}
