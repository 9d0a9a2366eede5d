package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/bookstore/security"
)

const defaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	// BaseURL is concatenated with every endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each call. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// HTTPS is the transport security policy.
	HTTPS security.HTTPSPolicy `yaml:"https" mapstructure:"https"`

	// Transport replaces the default transport. The HTTPS policy's TLS
	// settings are not applied to a custom transport.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("httpclient: base url is required")
	}
	if c.Timeout <= 0 {
		return errors.New("httpclient: timeout must be positive")
	}
	if err := c.HTTPS.CheckURL(c.BaseURL); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
