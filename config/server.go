package config

import (
	"fmt"
	"time"

	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/server"
)

// AuthConfig holds token settings of the mock API server.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	Issuer    string        `yaml:"issuer" mapstructure:"issuer"`
	// AdminUsername and AdminPassword seed an admin account at startup.
	AdminUsername string `yaml:"admin_username" mapstructure:"admin_username"`
	AdminPassword string `yaml:"admin_password" mapstructure:"admin_password"`
}

// ServerConfig is the configuration of the bookstore mock API.
type ServerConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	HTTP    server.Config        `yaml:"http" mapstructure:"http"`
	Auth    AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Tracing observability.Config `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.Config `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills zero values.
func (c *ServerConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "bookstore-mockapi"
	}
	c.ServiceConfig.ApplyDefaults()

	c.HTTP.ApplyDefaults()
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.Name
	}
	if c.Auth.JWTSecret == "" && !c.IsProduction() {
		c.Auth.JWTSecret = "bookstore-development-secret"
	}
	if c.Auth.AdminUsername == "" && !c.IsProduction() {
		c.Auth.AdminUsername = "admin"
		if c.Auth.AdminPassword == "" {
			c.Auth.AdminPassword = "admin123"
		}
	}
	c.Tracing.ApplyDefaults(c.Name, c.Version, c.Environment)
	c.Metrics.ApplyDefaults(c.Name, c.Version, c.Environment)
}

// Validate checks the configuration after ApplyDefaults.
func (c *ServerConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config.auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.AdminUsername != "" && len(c.Auth.AdminPassword) < 6 {
		return fmt.Errorf("config.auth.admin_password must be at least 6 characters")
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("config.metrics: %w", err)
	}
	return nil
}
