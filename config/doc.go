// Package config loads bookstore configuration from config.yml, .env files
// and the process environment.
//
// Environment variables are bound to dotted keys, so API_BASE_URL populates
// api.base_url and SESSION_REDIS_ADDR populates session.redis.addr.
//
//	var cfg config.ClientConfig
//	if err := config.LoadConfig("bookstore", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
