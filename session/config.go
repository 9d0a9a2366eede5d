package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/bookstore/encryption"
	"github.com/kbukum/bookstore/logger"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures the session backend.
type Config struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"`
	Path      string        `yaml:"path" mapstructure:"path"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Redis     RedisConfig   `yaml:"redis" mapstructure:"redis"`
	// EncryptionKey, when set, seals values at rest in the file and redis
	// backends.
	EncryptionKey       string `yaml:"encryption_key" mapstructure:"encryption_key"`
	EncryptionAlgorithm string `yaml:"encryption_algorithm" mapstructure:"encryption_algorithm"`
}

// DefaultPath returns ~/.bookstore/session.json, or a relative path when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bookstore", "session.json")
	}
	return filepath.Join(home, ".bookstore", "session.json")
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.Backend == BackendFile && c.Path == "" {
		c.Path = DefaultPath()
	}
	if c.Backend == BackendRedis {
		if c.KeyPrefix == "" {
			c.KeyPrefix = "bookstore:session"
		}
		c.Redis.ApplyDefaults()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.Path == "" {
			return fmt.Errorf("path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want memory, file or redis)", c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}
	if _, err := encryption.ParseAlgorithm(c.EncryptionAlgorithm); err != nil {
		return err
	}
	return nil
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	var backend Backend
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(cfg.TTL), nil
	case BackendRedis:
		store, err := NewRedisStore(ctx, cfg.Redis, cfg.KeyPrefix, cfg.TTL, log)
		if err != nil {
			return nil, err
		}
		backend = store
	default:
		store, err := NewFileStore(cfg.Path, cfg.TTL, log)
		if err != nil {
			return nil, err
		}
		backend = store
	}

	if cfg.EncryptionKey == "" {
		return backend, nil
	}
	alg, _ := encryption.ParseAlgorithm(cfg.EncryptionAlgorithm)
	enc, err := encryption.New(cfg.EncryptionKey, encryption.WithAlgorithm(alg))
	if err != nil {
		backend.Close()
		return nil, err
	}
	return NewEncryptedStore(backend, enc), nil
}
