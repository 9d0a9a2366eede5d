package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/bookstore/logger"
)

// RedisConfig holds the Redis connection settings of RedisStore.
type RedisConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *RedisConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// RedisStore is a Store on Redis. Keys are namespaced with a prefix so several
// sessions can share one database.
type RedisStore struct {
	rdb       *goredis.Client
	log       *logger.Logger
	keyPrefix string
	ttl       time.Duration

	mu     sync.Mutex
	closed bool
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig, keyPrefix string, ttl time.Duration, log *logger.Logger) (*RedisStore, error) {
	cfg.ApplyDefaults()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: redis ping %s: %w", cfg.Addr, err)
	}

	log.Info("redis session store connected", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"key_prefix", keyPrefix,
	))
	return NewRedisStoreFromClient(rdb, keyPrefix, ttl, log), nil
}

// NewRedisStoreFromClient wraps an existing go-redis client. Close closes it.
func NewRedisStoreFromClient(rdb *goredis.Client, keyPrefix string, ttl time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: log, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.fullKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: redis get %q: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.fullKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("session: redis delete %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection. Safe to call multiple times.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debug("closing redis session store")
	return s.rdb.Close()
}

var _ Backend = (*RedisStore)(nil)
