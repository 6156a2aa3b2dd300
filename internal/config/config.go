// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys, except the planner block.
// - Provide New(ctx) to build a Config with defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/reelplan/internal/domain/policy"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// QueueSize bounds the in-memory planning queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of planning workers.
	WorkerCount int `koanf:"worker_count"`

	// BatchConcurrency caps parallel plans inside one batch request.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps the number of videos in one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// StoreBackend selects where jobs live: memory or redis.
	StoreBackend string `koanf:"store_backend"`

	// MaxJobs bounds the job store; the oldest job is evicted first.
	MaxJobs int `koanf:"max_jobs"`

	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	RedisPrefix   string        `koanf:"redis_prefix"`
	RedisTTL      time.Duration `koanf:"redis_ttl"`

	// Planner overrides the stock planning policy.
	Planner policy.Overrides `koanf:"planner"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		ShutdownTimeout:  10 * time.Second,
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		BatchConcurrency: runtime.NumCPU(),
		MaxBatchSize:     100,
		MaxBodyBytes:     8 << 20,
		StoreBackend:     StoreMemory,
		MaxJobs:          10_000,
		RedisAddr:        "localhost:6379",
		RedisPrefix:      "reelplan:",
		RedisTTL:         24 * time.Hour,
	}
}

// Policy returns the planning policy with the configured overrides.
func (c *Config) Policy() policy.Policy {
	return c.Planner.Apply(policy.Default())
}

// Validate checks values Load cannot fix on its own.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.BatchConcurrency <= 0 || c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: batch_concurrency and max_batch_size must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
