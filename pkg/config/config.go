// Package config contains the configuration of the workspace data core.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kubedo8/web-ui/internal/featureflags"
)

const (
	DefaultMaxDocuments     = 10000
	DefaultMaxLinkInstances = 10000
	DefaultMaxSelectors     = 1000
	DefaultCacheTTL         = time.Hour
)

var ErrInvalidConfig = errors.New("invalid config")

type LogConfig struct {
	// Format is the log format, 'text' or 'json'.
	Format string

	// Level is the log level, one of 'none', 'debug', 'info', 'warn' or 'error'.
	Level string
}

// CacheConfig bounds the derived-value cache and the selector memo.
type CacheConfig struct {
	MaxDocuments     int64
	MaxLinkInstances int64
	MaxSelectors     int64
	TTL              time.Duration
}

type PushChannelConfig struct {
	// Enabled turns on the application of push-channel events.
	Enabled bool
}

type Config struct {
	Log         LogConfig
	Cache       CacheConfig
	PushChannel PushChannelConfig

	// Experimentals are feature flags enabled on top of the push channel.
	Experimentals []string
}

// DefaultConfig returns the configuration used when nothing else is provided.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Cache: CacheConfig{
			MaxDocuments:     DefaultMaxDocuments,
			MaxLinkInstances: DefaultMaxLinkInstances,
			MaxSelectors:     DefaultMaxSelectors,
			TTL:              DefaultCacheTTL,
		},
		PushChannel: PushChannelConfig{
			Enabled: true,
		},
		Experimentals: []string{},
	}
}

// Flags returns the enabled feature flags.
func (cfg *Config) Flags() []string {
	flags := slices.Clone(cfg.Experimentals)
	if cfg.PushChannel.Enabled {
		flags = append(flags, featureflags.FlagPushChannel)
	}
	return flags
}

func (cfg *Config) Verify() error {
	if !slices.Contains([]string{"text", "json"}, cfg.Log.Format) {
		return fmt.Errorf("%w: 'log.format' must be one of ['text', 'json'], got '%s'", ErrInvalidConfig, cfg.Log.Format)
	}
	if !slices.Contains([]string{"none", "debug", "info", "warn", "error"}, cfg.Log.Level) {
		return fmt.Errorf("%w: 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error'], got '%s'", ErrInvalidConfig, cfg.Log.Level)
	}
	if cfg.Cache.MaxDocuments <= 0 {
		return fmt.Errorf("%w: 'cache.maxDocuments' must be positive", ErrInvalidConfig)
	}
	if cfg.Cache.MaxLinkInstances <= 0 {
		return fmt.Errorf("%w: 'cache.maxLinkInstances' must be positive", ErrInvalidConfig)
	}
	if cfg.Cache.MaxSelectors <= 0 {
		return fmt.Errorf("%w: 'cache.maxSelectors' must be positive", ErrInvalidConfig)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("%w: 'cache.ttl' cannot be negative", ErrInvalidConfig)
	}
	return nil
}
