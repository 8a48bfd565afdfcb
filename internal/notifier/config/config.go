package config

import (
	"time"

	"email-datagen/pkg/config"
)

// Notifier holds notification-worker configuration.
type Notifier struct {
	TimeZone          string        `mapstructure:"time_zone"`
	ReadBlock         time.Duration `mapstructure:"read_block"`
	ReadCount         int64         `mapstructure:"read_count"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
	RetryInterval     time.Duration `mapstructure:"retry_interval"`
	MaxIdleDuration   time.Duration `mapstructure:"max_idle_duration"`
	MaxRetry          int           `mapstructure:"max_retry"`
	MessagesPerMinute int           `mapstructure:"messages_per_minute"`
	DedupWindow       time.Duration `mapstructure:"dedup_window"`
	NotifyExhausted   bool          `mapstructure:"notify_exhausted"`
}

// Config holds the full configuration for the notification service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Redis    config.Redis    `mapstructure:"redis"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Notifier Notifier        `mapstructure:"notifier"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                     "notification-service",
		"logger.level":                 "info",
		"logger.encoding":              "json",
		"redis.host":                   "localhost",
		"redis.port":                   6379,
		"notifier.time_zone":           "UTC",
		"notifier.read_block":          "2s",
		"notifier.read_count":          10,
		"notifier.handler_timeout":     "30s",
		"notifier.retry_interval":      "1m",
		"notifier.max_idle_duration":   "5m",
		"notifier.max_retry":           5,
		"notifier.messages_per_minute": 20,
		"notifier.dedup_window":        "1h",
		"notifier.notify_exhausted":    true,
	}
}

// Load loads the notifier configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
