package config

import (
	"time"

	"email-datagen/pkg/config"
)

// Scheduler holds scheduler-specific configuration.
type Scheduler struct {
	PollingInterval         time.Duration `mapstructure:"polling_interval"`
	TimeZone                string        `mapstructure:"time_zone"`
	MaxConcurrentDispatches int           `mapstructure:"max_concurrent_dispatches"`
	LeaseTTL                time.Duration `mapstructure:"lease_ttl"`
	MaxConsecutiveFailures  int           `mapstructure:"max_consecutive_failures"`
	DispatchRatePerMinute   int           `mapstructure:"dispatch_rate_per_minute"`
}

// Sender holds the email-sending backend client configuration.
type Sender struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// Config holds the full configuration for the scheduler service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Sender    Sender          `mapstructure:"sender"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                            "scheduling-service",
		"logger.level":                        "info",
		"logger.encoding":                     "json",
		"api.host":                            "0.0.0.0",
		"api.port":                            8080,
		"database.port":                       5432,
		"database.ssl_mode":                   "disable",
		"redis.port":                          6379,
		"redis.stream_max_len":                10000,
		"scheduler.polling_interval":          "30s",
		"scheduler.time_zone":                 "UTC",
		"scheduler.max_concurrent_dispatches": 4,
		"scheduler.lease_ttl":                 "10m",
		"scheduler.max_consecutive_failures":  3,
		"scheduler.dispatch_rate_per_minute":  60,
		"sender.base_url":                     "http://localhost:5000",
		"sender.timeout":                      "15s",
		"sender.retries":                      2,
		"sender.retry_delay":                  "500ms",
	}
}

// Load loads the scheduler configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
