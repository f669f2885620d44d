package emailbridge

import (
	"fmt"
	"time"

	"task-reminder-bridge/internal/common/config"
)

type Config struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
	AuditTimeout time.Duration
	Location     *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		PollInterval: 10 * time.Second,
		FetchTimeout: 10 * time.Second,
		AuditTimeout: 5 * time.Second,
		Location:     time.Local,
	}
}

// FromAppConfig maps the bridge section of the application config. The send
// timeout belongs to the email service and is applied there.
func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg.Bridge.PollInterval > 0 {
		c.PollInterval = config.GetDuration(cfg.Bridge.PollInterval)
	}
	if cfg.Bridge.FetchTimeout > 0 {
		c.FetchTimeout = config.GetDuration(cfg.Bridge.FetchTimeout)
	}
	c.Location = cfg.Bridge.Location()
	return c
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}
