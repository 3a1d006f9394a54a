package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRefresh(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/roster/config.toml"
		}
		return fmt.Errorf("upstream.url is required. Set ROSTER_UPSTREAM_URL env var or edit %s (create with 'roster config init')", defaultPath)
	}
	switch c.Upstream.AuthMode {
	case "header", "query":
	default:
		return fmt.Errorf("upstream.auth_mode must be %q or %q, got %q", "header", "query", c.Upstream.AuthMode)
	}
	if err := ensurePositiveMap(map[string]int{
		"upstream.timeout_seconds":  c.Upstream.TimeoutSeconds,
		"upstream.max_response_mib": c.Upstream.MaxResponseMiB,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCache() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		return errors.New("cache.dir must be set")
	}
	if strings.TrimSpace(c.Cache.SnapshotFile) == "" {
		return errors.New("cache.snapshot_file must be set")
	}
	if c.Cache.TTLHours <= 0 {
		return errors.New("cache.ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if _, _, err := parseClock(c.Refresh.At); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
