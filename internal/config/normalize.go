package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	if err := c.normalizeUpstream(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeRefresh()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		if value, ok := os.LookupEnv("ROSTER_BIND"); ok {
			c.Server.Bind = strings.TrimSpace(value)
		}
	}
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("ROSTER_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeUpstream() error {
	c.Upstream.URL = strings.TrimSpace(c.Upstream.URL)
	if c.Upstream.URL == "" {
		if value, ok := os.LookupEnv("ROSTER_UPSTREAM_URL"); ok {
			c.Upstream.URL = strings.TrimSpace(value)
		}
	}
	c.Upstream.APIKey = strings.TrimSpace(c.Upstream.APIKey)
	if c.Upstream.APIKey == "" {
		if value, ok := os.LookupEnv("ROSTER_UPSTREAM_API_KEY"); ok {
			c.Upstream.APIKey = strings.TrimSpace(value)
		}
	}
	c.Upstream.AuthMode = strings.ToLower(strings.TrimSpace(c.Upstream.AuthMode))
	if c.Upstream.AuthMode == "" {
		c.Upstream.AuthMode = defaultAuthMode
	}
	c.Upstream.AuthHeader = strings.TrimSpace(c.Upstream.AuthHeader)
	if c.Upstream.AuthHeader == "" {
		c.Upstream.AuthHeader = defaultAuthHeader
	}
	c.Upstream.AuthParam = strings.TrimSpace(c.Upstream.AuthParam)
	if c.Upstream.AuthParam == "" {
		c.Upstream.AuthParam = defaultAuthParam
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = envInt("ROSTER_UPSTREAM_TIMEOUT_SECONDS", defaultUpstreamTimeout)
	}
	if c.Upstream.MaxResponseMiB <= 0 {
		c.Upstream.MaxResponseMiB = envInt("ROSTER_UPSTREAM_MAX_RESPONSE_MIB", defaultMaxResponseMiB)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		if value, ok := os.LookupEnv("ROSTER_CACHE_DIR"); ok {
			c.Cache.Dir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	c.Cache.SnapshotFile = strings.TrimSpace(c.Cache.SnapshotFile)
	if c.Cache.SnapshotFile == "" {
		c.Cache.SnapshotFile = defaultSnapshotFile
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = envInt("ROSTER_CACHE_TTL_HOURS", defaultCacheTTLHours)
	}
	return nil
}

func (c *Config) normalizeRefresh() {
	c.Refresh.At = strings.TrimSpace(c.Refresh.At)
	if c.Refresh.At == "" {
		c.Refresh.At = defaultRefreshAt
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("ROSTER_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func envInt(name string, fallback int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
