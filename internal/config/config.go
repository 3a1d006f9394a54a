package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP bind address and API token configuration.
type Server struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
}

// Upstream contains configuration for the register export endpoint.
type Upstream struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	AuthMode       string `toml:"auth_mode"`
	AuthHeader     string `toml:"auth_header"`
	AuthParam      string `toml:"auth_param"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxResponseMiB int    `toml:"max_response_mib"`
}

// Cache contains configuration for the on-disk snapshot and its freshness.
type Cache struct {
	Dir          string `toml:"dir"`
	SnapshotFile string `toml:"snapshot_file"`
	TTLHours     int    `toml:"ttl_hours"`
}

// Refresh contains configuration for the scheduled daily refresh.
type Refresh struct {
	At string `toml:"at"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Roster.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address and admin API token
//   - Upstream: register export URL, credentials, and fetch limits
//   - Cache: snapshot directory, file name, and freshness TTL
//   - Refresh: daily refresh schedule
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Server        Server        `toml:"server"`
	Upstream      Upstream      `toml:"upstream"`
	Cache         Cache         `toml:"cache"`
	Refresh       Refresh       `toml:"refresh"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/roster/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// ResolvePath reports which configuration file a load would use and whether
// it exists, without parsing or validating it.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/roster/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("roster.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Cache.Dir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SnapshotPath returns the absolute path of the persisted cache snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Cache.Dir, c.Cache.SnapshotFile)
}

// JournalPath returns the absolute path of the refresh journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Cache.Dir, "journal.db")
}

// LogDir returns the directory daemon log files are written to.
func (c *Config) LogDir() string {
	return filepath.Join(c.Cache.Dir, "logs")
}

// UpstreamTimeout returns the upstream fetch timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// MaxResponseBytes returns the upstream response size cap in bytes.
func (c *Config) MaxResponseBytes() int64 {
	return int64(c.Upstream.MaxResponseMiB) << 20
}

// CacheTTL returns the snapshot freshness window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// RefreshClock parses refresh.at into its hour and minute components.
func (c *Config) RefreshClock() (hour, minute int, err error) {
	return parseClock(c.Refresh.At)
}

func parseClock(value string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("refresh.at must be HH:MM (24 hour clock), got %q", value)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
