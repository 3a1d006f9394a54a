package config

const (
	defaultBind             = "127.0.0.1:8390"
	defaultCacheDir         = "~/.local/share/roster"
	defaultSnapshotFile     = "snapshot.json"
	defaultCacheTTLHours    = 24
	defaultRefreshAt        = "03:00"
	defaultAuthMode         = "header"
	defaultAuthHeader       = "X-Api-Key"
	defaultAuthParam        = "apiKey"
	defaultUpstreamTimeout  = 300
	defaultMaxResponseMiB   = 512
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind: defaultBind,
		},
		Upstream: Upstream{
			AuthMode:       defaultAuthMode,
			AuthHeader:     defaultAuthHeader,
			AuthParam:      defaultAuthParam,
			TimeoutSeconds: defaultUpstreamTimeout,
			MaxResponseMiB: defaultMaxResponseMiB,
		},
		Cache: Cache{
			Dir:          defaultCacheDir,
			SnapshotFile: defaultSnapshotFile,
			TTLHours:     defaultCacheTTLHours,
		},
		Refresh: Refresh{
			At: defaultRefreshAt,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
