// Package notifications delivers refresh outcomes via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The refresh coordinator emits a message for every completed or
// failed refresh so operators hear about stale caches without tailing logs.
//
// Extend this package if you need alternative transports; all refresh code
// depends only on the simple Service interface.
package notifications
