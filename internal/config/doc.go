// Package config loads, normalizes, and validates Roster configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ROSTER_UPSTREAM_URL. The Config type centralizes every knob the daemon and
// CLI need, so the cache directory, upstream credentials, and refresh schedule
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
