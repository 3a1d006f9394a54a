// Package daemon coordinates the long-running Roster process and system
// integration points.
//
// It wires configuration, the cache store, the refresh coordinator, and the
// scheduler into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon owns the HTTP API: lookups (with lazy cache
// loading), health, stats, refresh history, and the authenticated admin
// endpoints for forced refreshes and notification tests.
//
// Keep orchestration logic here: the refresh protocol lives in the refresh
// package while the daemon focuses on startup, shutdown, and transport.
package daemon
