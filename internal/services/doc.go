// Package services defines shared utilities consumed by the refresh pipeline
// and the upstream register integration.
//
// Key responsibilities:
//   - Context helpers that stamp refresh run IDs, trigger names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent API responses and journal outcomes.
//
// Use these helpers when wiring new service logic so operational behaviour
// (error handling, observability) stays uniform across the daemon.
package services
