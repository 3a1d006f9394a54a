// Package refresh coordinates register cache updates.
//
// The Coordinator owns the refresh protocol: at most one run at a time,
// a TTL gate for non-forced triggers, and fail-open semantics where a
// failed run keeps the previous snapshot in service. Every run lands in
// the journal and, when configured, produces an ntfy notification.
//
// The Scheduler drives the daily refresh; forced and lazy refreshes enter
// through the same Coordinator so concurrency and bookkeeping stay in one
// place.
package refresh
