// Package cache holds the in-memory lookup store and its on-disk mirror.
//
// The store serves every lookup from an immutable snapshot behind a read
// lock; refreshes install a fully built replacement, so a failed or partial
// refresh can never corrupt what is already being served. The mirror writes
// the same snapshot to a JSON file (temp file plus rename) and reads it back
// at daemon startup, making restarts cheap even though a fresh upstream
// download takes minutes.
package cache
