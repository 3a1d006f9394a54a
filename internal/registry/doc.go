// Package registry defines the producer record model and the immutable
// snapshot type the cache serves lookups from.
//
// A snapshot is built once from a parsed upstream export and never mutated
// afterwards; replacing the cache contents means building a new snapshot and
// swapping it in. Keys are normalized registration numbers (trimmed,
// Unicode-uppercased) so callers can pass user input directly to Lookup.
package registry
