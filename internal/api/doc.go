// Package api defines the JSON payloads served by the daemon's HTTP
// endpoints and the conversions that build them from internal state.
//
// Payloads use camelCase field names. lastUpdate is epoch milliseconds to
// match the on-disk snapshot header; a cache that has never been filled
// reports lastUpdate 0, an empty age, and ageMinutes -1. Lookup misses
// carry explicit null company and details fields.
package api
