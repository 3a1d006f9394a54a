// Package register talks to the national packaging register export endpoint
// and turns its XML payloads into producer records.
//
// The export is a single document covering the whole register, typically
// hundreds of megabytes, so the client enforces a download timeout and a hard
// response size cap. The parser is deliberately schema-free: upstream has
// shipped several container layouts and field spellings over time, and the
// decoder walks a generic element tree against known alias lists instead of
// binding to one revision. An unrecognized layout produces zero records, not
// an error, so a drifted export never poisons an existing cache.
package register
