// Package journal persists refresh history to SQLite.
//
// Every refresh attempt lands here with its trigger, timing, outcome, and
// entry count, giving operators an audit trail that survives restarts. The
// journal is append-only from the daemon's perspective; cleanup means
// deleting the database file.
package journal
