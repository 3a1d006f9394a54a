package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"roster/internal/api"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatEpochMillis renders an epoch-milliseconds timestamp in local time,
// or "never" when it is zero.
func formatEpochMillis(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

// formatTimestamp renders an API timestamp in local time, falling back to the
// raw value when it does not parse.
func formatTimestamp(value string) string {
	ts, err := api.ParseTime(value)
	if err != nil {
		return orDash(value)
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// refreshDuration reports how long a journaled refresh ran.
func refreshDuration(record *api.RefreshRecord) string {
	started, err := api.ParseTime(record.StartedAt)
	if err != nil {
		return "-"
	}
	finished, err := api.ParseTime(record.FinishedAt)
	if err != nil {
		return "-"
	}
	return finished.Sub(started).Round(time.Second).String()
}

// orDash substitutes a dash for empty table cells.
func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
