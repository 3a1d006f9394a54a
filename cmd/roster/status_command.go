package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/client"
	"roster/internal/journal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			addr := ctx.daemonAddr(cfg)

			return ctx.withClient(func(c *client.Client) error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				health, err := c.Health(cmd.Context())
				if err != nil {
					if jsonOutput {
						return err
					}
					// An unreachable daemon is a status, not a failure.
					for _, line := range renderSectionHeader("Daemon", colorize) {
						fmt.Fprintln(stdout, line)
					}
					fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, fmt.Sprintf("Not running at %s", addr), colorize))
					return nil
				}

				stats, err := c.Stats(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"health": health,
						"stats":  stats,
					})
				}

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running at %s", addr), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Uptime", statusInfo, health.Uptime, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Cache", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range cacheStatusLines(stats, colorize) {
					fmt.Fprintln(stdout, line)
				}

				if record := stats.LastRefresh; record != nil {
					fmt.Fprintln(stdout)
					for _, line := range renderSectionHeader("Last Refresh", colorize) {
						fmt.Fprintln(stdout, line)
					}
					for _, line := range refreshStatusLines(record, colorize) {
						fmt.Fprintln(stdout, line)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the raw JSON response")
	return cmd
}

func cacheStatusLines(stats *api.Stats, colorize bool) []string {
	var lines []string

	entriesKind := statusOK
	entriesDetail := fmt.Sprintf("%d", stats.Entries)
	if stats.Entries == 0 {
		entriesKind = statusWarn
		entriesDetail = "0 (cache empty)"
	}
	lines = append(lines, renderStatusLine("Entries", entriesKind, entriesDetail, colorize))

	lines = append(lines, renderStatusLine("Last update", statusInfo, formatEpochMillis(stats.LastUpdate), colorize))

	if stats.AgeMinutes < 0 {
		lines = append(lines, renderStatusLine("Age", statusWarn, "Never loaded", colorize))
	} else {
		ageKind := statusOK
		if int(stats.AgeMinutes) >= stats.TTLHours*60 {
			ageKind = statusWarn
		}
		lines = append(lines, renderStatusLine("Age", ageKind, fmt.Sprintf("%dm (TTL %dh)", stats.AgeMinutes, stats.TTLHours), colorize))
	}

	if stats.IsLoading {
		lines = append(lines, renderStatusLine("Refresh", statusInfo, "In progress", colorize))
	}
	return lines
}

func refreshStatusLines(record *api.RefreshRecord, colorize bool) []string {
	outcomeKind := statusOK
	outcomeDetail := record.Outcome
	if record.Outcome != journal.OutcomeSuccess {
		outcomeKind = statusError
		if record.Error != "" {
			outcomeDetail = fmt.Sprintf("%s (%s)", record.Outcome, record.Error)
		}
	}

	lines := []string{
		renderStatusLine("Outcome", outcomeKind, outcomeDetail, colorize),
		renderStatusLine("Trigger", statusInfo, record.Trigger, colorize),
		renderStatusLine("Started", statusInfo, formatTimestamp(record.StartedAt), colorize),
		renderStatusLine("Duration", statusInfo, refreshDuration(record), colorize),
	}
	if record.Outcome == journal.OutcomeSuccess {
		lines = append(lines, renderStatusLine("Entries", statusInfo, fmt.Sprintf("%d", record.Entries), colorize))
	}
	return lines
}
