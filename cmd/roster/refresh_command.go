package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/client"
	"roster/internal/journal"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var wait bool
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Trigger a register refresh on the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				// The refresh endpoint returns before the run finishes, so
				// waiting means polling stats until a new journal row shows up.
				var beforeID string
				if wait {
					stats, err := c.Stats(cmd.Context())
					if err != nil {
						return err
					}
					if stats.LastRefresh != nil {
						beforeID = stats.LastRefresh.ID
					}
				}

				resp, err := c.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				if !wait {
					if jsonOutput {
						return writeJSON(cmd, resp)
					}
					stdout := cmd.OutOrStdout()
					if resp.RefreshStarted {
						fmt.Fprintln(stdout, "Refresh started")
					} else {
						fmt.Fprintln(stdout, "Refresh already in progress")
					}
					return nil
				}

				record, err := waitForRefresh(cmd.Context(), c, beforeID, waitTimeout)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, record)
				}
				if record.Outcome != journal.OutcomeSuccess {
					return fmt.Errorf("refresh failed: %s", record.Error)
				}
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				fmt.Fprintln(stdout, renderStatusLine("Refresh", statusOK, fmt.Sprintf("Finished with %d entries in %s", record.Entries, refreshDuration(record)), colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the raw JSON response")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the refresh to finish")
	cmd.Flags().DurationVar(&waitTimeout, "timeout", 10*time.Minute, "How long to wait with --wait")
	return cmd
}

func waitForRefresh(ctx context.Context, c *client.Client, beforeID string, timeout time.Duration) (*api.RefreshRecord, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		stats, err := c.Stats(ctx)
		if err != nil {
			return nil, err
		}
		if record := stats.LastRefresh; record != nil && record.ID != beforeID {
			return record, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("refresh did not finish within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
