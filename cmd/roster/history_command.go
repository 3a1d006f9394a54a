package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/client"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent refresh runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return ctx.withClient(func(c *client.Client) error {
				resp, err := c.Refreshes(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Refreshes) == 0 {
					fmt.Fprintln(stdout, "No refreshes recorded")
					return nil
				}
				table := renderTable(
					[]string{"Started", "Trigger", "Outcome", "Entries", "Duration", "Error"},
					buildHistoryRows(resp.Refreshes),
					3,
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the raw JSON response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of refreshes to show")
	return cmd
}

func buildHistoryRows(records []api.RefreshRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		record := &records[i]
		rows = append(rows, []string{
			formatTimestamp(record.StartedAt),
			record.Trigger,
			record.Outcome,
			fmt.Sprintf("%d", record.Entries),
			refreshDuration(record),
			orDash(record.Error),
		})
	}
	return rows
}
