package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/client"
	"roster/internal/registry"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup <registration-number>",
		Short: "Check whether a registration number is in the register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return fmt.Errorf("registration number must not be blank")
			}
			return ctx.withClient(func(c *client.Client) error {
				result, err := c.Lookup(cmd.Context(), key)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printLookupResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the raw JSON response")
	return cmd
}

func printLookupResult(cmd *cobra.Command, result *api.LookupResponse) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	if !result.Registered {
		fmt.Fprintln(stdout, renderStatusLine("Status", statusWarn, fmt.Sprintf("%s is not in the register", result.Key), colorize))
		fmt.Fprintln(stdout, renderStatusLine("Cache age", statusInfo, result.CacheAge, colorize))
		return
	}

	fmt.Fprintln(stdout, renderStatusLine("Status", statusOK, fmt.Sprintf("%s is registered", result.Key), colorize))
	if details := result.Details; details != nil {
		if details.CompanyName != "" {
			fmt.Fprintln(stdout, renderStatusLine("Company", statusInfo, details.CompanyName, colorize))
		}
		if details.VATNumber != "" {
			fmt.Fprintln(stdout, renderStatusLine("VAT number", statusInfo, details.VATNumber, colorize))
		}
		if details.TaxNumber != "" {
			fmt.Fprintln(stdout, renderStatusLine("Tax number", statusInfo, details.TaxNumber, colorize))
		}
		if address := formatAddress(details); address != "" {
			fmt.Fprintln(stdout, renderStatusLine("Address", statusInfo, address, colorize))
		}
	}
	fmt.Fprintln(stdout, renderStatusLine("Cache age", statusInfo, result.CacheAge, colorize))
}

func formatAddress(record *registry.Record) string {
	locality := strings.TrimSpace(strings.Join(nonEmpty(record.PostalCode, record.City), " "))
	return strings.Join(nonEmpty(record.Address, locality), ", ")
}

func nonEmpty(values ...string) []string {
	kept := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			kept = append(kept, value)
		}
	}
	return kept
}
