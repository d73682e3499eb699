package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStatsCmd creates the 'stats' subcommand, which prints aggregate
// counters from the configured listing store.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Prints listing store statistics",

		RunE: runStatsCommand,
	}
}

func runStatsCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := appInstance.Store().Statistics(cmd.Context())
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total listings: %d\n", stats.TotalListings)
	if stats.LastParsedAt.IsZero() {
		fmt.Fprintln(out, "Last parsed:    never")
	} else {
		fmt.Fprintf(out, "Last parsed:    %s\n", stats.LastParsedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
