package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the consolidated task status table",
	Long: `Show one row per task in dependency order, correlating each record with
its branch state (merged, ahead/behind, change size, merge-preview conflicts)
and worktree state (present, clean or dirty).

Records that fail to load are reported but do not abort the table; the
command exits non-zero if any record was unreadable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Status == nil {
			return fmt.Errorf("status service not initialized")
		}

		report, scan, err := Status.GenerateReport(cmd.Context())
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}

		for _, loadErr := range scan.Errors {
			fmt.Fprintln(os.Stderr, errStyle.Render(loadErr.Error()))
		}

		fmt.Print(renderReport(report))

		if scan.Failed() {
			return fmt.Errorf("%d record(s) failed to load", len(scan.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
