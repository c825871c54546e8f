package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <id...>",
	Short: "Move merged task records into the archive directory",
	Long: `Move each merged record out of the active working set into the archive
subdirectory. Refuses tasks that are not in the terminal merged status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		for _, id := range args {
			dest, err := TaskMgr.Archive(id)
			if err != nil {
				return fmt.Errorf("archiving task %s: %w", id, err)
			}
			fmt.Printf("Task %s archived to %s\n", id, dest)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
