package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Set the status of a task",
	Long: `Set the status of a task record. The value must belong to the closed
status enumeration; anything else fails validation and nothing is written.
The record's last_updated timestamp is stamped on success.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}
		if err := TaskMgr.SetStatus(args[0], status); err != nil {
			return fmt.Errorf("setting status of task %s: %w", args[0], err)
		}

		fmt.Printf("Task %s status set to %q.\n", args[0], status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setStatusCmd)
}
