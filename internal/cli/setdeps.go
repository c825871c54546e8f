package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var setDepsCmd = &cobra.Command{
	Use:   "set-deps <id> [dep...]",
	Short: "Replace the dependency list of a task",
	Long: `Replace a task's dependency list with the given task ids. Passing no
dependencies clears the list. The record's last_updated timestamp is stamped
on success.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		id := args[0]
		deps := args[1:]
		if err := TaskMgr.SetDependencies(id, deps); err != nil {
			return fmt.Errorf("setting dependencies of task %s: %w", id, err)
		}

		if len(deps) == 0 {
			fmt.Printf("Task %s dependencies cleared.\n", id)
		} else {
			fmt.Printf("Task %s dependencies set to %s.\n", id, strings.Join(deps, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setDepsCmd)
}
