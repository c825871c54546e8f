package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run all task-directory validation checks",
	Long: `Validate the whole task set: every record must have a well-formed header
with a valid status, only markdown files may live in the tasks directory, and
the active dependency graph must be acyclic.

All failures are accumulated and reported together; the command exits
non-zero if any check failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Status == nil || Config == nil {
			return fmt.Errorf("status service not initialized")
		}

		failed := false

		if stray := strayFiles(); len(stray) > 0 {
			fmt.Fprintln(os.Stderr, "Non-md files under the tasks directory:")
			for _, f := range stray {
				fmt.Fprintf(os.Stderr, "  %s\n", f)
			}
			failed = true
		}

		scan, cycleErr, err := Status.Check()
		if err != nil {
			return err
		}

		if scan.Failed() {
			fmt.Fprintln(os.Stderr, "\nRecord errors:")
			for _, loadErr := range scan.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", loadErr)
			}
			failed = true
		}

		if cycleErr != nil {
			fmt.Fprintln(os.Stderr, "\nCircular dependency errors:")
			for _, cycle := range cycleErr.Cycles {
				fmt.Fprintf(os.Stderr, "  %s\n", cycle)
				for i, id := range cycle.Nodes {
					if cycle.Paths[i] != "" {
						fmt.Fprintf(os.Stderr, "    %s: %s\n", id, cycle.Paths[i])
					}
				}
			}
			failed = true
		}

		if failed {
			return fmt.Errorf("task checks failed")
		}
		fmt.Println("All task checks passed.")
		return nil
	},
}

// strayFiles lists non-markdown files at the top level of the tasks
// directory, skipping the worktree and archive subdirectories.
func strayFiles() []string {
	tasksDir := filepath.Join(BasePath, Config.TasksDir)
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return nil
	}

	var stray []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			stray = append(stray, filepath.Join(tasksDir, entry.Name()))
		}
	}
	return stray
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
