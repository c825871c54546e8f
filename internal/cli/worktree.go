package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/integration"
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Manage per-task worktrees",
}

var worktreeStartCmd = &cobra.Command{
	Use:   "start <id...>",
	Short: "Create or reuse worktrees for the given tasks",
	Long: `Create an isolated working copy for each task under the worktree
directory, on a task branch tracking the integration branch. Existing
worktrees are reused.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if WorktreeMgr == nil || Store == nil {
			return fmt.Errorf("worktree manager not initialized")
		}

		for _, id := range args {
			slug, err := resolveSlug(id)
			if err != nil {
				return err
			}
			path, err := WorktreeMgr.CreateWorktree(cmd.Context(), integration.WorktreeConfig{
				Slug:       slug,
				BranchName: core.TaskBranchName(Config.BranchPrefix, slug),
				BaseBranch: Config.IntegrationBranch,
			})
			if err != nil {
				return fmt.Errorf("creating worktree for task %s: %w", id, err)
			}
			fmt.Printf("Worktree for task %s at %s\n", id, path)
		}
		return nil
	},
}

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove <id...>",
	Short: "Remove worktrees and delete branches for the given tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if WorktreeMgr == nil || Store == nil {
			return fmt.Errorf("worktree manager not initialized")
		}

		for _, id := range args {
			slug, err := resolveSlug(id)
			if err != nil {
				return err
			}
			if err := WorktreeMgr.RemoveWorktree(cmd.Context(), slug); err != nil {
				return fmt.Errorf("removing worktree for task %s: %w", id, err)
			}
			if err := WorktreeMgr.RemoveTaskBranches(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting branches for task %s: %w", id, err)
			}
			fmt.Printf("Disposed task %s\n", id)
		}
		return nil
	},
}

// resolveSlug resolves a bare task id to its record file stem (NN-slug).
// Inputs already in slug form pass through.
func resolveSlug(input string) (string, error) {
	if strings.Contains(input, "-") {
		return input, nil
	}
	path, err := Store.FindByID(input)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(filepath.Base(path), ".md"), nil
}

func init() {
	worktreeCmd.AddCommand(worktreeStartCmd)
	worktreeCmd.AddCommand(worktreeRemoveCmd)
	rootCmd.AddCommand(worktreeCmd)
}
