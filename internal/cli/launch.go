package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/integration"
)

var launchCmd = &cobra.Command{
	Use:   "launch <id...>",
	Short: "Launch the automated-work agent for tasks in a tmux session",
	Long: `Create or reuse a worktree for each task, then start the configured agent
command in one tmux window per task and attach to the session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Launcher == nil || WorktreeMgr == nil {
			return fmt.Errorf("launcher not initialized")
		}

		var slugs []string
		var configs []integration.LaunchConfig
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
				return fmt.Errorf("preparing worktree for task %s: %w", id, err)
			}

			taskFile := filepath.Join(BasePath, Config.TasksDir, slug+".md")
			agentCmd := Config.AgentCommand
			if content, err := os.ReadFile(taskFile); err == nil {
				agentCmd = append(append([]string{}, agentCmd...), string(content))
			}

			slugs = append(slugs, slug)
			configs = append(configs, integration.LaunchConfig{
				Slug:         slug,
				WorktreePath: path,
				AgentCommand: agentCmd,
				Stdout:       os.Stdout,
				Stderr:       os.Stderr,
			})
		}

		session := integration.SessionName(Config.BranchPrefix, slugs)
		if err := Launcher.Launch(cmd.Context(), session, configs); err != nil {
			return fmt.Errorf("launching agents: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
