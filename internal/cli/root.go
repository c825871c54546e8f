// Package cli implements the taskboard commands. Service dependencies are
// wired into package-level variables by the internal App at startup.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/integration"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// Service dependencies wired by internal.NewApp.
var (
	BasePath    string
	Config      *models.GlobalConfig
	Store       storage.RecordStore
	TaskMgr     core.TaskManager
	Status      *core.StatusService
	WorktreeMgr integration.WorktreeManager
	Launcher    integration.AgentLauncher
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "taskboard - task graph and status aggregation for branch-per-task work",
	Long: `taskboard tracks development tasks stored as markdown records with a fenced
header block. It keeps the task set consistent (unique ids, validated
statuses, acyclic dependencies among unfinished tasks) and correlates each
record with the state of its git branch and worktree to report where every
task stands.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskboard %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
