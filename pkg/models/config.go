package models

// GlobalConfig holds settings read from the .taskboard.yaml file at the base
// path. Every component receives the resolved base path and the relevant
// config values through its constructor; nothing rediscovers its root.
type GlobalConfig struct {
	// TasksDir is the directory holding task record files, relative to the
	// base path.
	TasksDir string `yaml:"tasks_dir"`
	// IntegrationBranch is the long-lived branch completed task branches are
	// merged into.
	IntegrationBranch string `yaml:"integration_branch"`
	// BranchPrefix is the leading segment of task branch names; a task's
	// branches match {prefix}-{id}-* (or exactly {prefix}-{slug}).
	BranchPrefix string `yaml:"branch_prefix"`
	// WorktreeDirName is the subdirectory of TasksDir holding per-task
	// worktrees.
	WorktreeDirName string `yaml:"worktree_dir"`
	// ArchiveDirName is the subdirectory of TasksDir that merged records are
	// moved into.
	ArchiveDirName string `yaml:"archive_dir"`
	// ProbeParallelism bounds the number of concurrent repository probes.
	// Zero means use the number of available CPUs.
	ProbeParallelism int `yaml:"probe_parallelism"`
	// AgentCommand is the external automated-work agent launched in a task
	// worktree by the launch command.
	AgentCommand []string `yaml:"agent_command"`
	// EventLog configures the append-only JSONL event log.
	EventLog EventLogConfig `yaml:"event_log"`
}

// EventLogConfig controls the observability event log.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
