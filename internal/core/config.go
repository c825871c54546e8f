package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// ConfigurationManager loads and validates the .taskboard.yaml configuration
// at the base path.
type ConfigurationManager interface {
	LoadConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for reading
// the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a GlobalConfig populated with sensible defaults.
func DefaultConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TasksDir:          "tasks",
		IntegrationBranch: "main",
		BranchPrefix:      "task",
		WorktreeDirName:   ".worktrees",
		ArchiveDirName:    ".done",
		ProbeParallelism:  0,
		AgentCommand:      []string{"codex", "--full-auto", "exec"},
		EventLog: models.EventLogConfig{
			Enabled: false,
			Path:    "events.jsonl",
		},
	}
}

// LoadConfig reads .taskboard.yaml from the base path. Missing file means
// defaults; missing keys fall back per key.
func (cm *viperConfigManager) LoadConfig() (*models.GlobalConfig, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".taskboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("tasks_dir", cfg.TasksDir)
	v.SetDefault("integration_branch", cfg.IntegrationBranch)
	v.SetDefault("branch.prefix", cfg.BranchPrefix)
	v.SetDefault("worktree_dir", cfg.WorktreeDirName)
	v.SetDefault("archive_dir", cfg.ArchiveDirName)
	v.SetDefault("probe_parallelism", cfg.ProbeParallelism)
	v.SetDefault("agent_command", cfg.AgentCommand)
	v.SetDefault("event_log.enabled", cfg.EventLog.Enabled)
	v.SetDefault("event_log.path", cfg.EventLog.Path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .taskboard.yaml: %w", err)
	}

	cfg.TasksDir = v.GetString("tasks_dir")
	cfg.IntegrationBranch = v.GetString("integration_branch")
	cfg.BranchPrefix = v.GetString("branch.prefix")
	cfg.WorktreeDirName = v.GetString("worktree_dir")
	cfg.ArchiveDirName = v.GetString("archive_dir")
	cfg.ProbeParallelism = v.GetInt("probe_parallelism")
	cfg.AgentCommand = v.GetStringSlice("agent_command")
	cfg.EventLog.Enabled = v.GetBool("event_log.enabled")
	cfg.EventLog.Path = v.GetString("event_log.path")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.TasksDir == "" {
		errs = append(errs, "tasks_dir must not be empty")
	}
	if cfg.IntegrationBranch == "" {
		errs = append(errs, "integration_branch must not be empty")
	}
	if cfg.BranchPrefix == "" {
		errs = append(errs, "branch.prefix must not be empty")
	}
	if strings.ContainsAny(cfg.BranchPrefix, " ~^:?*[\\") {
		errs = append(errs, fmt.Sprintf("branch.prefix %q contains characters not allowed in git refs", cfg.BranchPrefix))
	}
	if cfg.WorktreeDirName == "" {
		errs = append(errs, "worktree_dir must not be empty")
	}
	if cfg.ArchiveDirName == "" {
		errs = append(errs, "archive_dir must not be empty")
	}
	if cfg.ProbeParallelism < 0 {
		errs = append(errs, fmt.Sprintf("probe_parallelism must be non-negative, got %d", cfg.ProbeParallelism))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
