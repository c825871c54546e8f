// Package internal provides the App struct that wires all components of
// taskboard together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/taskboard/internal/cli"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/integration"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// configFileName is the marker file that identifies the base path.
const configFileName = ".taskboard.yaml"

// App holds all service dependencies for taskboard.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	ConfigMgr core.ConfigurationManager
	Store     storage.RecordStore
	TaskMgr   core.TaskManager
	Status    *core.StatusService

	Probe       integration.RepoProbe
	WorktreeMgr integration.WorktreeManager
	Launcher    integration.AgentLauncher

	EventLog observability.EventLog
}

// NewApp creates and wires all components. basePath is the repository root;
// it is resolved once and threaded into every constructor, so no component
// rediscovers its own root.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	tasksDir := filepath.Join(basePath, cfg.TasksDir)
	worktreeBase := filepath.Join(tasksDir, cfg.WorktreeDirName)

	// --- Observability ---
	if cfg.EventLog.Enabled {
		logPath := cfg.EventLog.Path
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(basePath, logPath)
		}
		eventLog, err := observability.NewJSONLEventLog(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: event log disabled: %v\n", err)
		} else {
			app.EventLog = eventLog
		}
	}

	// --- Storage ---
	app.Store = storage.NewRecordStore(tasksDir, cfg.WorktreeDirName, cfg.ArchiveDirName)

	// --- Integration ---
	runner := integration.NewGitRunner()
	app.Probe = integration.NewRepoProbe(runner, basePath, cfg.IntegrationBranch, cfg.BranchPrefix, worktreeBase, cfg.ProbeParallelism)
	app.WorktreeMgr = integration.NewWorktreeManager(runner, basePath, worktreeBase, cfg.BranchPrefix)
	app.Launcher = integration.NewAgentLauncher()

	// --- Core ---
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
	}
	app.TaskMgr = core.NewTaskManager(app.Store, tasksDir, cfg.ArchiveDirName, events)
	app.Status = core.NewStatusService(app.Store, &proberAdapter{probe: app.Probe})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Store = app.Store
	cli.TaskMgr = app.TaskMgr
	cli.Status = app.Status
	cli.WorktreeMgr = app.WorktreeMgr
	cli.Launcher = app.Launcher

	return app, nil
}

// Close releases resources held by the App, such as the event log handle.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the repository root. It checks TASKBOARD_HOME,
// then walks up from the current directory looking for .taskboard.yaml,
// falling back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TASKBOARD_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, configFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// proberAdapter adapts integration.RepoProbe to core.StateProber.
type proberAdapter struct {
	probe integration.RepoProbe
}

func (a *proberAdapter) ProbeAll(ctx context.Context, refs []core.ProbeRef) map[string]models.RepoState {
	taskRefs := make([]integration.TaskRef, len(refs))
	for i, ref := range refs {
		taskRefs[i] = integration.TaskRef{ID: ref.ID, Slug: ref.Slug}
	}
	return a.probe.ProbeAll(ctx, taskRefs)
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) Log(eventType, taskID, message string, data map[string]any) {
	_ = a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Type:    eventType,
		TaskID:  taskID,
		Message: message,
		Data:    data,
	})
}
