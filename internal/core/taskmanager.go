package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// EventLogger is the slice of the observability event log the task manager
// needs. A nil logger disables event recording.
type EventLogger interface {
	Log(eventType, taskID, message string, data map[string]any)
}

// TaskManager performs the explicit record mutations: status changes,
// dependency-list replacement, and archival of merged records. Every
// mutation stamps last_updated.
type TaskManager interface {
	// GetTask resolves a task id to its loaded record.
	GetTask(id string) (*models.TaskRecord, error)
	// SetStatus validates the new status against the enumeration and writes
	// it back.
	SetStatus(id string, status models.Status) error
	// SetDependencies replaces the dependency list with the typed form.
	SetDependencies(id string, deps []string) error
	// Archive moves a merged record into the archive directory and returns
	// its new path.
	Archive(id string) (string, error)
}

type taskManager struct {
	store          storage.RecordStore
	tasksDir       string
	archiveDirName string
	events         EventLogger
	now            func() time.Time
}

// NewTaskManager creates a TaskManager over the given record store. events
// may be nil.
func NewTaskManager(store storage.RecordStore, tasksDir, archiveDirName string, events EventLogger) TaskManager {
	return &taskManager{
		store:          store,
		tasksDir:       tasksDir,
		archiveDirName: archiveDirName,
		events:         events,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (m *taskManager) GetTask(id string) (*models.TaskRecord, error) {
	path, err := m.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	record, _, err := m.store.Load(path)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (m *taskManager) SetStatus(id string, status models.Status) error {
	if _, err := models.ParseStatus(string(status)); err != nil {
		return err
	}

	path, err := m.store.FindByID(id)
	if err != nil {
		return err
	}
	record, body, err := m.store.Load(path)
	if err != nil {
		return err
	}

	previous := record.Status
	record.Status = status
	record.LastUpdated = m.now()

	if err := m.store.Save(path, record, body); err != nil {
		return fmt.Errorf("saving task %s: %w", id, err)
	}

	m.log(EventStatusChanged, id, fmt.Sprintf("status %s -> %s", previous, status), map[string]any{
		"from": string(previous),
		"to":   string(status),
	})
	return nil
}

func (m *taskManager) SetDependencies(id string, deps []string) error {
	path, err := m.store.FindByID(id)
	if err != nil {
		return err
	}
	record, body, err := m.store.Load(path)
	if err != nil {
		return err
	}

	record.Dependencies = deps
	record.LastUpdated = m.now()

	if err := m.store.Save(path, record, body); err != nil {
		return fmt.Errorf("saving task %s: %w", id, err)
	}

	m.log(EventDepsChanged, id, fmt.Sprintf("dependencies set to %v", deps), map[string]any{
		"dependencies": deps,
	})
	return nil
}

// Archive moves a merged record into the archive subdirectory. Non-merged
// records are refused: archival is the terminal maintenance step.
func (m *taskManager) Archive(id string) (string, error) {
	path, err := m.store.FindByID(id)
	if err != nil {
		return "", err
	}
	record, _, err := m.store.Load(path)
	if err != nil {
		return "", err
	}
	if !record.Status.IsTerminal() {
		return "", fmt.Errorf("task %s has status %q: only merged tasks can be archived", id, record.Status)
	}

	archiveDir := filepath.Join(m.tasksDir, m.archiveDirName)
	if err := os.MkdirAll(archiveDir, 0o750); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	dest := filepath.Join(archiveDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archiving task %s: %w", id, err)
	}

	m.log(EventArchived, id, fmt.Sprintf("archived to %s", dest), nil)
	return dest, nil
}

func (m *taskManager) log(eventType, taskID, message string, data map[string]any) {
	if m.events == nil {
		return
	}
	m.events.Log(eventType, taskID, message, data)
}

// Event type names shared with the observability log.
const (
	EventStatusChanged = "task.status_changed"
	EventDepsChanged   = "task.deps_changed"
	EventArchived      = "task.archived"
)
