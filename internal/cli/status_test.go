package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

type noopProber struct{}

func (noopProber) ProbeAll(ctx context.Context, refs []core.ProbeRef) map[string]models.RepoState {
	return nil
}

// wireStatusService points the cli package at a status service over a fresh
// tasks directory and restores the originals on cleanup.
func wireStatusService(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origStatus := Status
	origConfig := Config
	origBasePath := BasePath
	t.Cleanup(func() {
		Status = origStatus
		Config = origConfig
		BasePath = origBasePath
	})

	store := storage.NewRecordStore(dir, ".worktrees", ".done")
	Status = core.NewStatusService(store, noopProber{})
	cfg := core.DefaultConfig()
	cfg.TasksDir = "."
	Config = cfg
	BasePath = dir
	return dir
}

func writeRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStatusCommand_NilService(t *testing.T) {
	origStatus := Status
	defer func() { Status = origStatus }()
	Status = nil

	err := statusCmd.RunE(statusCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected initialization guard, got %v", err)
	}
}

func TestStatusCommand_CleanSet(t *testing.T) {
	dir := wireStatusService(t)
	writeRecord(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\n---\n")

	if err := statusCmd.RunE(statusCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusCommand_LoadFailureExitsNonZero(t *testing.T) {
	dir := wireStatusService(t)
	writeRecord(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\n---\n")
	writeRecord(t, dir, "02-broken.md", "no fences\n")

	err := statusCmd.RunE(statusCmd, nil)
	if err == nil {
		t.Fatal("expected error when a record fails to load")
	}
	if !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckCommand_CleanSet(t *testing.T) {
	dir := wireStatusService(t)
	writeRecord(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\n---\n")

	if err := checkCmd.RunE(checkCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCommand_ReportsAllFailures(t *testing.T) {
	dir := wireStatusService(t)
	writeRecord(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\ndependencies: [\"02\"]\n---\n")
	writeRecord(t, dir, "02-b.md", "---\nid: \"02\"\ntitle: B\nstatus: Started\ndependencies: [\"01\"]\n---\n")
	writeRecord(t, dir, "03-broken.md", "no fences\n")
	writeRecord(t, dir, "stray.txt", "not markdown\n")

	err := checkCmd.RunE(checkCmd, nil)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.Contains(err.Error(), "task checks failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveSlug(t *testing.T) {
	dir := wireStatusService(t)

	origStore := Store
	defer func() { Store = origStore }()
	Store = storage.NewRecordStore(dir, ".worktrees", ".done")

	writeRecord(t, dir, "01-wire-up-parser.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\n---\n")

	t.Run("bare id resolves to file stem", func(t *testing.T) {
		slug, err := resolveSlug("01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slug != "01-wire-up-parser" {
			t.Errorf("unexpected slug: %q", slug)
		}
	})

	t.Run("slug passes through", func(t *testing.T) {
		slug, err := resolveSlug("01-wire-up-parser")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slug != "01-wire-up-parser" {
			t.Errorf("unexpected slug: %q", slug)
		}
	})

	t.Run("unknown id errors", func(t *testing.T) {
		if _, err := resolveSlug("99"); err == nil {
			t.Error("expected error for unknown id")
		}
	})
}
