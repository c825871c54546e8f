package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestWorktreeManager(t *testing.T, runner GitRunner) (*gitWorktreeManager, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), ".worktrees")
	m := NewWorktreeManager(runner, "/repo", base, "task").(*gitWorktreeManager)
	return m, base
}

func TestCreateWorktree(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)
	wtPath := filepath.Join(base, "01-wire-up-parser")

	runner.on("show-ref --verify --quiet refs/heads/task-01-wire-up-parser", &GitResult{ExitCode: 1})
	runner.on("branch --track task-01-wire-up-parser main", &GitResult{})
	runner.on("worktree add "+wtPath+" task-01-wire-up-parser", &GitResult{})

	got, err := m.CreateWorktree(context.Background(), WorktreeConfig{
		Slug:       "01-wire-up-parser",
		BranchName: "task-01-wire-up-parser",
		BaseBranch: "main",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wtPath {
		t.Errorf("unexpected path: %s", got)
	}
}

func TestCreateWorktree_ExistingBranchIsReused(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)
	wtPath := filepath.Join(base, "02-existing")

	runner.on("show-ref --verify --quiet refs/heads/task-02-existing", &GitResult{ExitCode: 0})
	runner.on("worktree add "+wtPath+" task-02-existing", &GitResult{})

	if _, err := m.CreateWorktree(context.Background(), WorktreeConfig{
		Slug:       "02-existing",
		BranchName: "task-02-existing",
		BaseBranch: "main",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, call := range runner.calls {
		if call == "branch --track task-02-existing main" {
			t.Error("existing branch must not be recreated")
		}
	}
}

func TestCreateWorktree_ExistingDirShortCircuits(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)
	wtPath := filepath.Join(base, "03-already-there")
	if err := os.MkdirAll(wtPath, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := m.CreateWorktree(context.Background(), WorktreeConfig{
		Slug:       "03-already-there",
		BranchName: "task-03-already-there",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wtPath {
		t.Errorf("unexpected path: %s", got)
	}
	if len(runner.calls) != 0 {
		t.Errorf("existing worktree dir must not touch git: %v", runner.calls)
	}
}

func TestCreateWorktree_Validation(t *testing.T) {
	m, _ := newTestWorktreeManager(t, newFakeGitRunner())

	if _, err := m.CreateWorktree(context.Background(), WorktreeConfig{BranchName: "x"}); err == nil {
		t.Error("expected error for empty slug")
	}
	if _, err := m.CreateWorktree(context.Background(), WorktreeConfig{Slug: "x"}); err == nil {
		t.Error("expected error for empty branch name")
	}
}

func TestRemoveWorktree(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)
	wtPath := filepath.Join(base, "04-remove-me")

	runner.on("worktree remove "+wtPath+" --force", &GitResult{})
	runner.on("worktree prune", &GitResult{})

	if err := m.RemoveWorktree(context.Background(), "04-remove-me"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveWorktree_UntrackedDirFallback(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)
	wtPath := filepath.Join(base, "05-stale")
	if err := os.MkdirAll(wtPath, 0o755); err != nil {
		t.Fatal(err)
	}

	runner.on("worktree remove "+wtPath+" --force", &GitResult{ExitCode: 128, Stderr: "fatal: not a working tree"})
	runner.on("worktree prune", &GitResult{})

	if err := m.RemoveWorktree(context.Background(), "05-stale"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(wtPath); !os.IsNotExist(err) {
		t.Errorf("stale directory should be gone, stat err: %v", err)
	}
}

func TestRemoveTaskBranches(t *testing.T) {
	runner := newFakeGitRunner()
	m, _ := newTestWorktreeManager(t, runner)

	runner.on("for-each-ref --format=%(refname:short) refs/heads/task-06-*",
		&GitResult{Stdout: "task-06-first\ntask-06-second\n"})
	runner.on("branch -D task-06-first", &GitResult{})
	runner.on("branch -D task-06-second", &GitResult{})

	if err := m.RemoveTaskBranches(context.Background(), "06"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deleted := 0
	for _, call := range runner.calls {
		if call == "branch -D task-06-first" || call == "branch -D task-06-second" {
			deleted++
		}
	}
	if deleted != 2 {
		t.Errorf("expected both branches deleted, calls: %v", runner.calls)
	}
}

func TestListWorktrees(t *testing.T) {
	runner := newFakeGitRunner()
	m, base := newTestWorktreeManager(t, runner)

	output := "worktree /repo\nHEAD aaa\nbranch refs/heads/main\n\n" +
		"worktree " + filepath.Join(base, "07-task") + "\nHEAD bbb\nbranch refs/heads/task-07-task\n"
	runner.on("worktree list --porcelain", &GitResult{Stdout: output})

	worktrees, err := m.ListWorktrees(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(worktrees) != 2 {
		t.Fatalf("expected 2 worktrees, got %v", worktrees)
	}
	if worktrees[0].Slug != "" {
		t.Errorf("main checkout must not get a slug: %+v", worktrees[0])
	}
	if worktrees[1].Slug != "07-task" || worktrees[1].Branch != "task-07-task" {
		t.Errorf("unexpected task worktree: %+v", worktrees[1])
	}
}
