package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorktreeConfig holds the parameters needed to create a task worktree.
type WorktreeConfig struct {
	Slug       string
	BranchName string
	BaseBranch string
}

// Worktree represents an active git worktree associated with a task slug.
type Worktree struct {
	Path   string
	Branch string
	Slug   string
}

// WorktreeManager manages the isolated working copies the status core only
// ever reads. Creation and removal are collaborator glue invoked by the host
// commands, never by the report path.
type WorktreeManager interface {
	CreateWorktree(ctx context.Context, config WorktreeConfig) (string, error)
	RemoveWorktree(ctx context.Context, slug string) error
	ListWorktrees(ctx context.Context) ([]*Worktree, error)
	// RemoveTaskBranches deletes every branch matching the task id's naming
	// pattern. Used by disposal only.
	RemoveTaskBranches(ctx context.Context, taskID string) error
}

// gitWorktreeManager implements WorktreeManager using the git CLI.
type gitWorktreeManager struct {
	runner       GitRunner
	repoRoot     string
	worktreeBase string
	branchPrefix string
}

// NewWorktreeManager creates a WorktreeManager that stores worktrees under
// worktreeBase in the repository at repoRoot.
func NewWorktreeManager(runner GitRunner, repoRoot, worktreeBase, branchPrefix string) WorktreeManager {
	return &gitWorktreeManager{
		runner:       runner,
		repoRoot:     repoRoot,
		worktreeBase: worktreeBase,
		branchPrefix: branchPrefix,
	}
}

// CreateWorktree creates (or reuses) the worktree for a task slug at
// worktreeBase/{slug}. The task branch is created tracking the base branch
// if it does not exist yet.
func (m *gitWorktreeManager) CreateWorktree(ctx context.Context, config WorktreeConfig) (string, error) {
	if config.Slug == "" {
		return "", fmt.Errorf("WorktreeConfig.Slug must not be empty")
	}
	if config.BranchName == "" {
		return "", fmt.Errorf("WorktreeConfig.BranchName must not be empty")
	}

	wtPath := filepath.Join(m.worktreeBase, config.Slug)
	if info, err := os.Stat(wtPath); err == nil && info.IsDir() {
		return wtPath, nil
	}

	// Ensure the branch exists, tracking the base branch.
	verify, err := m.runner.Run(ctx, m.repoRoot, "show-ref", "--verify", "--quiet", "refs/heads/"+config.BranchName)
	if err != nil {
		return "", err
	}
	if verify.ExitCode != 0 {
		args := []string{"branch", "--track", config.BranchName}
		if config.BaseBranch != "" {
			args = append(args, config.BaseBranch)
		}
		result, err := m.runner.Run(ctx, m.repoRoot, args...)
		if err != nil {
			return "", err
		}
		if result.ExitCode != 0 {
			return "", fmt.Errorf("creating branch %s: %s", config.BranchName, strings.TrimSpace(result.Stderr))
		}
	}

	if err := os.MkdirAll(m.worktreeBase, 0o750); err != nil {
		return "", fmt.Errorf("creating worktree base directory: %w", err)
	}

	result, err := m.runner.Run(ctx, m.repoRoot, "worktree", "add", wtPath, config.BranchName)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("git worktree add failed: %s", strings.TrimSpace(result.Stderr))
	}
	return wtPath, nil
}

// RemoveWorktree unregisters and deletes the worktree for a task slug, then
// prunes stale worktree entries.
func (m *gitWorktreeManager) RemoveWorktree(ctx context.Context, slug string) error {
	if slug == "" {
		return fmt.Errorf("slug must not be empty")
	}

	wtPath := filepath.Join(m.worktreeBase, slug)
	result, err := m.runner.Run(ctx, m.repoRoot, "worktree", "remove", wtPath, "--force")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 && !os.IsNotExist(statError(wtPath)) {
		// Fall back to deleting the directory if git no longer tracks it.
		if rmErr := os.RemoveAll(wtPath); rmErr != nil {
			return fmt.Errorf("git worktree remove failed: %s: %w", strings.TrimSpace(result.Stderr), rmErr)
		}
	}

	if _, err := m.runner.Run(ctx, m.repoRoot, "worktree", "prune"); err != nil {
		return err
	}
	return nil
}

func statError(path string) error {
	_, err := os.Stat(path)
	return err
}

// RemoveTaskBranches deletes every local branch matching the task's naming
// pattern.
func (m *gitWorktreeManager) RemoveTaskBranches(ctx context.Context, taskID string) error {
	pattern := "refs/heads/" + m.branchPrefix + "-" + taskID + "-*"
	result, err := m.runner.Run(ctx, m.repoRoot, "for-each-ref", "--format=%(refname:short)", pattern)
	if err != nil {
		return err
	}
	for _, branch := range result.Lines() {
		del, err := m.runner.Run(ctx, m.repoRoot, "branch", "-D", branch)
		if err != nil {
			return err
		}
		if del.ExitCode != 0 {
			return fmt.Errorf("deleting branch %s: %s", branch, strings.TrimSpace(del.Stderr))
		}
	}
	return nil
}

// ListWorktrees lists registered worktrees by parsing the porcelain output
// of `git worktree list --porcelain`.
func (m *gitWorktreeManager) ListWorktrees(ctx context.Context) ([]*Worktree, error) {
	result, err := m.runner.Run(ctx, m.repoRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("git worktree list failed: %s", strings.TrimSpace(result.Stderr))
	}
	return parseWorktreeListOutput(result.Stdout, m.worktreeBase), nil
}

// parseWorktreeListOutput parses porcelain blocks of the form:
//
//	worktree /path/to/worktree
//	HEAD <sha>
//	branch refs/heads/branch-name
func parseWorktreeListOutput(output, worktreeBase string) []*Worktree {
	var worktrees []*Worktree

	for _, block := range strings.Split(strings.TrimSpace(output), "\n\n") {
		if block == "" {
			continue
		}

		wt := &Worktree{}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "worktree "):
				wt.Path = strings.TrimPrefix(line, "worktree ")
			case strings.HasPrefix(line, "branch refs/heads/"):
				wt.Branch = strings.TrimPrefix(line, "branch refs/heads/")
			}
		}

		// Only worktrees under the task worktree base carry a slug.
		if wt.Path != "" && filepath.Dir(wt.Path) == filepath.Clean(worktreeBase) {
			wt.Slug = filepath.Base(wt.Path)
		}
		worktrees = append(worktrees, wt)
	}
	return worktrees
}
