// Package integration wraps the external collaborators taskboard consumes:
// the git CLI for repository queries, worktree lifecycle, and the tmux agent
// launcher. The status core only ever issues read-only queries through this
// package.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitResult captures the outcome of one git invocation.
type GitResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// GitRunner executes git commands in a working directory. Implementations
// must return an error only when the command could not be started; a
// non-zero exit is reported through GitResult.ExitCode so callers can
// distinguish "no" answers (e.g. merge-base --is-ancestor) from failures.
type GitRunner interface {
	Run(ctx context.Context, dir string, args ...string) (*GitResult, error)
}

// execGitRunner implements GitRunner using os/exec.
type execGitRunner struct{}

// NewGitRunner creates a GitRunner backed by the git CLI.
func NewGitRunner() GitRunner {
	return &execGitRunner{}
}

func (r *execGitRunner) Run(ctx context.Context, dir string, args ...string) (*GitResult, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result := &GitResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
	}
	return result, nil
}

// Lines splits trimmed stdout into non-empty lines.
func (r *GitResult) Lines() []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(r.Stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
