package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// LaunchConfig describes one agent session to start: the task slug, the
// worktree it runs in, and the agent command line.
type LaunchConfig struct {
	Slug         string
	WorktreePath string
	AgentCommand []string
	Stdout       io.Writer
	Stderr       io.Writer
}

// AgentLauncher starts the external automated-work agent for tasks, each in
// its own tmux window of a shared session. Invoked by the host commands only
// after the core reports a task as actionable; the status core never calls
// into this.
type AgentLauncher interface {
	Launch(ctx context.Context, session string, configs []LaunchConfig) error
}

// tmuxAgentLauncher implements AgentLauncher using the tmux CLI.
type tmuxAgentLauncher struct{}

// NewAgentLauncher creates a tmux-backed AgentLauncher.
func NewAgentLauncher() AgentLauncher {
	return &tmuxAgentLauncher{}
}

// Launch creates a detached tmux session with one window per task, each
// running the agent command inside the task's worktree, then attaches.
func (l *tmuxAgentLauncher) Launch(ctx context.Context, session string, configs []LaunchConfig) error {
	if len(configs) == 0 {
		return fmt.Errorf("no tasks to launch")
	}
	if session == "" {
		return fmt.Errorf("session name must not be empty")
	}

	for i, config := range configs {
		if len(config.AgentCommand) == 0 {
			return fmt.Errorf("task %s: agent command is not configured", config.Slug)
		}

		var args []string
		if i == 0 {
			args = []string{"new-session", "-d", "-s", session, "-n", config.Slug, "-c", config.WorktreePath}
		} else {
			args = []string{"new-window", "-t", session, "-n", config.Slug, "-c", config.WorktreePath}
		}
		args = append(args, config.AgentCommand...)

		if err := l.runTmux(ctx, config, args); err != nil {
			return fmt.Errorf("launching agent for task %s: %w", config.Slug, err)
		}
	}

	attach := exec.CommandContext(ctx, "tmux", "attach", "-t", session)
	attach.Stdin = os.Stdin
	attach.Stdout = os.Stdout
	attach.Stderr = os.Stderr
	if err := attach.Run(); err != nil {
		return fmt.Errorf("attaching to tmux session %s: %w", session, err)
	}
	return nil
}

func (l *tmuxAgentLauncher) runTmux(ctx context.Context, config LaunchConfig, args []string) error {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	if config.Stdout != nil {
		cmd.Stdout = config.Stdout
	}
	if config.Stderr != nil {
		cmd.Stderr = config.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux %s: %w", strings.Join(args[:1], " "), err)
	}
	return nil
}

// SessionName builds a tmux session name from the launched task slugs.
func SessionName(prefix string, slugs []string) string {
	return prefix + "_" + strings.Join(slugs, "_")
}
