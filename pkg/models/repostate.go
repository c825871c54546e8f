package models

import "fmt"

// Tristate is the answer to a repository query that can fail: a failed query
// degrades to TriUnknown rather than aborting the whole report.
type Tristate int

const (
	TriUnknown Tristate = iota
	TriNo
	TriYes
)

// String renders the tristate for display.
func (t Tristate) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	default:
		return "unknown"
	}
}

// DiffStat is a structured size-of-change summary between a task branch and
// the integration branch.
type DiffStat struct {
	Files      int
	Insertions int
	Deletions  int
}

// String renders the diffstat in compact form, e.g. "+3f,120i,45d".
func (d DiffStat) String() string {
	if d.Files == 0 && d.Insertions == 0 && d.Deletions == 0 {
		return "+0"
	}
	return fmt.Sprintf("+%df,%di,%dd", d.Files, d.Insertions, d.Deletions)
}

// BranchState is the derived, non-persisted classification of a task's branch
// relative to the integration branch.
type BranchState struct {
	Exists bool
	// Name is the first matching branch when Exists is true.
	Name string
	// Ambiguous is set when more than one branch matched the task's naming
	// pattern; the first match is used for all further checks.
	Ambiguous bool
	Merged    Tristate
	// Ahead and Behind are commit counts relative to the integration branch.
	// They are only meaningful when CountsKnown is true.
	Ahead       int
	Behind      int
	CountsKnown bool
	Diff        DiffStat
	DiffKnown   bool
	// WouldConflict reports whether a hypothetical merge into the integration
	// branch would produce content conflicts.
	WouldConflict Tristate
}

// WorktreeState is the derived, non-persisted classification of a task's
// isolated working copy.
type WorktreeState struct {
	Exists bool
	Path   string
	Clean  Tristate
}

// RepoState bundles the branch and worktree classification for one task.
type RepoState struct {
	TaskID   string
	Branch   BranchState
	Worktree WorktreeState
}
