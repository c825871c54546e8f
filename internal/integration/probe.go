package integration

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// conflictMarker is the marker git merge-tree emits for content conflicts.
const conflictMarker = "<<<<<<<"

var (
	filesChangedPattern = regexp.MustCompile(`(\d+) files? changed`)
	insertionsPattern   = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsPattern    = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// TaskRef identifies one task to probe: the record id plus the file slug the
// worktree directory is named after.
type TaskRef struct {
	ID   string
	Slug string
}

// RepoProbe answers read-only questions about a task's branch and worktree.
// It never mutates branches or working copies; any individual query failure
// degrades that one field to unknown instead of aborting.
type RepoProbe interface {
	ProbeTask(ctx context.Context, ref TaskRef) models.RepoState
	// ProbeAll probes every task concurrently on a bounded worker pool and
	// returns results keyed by task id. Abandons in-flight queries when ctx
	// is cancelled.
	ProbeAll(ctx context.Context, refs []TaskRef) map[string]models.RepoState
}

// gitRepoProbe implements RepoProbe against a git repository rooted at
// repoRoot, with worktrees under worktreeBase.
type gitRepoProbe struct {
	runner            GitRunner
	repoRoot          string
	integrationBranch string
	branchPrefix      string
	worktreeBase      string
	parallelism       int
}

// NewRepoProbe creates a RepoProbe. parallelism bounds concurrent probes;
// zero means the number of available CPUs.
func NewRepoProbe(runner GitRunner, repoRoot, integrationBranch, branchPrefix, worktreeBase string, parallelism int) RepoProbe {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &gitRepoProbe{
		runner:            runner,
		repoRoot:          repoRoot,
		integrationBranch: integrationBranch,
		branchPrefix:      branchPrefix,
		worktreeBase:      worktreeBase,
		parallelism:       parallelism,
	}
}

// ProbeTask classifies one task's branch and worktree.
func (p *gitRepoProbe) ProbeTask(ctx context.Context, ref TaskRef) models.RepoState {
	return models.RepoState{
		TaskID:   ref.ID,
		Branch:   p.probeBranch(ctx, ref.ID),
		Worktree: p.probeWorktree(ctx, ref.Slug),
	}
}

// probeBranch runs the branch-side queries. Once the branch is known to be
// an ancestor of the integration branch the classification is merged and no
// further comparison is needed.
func (p *gitRepoProbe) probeBranch(ctx context.Context, taskID string) models.BranchState {
	var state models.BranchState

	pattern := "refs/heads/" + p.branchPrefix + "-" + taskID + "-*"
	result, err := p.runner.Run(ctx, p.repoRoot, "for-each-ref", "--format=%(refname:short)", pattern)
	if err != nil || result.ExitCode != 0 {
		return state
	}
	branches := result.Lines()
	if len(branches) == 0 {
		return state
	}

	state.Exists = true
	state.Name = branches[0]
	state.Ambiguous = len(branches) > 1

	state.Merged = p.isAncestor(ctx, state.Name)
	if state.Merged == models.TriYes {
		return state
	}

	state.Ahead, state.Behind, state.CountsKnown = p.aheadBehind(ctx, state.Name)
	state.Diff, state.DiffKnown = p.diffStat(ctx, state.Name)
	state.WouldConflict = p.mergePreview(ctx, state.Name)

	return state
}

// isAncestor asks whether branch history is already contained in the
// integration branch. Exit 0 means yes, exit 1 means no, anything else is
// unknown.
func (p *gitRepoProbe) isAncestor(ctx context.Context, branch string) models.Tristate {
	result, err := p.runner.Run(ctx, p.repoRoot, "merge-base", "--is-ancestor", branch, p.integrationBranch)
	if err != nil {
		return models.TriUnknown
	}
	switch result.ExitCode {
	case 0:
		return models.TriYes
	case 1:
		return models.TriNo
	default:
		return models.TriUnknown
	}
}

// aheadBehind counts commits strictly ahead of and behind the integration
// branch.
func (p *gitRepoProbe) aheadBehind(ctx context.Context, branch string) (ahead, behind int, known bool) {
	result, err := p.runner.Run(ctx, p.repoRoot, "rev-list", "--left-right", "--count", branch+"..."+p.integrationBranch)
	if err != nil || result.ExitCode != 0 {
		return 0, 0, false
	}
	fields := strings.Fields(strings.TrimSpace(result.Stdout))
	if len(fields) != 2 {
		return 0, 0, false
	}
	ahead, errA := strconv.Atoi(fields[0])
	behind, errB := strconv.Atoi(fields[1])
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return ahead, behind, true
}

// diffStat parses `git diff --shortstat` into structured counts. An empty
// shortstat means no changes, which is a known zero diff.
func (p *gitRepoProbe) diffStat(ctx context.Context, branch string) (models.DiffStat, bool) {
	result, err := p.runner.Run(ctx, p.repoRoot, "diff", "--shortstat", branch+"..."+p.integrationBranch)
	if err != nil || result.ExitCode != 0 {
		return models.DiffStat{}, false
	}

	var stat models.DiffStat
	out := strings.TrimSpace(result.Stdout)
	if m := filesChangedPattern.FindStringSubmatch(out); m != nil {
		stat.Files, _ = strconv.Atoi(m[1])
	}
	if m := insertionsPattern.FindStringSubmatch(out); m != nil {
		stat.Insertions, _ = strconv.Atoi(m[1])
	}
	if m := deletionsPattern.FindStringSubmatch(out); m != nil {
		stat.Deletions, _ = strconv.Atoi(m[1])
	}
	return stat, true
}

// mergePreview performs a non-destructive three-way merge simulation against
// the common ancestor and scans the output for conflict markers.
func (p *gitRepoProbe) mergePreview(ctx context.Context, branch string) models.Tristate {
	baseResult, err := p.runner.Run(ctx, p.repoRoot, "merge-base", p.integrationBranch, branch)
	if err != nil || baseResult.ExitCode != 0 {
		return models.TriUnknown
	}
	base := strings.TrimSpace(baseResult.Stdout)
	if base == "" {
		return models.TriUnknown
	}

	treeResult, err := p.runner.Run(ctx, p.repoRoot, "merge-tree", base, p.integrationBranch, branch)
	if err != nil || treeResult.ExitCode != 0 {
		return models.TriUnknown
	}
	if strings.Contains(treeResult.Stdout, conflictMarker) {
		return models.TriYes
	}
	return models.TriNo
}

// probeWorktree checks whether the task's isolated working copy exists and
// whether it has uncommitted changes.
func (p *gitRepoProbe) probeWorktree(ctx context.Context, slug string) models.WorktreeState {
	var state models.WorktreeState

	path := filepath.Join(p.worktreeBase, slug)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return state
	}
	state.Exists = true
	state.Path = path

	result, err := p.runner.Run(ctx, path, "status", "--porcelain")
	if err != nil || result.ExitCode != 0 {
		state.Clean = models.TriUnknown
		return state
	}
	if strings.TrimSpace(result.Stdout) == "" {
		state.Clean = models.TriYes
	} else {
		state.Clean = models.TriNo
	}
	return state
}

// ProbeAll fans task probes out to a bounded worker pool. Results are keyed
// by task id; tasks whose probe was abandoned by cancellation are simply
// absent, which downstream classifies as unknown.
func (p *gitRepoProbe) ProbeAll(ctx context.Context, refs []TaskRef) map[string]models.RepoState {
	states := make(map[string]models.RepoState, len(refs))
	if len(refs) == 0 {
		return states
	}

	workers := p.parallelism
	if workers > len(refs) {
		workers = len(refs)
	}

	work := make(chan TaskRef)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range work {
				if ctx.Err() != nil {
					return
				}
				state := p.ProbeTask(ctx, ref)
				mu.Lock()
				states[ref.ID] = state
				mu.Unlock()
			}
		}()
	}

	for _, ref := range refs {
		select {
		case work <- ref:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return states
		}
	}
	close(work)
	wg.Wait()
	return states
}
