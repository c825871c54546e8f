package core

import (
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// ReportRow is one task's consolidated view: record fields correlated with
// the probed branch and worktree state. Rows are structured data; rendering
// (colors, table layout) is a CLI concern.
type ReportRow struct {
	ID     string
	Title  string
	Status models.Status
	// Dependencies is the filtered active list: references to merged or
	// unknown tasks are excluded.
	Dependencies []string
	LastUpdated  time.Time
	Branch       models.BranchState
	Worktree     models.WorktreeState
}

// ArchivedTask identifies a fully cleaned-up merged task for the report's
// terminal summary.
type ArchivedTask struct {
	ID    string
	Title string
}

// StatusReport is the full consolidated view: one row per non-archived task
// in dependency-consistent order, plus the derived summary sets.
type StatusReport struct {
	Rows []ReportRow
	// FullyArchived lists merged tasks whose branch and worktree are both
	// gone. They are excluded from Rows.
	FullyArchived []ArchivedTask
	// ReadyToMerge lists Done tasks whose branch is at least one commit
	// ahead of the integration branch.
	ReadyToMerge []string
	// Unblocked lists non-merged tasks with no remaining active
	// dependencies.
	Unblocked []string
	// OrderWarning is set when topological ordering degraded to file-name
	// order because of a cycle.
	OrderWarning *OrderWarning
}

// BuildReport joins the topological order with per-task repository state.
// Row order depends only on the sort result (active tasks in topological
// order, then merged-but-not-archived tasks in file-name order), never on
// probe arrival order. Missing probe results leave the zero state, which
// classifies every field as unknown or absent.
func BuildReport(records []*models.TaskRecord, g *Graph, states map[string]models.RepoState) *StatusReport {
	report := &StatusReport{}

	order, warning := g.TopologicalOrder()
	report.OrderWarning = warning

	// Merged tasks are not graph nodes; append the ones still holding a
	// branch or worktree after the active tasks, in file-name order.
	for _, r := range records {
		if !r.Status.IsTerminal() {
			continue
		}
		state := states[r.ID]
		if !state.Branch.Exists && !state.Worktree.Exists {
			report.FullyArchived = append(report.FullyArchived, ArchivedTask{ID: r.ID, Title: r.Title})
			continue
		}
		order = append(order, r.ID)
	}

	for _, id := range order {
		r := g.Record(id)
		if r == nil {
			continue
		}
		state := states[id]
		deps := g.ActiveDependencies(id)

		report.Rows = append(report.Rows, ReportRow{
			ID:           r.ID,
			Title:        r.Title,
			Status:       r.Status,
			Dependencies: deps,
			LastUpdated:  r.LastUpdated,
			Branch:       state.Branch,
			Worktree:     state.Worktree,
		})

		if !r.Status.IsTerminal() && len(deps) == 0 {
			report.Unblocked = append(report.Unblocked, r.ID)
		}
		if r.Status == models.StatusDone && state.Branch.Exists &&
			state.Branch.CountsKnown && state.Branch.Ahead >= 1 {
			report.ReadyToMerge = append(report.ReadyToMerge, r.ID)
		}
	}

	return report
}
