package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// Style definitions.
var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

	statusDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	dirtyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	conflictStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// renderReport renders the structured report as a fixed-width table plus the
// derived summaries.
func renderReport(report *core.StatusReport) string {
	var sb strings.Builder

	format := "%-4s  %-36s  %-20s  %-12s  %-16s  %-34s  %-8s\n"
	sb.WriteString(headerRowStyle.Render(fmt.Sprintf(format,
		"ID", "TITLE", "STATUS", "DEPS", "UPDATED", "BRANCH", "WORKTREE")))

	for _, row := range report.Rows {
		sb.WriteString(fmt.Sprintf(format,
			row.ID,
			clip(row.Title, 36),
			statusText(row.Status),
			strings.Join(row.Dependencies, ","),
			row.LastUpdated.Format("2006-01-02 15:04"),
			branchText(row.Branch),
			worktreeText(row.Worktree),
		))
	}

	if report.OrderWarning != nil {
		sb.WriteString("\n")
		sb.WriteString(warnStyle.Render("warning: " + report.OrderWarning.String()))
		sb.WriteString("\n")
	}

	if len(report.Unblocked) > 0 {
		sb.WriteString("\n")
		sb.WriteString(summaryStyle.Render("Unblocked:"))
		sb.WriteString(" " + strings.Join(report.Unblocked, ", ") + "\n")
	}
	if len(report.ReadyToMerge) > 0 {
		sb.WriteString(summaryStyle.Render("Ready to merge:"))
		sb.WriteString(" " + strings.Join(report.ReadyToMerge, ", ") + "\n")
	}
	if len(report.FullyArchived) > 0 {
		items := make([]string, len(report.FullyArchived))
		for i, t := range report.FullyArchived {
			items[i] = fmt.Sprintf("%s (%s)", t.ID, t.Title)
		}
		sb.WriteString(summaryStyle.Render("Done & merged:"))
		sb.WriteString(" " + strings.Join(items, " ") + "\n")
	}

	return sb.String()
}

// statusText colors terminal-ish statuses green and waiting statuses yellow.
func statusText(status models.Status) string {
	switch status {
	case models.StatusDone, models.StatusMerged:
		return statusDoneStyle.Render(string(status))
	case models.StatusNeedsManualReview, models.StatusNeedsInput:
		return statusBlockedStyle.Render(string(status))
	default:
		return string(status)
	}
}

// branchText renders the branch classification at the display boundary; the
// underlying state stays structured.
func branchText(b models.BranchState) string {
	if !b.Exists {
		return "no branch"
	}

	var marker string
	if b.Ambiguous {
		marker = " (ambiguous)"
	}

	switch b.Merged {
	case models.TriYes:
		return "merged" + marker
	case models.TriUnknown:
		return "merge state unknown" + marker
	}

	diff := "?"
	if b.DiffKnown {
		diff = b.Diff.String()
	}

	conflict := "?"
	switch b.WouldConflict {
	case models.TriYes:
		conflict = conflictStyle.Render("conflict")
	case models.TriNo:
		conflict = "ok"
	}

	if !b.CountsKnown {
		return fmt.Sprintf("counts unknown (%s) %s%s", diff, conflict, marker)
	}
	if b.Ahead == 0 && b.Behind == 0 {
		return fmt.Sprintf("up-to-date (%s)%s", diff, marker)
	}
	return fmt.Sprintf("%d behind / %d ahead (%s) %s%s", b.Behind, b.Ahead, diff, conflict, marker)
}

func worktreeText(w models.WorktreeState) string {
	if !w.Exists {
		return "none"
	}
	switch w.Clean {
	case models.TriYes:
		return "clean"
	case models.TriNo:
		return dirtyStyle.Render("dirty")
	default:
		return "unknown"
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
