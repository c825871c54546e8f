// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task graph and status report as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// Server wraps taskboard services and exposes them as MCP tools.
type Server struct {
	server  *gomcp.Server
	taskMgr core.TaskManager
	status  *core.StatusService
}

// NewServer creates a new MCP server with the given service dependencies.
func NewServer(taskMgr core.TaskManager, status *core.StatusService, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{taskMgr: taskMgr, status: status}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskboard", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. 07)"`
}

type taskOutput struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Dependencies []string `json:"dependencies,omitempty"`
	LastUpdated  string   `json:"last_updated"`
	Path         string   `json:"path,omitempty"`
}

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter tasks by status (e.g. Started, Done, Merged)"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type setTaskStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier"`
	Status string `json:"status" jsonschema:"required,the new status from the closed enumeration"`
}

type setTaskStatusOutput struct {
	Message string `json:"message"`
}

type taskReportInput struct{}

type reportRowOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Status        string   `json:"status"`
	Dependencies  []string `json:"dependencies,omitempty"`
	BranchExists  bool     `json:"branch_exists"`
	BranchName    string   `json:"branch_name,omitempty"`
	Merged        string   `json:"merged"`
	Ahead         int      `json:"ahead"`
	Behind        int      `json:"behind"`
	WouldConflict string   `json:"would_conflict"`
	WorktreeState string   `json:"worktree_state"`
}

type taskReportOutput struct {
	Rows          []reportRowOutput `json:"rows"`
	Unblocked     []string          `json:"unblocked,omitempty"`
	ReadyToMerge  []string          `json:"ready_to_merge,omitempty"`
	FullyArchived []string          `json:"fully_archived,omitempty"`
	OrderDegraded bool              `json:"order_degraded"`
	LoadErrors    []string          `json:"load_errors,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a task record by id: title, status, dependency list, last update.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List task records with an optional status filter.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "set_task_status",
		Description: "Set a task's status. The value must belong to the closed status enumeration.",
	}, s.handleSetTaskStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "task_report",
		Description: "Generate the consolidated status report: rows in dependency order plus the unblocked, ready-to-merge, and fully-archived sets.",
	}, s.handleTaskReport)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	record, err := s.taskMgr.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, recordToOutput(record), nil
}

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var filter models.Status
	if input.Status != "" {
		status, err := models.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		filter = status
	}

	records, err := s.status.ListRecords()
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	out := listTasksOutput{}
	for _, r := range records {
		if filter != "" && r.Status != filter {
			continue
		}
		out.Tasks = append(out.Tasks, recordToOutput(r))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleSetTaskStatus(_ context.Context, _ *gomcp.CallToolRequest, input setTaskStatusInput) (*gomcp.CallToolResult, setTaskStatusOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), setTaskStatusOutput{}, nil
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return errorResult(err.Error()), setTaskStatusOutput{}, nil
	}

	if err := s.taskMgr.SetStatus(input.TaskID, status); err != nil {
		return errorResult(fmt.Sprintf("setting status of task %s: %s", input.TaskID, err)), setTaskStatusOutput{}, nil
	}
	return nil, setTaskStatusOutput{
		Message: fmt.Sprintf("task %s status set to %q", input.TaskID, status),
	}, nil
}

func (s *Server) handleTaskReport(ctx context.Context, _ *gomcp.CallToolRequest, _ taskReportInput) (*gomcp.CallToolResult, taskReportOutput, error) {
	report, scan, err := s.status.GenerateReport(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("generating report: %s", err)), taskReportOutput{}, nil
	}

	out := taskReportOutput{OrderDegraded: report.OrderWarning != nil}
	for _, row := range report.Rows {
		out.Rows = append(out.Rows, reportRowOutput{
			ID:            row.ID,
			Title:         row.Title,
			Status:        string(row.Status),
			Dependencies:  row.Dependencies,
			BranchExists:  row.Branch.Exists,
			BranchName:    row.Branch.Name,
			Merged:        row.Branch.Merged.String(),
			Ahead:         row.Branch.Ahead,
			Behind:        row.Branch.Behind,
			WouldConflict: row.Branch.WouldConflict.String(),
			WorktreeState: worktreeStateText(row.Worktree),
		})
	}
	out.Unblocked = report.Unblocked
	out.ReadyToMerge = report.ReadyToMerge
	for _, t := range report.FullyArchived {
		out.FullyArchived = append(out.FullyArchived, t.ID)
	}
	for _, e := range scan.Errors {
		out.LoadErrors = append(out.LoadErrors, e.Error())
	}
	return nil, out, nil
}

// --- Helpers ---

func recordToOutput(r *models.TaskRecord) taskOutput {
	return taskOutput{
		ID:           r.ID,
		Title:        r.Title,
		Status:       string(r.Status),
		Dependencies: r.Dependencies,
		LastUpdated:  r.LastUpdated.Format(time.RFC3339),
		Path:         r.Path,
	}
}

func worktreeStateText(w models.WorktreeState) string {
	if !w.Exists {
		return "none"
	}
	switch w.Clean {
	case models.TriYes:
		return "clean"
	case models.TriNo:
		return "dirty"
	default:
		return "unknown"
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
