// Package mcpserver exposes the dashboard's tasks over the Model Context
// Protocol so an assistant can read panels, run tasks and query history.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"hex/internal/config"
	"hex/internal/database/history"
	"hex/internal/runner"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

var errNoHistory = errors.New("run history is disabled")

// Tasks is the part of the scheduler the server needs.
type Tasks interface {
	Tasks() []config.Task
	Last(id string) (runner.Result, bool)
	RunOnce(ctx context.Context, id string, extra ...string) (runner.Result, error)
}

// History is the part of the run store the server needs.
type History interface {
	RecentRuns(ctx context.Context, taskID string, limit int) ([]history.Run, error)
	Stats(ctx context.Context) ([]history.TaskStats, error)
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// Server wraps the MCP server with hex capabilities.
type Server struct {
	mcpServer *mcp.Server
	tasks     Tasks
	history   History
	logger    *slog.Logger
}

// NewServer creates a server over tasks. hist may be nil, in which case the
// history tools report an error.
func NewServer(cfg Config, tasks Tasks, hist History, logger *slog.Logger) (*Server, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		tasks:     tasks,
		history:   hist,
		logger:    logger,
	}
	s.registerTools()
	return s, nil
}

// ListTasksArgs defines the input for list_tasks.
type ListTasksArgs struct{}

// TaskInfo describes one configured task.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Period      string     `json:"period"`
	Command     string     `json:"command,omitempty"`
	Builtin     string     `json:"builtin,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
}

// ListTasksResult wraps the task list.
type ListTasksResult struct {
	Tasks []TaskInfo `json:"tasks" jsonschema:"configured tasks in layout order"`
}

// TaskArgs names a task.
type TaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"id of the task"`
}

// RunTaskArgs defines the input for run_task.
type RunTaskArgs struct {
	TaskID string   `json:"task_id" jsonschema:"id of the task to run"`
	Args   []string `json:"args,omitempty" jsonschema:"extra arguments appended to the command"`
}

// RunOutput is one run of a task.
type RunOutput struct {
	RunID      string    `json:"run_id,omitempty"`
	TaskID     string    `json:"task_id"`
	Output     string    `json:"output"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// HistoryArgs defines the input for get_task_history.
type HistoryArgs struct {
	TaskID string `json:"task_id" jsonschema:"id of the task"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of runs to return, newest first"`
}

// HistoryResult wraps recorded runs.
type HistoryResult struct {
	Runs []RunOutput `json:"runs" jsonschema:"recorded runs, newest first"`
}

// StatsArgs defines the input for get_task_stats.
type StatsArgs struct{}

// TaskStats summarizes the recorded runs of one task.
type TaskStats struct {
	TaskID        string    `json:"task_id"`
	Runs          int64     `json:"runs"`
	Failures      int64     `json:"failures"`
	AvgDurationMS int64     `json:"avg_duration_ms"`
	LastRun       time.Time `json:"last_run"`
}

// StatsResult wraps per-task statistics.
type StatsResult struct {
	Tasks []TaskStats `json:"tasks" jsonschema:"statistics per task"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List the tasks configured on the dashboard with their schedule and the time of their last run.",
	}, s.handleListTasks)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_task_output",
		Description: "Get the text a task produced on its most recent run, as shown in its panel.",
	}, s.handleGetTaskOutput)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_task",
		Description: "Run a task immediately, optionally with extra arguments, and return its output. The dashboard panel is updated too.",
	}, s.handleRunTask)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_task_history",
		Description: "Query recorded runs of a task from the history database, newest first.",
	}, s.handleGetTaskHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_task_stats",
		Description: "Summarize recorded runs per task: run count, failures, average duration and last run.",
	}, s.handleGetTaskStats)
}

func (s *Server) handleListTasks(_ context.Context, _ *mcp.CallToolRequest, _ ListTasksArgs) (*mcp.CallToolResult, ListTasksResult, error) {
	tasks := s.tasks.Tasks()
	out := ListTasksResult{Tasks: make([]TaskInfo, 0, len(tasks))}
	for _, t := range tasks {
		info := TaskInfo{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Period:      t.Period,
			Command:     t.Command,
			Builtin:     t.Builtin,
		}
		if r, ok := s.tasks.Last(t.ID); ok {
			started := r.StartedAt
			info.LastRun = &started
		}
		out.Tasks = append(out.Tasks, info)
	}
	return nil, out, nil
}

func (s *Server) handleGetTaskOutput(_ context.Context, _ *mcp.CallToolRequest, args TaskArgs) (*mcp.CallToolResult, RunOutput, error) {
	if args.TaskID == "" {
		return nil, RunOutput{}, fmt.Errorf("task_id is required")
	}
	r, ok := s.tasks.Last(args.TaskID)
	if !ok {
		return nil, RunOutput{}, fmt.Errorf("task %q has not run yet", args.TaskID)
	}
	return nil, toRunOutput("", r), nil
}

func (s *Server) handleRunTask(ctx context.Context, _ *mcp.CallToolRequest, args RunTaskArgs) (*mcp.CallToolResult, RunOutput, error) {
	if args.TaskID == "" {
		return nil, RunOutput{}, fmt.Errorf("task_id is required")
	}
	s.logger.Info("running task for mcp client", "task", args.TaskID, "args", args.Args)
	r, err := s.tasks.RunOnce(ctx, args.TaskID, args.Args...)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("run task: %w", err)
	}
	return nil, toRunOutput("", r), nil
}

func (s *Server) handleGetTaskHistory(ctx context.Context, _ *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, HistoryResult, error) {
	if s.history == nil {
		return nil, HistoryResult{}, errNoHistory
	}
	if args.TaskID == "" {
		return nil, HistoryResult{}, fmt.Errorf("task_id is required")
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	runs, err := s.history.RecentRuns(ctx, args.TaskID, limit)
	if err != nil {
		return nil, HistoryResult{}, fmt.Errorf("failed to query runs: %w", err)
	}

	out := HistoryResult{Runs: make([]RunOutput, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, toRunOutput(r.ID, r.Result))
	}
	return nil, out, nil
}

func (s *Server) handleGetTaskStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsArgs) (*mcp.CallToolResult, StatsResult, error) {
	if s.history == nil {
		return nil, StatsResult{}, errNoHistory
	}
	stats, err := s.history.Stats(ctx)
	if err != nil {
		return nil, StatsResult{}, fmt.Errorf("failed to query stats: %w", err)
	}

	out := StatsResult{Tasks: make([]TaskStats, 0, len(stats))}
	for _, st := range stats {
		out.Tasks = append(out.Tasks, TaskStats{
			TaskID:        st.TaskID,
			Runs:          st.Runs,
			Failures:      st.Failures,
			AvgDurationMS: st.AvgDuration.Milliseconds(),
			LastRun:       st.LastRun,
		})
	}
	return nil, out, nil
}

func toRunOutput(id string, r runner.Result) RunOutput {
	return RunOutput{
		RunID:      id,
		TaskID:     r.TaskID,
		Output:     r.Output,
		ExitCode:   r.ExitCode,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// Start serves on stdin and stdout until ctx ends or the client leaves.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting hex MCP server on stdio")
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves over t.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcpServer.Run(ctx, t)
}
