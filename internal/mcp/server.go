// Package mcp provides an MCP (Model Context Protocol) server that exposes
// task analysis as MCP tools for AI assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/api"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/observability"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the analysis service and the task store as MCP tools.
type Server struct {
	server      *gomcp.Server
	analysis    *core.AnalysisService
	taskMgr     core.TaskManager
	metricsCalc observability.MetricsCalculator
	converter   api.Converter
	renderer    api.Renderer
}

// NewServer creates a new MCP server. taskMgr and metricsCalc may be nil;
// the tools that need them then report an error result.
func NewServer(analysis *core.AnalysisService, taskMgr core.TaskManager, metricsCalc observability.MetricsCalculator, defaultDueTime, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		analysis:    analysis,
		taskMgr:     taskMgr,
		metricsCalc: metricsCalc,
		converter:   api.NewConverter(analysis.Location(), defaultDueTime),
		renderer:    api.NewRenderer(analysis.Location()),
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "sta", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type analyzeInput struct {
	Tasks         []api.TaskInput        `json:"tasks,omitempty" jsonschema:"tasks to rank; ids are strings and dependencies list other ids in the same set"`
	FromStore     bool                   `json:"from_store,omitempty" jsonschema:"rank the saved tasks instead of the tasks argument"`
	Strategy      string                 `json:"strategy,omitempty" jsonschema:"smart_balance (default), fastest_wins, high_impact or deadline_driven"`
	Role          string                 `json:"role,omitempty" jsonschema:"developer (default) or program_manager; only changes smart_balance weights"`
	CustomWeights *models.WeightOverride `json:"custom_weights,omitempty" jsonschema:"integer percentages for urgency, importance, effort and dependencies summing to 100; smart_balance only"`
}

type listStrategiesInput struct{}

type listStrategiesOutput struct {
	Strategies []api.StrategyOutput `json:"strategies"`
}

type listTasksInput struct {
	Role  string `json:"role,omitempty" jsonschema:"only tasks with this role"`
	Query string `json:"query,omitempty" jsonschema:"case-insensitive substring of the title or notes"`
}

type listTasksOutput struct {
	Tasks []api.TaskOutput `json:"tasks"`
	Count int              `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Analyses           int            `json:"analyses"`
	Rejections         int            `json:"rejections"`
	RejectionRate      float64        `json:"rejection_rate"`
	InvalidRequests    int            `json:"invalid_requests"`
	SuggestionRequests int            `json:"suggestion_requests"`
	TasksScored        int            `json:"tasks_scored"`
	ByStrategy         map[string]int `json:"by_strategy"`
	BySource           map[string]int `json:"by_source"`
	TasksCreated       int            `json:"tasks_created"`
	TasksUpdated       int            `json:"tasks_updated"`
	TasksDeleted       int            `json:"tasks_deleted"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "analyze_tasks",
		Description: "Rank tasks by priority. Returns every task with its score, label, component scores and explanations. A task set with circular dependencies is returned unscored with the offending chains.",
	}, s.handleAnalyze)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "suggest_tasks",
		Description: "Pick the top tasks to focus on today, each with a rationale naming the deciding factors.",
	}, s.handleSuggest)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_strategies",
		Description: "List the built-in prioritization strategies and their weights.",
	}, s.handleListStrategies)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List saved tasks, newest first, with optional role and text filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: analyses run, cycle rejections, strategies used and task store activity.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleAnalyze(_ context.Context, _ *gomcp.CallToolRequest, input analyzeInput) (*gomcp.CallToolResult, api.AnalyzeResponse, error) {
	tasks, req, err := s.request(input)
	if err != nil {
		return errorResult(err.Error()), api.AnalyzeResponse{}, nil
	}

	outcome, err := s.analysis.Analyze(core.SourceMCP, tasks, req)
	if err != nil {
		return errorResult(fmt.Sprintf("analyzing tasks: %s", err)), api.AnalyzeResponse{}, nil
	}
	return nil, s.renderer.Analyze(outcome), nil
}

func (s *Server) handleSuggest(_ context.Context, _ *gomcp.CallToolRequest, input analyzeInput) (*gomcp.CallToolResult, api.SuggestResponse, error) {
	tasks, req, err := s.request(input)
	if err != nil {
		return errorResult(err.Error()), api.SuggestResponse{}, nil
	}

	set, err := s.analysis.Suggest(core.SourceMCP, tasks, req)
	if err != nil {
		return errorResult(fmt.Sprintf("suggesting tasks: %s", err)), api.SuggestResponse{}, nil
	}
	return nil, s.renderer.Suggest(set), nil
}

func (s *Server) handleListStrategies(_ context.Context, _ *gomcp.CallToolRequest, _ listStrategiesInput) (*gomcp.CallToolResult, listStrategiesOutput, error) {
	return nil, listStrategiesOutput{Strategies: api.Strategies()}, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	if s.taskMgr == nil {
		return errorResult("task store not available"), listTasksOutput{Tasks: []api.TaskOutput{}}, nil
	}

	tasks, err := s.taskMgr.ListTasks(core.TaskQuery{Role: input.Role, Query: input.Query})
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{Tasks: []api.TaskOutput{}}, nil
	}

	return nil, listTasksOutput{Tasks: s.renderer.Tasks(tasks), Count: len(tasks)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceTime, err := observability.ParseSince(input.Since, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Analyses:           metrics.Analyses,
		Rejections:         metrics.Rejections,
		RejectionRate:      metrics.RejectionRate(),
		InvalidRequests:    metrics.InvalidRequests,
		SuggestionRequests: metrics.SuggestionRequests,
		TasksScored:        metrics.TasksScored,
		ByStrategy:         metrics.ByStrategy,
		BySource:           metrics.BySource,
		TasksCreated:       metrics.TasksCreated,
		TasksUpdated:       metrics.TasksUpdated,
		TasksDeleted:       metrics.TasksDeleted,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// request turns tool input into engine input, reading the task store when
// from_store is set.
func (s *Server) request(input analyzeInput) ([]models.Task, models.AnalysisRequest, error) {
	if !input.FromStore {
		tasks, req, err := s.converter.Request(&api.AnalyzeRequest{
			Tasks:         input.Tasks,
			Strategy:      input.Strategy,
			Role:          input.Role,
			CustomWeights: input.CustomWeights,
		})
		return tasks, req, err
	}

	if len(input.Tasks) > 0 {
		return nil, models.AnalysisRequest{}, errors.New("pass either tasks or from_store, not both")
	}
	if s.taskMgr == nil {
		return nil, models.AnalysisRequest{}, errors.New("task store not available")
	}
	tasks, err := s.taskMgr.ListTasks(core.TaskQuery{})
	if err != nil {
		return nil, models.AnalysisRequest{}, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, models.AnalysisRequest{
		Strategy: models.StrategyName(input.Strategy),
		Role:     models.Role(input.Role),
		Override: input.CustomWeights,
	}, nil
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		ByStrategy: make(map[string]int),
		BySource:   make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
