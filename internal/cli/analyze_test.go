package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"github.com/spf13/cobra"
)

// recordingLogger captures the events the analysis service emits.
type recordingLogger struct {
	events []string
	data   []map[string]any
}

func (r *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	r.events = append(r.events, eventType)
	r.data = append(r.data, data)
	return nil
}

// useAnalysis installs a real analysis service in UTC and resets the flags
// the analysis commands share.
func useAnalysis(t *testing.T) *recordingLogger {
	t.Helper()
	events := &recordingLogger{}
	origAnalysis, origStrategy, origRole := Analysis, DefaultStrategy, DefaultRole
	Analysis = core.NewAnalysisService(core.NewAnalyzer(core.AnalyzerConfig{}), events, time.UTC)
	DefaultStrategy, DefaultRole = models.StrategySmartBalance, models.RoleDeveloper
	resetAnalysisFlags()
	t.Cleanup(func() {
		Analysis, DefaultStrategy, DefaultRole = origAnalysis, origStrategy, origRole
		resetAnalysisFlags()
	})
	return events
}

func resetAnalysisFlags() {
	analyzeOpts = analysisFlags{}
	analyzeFormat = formatText
	suggestOpts = analysisFlags{}
	suggestJSON = false
	matrixOpts = analysisFlags{}
	matrixWidth = 100
	boardOpts = analysisFlags{}
}

func daysFromNow(days int) *time.Time {
	d := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	return &d
}

// storeTasks is a small store: an urgent important task, a distant minor
// one, and a blocker the urgent task depends on.
func storeTasks() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Fix production outage", Due: daysFromNow(1), EstimatedHours: models.Float64(2), Importance: models.Int(9), Dependencies: []string{"3"}},
		{ID: "2", Title: "Tidy wiki", Due: daysFromNow(40), EstimatedHours: models.Float64(6), Importance: models.Int(2)},
		{ID: "3", Title: "Restore database access", Due: daysFromNow(2), EstimatedHours: models.Float64(1), Importance: models.Int(8)},
	}
}

func writeTaskFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalysisCommands_NilAnalysis(t *testing.T) {
	orig := Analysis
	defer func() { Analysis = orig }()
	Analysis = nil

	for _, cmd := range []*cobra.Command{analyzeCmd, suggestCmd, matrixCmd, boardCmd, serveCmd, mcpServeCmd} {
		err := cmd.RunE(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), "analysis service not initialized") {
			t.Errorf("%s: expected not-initialized error, got %v", cmd.Name(), err)
		}
	}
}

func TestAnalyze_FromStore(t *testing.T) {
	events := useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(storeTasks()...))

	out, err := runRoot(t, "analyze")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := strings.Index(out, "Fix production outage")
	last := strings.Index(out, "Tidy wiki")
	if first < 0 || last < 0 || first > last {
		t.Errorf("expected the urgent task ranked above the distant one:\n%s", out)
	}
	if !strings.Contains(out, "Smart Balance (Developer)") {
		t.Errorf("expected the strategy line, got:\n%s", out)
	}
	if len(events.events) != 1 || events.events[0] != "analysis.completed" {
		t.Errorf("events = %v, want one analysis.completed", events.events)
	}
	if events.data[0]["source"] != core.SourceCLI {
		t.Errorf("source = %v, want %q", events.data[0]["source"], core.SourceCLI)
	}
}

func TestAnalyze_EmptyStore(t *testing.T) {
	useAnalysis(t)
	useTaskManager(t, newFakeTaskManager())

	_, err := runRoot(t, "analyze")
	if err == nil || !strings.Contains(err.Error(), "no saved tasks") {
		t.Errorf("expected empty-store error, got %v", err)
	}
}

func TestAnalyze_StoreUnavailable(t *testing.T) {
	useAnalysis(t)
	useTaskManager(t, nil)

	_, err := runRoot(t, "analyze")
	if err == nil || !strings.Contains(err.Error(), "task manager not initialized") {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestAnalyze_FileJSONOutput(t *testing.T) {
	useAnalysis(t)
	path := writeTaskFile(t, "tasks.json", `{
  "strategy": "high_impact",
  "tasks": [
    {"id": 1, "title": "Quick fix", "estimated_hours": 1, "importance": 3},
    {"id": 2, "title": "Big feature", "estimated_hours": 20, "importance": 10}
  ]
}`)

	out, err := runRoot(t, "analyze", "--file", path, "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Strategy string `json:"strategy"`
		Tasks    []struct {
			ID    string  `json:"id"`
			Score float64 `json:"priority_score"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if resp.Strategy != "high_impact" {
		t.Errorf("strategy = %q, want the file's high_impact", resp.Strategy)
	}
	if len(resp.Tasks) != 2 || resp.Tasks[0].ID != "2" {
		t.Errorf("expected the important task first under high_impact, got %+v", resp.Tasks)
	}
}

func TestAnalyze_FlagOverridesFileStrategy(t *testing.T) {
	useAnalysis(t)
	path := writeTaskFile(t, "tasks.yaml", `strategy: high_impact
tasks:
  - id: 1
    title: Quick fix
    estimated_hours: 0.5
    importance: 3
  - id: 2
    title: Big feature
    estimated_hours: 30
    importance: 10
`)

	out, err := runRoot(t, "analyze", "--file", path, "--strategy", "fastest_wins", "--format", "table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Fastest Wins") {
		t.Errorf("expected the flag strategy to win, got:\n%s", out)
	}
	if strings.Index(out, "Quick fix") > strings.Index(out, "Big feature") {
		t.Errorf("expected the quick task first under fastest_wins:\n%s", out)
	}
}

func TestAnalyze_Cycle(t *testing.T) {
	events := useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(
		models.Task{ID: "1", Title: "A", Dependencies: []string{"2"}},
		models.Task{ID: "2", Title: "B", Dependencies: []string{"1"}},
		models.Task{ID: "3", Title: "C"},
	))

	out, err := runRoot(t, "analyze")
	if !errors.Is(err, errCycles) {
		t.Fatalf("expected errCycles, got %v", err)
	}
	if !strings.Contains(out, "Circular dependencies detected") {
		t.Errorf("expected the rejection report, got:\n%s", out)
	}
	if !strings.Contains(out, "1, 2") {
		t.Errorf("expected affected ids 1, 2 in output:\n%s", out)
	}
	if strings.Contains(out, "HIGH") || strings.Contains(out, "MEDIUM") {
		t.Errorf("nothing should be ranked when a cycle is found:\n%s", out)
	}
	if len(events.events) != 1 || events.events[0] != "analysis.rejected" {
		t.Errorf("events = %v, want one analysis.rejected", events.events)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"analyze", "--format", "xml"}, "unsupported --format"},
		{"bad strategy", []string{"analyze", "--strategy", "random"}, "unknown strategy"},
		{"bad role", []string{"analyze", "--role", "ceo"}, "unknown role"},
		{"weights with fixed strategy", []string{"analyze", "--strategy", "high_impact", "--weights", "25,25,25,25"}, "custom_weights"},
		{"weights not summing to 100", []string{"analyze", "--weights", "50,50,10,10"}, "custom_weights"},
		{"malformed weights", []string{"analyze", "--weights", "a,b"}, "invalid --weights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useAnalysis(t)
			useTaskManager(t, newFakeTaskManager(storeTasks()...))

			_, err := runRoot(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestAnalyze_InvalidFile(t *testing.T) {
	useAnalysis(t)
	path := writeTaskFile(t, "tasks.json", `[{"title": ""}]`)

	_, err := runRoot(t, "analyze", "--file", path)
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Errorf("expected title validation error, got %v", err)
	}
}

func TestAnalyze_Stdin(t *testing.T) {
	useAnalysis(t)
	rootCmd.SetIn(strings.NewReader(`[{"id": "x", "title": "From stdin", "importance": 12}]`))
	defer rootCmd.SetIn(nil)

	out, err := runRoot(t, "analyze", "--file", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "From stdin") || !strings.Contains(out, "importance 10") {
		t.Errorf("expected clamped importance for analysis input, got:\n%s", out)
	}
}

func TestSuggest_TopPicks(t *testing.T) {
	events := useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(storeTasks()...))

	out, err := runRoot(t, "suggest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Focus today") {
		t.Errorf("expected the focus header, got:\n%s", out)
	}
	if !strings.Contains(out, "3 of 3 task(s) shown") {
		t.Errorf("expected the shown count, got:\n%s", out)
	}
	want := []string{"analysis.completed", "suggestions.served"}
	if strings.Join(events.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events.events, want)
	}
}

func TestSuggest_JSON(t *testing.T) {
	useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(storeTasks()...))

	out, err := runRoot(t, "suggest", "--json", "--role", "program_manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Role        string `json:"role"`
		TotalTasks  int    `json:"total_tasks"`
		Suggestions []struct {
			Explanation string `json:"explanation"`
		} `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if resp.Role != "program_manager" || resp.TotalTasks != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	for i, s := range resp.Suggestions {
		if s.Explanation == "" {
			t.Errorf("suggestion %d has no explanation", i)
		}
	}
}

func TestMatrix_Quadrants(t *testing.T) {
	useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(storeTasks()...))

	out, err := runRoot(t, "matrix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cell := range []string{"Do first", "Schedule", "Delegate", "Later"} {
		if !strings.Contains(out, cell) {
			t.Errorf("matrix should contain the %q cell:\n%s", cell, out)
		}
	}
}

func TestDefaultStrategyFromConfig(t *testing.T) {
	useAnalysis(t)
	useTaskManager(t, newFakeTaskManager(storeTasks()...))
	DefaultStrategy = models.StrategyDeadlineDriven

	out, err := runRoot(t, "analyze", "--format", "table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Deadline Driven") {
		t.Errorf("expected the configured default strategy, got:\n%s", out)
	}
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [4]int
		wantErr string
	}{
		{"positional", "40,35,10,15", [4]int{40, 35, 10, 15}, ""},
		{"positional with spaces", " 25, 25 ,25,25", [4]int{25, 25, 25, 25}, ""},
		{"named", "effort=10,urgency=40,dependencies=15,importance=35", [4]int{40, 35, 10, 15}, ""},
		{"named singular dependency", "urgency=40,importance=35,effort=10,dependency=15", [4]int{40, 35, 10, 15}, ""},
		{"too few", "40,60", [4]int{}, "four comma-separated"},
		{"not a number", "40,35,ten,15", [4]int{}, "not a whole number"},
		{"unknown component", "speed=100", [4]int{}, "unknown component"},
		{"mixed forms", "urgency=40,35,10,15", [4]int{}, "mix of named and positional"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeights(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			values := [4]*int{got.Urgency, got.Importance, got.Effort, got.Dependencies}
			for i, v := range values {
				if v == nil || *v != tt.want[i] {
					t.Errorf("component %d = %v, want %d", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestParseWeights_NamedPartialLeavesNil(t *testing.T) {
	got, err := parseWeights("urgency=100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Importance != nil || got.Effort != nil || got.Dependencies != nil {
		t.Errorf("unnamed components should stay nil: %+v", got)
	}
}
