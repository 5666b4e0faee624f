package api

import (
	"math"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// TaskOutput is a task as rendered on the wire.
type TaskOutput struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DueDate        *string  `json:"due_date"`
	DueTime        *string  `json:"due_time"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Importance     *int     `json:"importance"`
	Dependencies   []string `json:"dependencies"`
	Role           string   `json:"role,omitempty"`
	Notes          string   `json:"notes"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// AnalyzedTaskOutput is one ranked task. Scores are rounded to two decimals.
type AnalyzedTaskOutput struct {
	TaskOutput
	PriorityScore   float64                `json:"priority_score"`
	PriorityLabel   models.PriorityLabel   `json:"priority_label"`
	ComponentScores models.ComponentScores `json:"component_scores"`
	Explanations    []string               `json:"explanations"`
	IsOverdue       bool                   `json:"is_overdue"`
	EffectiveDue    string                 `json:"effective_due"`
	Dependents      int                    `json:"dependents"`
}

// CycleOutput carries the rejection details of a cyclic task set. The fields
// are present, though empty, on every analysis response.
type CycleOutput struct {
	CircularDependencies []string   `json:"circular_dependencies"`
	Cycles               [][]string `json:"cycles"`
	AffectedTaskIDs      []string   `json:"affected_task_ids"`
	CircularWarning      *string    `json:"circular_warning"`
}

// AnalyzeResponse is the body returned by an analyze call.
type AnalyzeResponse struct {
	Tasks []AnalyzedTaskOutput `json:"tasks"`
	CycleOutput
	Strategy            models.StrategyName        `json:"strategy"`
	Role                models.Role                `json:"role"`
	Weights             models.Weights             `json:"weights"`
	Warnings            []string                   `json:"warnings"`
	UnknownDependencies []models.UnknownDependency `json:"unknown_dependencies,omitempty"`
	AnalyzedAt          string                     `json:"analyzed_at"`
}

// SuggestionOutput is a ranked task with its focus rationale.
type SuggestionOutput struct {
	AnalyzedTaskOutput
	Explanation string `json:"explanation"`
}

// SuggestResponse is the body returned by a suggest call.
type SuggestResponse struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
	CycleOutput
	Strategy   models.StrategyName `json:"strategy"`
	Role       models.Role         `json:"role"`
	TotalTasks int                 `json:"total_tasks"`
	Warnings   []string            `json:"warnings"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// StrategyOutput describes a built-in strategy for listings.
type StrategyOutput struct {
	Name        models.StrategyName `json:"name"`
	DisplayName string              `json:"display_name"`
	Role        models.Role         `json:"role,omitempty"`
	Weights     models.Weights      `json:"weights"`
}

// Renderer formats engine values for the wire. Dates are shown in Location.
type Renderer struct {
	Location *time.Location
}

// NewRenderer creates a Renderer. A nil loc means UTC.
func NewRenderer(loc *time.Location) Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return Renderer{Location: loc}
}

// Task renders a task.
func (r Renderer) Task(t models.Task) TaskOutput {
	out := TaskOutput{
		ID:             t.ID,
		Title:          t.Title,
		EstimatedHours: t.EstimatedHours,
		Importance:     t.Importance,
		Dependencies:   t.Dependencies,
		Role:           t.Role,
		Notes:          t.Notes,
	}
	if out.Dependencies == nil {
		out.Dependencies = []string{}
	}
	if t.Due != nil {
		local := t.Due.In(r.Location)
		date, clock := local.Format(dateLayout), local.Format("15:04")
		out.DueDate, out.DueTime = &date, &clock
	}
	if !t.Created.IsZero() {
		out.CreatedAt = t.Created.UTC().Format(time.RFC3339)
	}
	return out
}

// Tasks renders a list of tasks; it never returns nil.
func (r Renderer) Tasks(tasks []models.Task) []TaskOutput {
	out := make([]TaskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, r.Task(t))
	}
	return out
}

// AnalyzedTask renders one ranked task.
func (r Renderer) AnalyzedTask(at models.AnalyzedTask) AnalyzedTaskOutput {
	return AnalyzedTaskOutput{
		TaskOutput:    r.Task(at.Task),
		PriorityScore: Round2(at.PriorityScore),
		PriorityLabel: at.Label,
		ComponentScores: models.ComponentScores{
			Urgency:    Round2(at.Scores.Urgency),
			Importance: Round2(at.Scores.Importance),
			Effort:     Round2(at.Scores.Effort),
			Dependency: Round2(at.Scores.Dependency),
		},
		Explanations: at.Explanations,
		IsOverdue:    at.IsOverdue(),
		EffectiveDue: at.Facts.EffectiveDue.In(r.Location).Format(time.RFC3339),
		Dependents:   at.Facts.Dependents,
	}
}

// Cycles renders the rejection part of an outcome.
func (r Renderer) Cycles(o *models.AnalysisOutcome) CycleOutput {
	out := CycleOutput{
		CircularDependencies: []string{},
		Cycles:               [][]string{},
		AffectedTaskIDs:      []string{},
	}
	if o == nil || !o.Rejected() {
		return out
	}
	out.CircularDependencies = o.Rejection.Chains
	out.Cycles = o.Rejection.Cycles
	out.AffectedTaskIDs = o.Rejection.AffectedTaskIDs
	if w := core.CircularWarning(*o.Rejection); w != "" {
		out.CircularWarning = &w
	}
	return out
}

// Analyze renders an analysis outcome.
func (r Renderer) Analyze(o *models.AnalysisOutcome) AnalyzeResponse {
	resp := AnalyzeResponse{
		Tasks:               make([]AnalyzedTaskOutput, 0, len(o.Tasks)),
		CycleOutput:         r.Cycles(o),
		Strategy:            o.Strategy,
		Role:                o.Role,
		Weights:             o.Weights,
		Warnings:            nonNil(o.Warnings),
		UnknownDependencies: o.UnknownDependencies,
		AnalyzedAt:          o.Now.In(r.Location).Format(time.RFC3339),
	}
	for _, at := range o.Tasks {
		resp.Tasks = append(resp.Tasks, r.AnalyzedTask(at))
	}
	return resp
}

// Suggest renders a suggestion set.
func (r Renderer) Suggest(s *models.SuggestionSet) SuggestResponse {
	resp := SuggestResponse{
		Suggestions: make([]SuggestionOutput, 0, len(s.Suggestions)),
		CycleOutput: r.Cycles(s.Outcome),
		Strategy:    s.Outcome.Strategy,
		Role:        s.Outcome.Role,
		TotalTasks:  len(s.Outcome.Tasks),
		Warnings:    nonNil(s.Outcome.Warnings),
	}
	for _, sg := range s.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionOutput{
			AnalyzedTaskOutput: r.AnalyzedTask(sg.AnalyzedTask),
			Explanation:        sg.Explanation,
		})
	}
	return resp
}

// Strategies lists the built-in weight table.
func Strategies() []StrategyOutput {
	rows := core.BuiltinStrategies()
	out := make([]StrategyOutput, 0, len(rows))
	for _, row := range rows {
		out = append(out, StrategyOutput{
			Name:        row.Name,
			DisplayName: row.Name.DisplayName(),
			Role:        row.Role,
			Weights:     row.Weights,
		})
	}
	return out
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
