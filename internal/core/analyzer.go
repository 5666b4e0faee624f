package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// DefaultSuggestionCount is how many focus suggestions Suggest returns.
const DefaultSuggestionCount = 3

// AnalyzerConfig tunes an Analyzer. Zero values select the policy defaults.
type AnalyzerConfig struct {
	MaxEffortHours  float64
	DefaultDueIn    time.Duration
	SuggestionCount int
}

// Analyzer ranks task sets. It runs a two-state pipeline: the dependency
// graph is checked for cycles first, and only an acyclic set is scored. An
// Analyzer is immutable after construction and safe for concurrent use; each
// call depends only on its arguments.
type Analyzer struct {
	scorer          *Scorer
	suggestionCount int
}

// NewAnalyzer creates an Analyzer from cfg.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	n := cfg.SuggestionCount
	if n <= 0 {
		n = DefaultSuggestionCount
	}
	return &Analyzer{
		scorer:          NewScorer(cfg.MaxEffortHours, cfg.DefaultDueIn),
		suggestionCount: n,
	}
}

// Analyze ranks tasks under the requested strategy as seen from now.
//
// An invalid strategy selection returns a *ValidationError. A task set with
// dependency cycles is not an error: the outcome comes back with Rejection
// set and no scored tasks so the caller can show the offending chains.
func (a *Analyzer) Analyze(tasks []models.Task, req models.AnalysisRequest, now time.Time) (*models.AnalysisOutcome, error) {
	resolved, err := Resolve(req)
	if err != nil {
		return nil, err
	}

	outcome := &models.AnalysisOutcome{
		Strategy: resolved.Strategy,
		Role:     resolved.Role,
		Weights:  resolved.Weights,
		Now:      now,
	}

	if len(tasks) == 0 {
		outcome.Tasks = []models.AnalyzedTask{}
		outcome.Warnings = []string{"No tasks provided"}
		return outcome, nil
	}

	report := DetectCycles(tasks)
	outcome.UnknownDependencies = report.UnknownDependencies
	for _, u := range report.UnknownDependencies {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("Task %s depends on unknown task %s (ignored)", u.TaskID, u.DependsOn))
	}

	if report.HasCycles() {
		outcome.Rejection = &report
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%d circular dependency chain(s) detected", len(report.Chains)))
		return outcome, nil
	}

	ranked := make([]models.AnalyzedTask, 0, len(tasks))
	overdue := 0
	for _, t := range tasks {
		b := a.scorer.Score(t, tasks, now)
		at := Aggregate(t, b, resolved.Weights)
		if at.IsOverdue() {
			overdue++
		}
		ranked = append(ranked, at)
	}
	SortRanked(ranked)
	outcome.Tasks = ranked

	if overdue > 0 {
		outcome.Warnings = append([]string{fmt.Sprintf("%d task(s) are overdue", overdue)}, outcome.Warnings...)
	}

	return outcome, nil
}

// Suggest analyses tasks and returns the top picks with a longer rationale
// each. A rejected analysis yields no suggestions.
func (a *Analyzer) Suggest(tasks []models.Task, req models.AnalysisRequest, now time.Time) (*models.SuggestionSet, error) {
	outcome, err := a.Analyze(tasks, req, now)
	if err != nil {
		return nil, err
	}

	set := &models.SuggestionSet{Outcome: outcome, Suggestions: []models.Suggestion{}}
	if outcome.Rejected() {
		return set, nil
	}

	n := min(a.suggestionCount, len(outcome.Tasks))
	for _, t := range outcome.Tasks[:n] {
		set.Suggestions = append(set.Suggestions, models.Suggestion{
			AnalyzedTask: t,
			Explanation:  ExplainSuggestion(t, outcome.Strategy, outcome.Role, outcome.Weights),
		})
	}
	return set, nil
}

// SortRanked orders analysed tasks by descending priority score. Ties go to
// the earlier effective due instant, then to the lower task id.
func SortRanked(ranked []models.AnalyzedTask) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.Facts.EffectiveDue.Equal(b.Facts.EffectiveDue) {
			return a.Facts.EffectiveDue.Before(b.Facts.EffectiveDue)
		}
		return a.Task.ID < b.Task.ID
	})
}
