package models

import "time"

// StrategyName selects the weight vector used to combine component scores.
type StrategyName string

const (
	StrategySmartBalance   StrategyName = "smart_balance"
	StrategyFastestWins    StrategyName = "fastest_wins"
	StrategyHighImpact     StrategyName = "high_impact"
	StrategyDeadlineDriven StrategyName = "deadline_driven"

	// Qualified aliases that pin the smart-balance role.
	StrategySmartBalanceDeveloper StrategyName = "smart_balance_developer"
	StrategySmartBalancePM        StrategyName = "smart_balance_pm"
)

// DisplayName returns the title-cased strategy name.
func (s StrategyName) DisplayName() string {
	switch s {
	case StrategySmartBalance, StrategySmartBalanceDeveloper, StrategySmartBalancePM:
		return "Smart Balance"
	case StrategyFastestWins:
		return "Fastest Wins"
	case StrategyHighImpact:
		return "High Impact"
	case StrategyDeadlineDriven:
		return "Deadline Driven"
	}
	return string(s)
}

// IsSmartBalance reports whether s belongs to the smart-balance family, the
// only family that honours roles and custom weights.
func (s StrategyName) IsSmartBalance() bool {
	return s == StrategySmartBalance || s == StrategySmartBalanceDeveloper || s == StrategySmartBalancePM
}

// ValidStrategies lists the strategy names accepted at the system boundary.
func ValidStrategies() []StrategyName {
	return []StrategyName{StrategySmartBalance, StrategyFastestWins, StrategyHighImpact, StrategyDeadlineDriven}
}

// PriorityLabel is the discrete band a priority score falls into.
type PriorityLabel string

const (
	LabelHigh   PriorityLabel = "HIGH"
	LabelMedium PriorityLabel = "MEDIUM"
	LabelLow    PriorityLabel = "LOW"
)

// Component names one of the four scoring dimensions.
type Component string

const (
	ComponentUrgency    Component = "urgency"
	ComponentImportance Component = "importance"
	ComponentEffort     Component = "effort"
	ComponentDependency Component = "dependency"
)

// ComponentScores holds the four independent sub-scores for one task.
// Urgency is unbounded above for overdue work; the rest lie in [0,100].
type ComponentScores struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// Get returns the score for a single component.
func (c ComponentScores) Get(comp Component) float64 {
	switch comp {
	case ComponentUrgency:
		return c.Urgency
	case ComponentImportance:
		return c.Importance
	case ComponentEffort:
		return c.Effort
	case ComponentDependency:
		return c.Dependency
	}
	return 0
}

// Weights is a resolved weight vector. Valid vectors sum to 1.0.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

// Get returns the weight for a single component.
func (w Weights) Get(comp Component) float64 {
	switch comp {
	case ComponentUrgency:
		return w.Urgency
	case ComponentImportance:
		return w.Importance
	case ComponentEffort:
		return w.Effort
	case ComponentDependency:
		return w.Dependency
	}
	return 0
}

// WeightOverride carries user-supplied integer percentages. A nil field means
// the value was not supplied.
type WeightOverride struct {
	Urgency      *int `json:"urgency" yaml:"urgency"`
	Importance   *int `json:"importance" yaml:"importance"`
	Effort       *int `json:"effort" yaml:"effort"`
	Dependencies *int `json:"dependencies" yaml:"dependencies"`
}

// ScoreFacts are the concrete task attributes that explanations cite.
type ScoreFacts struct {
	Overdue          bool
	DaysUntilDue     int // whole days, rounded up; 0 when overdue
	DaysOverdue      int // whole days, rounded up; 0 when not overdue
	Dependents       int
	ImportanceRating int
	EstimatedHours   float64
	EffectiveDue     time.Time
}

// ScoreBreakdown is the scorer's output for a single task.
type ScoreBreakdown struct {
	Scores ComponentScores
	Facts  ScoreFacts
}

// AnalyzedTask is one entry of a ranked list.
type AnalyzedTask struct {
	Task          Task
	Scores        ComponentScores
	Facts         ScoreFacts
	PriorityScore float64
	Label         PriorityLabel
	Explanations  []string
}

// IsOverdue reports whether the task's effective due instant has passed.
func (a AnalyzedTask) IsOverdue() bool {
	return a.Facts.Overdue
}

// UnknownDependency records a dependency reference to an id missing from the
// analysed task set. It is informational; the reference is simply ignored.
type UnknownDependency struct {
	TaskID    string `json:"task_id"`
	DependsOn string `json:"depends_on"`
}

// CycleReport is the CycleDetector's result.
type CycleReport struct {
	Cycles              [][]string
	Chains              []string
	AffectedTaskIDs     []string
	UnknownDependencies []UnknownDependency
}

// HasCycles reports whether any cycle was found.
func (r CycleReport) HasCycles() bool {
	return len(r.Cycles) > 0
}

// AnalysisRequest selects how a task set is ranked.
type AnalysisRequest struct {
	Strategy StrategyName
	Role     Role
	Override *WeightOverride
}

// AnalysisOutcome is the immutable result of one analysis call. Exactly one
// of Tasks or Rejection is meaningful: when Rejection is non-nil the task set
// contains dependency cycles and nothing was scored.
type AnalysisOutcome struct {
	Tasks               []AnalyzedTask
	Strategy            StrategyName
	Role                Role
	Weights             Weights
	Warnings            []string
	UnknownDependencies []UnknownDependency
	Rejection           *CycleReport
	Now                 time.Time
}

// Rejected reports whether the analysis refused to score because of cycles.
func (o *AnalysisOutcome) Rejected() bool {
	return o.Rejection != nil
}

// Suggestion is a focus pick: a top-ranked task with a longer rationale.
type Suggestion struct {
	AnalyzedTask
	Explanation string
}

// SuggestionSet is the result of a suggest call.
type SuggestionSet struct {
	Outcome     *AnalysisOutcome
	Suggestions []Suggestion
}
