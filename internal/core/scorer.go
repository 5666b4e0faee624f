package core

import (
	"math"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// Scoring policy defaults.
const (
	DefaultMaxEffortHours = 40.0
	DefaultDueIn          = 7 * 24 * time.Hour
	DefaultImportance     = 5
	DefaultEstimatedHours = 1.0

	minEstimatedHours = 0.1
	day               = 24 * time.Hour
)

// Scorer computes the four component scores for a task. A Scorer holds only
// configuration and is safe for concurrent use.
type Scorer struct {
	maxEffortHours float64
	defaultDueIn   time.Duration
}

// NewScorer creates a Scorer. Non-positive arguments fall back to the policy
// defaults (40 hours, 7 days).
func NewScorer(maxEffortHours float64, defaultDueIn time.Duration) *Scorer {
	if maxEffortHours <= 0 {
		maxEffortHours = DefaultMaxEffortHours
	}
	if defaultDueIn <= 0 {
		defaultDueIn = DefaultDueIn
	}
	return &Scorer{maxEffortHours: maxEffortHours, defaultDueIn: defaultDueIn}
}

// Score returns the component scores for task, counting dependents across
// all. Missing optional fields are defaulted, never rejected.
func (s *Scorer) Score(task models.Task, all []models.Task, now time.Time) models.ScoreBreakdown {
	var b models.ScoreBreakdown

	b.Facts.EffectiveDue = s.EffectiveDue(task, now)
	b.Scores.Urgency = urgency(b.Facts.EffectiveDue, now, &b.Facts)

	b.Facts.ImportanceRating = importanceRating(task)
	b.Scores.Importance = float64(b.Facts.ImportanceRating * 10)

	b.Facts.EstimatedHours = estimatedHours(task)
	b.Scores.Effort = s.EffortScore(b.Facts.EstimatedHours)

	b.Facts.Dependents = CountDependents(task.ID, all)
	b.Scores.Dependency = DependencyScore(b.Facts.Dependents)

	return b
}

// EffectiveDue returns the task's due instant, or now plus the default
// horizon when it has none.
func (s *Scorer) EffectiveDue(task models.Task, now time.Time) time.Time {
	if task.Due == nil {
		return now.Add(s.defaultDueIn)
	}
	return *task.Due
}

func urgency(due, now time.Time, facts *models.ScoreFacts) float64 {
	diff := due.Sub(now)
	if diff < 0 {
		facts.Overdue = true
		facts.DaysOverdue = ceilDays(-diff)
		return 100 + 10*float64(facts.DaysOverdue)
	}
	facts.DaysUntilDue = ceilDays(diff)
	return math.Max(0, 100-3*float64(facts.DaysUntilDue))
}

// UrgencyScore is the urgency component for a task due at due, seen from now.
func UrgencyScore(due, now time.Time) float64 {
	var facts models.ScoreFacts
	return urgency(due, now, &facts)
}

// EffortScore maps estimated hours onto [0,100]; quicker work scores higher.
func (s *Scorer) EffortScore(hours float64) float64 {
	hours = math.Max(minEstimatedHours, hours)
	return math.Max(0, (s.maxEffortHours-hours)/s.maxEffortHours*100)
}

// DependencyScore maps the number of blocked tasks onto [0,100].
func DependencyScore(dependents int) float64 {
	return math.Min(100, 25*float64(dependents))
}

// CountDependents returns how many other tasks in all list id as a
// prerequisite, i.e. how many tasks id blocks.
func CountDependents(id string, all []models.Task) int {
	if id == "" {
		return 0
	}
	n := 0
	for _, other := range all {
		if other.ID == id {
			continue
		}
		if other.DependsOn(id) {
			n++
		}
	}
	return n
}

func importanceRating(task models.Task) int {
	rating := DefaultImportance
	if task.Importance != nil {
		rating = *task.Importance
	}
	return min(10, max(1, rating))
}

func estimatedHours(task models.Task) float64 {
	if task.EstimatedHours == nil {
		return DefaultEstimatedHours
	}
	return math.Max(minEstimatedHours, *task.EstimatedHours)
}

// ceilDays rounds a non-negative duration up to whole days.
func ceilDays(d time.Duration) int {
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
