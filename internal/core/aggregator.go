package core

import (
	"sort"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// Label band lower bounds. Each band includes its lower bound.
const (
	HighThreshold   = 80.0
	MediumThreshold = 50.0
)

// explanationOrder breaks ties between equal weighted contributions.
var explanationOrder = []models.Component{
	models.ComponentUrgency,
	models.ComponentDependency,
	models.ComponentImportance,
	models.ComponentEffort,
}

// PriorityScore combines component scores with resolved weights. The result
// is not rounded; rounding is a display concern.
func PriorityScore(s models.ComponentScores, w models.Weights) float64 {
	return s.Urgency*w.Urgency +
		s.Importance*w.Importance +
		s.Effort*w.Effort +
		s.Dependency*w.Dependency
}

// LabelFor maps a priority score to its band.
func LabelFor(score float64) models.PriorityLabel {
	switch {
	case score >= HighThreshold:
		return models.LabelHigh
	case score >= MediumThreshold:
		return models.LabelMedium
	default:
		return models.LabelLow
	}
}

// RankComponents orders the four components by descending weighted
// contribution (score * weight), the most decisive first.
func RankComponents(s models.ComponentScores, w models.Weights) []models.Component {
	ranked := make([]models.Component, len(explanationOrder))
	copy(ranked, explanationOrder)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.Get(ranked[i])*w.Get(ranked[i]) > s.Get(ranked[j])*w.Get(ranked[j])
	})
	return ranked
}

// Aggregate scores, labels and explains one task.
func Aggregate(task models.Task, b models.ScoreBreakdown, w models.Weights) models.AnalyzedTask {
	score := PriorityScore(b.Scores, w)
	return models.AnalyzedTask{
		Task:          task,
		Scores:        b.Scores,
		Facts:         b.Facts,
		PriorityScore: score,
		Label:         LabelFor(score),
		Explanations:  Explain(b, w),
	}
}
