package core

import (
	"fmt"
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// Explain returns one short fragment per component, each citing the task
// attribute behind it and the component score, ordered by weighted
// contribution.
func Explain(b models.ScoreBreakdown, w models.Weights) []string {
	ranked := RankComponents(b.Scores, w)
	out := make([]string, 0, len(ranked))
	for _, comp := range ranked {
		out = append(out, fragment(comp, b))
	}
	return out
}

func fragment(comp models.Component, b models.ScoreBreakdown) string {
	f, s := b.Facts, b.Scores
	switch comp {
	case models.ComponentUrgency:
		if f.Overdue {
			return fmt.Sprintf("Overdue by %d day(s) (urgency: %.1f/100+)", f.DaysOverdue, s.Urgency)
		}
		return fmt.Sprintf("Due in %d day(s) (urgency: %.1f/100)", f.DaysUntilDue, s.Urgency)
	case models.ComponentDependency:
		if f.Dependents == 0 {
			return fmt.Sprintf("Blocks no other tasks (dependency: %.1f/100)", s.Dependency)
		}
		return fmt.Sprintf("Blocks %d other task(s) (dependency: %.1f/100)", f.Dependents, s.Dependency)
	case models.ComponentImportance:
		return fmt.Sprintf("Importance rating of %d/10 (importance: %.1f/100)", f.ImportanceRating, s.Importance)
	case models.ComponentEffort:
		return fmt.Sprintf("Estimated %.1f hours (effort: %.1f/100)", f.EstimatedHours, s.Effort)
	}
	return ""
}

// ExplainSuggestion builds the longer focus rationale for a top-ranked task.
// It names the strategy and role, expands on the two most decisive factors
// and, for smart balance, adds the role-specific reasoning.
func ExplainSuggestion(t models.AnalyzedTask, strategy models.StrategyName, role models.Role, w models.Weights) string {
	var sentences []string

	if strategy.IsSmartBalance() {
		sentences = append(sentences, fmt.Sprintf(
			"This task was prioritized using the %s strategy, which is optimized for %ss.",
			strategy.DisplayName(), role.DisplayName()))
	} else {
		sentences = append(sentences, fmt.Sprintf(
			"This task was prioritized for a %s using the %s strategy.",
			role.DisplayName(), strategy.DisplayName()))
	}

	ranked := RankComponents(t.Scores, w)
	for _, comp := range ranked[:2] {
		if s := factorSentence(comp, t, strategy); s != "" {
			sentences = append(sentences, s)
		}
	}

	if strategy.IsSmartBalance() {
		if s := roleSentence(role, ranked[0]); s != "" {
			sentences = append(sentences, s)
		}
	}

	sentences = append(sentences, fmt.Sprintf("Its overall priority score is %.1f (%s).", t.PriorityScore, t.Label))
	return strings.Join(sentences, " ")
}

func factorSentence(comp models.Component, t models.AnalyzedTask, strategy models.StrategyName) string {
	f, s := t.Facts, t.Scores
	switch comp {
	case models.ComponentUrgency:
		if f.Overdue {
			return fmt.Sprintf("It's overdue by %d day(s), making it extremely urgent with an urgency score of %.1f/100+.", f.DaysOverdue, s.Urgency)
		}
		return fmt.Sprintf("It's due in %d day(s), giving it an urgency score of %.1f/100.", f.DaysUntilDue, s.Urgency)
	case models.ComponentDependency:
		if f.Dependents == 0 {
			return ""
		}
		return fmt.Sprintf("It blocks %d other task(s), making it a critical dependency with a dependency score of %.1f/100.", f.Dependents, s.Dependency)
	case models.ComponentImportance:
		return fmt.Sprintf("It has an importance rating of %d/10, contributing %.1f/100 to the priority score.", f.ImportanceRating, s.Importance)
	case models.ComponentEffort:
		if strategy != models.StrategyFastestWins {
			return ""
		}
		return fmt.Sprintf("With an estimated %.1f hours, it's a quick win that can be completed efficiently, contributing %.1f/100 to the score.", f.EstimatedHours, s.Effort)
	}
	return ""
}

func roleSentence(role models.Role, top models.Component) string {
	switch role {
	case models.RoleProgramManager:
		if top == models.ComponentUrgency || top == models.ComponentImportance {
			return "For Program Managers, urgent and high-importance tasks are weighted more heavily to ensure stakeholder needs and deadlines are met."
		}
	case models.RoleDeveloper:
		if top == models.ComponentDependency || top == models.ComponentEffort {
			return "For Developers, tasks that block other work or can be completed quickly are prioritized to maintain development momentum."
		}
	}
	return ""
}
