package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

var devWeights = models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  models.PriorityLabel
	}{
		{150, models.LabelHigh},
		{80, models.LabelHigh},
		{79.999, models.LabelMedium},
		{50, models.LabelMedium},
		{49.99, models.LabelLow},
		{0, models.LabelLow},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestPriorityScore_WeightedSum(t *testing.T) {
	s := models.ComponentScores{Urgency: 97, Importance: 80, Effort: 95, Dependency: 50}
	got := PriorityScore(s, devWeights)
	if !approxEqual(got, 82.1) {
		t.Errorf("PriorityScore() = %v, want 82.1", got)
	}
	if LabelFor(got) != models.LabelHigh {
		t.Errorf("label = %s, want HIGH", LabelFor(got))
	}
}

func TestRankComponents(t *testing.T) {
	s := models.ComponentScores{Urgency: 97, Importance: 80, Effort: 95, Dependency: 50}
	got := RankComponents(s, devWeights)
	want := []models.Component{
		models.ComponentUrgency,    // 29.1
		models.ComponentImportance, // 24
		models.ComponentEffort,     // 19
		models.ComponentDependency, // 10
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankComponents() = %v, want %v", got, want)
	}
}

func TestRankComponents_TiesKeepFixedOrder(t *testing.T) {
	s := models.ComponentScores{Urgency: 0, Importance: 0, Effort: 0, Dependency: 0}
	got := RankComponents(s, devWeights)
	if !reflect.DeepEqual(got, explanationOrder) {
		t.Errorf("RankComponents() = %v, want %v", got, explanationOrder)
	}
}

func TestExplain_OrderedByContribution(t *testing.T) {
	b := models.ScoreBreakdown{
		Scores: models.ComponentScores{Urgency: 97, Importance: 80, Effort: 95, Dependency: 50},
		Facts: models.ScoreFacts{
			DaysUntilDue:     1,
			Dependents:       2,
			ImportanceRating: 8,
			EstimatedHours:   2,
		},
	}

	got := Explain(b, models.Weights{Urgency: 0.1, Importance: 0.1, Effort: 0.1, Dependency: 0.7})
	want := []string{
		"Blocks 2 other task(s) (dependency: 50.0/100)",
		"Due in 1 day(s) (urgency: 97.0/100)",
		"Estimated 2.0 hours (effort: 95.0/100)",
		"Importance rating of 8/10 (importance: 80.0/100)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() =\n%v\nwant\n%v", got, want)
	}
}

func TestExplain_Overdue(t *testing.T) {
	b := models.ScoreBreakdown{
		Scores: models.ComponentScores{Urgency: 120, Importance: 50, Effort: 50, Dependency: 0},
		Facts:  models.ScoreFacts{Overdue: true, DaysOverdue: 2, ImportanceRating: 5, EstimatedHours: 20},
	}
	got := Explain(b, devWeights)
	if got[0] != "Overdue by 2 day(s) (urgency: 120.0/100+)" {
		t.Errorf("first fragment = %q", got[0])
	}
	if got[3] != "Blocks no other tasks (dependency: 0.0/100)" {
		t.Errorf("last fragment = %q", got[3])
	}
}

func TestExplainSuggestion(t *testing.T) {
	at := models.AnalyzedTask{
		Task:          models.Task{ID: "1", Title: "Fix login"},
		Scores:        models.ComponentScores{Urgency: 97, Importance: 80, Effort: 95, Dependency: 50},
		Facts:         models.ScoreFacts{DaysUntilDue: 1, Dependents: 2, ImportanceRating: 8, EstimatedHours: 2},
		PriorityScore: 82.1,
		Label:         models.LabelHigh,
	}

	t.Run("smart balance names role", func(t *testing.T) {
		got := ExplainSuggestion(at, models.StrategySmartBalance, models.RoleDeveloper, devWeights)
		for _, want := range []string{
			"Smart Balance strategy, which is optimized for Developers.",
			"It's due in 1 day(s)",
			"importance rating of 8/10",
			"82.1 (HIGH)",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("explanation missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("fastest wins mentions quick win", func(t *testing.T) {
		w := models.Weights{Urgency: 0.15, Importance: 0.15, Effort: 0.60, Dependency: 0.10}
		got := ExplainSuggestion(at, models.StrategyFastestWins, models.RoleProgramManager, w)
		if !strings.Contains(got, "prioritized for a Program Manager using the Fastest Wins strategy") {
			t.Errorf("missing strategy sentence:\n%s", got)
		}
		if !strings.Contains(got, "quick win") {
			t.Errorf("missing quick-win sentence:\n%s", got)
		}
		if strings.Contains(got, "For Program Managers") {
			t.Errorf("role sentence is only for smart balance:\n%s", got)
		}
	})

	t.Run("quick win only under fastest wins", func(t *testing.T) {
		w := models.Weights{Urgency: 0.1, Importance: 0.1, Effort: 0.6, Dependency: 0.2}
		for _, strategy := range []models.StrategyName{
			models.StrategySmartBalance,
			models.StrategyHighImpact,
			models.StrategyDeadlineDriven,
		} {
			got := ExplainSuggestion(at, strategy, models.RoleDeveloper, w)
			if strings.Contains(got, "quick win") {
				t.Errorf("%s should not mention a quick win:\n%s", strategy, got)
			}
		}
	})

	t.Run("developer role sentence when dependency leads", func(t *testing.T) {
		w := models.Weights{Urgency: 0.1, Importance: 0.1, Effort: 0.1, Dependency: 0.7}
		got := ExplainSuggestion(at, models.StrategySmartBalance, models.RoleDeveloper, w)
		if !strings.Contains(got, "It blocks 2 other task(s)") {
			t.Errorf("missing dependency sentence:\n%s", got)
		}
		if !strings.Contains(got, "For Developers") {
			t.Errorf("missing developer sentence:\n%s", got)
		}
	})

	t.Run("program manager role sentence when urgency leads", func(t *testing.T) {
		w := models.Weights{Urgency: 0.40, Importance: 0.35, Effort: 0.10, Dependency: 0.15}
		got := ExplainSuggestion(at, models.StrategySmartBalance, models.RoleProgramManager, w)
		if !strings.Contains(got, "For Program Managers") {
			t.Errorf("missing program manager sentence:\n%s", got)
		}
	})
}
