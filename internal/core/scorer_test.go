package core

import (
	"math"
	"testing"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

var refNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUrgencyScore(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want float64
	}{
		{"due now", refNow, 100},
		{"due in one hour", refNow.Add(time.Hour), 97},
		{"due tomorrow", refNow.Add(24 * time.Hour), 97},
		{"due in 25 hours", refNow.Add(25 * time.Hour), 94},
		{"due in 10 days", refNow.Add(10 * 24 * time.Hour), 70},
		{"due in 34 days", refNow.Add(34 * 24 * time.Hour), 0},
		{"due in 90 days", refNow.Add(90 * 24 * time.Hour), 0},
		{"one hour overdue", refNow.Add(-time.Hour), 110},
		{"one day overdue", refNow.Add(-24 * time.Hour), 110},
		{"three days overdue", refNow.Add(-3 * 24 * time.Hour), 130},
		{"slightly over two days overdue", refNow.Add(-49 * time.Hour), 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UrgencyScore(tt.due, refNow); !approxEqual(got, tt.want) {
				t.Errorf("UrgencyScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorer_MissingDueDefaultsToSevenDays(t *testing.T) {
	s := NewScorer(0, 0)
	b := s.Score(models.Task{ID: "1", Title: "no date"}, nil, refNow)

	if !b.Facts.EffectiveDue.Equal(refNow.Add(7 * 24 * time.Hour)) {
		t.Errorf("EffectiveDue = %v, want now+7d", b.Facts.EffectiveDue)
	}
	if b.Facts.DaysUntilDue != 7 {
		t.Errorf("DaysUntilDue = %d, want 7", b.Facts.DaysUntilDue)
	}
	if !approxEqual(b.Scores.Urgency, 79) {
		t.Errorf("Urgency = %v, want 79", b.Scores.Urgency)
	}
	if b.Facts.Overdue {
		t.Error("expected task without due date not to be overdue")
	}
}

func TestScorer_ImportanceDefaultsAndClamping(t *testing.T) {
	s := NewScorer(0, 0)
	tests := []struct {
		name       string
		importance *int
		want       float64
	}{
		{"absent defaults to 5", nil, 50},
		{"low", models.Int(2), 20},
		{"high", models.Int(9), 90},
		{"clamped below", models.Int(-4), 10},
		{"clamped above", models.Int(42), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Score(models.Task{ID: "1", Importance: tt.importance}, nil, refNow)
			if b.Scores.Importance != tt.want {
				t.Errorf("Importance = %v, want %v", b.Scores.Importance, tt.want)
			}
		})
	}
}

func TestScorer_EffortScore(t *testing.T) {
	s := NewScorer(40, 0)
	tests := []struct {
		hours float64
		want  float64
	}{
		{0, 99.75},
		{0.1, 99.75},
		{2, 95},
		{20, 50},
		{40, 0},
		{60, 0},
	}

	for _, tt := range tests {
		if got := s.EffortScore(tt.hours); !approxEqual(got, tt.want) {
			t.Errorf("EffortScore(%v) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestScorer_EffortDefaultsToOneHour(t *testing.T) {
	s := NewScorer(0, 0)
	b := s.Score(models.Task{ID: "1"}, nil, refNow)

	if b.Facts.EstimatedHours != 1 {
		t.Errorf("EstimatedHours = %v, want 1", b.Facts.EstimatedHours)
	}
	if !approxEqual(b.Scores.Effort, 97.5) {
		t.Errorf("Effort = %v, want 97.5", b.Scores.Effort)
	}
}

func TestScorer_CustomMaxEffortHours(t *testing.T) {
	s := NewScorer(8, 0)
	if got := s.EffortScore(4); !approxEqual(got, 50) {
		t.Errorf("EffortScore(4) with max 8 = %v, want 50", got)
	}
}

func TestCountDependents(t *testing.T) {
	tasks := []models.Task{
		{ID: "1"},
		{ID: "2", Dependencies: []string{"1"}},
		{ID: "3", Dependencies: []string{"1", "1"}},
		{ID: "4", Dependencies: []string{"2"}},
		{ID: "5", Dependencies: []string{"5"}},
	}

	tests := []struct {
		id   string
		want int
	}{
		{"1", 2},
		{"2", 1},
		{"3", 0},
		{"5", 0},
		{"missing", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := CountDependents(tt.id, tasks); got != tt.want {
			t.Errorf("CountDependents(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestDependencyScore(t *testing.T) {
	want := []float64{0, 25, 50, 75, 100, 100, 100}
	for n, w := range want {
		if got := DependencyScore(n); got != w {
			t.Errorf("DependencyScore(%d) = %v, want %v", n, got, w)
		}
	}
}

func TestScorer_BlocksTwoTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: "task_1", Title: "Base"},
		{ID: "task_2", Dependencies: []string{"task_1"}},
		{ID: "task_3", Dependencies: []string{"task_1"}},
	}
	s := NewScorer(0, 0)

	b := s.Score(tasks[0], tasks, refNow)
	if b.Scores.Dependency != 50 {
		t.Errorf("Dependency = %v, want 50", b.Scores.Dependency)
	}
	if b.Facts.Dependents != 2 {
		t.Errorf("Dependents = %d, want 2", b.Facts.Dependents)
	}

	b = s.Score(tasks[1], tasks, refNow)
	if b.Scores.Dependency != 0 {
		t.Errorf("Dependency for leaf = %v, want 0", b.Scores.Dependency)
	}
}
