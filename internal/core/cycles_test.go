package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

func deps(pairs ...string) []models.Task {
	// pairs are "id:dep1,dep2" specs.
	tasks := make([]models.Task, 0, len(pairs))
	for _, p := range pairs {
		id, rest, _ := strings.Cut(p, ":")
		t := models.Task{ID: id, Title: "Task " + id}
		if rest != "" {
			t.Dependencies = strings.Split(rest, ",")
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []models.Task
		cycles   [][]string
		affected []string
	}{
		{
			name:  "linear chain",
			tasks: deps("A:B", "B:C", "C:"),
		},
		{
			name:     "two-node cycle",
			tasks:    deps("A:B", "B:A"),
			cycles:   [][]string{{"A", "B", "A"}},
			affected: []string{"A", "B"},
		},
		{
			name:     "three-node cycle",
			tasks:    deps("A:B", "B:C", "C:A"),
			cycles:   [][]string{{"A", "B", "C", "A"}},
			affected: []string{"A", "B", "C"},
		},
		{
			name:     "two disjoint cycles",
			tasks:    deps("A:B", "B:A", "C:D", "D:C", "E:"),
			cycles:   [][]string{{"A", "B", "A"}, {"C", "D", "C"}},
			affected: []string{"A", "B", "C", "D"},
		},
		{
			name:     "self dependency",
			tasks:    deps("A:A"),
			cycles:   [][]string{{"A", "A"}},
			affected: []string{"A"},
		},
		{
			name:     "cycle entered mid-path",
			tasks:    deps("X:A", "A:B", "B:A"),
			cycles:   [][]string{{"A", "B", "A"}},
			affected: []string{"A", "B"},
		},
		{
			name:  "diamond is acyclic",
			tasks: deps("A:B,C", "B:D", "C:D", "D:"),
		},
		{
			name:  "unknown dependency ignored",
			tasks: deps("A:ghost", "B:A"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := DetectCycles(tt.tasks)
			if report.HasCycles() != (len(tt.cycles) > 0) {
				t.Fatalf("HasCycles() = %v, want %v", report.HasCycles(), len(tt.cycles) > 0)
			}
			if len(tt.cycles) == 0 {
				return
			}
			if !reflect.DeepEqual(report.Cycles, tt.cycles) {
				t.Errorf("Cycles = %v, want %v", report.Cycles, tt.cycles)
			}
			if !reflect.DeepEqual(report.AffectedTaskIDs, tt.affected) {
				t.Errorf("AffectedTaskIDs = %v, want %v", report.AffectedTaskIDs, tt.affected)
			}
		})
	}
}

func TestDetectCycles_SharedVisitedSetUnderReports(t *testing.T) {
	// A -> B -> A is found from root A. The second cycle A -> C -> B -> A
	// closes through B, which was already explored, so it is not reported.
	report := DetectCycles(deps("A:B,C", "B:A", "C:B"))

	want := [][]string{{"A", "B", "A"}}
	if !reflect.DeepEqual(report.Cycles, want) {
		t.Errorf("Cycles = %v, want %v", report.Cycles, want)
	}
}

func TestDetectCycles_ChainsUseTitles(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Title: "Design schema", Dependencies: []string{"2"}},
		{ID: "2", Title: "Write migration", Dependencies: []string{"1"}},
	}

	report := DetectCycles(tasks)
	if len(report.Chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(report.Chains))
	}
	want := "Design schema (1) → Write migration (2) → Design schema (1)"
	if report.Chains[0] != want {
		t.Errorf("chain = %q, want %q", report.Chains[0], want)
	}
}

func TestDetectCycles_UnknownDependenciesRecorded(t *testing.T) {
	report := DetectCycles(deps("A:ghost,B", "B:"))

	want := []models.UnknownDependency{{TaskID: "A", DependsOn: "ghost"}}
	if !reflect.DeepEqual(report.UnknownDependencies, want) {
		t.Errorf("UnknownDependencies = %v, want %v", report.UnknownDependencies, want)
	}
	if report.HasCycles() {
		t.Error("expected no cycles")
	}
}

func TestCircularWarning(t *testing.T) {
	if got := CircularWarning(models.CycleReport{}); got != "" {
		t.Errorf("expected empty warning, got %q", got)
	}

	one := CircularWarning(models.CycleReport{Chains: []string{"A → B → A"}})
	if !strings.Contains(one, "A → B → A") || !strings.Contains(one, "removing one dependency") {
		t.Errorf("unexpected single-cycle warning: %q", one)
	}

	two := CircularWarning(models.CycleReport{Chains: []string{"A → B → A", "C → D → C"}})
	if !strings.HasPrefix(two, "2 circular dependencies detected") {
		t.Errorf("unexpected multi-cycle warning: %q", two)
	}
}
