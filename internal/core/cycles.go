package core

import (
	"fmt"
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// chainSeparator joins task labels in a rendered cycle chain.
const chainSeparator = " → "

// dependencyGraph maps each task id to the prerequisites it lists that are
// present in the same task set. order keeps input order for deterministic
// traversal.
type dependencyGraph struct {
	order   []string
	adj     map[string][]string
	titles  map[string]string
	unknown []models.UnknownDependency
}

// buildDependencyGraph filters dependency references down to known ids,
// dropping duplicates. Unknown references are recorded, not rejected.
func buildDependencyGraph(tasks []models.Task) *dependencyGraph {
	g := &dependencyGraph{
		adj:    make(map[string][]string, len(tasks)),
		titles: make(map[string]string, len(tasks)),
	}

	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if _, seen := g.titles[t.ID]; seen {
			continue
		}
		g.order = append(g.order, t.ID)
		g.titles[t.ID] = t.Title
	}

	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		seen := make(map[string]bool, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := g.titles[dep]; !ok {
				g.unknown = append(g.unknown, models.UnknownDependency{TaskID: t.ID, DependsOn: dep})
				continue
			}
			g.adj[t.ID] = append(g.adj[t.ID], dep)
		}
	}

	return g
}

// DetectCycles reports every dependency cycle reachable by a depth-first scan
// of the task graph (task -> prerequisites). Roots are scanned in input order
// and the visited set is shared by every root, so a node already explored
// from an earlier root is never re-entered. Cycles that only close through
// such a node are therefore not reported.
func DetectCycles(tasks []models.Task) models.CycleReport {
	g := buildDependencyGraph(tasks)

	var report models.CycleReport
	report.UnknownDependencies = g.unknown

	visited := make(map[string]bool, len(g.order))
	onStack := make(map[string]bool)
	affected := make(map[string]bool)
	seenChains := make(map[string]bool)
	var path []string

	var visit func(node string)
	visit = func(node string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range g.adj[node] {
			if onStack[next] {
				cycle := closeCycle(path, next)
				report.Cycles = append(report.Cycles, cycle)
				for _, id := range cycle {
					if !affected[id] {
						affected[id] = true
						report.AffectedTaskIDs = append(report.AffectedTaskIDs, id)
					}
				}
				chain := g.formatChain(cycle)
				if !seenChains[chain] {
					seenChains[chain] = true
					report.Chains = append(report.Chains, chain)
				}
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		onStack[node] = false
		path = path[:len(path)-1]
	}

	for _, id := range g.order {
		if !visited[id] {
			visit(id)
		}
	}

	return report
}

// closeCycle returns the suffix of path starting at the first occurrence of
// start, with start appended again to close the walk.
func closeCycle(path []string, start string) []string {
	idx := 0
	for i, id := range path {
		if id == start {
			idx = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-idx+1)
	cycle = append(cycle, path[idx:]...)
	return append(cycle, start)
}

func (g *dependencyGraph) formatChain(cycle []string) string {
	labels := make([]string, len(cycle))
	for i, id := range cycle {
		if title := g.titles[id]; title != "" {
			labels[i] = fmt.Sprintf("%s (%s)", title, id)
		} else {
			labels[i] = id
		}
	}
	return strings.Join(labels, chainSeparator)
}

// CircularWarning renders the user-facing advice for a cycle report, or an
// empty string when there are no cycles.
func CircularWarning(report models.CycleReport) string {
	switch len(report.Chains) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Circular dependency detected: %s. Break the cycle by removing one dependency.", report.Chains[0])
	default:
		return fmt.Sprintf("%d circular dependencies detected. Break the cycles by removing dependencies.", len(report.Chains))
	}
}
