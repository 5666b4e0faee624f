package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

// Matrix thresholds: a task is urgent or important when that component
// scores at least this much.
const (
	urgentThreshold    = 70.0
	importantThreshold = 70.0
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	quadrantStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	labelMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	labelLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styleForLabel(label models.PriorityLabel) lipgloss.Style {
	switch label {
	case models.LabelHigh:
		return labelHighStyle
	case models.LabelMedium:
		return labelMediumStyle
	case models.LabelLow:
		return labelLowStyle
	default:
		return lipgloss.NewStyle()
	}
}

// strategyLine names the strategy, role and weights an outcome used.
func strategyLine(o *models.AnalysisOutcome) string {
	name := o.Strategy.DisplayName()
	if o.Strategy.IsSmartBalance() {
		name += " (" + o.Role.DisplayName() + ")"
	}
	return fmt.Sprintf("%s  urgency %s  importance %s  effort %s  dependencies %s",
		name,
		percent(o.Weights.Urgency), percent(o.Weights.Importance),
		percent(o.Weights.Effort), percent(o.Weights.Dependency))
}

func percent(w float64) string {
	return fmt.Sprintf("%.0f%%", w*100)
}

// dueSummary describes when a scored task is due relative to the analysis.
func dueSummary(at models.AnalyzedTask, loc *time.Location) string {
	due := at.Facts.EffectiveDue.In(loc).Format("2006-01-02 15:04")
	if at.Task.Due == nil {
		due += " (default)"
	}
	switch {
	case at.Facts.Overdue:
		return overdueStyle.Render(fmt.Sprintf("%s, %s overdue", due, plural(at.Facts.DaysOverdue, "day")))
	case at.Facts.DaysUntilDue == 0:
		return due + ", due today"
	default:
		return fmt.Sprintf("%s, in %s", due, plural(at.Facts.DaysUntilDue, "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// renderRejection writes the cycle report of a rejected outcome.
func renderRejection(w io.Writer, o *models.AnalysisOutcome) {
	fmt.Fprintln(w, overdueStyle.Render("Circular dependencies detected; nothing was ranked."))
	fmt.Fprintln(w)
	for _, chain := range o.Rejection.Chains {
		fmt.Fprintf(w, "  %s\n", chain)
	}
	fmt.Fprintf(w, "\n  %-16s %s\n", "Affected tasks:", strings.Join(o.Rejection.AffectedTaskIDs, ", "))
	if warning := core.CircularWarning(*o.Rejection); warning != "" {
		fmt.Fprintf(w, "\n%s\n", warningStyle.Render(warning))
	}
}

func renderWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Warnings"))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  %s\n", warningStyle.Render("! "+warning))
	}
}

// renderRankedText writes the ranked list with every explanation.
func renderRankedText(w io.Writer, o *models.AnalysisOutcome, loc *time.Location) {
	fmt.Fprintln(w, strategyLine(o))
	fmt.Fprintln(w)
	if len(o.Tasks) == 0 {
		fmt.Fprintln(w, "  No tasks to rank.")
	}
	for i, at := range o.Tasks {
		label := styleForLabel(at.Label).Render(fmt.Sprintf("%-6s", at.Label))
		fmt.Fprintf(w, "%2d. %s %6.2f  %s %s\n", i+1, label, at.PriorityScore, at.Task.Title, dimStyle.Render("#"+at.Task.ID))
		fmt.Fprintf(w, "      %s\n", taskFacts(at, loc))
		for _, e := range at.Explanations {
			fmt.Fprintf(w, "      - %s\n", e)
		}
	}
	renderWarnings(w, o.Warnings)
}

func taskFacts(at models.AnalyzedTask, loc *time.Location) string {
	parts := []string{"due " + dueSummary(at, loc)}
	parts = append(parts, fmt.Sprintf("%gh", at.Facts.EstimatedHours))
	parts = append(parts, fmt.Sprintf("importance %d", at.Facts.ImportanceRating))
	if at.Facts.Dependents > 0 {
		parts = append(parts, fmt.Sprintf("unblocks %d", at.Facts.Dependents))
	}
	return strings.Join(parts, ", ")
}

// renderRankedTable writes one row per task with the component scores.
func renderRankedTable(w io.Writer, o *models.AnalysisOutcome) {
	fmt.Fprintln(w, strategyLine(o))
	fmt.Fprintln(w)
	header := fmt.Sprintf("%-4s %-8s %-6s %7s %7s %7s %7s %7s  %s",
		"#", "ID", "LABEL", "SCORE", "URG", "IMP", "EFF", "DEP", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for i, at := range o.Tasks {
		label := styleForLabel(at.Label).Render(fmt.Sprintf("%-6s", at.Label))
		title := at.Task.Title
		if at.IsOverdue() {
			title = overdueStyle.Render(title + " (overdue)")
		}
		fmt.Fprintf(w, "%-4d %-8s %s %7.2f %7.2f %7.2f %7.2f %7.2f  %s\n",
			i+1, truncate(at.Task.ID, 8), label, at.PriorityScore,
			at.Scores.Urgency, at.Scores.Importance, at.Scores.Effort, at.Scores.Dependency,
			title)
	}
	renderWarnings(w, o.Warnings)
}

// renderSuggestions writes the focus picks with their rationale.
func renderSuggestions(w io.Writer, set *models.SuggestionSet, loc *time.Location) {
	o := set.Outcome
	fmt.Fprintln(w, titleStyle.Render(" Focus today "))
	fmt.Fprintln(w, strategyLine(o))
	fmt.Fprintln(w)
	if len(set.Suggestions) == 0 {
		fmt.Fprintln(w, "  Nothing to suggest.")
	}
	for i, s := range set.Suggestions {
		label := styleForLabel(s.Label).Render(string(s.Label))
		fmt.Fprintf(w, "%d. %s  %s %.2f\n", i+1, s.Task.Title, label, s.PriorityScore)
		fmt.Fprintf(w, "   %s\n", taskFacts(s.AnalyzedTask, loc))
		fmt.Fprintf(w, "   %s\n\n", s.Explanation)
	}
	fmt.Fprintf(w, "%s\n", dimStyle.Render(fmt.Sprintf("%d of %d task(s) shown", len(set.Suggestions), len(o.Tasks))))
	renderWarnings(w, o.Warnings)
}

// quadrant is one cell of the urgency/importance matrix.
type quadrant struct {
	title string
	hint  string
	tasks []models.AnalyzedTask
}

// matrixQuadrants splits a ranked list into the four cells, keeping rank
// order inside each cell. The order is: urgent and important, important
// only, urgent only, neither.
func matrixQuadrants(tasks []models.AnalyzedTask) [4]quadrant {
	q := [4]quadrant{
		{title: "Do first", hint: "urgent and important"},
		{title: "Schedule", hint: "important, not urgent"},
		{title: "Delegate", hint: "urgent, not important"},
		{title: "Later", hint: "neither"},
	}
	for _, at := range tasks {
		urgent := at.Scores.Urgency >= urgentThreshold
		important := at.Scores.Importance >= importantThreshold
		var i int
		switch {
		case urgent && important:
			i = 0
		case important:
			i = 1
		case urgent:
			i = 2
		default:
			i = 3
		}
		q[i].tasks = append(q[i].tasks, at)
	}
	return q
}

// renderMatrix draws the 2x2 quadrant view. width is the total width
// available; each cell gets half.
func renderMatrix(o *models.AnalysisOutcome, width int) string {
	cellWidth := width/2 - 4
	if cellWidth < 24 {
		cellWidth = 24
	}

	cells := make([]string, 0, 4)
	for _, q := range matrixQuadrants(o.Tasks) {
		var b strings.Builder
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", q.title, len(q.tasks))))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(q.hint))
		b.WriteString("\n\n")
		if len(q.tasks) == 0 {
			b.WriteString("  -")
		}
		for i, at := range q.tasks {
			if i > 0 {
				b.WriteString("\n")
			}
			line := fmt.Sprintf("%6.2f  %s", at.PriorityScore, truncate(at.Task.Title, cellWidth-10))
			b.WriteString(styleForLabel(at.Label).Render(line))
		}
		cells = append(cells, quadrantStyle.Width(cellWidth).Render(b.String()))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, cells[0], cells[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, cells[2], cells[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderStrategies writes the built-in weight table.
func renderStrategies(w io.Writer, rows []core.StrategyInfo) {
	header := fmt.Sprintf("%-18s %-16s %9s %11s %7s %13s", "STRATEGY", "ROLE", "URGENCY", "IMPORTANCE", "EFFORT", "DEPENDENCIES")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, row := range rows {
		role := "-"
		if row.Role != "" {
			role = string(row.Role)
		}
		fmt.Fprintf(w, "%-18s %-16s %9s %11s %7s %13s\n",
			row.Name, role,
			percent(row.Weights.Urgency), percent(row.Weights.Importance),
			percent(row.Weights.Effort), percent(row.Weights.Dependency))
	}
}

// renderTaskList writes saved tasks one per line.
func renderTaskList(w io.Writer, tasks []models.Task, loc *time.Location) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	header := fmt.Sprintf("%-6s %-16s %6s %4s %-12s %s", "ID", "DUE", "HOURS", "IMP", "DEPENDS ON", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, t := range tasks {
		fmt.Fprintf(w, "%-6s %-16s %6s %4s %-12s %s\n",
			truncate(t.ID, 6), dueText(t.Due, loc), hoursText(t.EstimatedHours),
			importanceText(t.Importance), truncate(strings.Join(t.Dependencies, ","), 12), t.Title)
	}
	fmt.Fprintf(w, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d task(s)", len(tasks))))
}

// renderTaskDetail writes every field of one saved task.
func renderTaskDetail(w io.Writer, t *models.Task, loc *time.Location) {
	fmt.Fprintf(w, "Task %s\n", t.ID)
	fmt.Fprintf(w, "  %-14s %s\n", "Title:", t.Title)
	fmt.Fprintf(w, "  %-14s %s\n", "Due:", dueText(t.Due, loc))
	fmt.Fprintf(w, "  %-14s %s\n", "Hours:", hoursText(t.EstimatedHours))
	fmt.Fprintf(w, "  %-14s %s\n", "Importance:", importanceText(t.Importance))
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(w, "  %-14s %s\n", "Depends on:", strings.Join(t.Dependencies, ", "))
	}
	if t.Role != "" {
		fmt.Fprintf(w, "  %-14s %s\n", "Role:", t.Role)
	}
	if t.Notes != "" {
		fmt.Fprintf(w, "  %-14s %s\n", "Notes:", t.Notes)
	}
	if !t.Created.IsZero() {
		fmt.Fprintf(w, "  %-14s %s\n", "Created:", t.Created.In(loc).Format("2006-01-02 15:04"))
	}
}

func dueText(due *time.Time, loc *time.Location) string {
	if due == nil {
		return "-"
	}
	return due.In(loc).Format("2006-01-02 15:04")
}

func hoursText(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *h)
}

func importanceText(i *int) string {
	if i == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *i)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
