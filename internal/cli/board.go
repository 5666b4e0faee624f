package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// boardModel is the interactive focus board. It owns the session state the
// ranking depends on: the selected strategy and role, the last outcome and
// the cursor.
type boardModel struct {
	strategies []models.StrategyName
	strategy   int
	role       models.Role
	override   *models.WeightOverride

	outcome *models.AnalysisOutcome
	cursor  int
	detail  bool
	matrix  bool

	width  int
	height int

	loading bool
	err     error

	source  func() ([]models.Task, error)
	analyze func([]models.Task, models.AnalysisRequest) (*models.AnalysisOutcome, error)
	loc     *time.Location
}

// boardLoadedMsg carries a fresh analysis back to the model.
type boardLoadedMsg struct {
	outcome *models.AnalysisOutcome
	err     error
}

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

func newBoardModel(
	req models.AnalysisRequest,
	source func() ([]models.Task, error),
	analyze func([]models.Task, models.AnalysisRequest) (*models.AnalysisOutcome, error),
	loc *time.Location,
) (boardModel, error) {
	resolved, err := core.Resolve(req)
	if err != nil {
		return boardModel{}, err
	}
	if loc == nil {
		loc = time.Local
	}

	m := boardModel{
		strategies: models.ValidStrategies(),
		role:       resolved.Role,
		override:   req.Override,
		loading:    true,
		source:     source,
		analyze:    analyze,
		loc:        loc,
	}
	for i, s := range m.strategies {
		if s == resolved.Strategy {
			m.strategy = i
		}
	}
	return m, nil
}

// request is the analysis request for the current selection. Custom weights
// only apply while smart_balance is selected.
func (m boardModel) request() models.AnalysisRequest {
	req := models.AnalysisRequest{
		Strategy: m.strategies[m.strategy],
		Role:     m.role,
	}
	if req.Strategy.IsSmartBalance() {
		req.Override = m.override
	}
	return req
}

func (m boardModel) load() tea.Cmd {
	req := m.request()
	source, analyze := m.source, m.analyze
	return func() tea.Msg {
		tasks, err := source()
		if err != nil {
			return boardLoadedMsg{err: fmt.Errorf("loading tasks: %w", err)}
		}
		outcome, err := analyze(tasks, req)
		if err != nil {
			return boardLoadedMsg{err: fmt.Errorf("analyzing tasks: %w", err)}
		}
		return boardLoadedMsg{outcome: outcome}
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.load()
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < m.taskCount()-1 {
				m.cursor++
			}
			return m, nil
		case "enter", " ":
			m.detail = !m.detail
			return m, nil
		case "m":
			m.matrix = !m.matrix
			return m, nil
		case "s":
			m.strategy = (m.strategy + 1) % len(m.strategies)
			return m.reload()
		case "S":
			m.strategy = (m.strategy - 1 + len(m.strategies)) % len(m.strategies)
			return m.reload()
		case "p":
			if m.role == models.RoleProgramManager {
				m.role = models.RoleDeveloper
			} else {
				m.role = models.RoleProgramManager
			}
			return m.reload()
		case "r":
			return m.reload()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.outcome = msg.outcome
		m.err = nil
		if m.cursor >= m.taskCount() {
			m.cursor = max(m.taskCount()-1, 0)
		}
		return m, nil
	}

	return m, nil
}

func (m boardModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.load()
}

func (m boardModel) taskCount() int {
	if m.outcome == nil {
		return 0
	}
	return len(m.outcome.Tasks)
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Focus board ")
	help := helpStyle.Render("↑/↓: move | enter: details | s/S: strategy | p: role | m: matrix | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Ranking tasks...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}
	if m.outcome == nil {
		return fmt.Sprintf("%s\n\n  No analysis yet.\n\n%s", title, help)
	}

	var b strings.Builder
	switch {
	case m.outcome.Rejected():
		renderRejection(&b, m.outcome)
	case m.matrix:
		b.WriteString(renderMatrix(m.outcome, m.width-2))
		b.WriteString("\n")
	default:
		m.renderList(&b)
	}
	renderWarnings(&b, m.outcome.Warnings)

	return fmt.Sprintf("%s  %s\n\n%s\n%s", title, strategyLine(m.outcome), b.String(), help)
}

func (m boardModel) renderList(b *strings.Builder) {
	if len(m.outcome.Tasks) == 0 {
		b.WriteString("  No tasks to rank.\n")
		return
	}
	titleWidth := m.width - 22
	if titleWidth < 20 {
		titleWidth = 20
	}
	for i, at := range m.outcome.Tasks {
		marker := "  "
		titleText := truncate(at.Task.Title, titleWidth)
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			titleText = selectedStyle.Render(titleText)
		}
		label := styleForLabel(at.Label).Render(fmt.Sprintf("%-6s", at.Label))
		fmt.Fprintf(b, "%s%2d. %s %6.2f  %s\n", marker, i+1, label, at.PriorityScore, titleText)

		if m.detail && i == m.cursor {
			fmt.Fprintf(b, "        %s\n", taskFacts(at, m.loc))
			fmt.Fprintf(b, "        %s\n", dimStyle.Render(fmt.Sprintf(
				"urgency %.0f  importance %.0f  effort %.0f  dependencies %.0f",
				at.Scores.Urgency, at.Scores.Importance, at.Scores.Effort, at.Scores.Dependency)))
			for _, e := range at.Explanations {
				fmt.Fprintf(b, "        - %s\n", e)
			}
		}
	}
}

var boardOpts analysisFlags

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive focus board",
	Long: `Launch an interactive terminal board that ranks your tasks and lets you
switch strategy and role to see how the ranking changes.

Keys: up/down to move, enter for details, s/S to cycle strategy, p to switch
role, m for the matrix view, r to reload tasks, q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}

		_, req, err := boardOpts.load(cmd)
		if err != nil {
			return err
		}

		source := func() ([]models.Task, error) {
			tasks, _, err := boardOpts.load(cmd)
			return tasks, err
		}
		analyze := func(tasks []models.Task, req models.AnalysisRequest) (*models.AnalysisOutcome, error) {
			return Analysis.Analyze(core.SourceTUI, tasks, req)
		}

		m, err := newBoardModel(req, source, analyze, location())
		if err != nil {
			return err
		}

		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	boardOpts.register(boardCmd)
	rootCmd.AddCommand(boardCmd)
}
