package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/spf13/cobra"
)

// errCycles is returned after a rejected analysis has been printed, so the
// process exits non-zero.
var errCycles = errors.New("circular dependencies detected")

// Output formats for analyze.
const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

var (
	analyzeOpts   analysisFlags
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank tasks by priority",
	Long: `Rank every task and explain each score.

Tasks are read from the task store, or from a JSON or YAML file with --file
(use - for stdin). A file may hold a list of tasks, a single task, or an
object with a "tasks" list plus optional strategy, role and custom_weights.

A task set with circular dependencies is not ranked; the offending chains
are printed instead and the command exits with an error.

Examples:
  sta analyze
  sta analyze --strategy deadline_driven --format table
  sta analyze --file tasks.json --weights 40,35,10,15
  cat tasks.yaml | sta analyze --file - --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}
		switch analyzeFormat {
		case formatText, formatTable, formatJSON:
		default:
			return fmt.Errorf("unsupported --format %q (use text, table or json)", analyzeFormat)
		}

		tasks, req, err := analyzeOpts.load(cmd)
		if err != nil {
			return err
		}

		outcome, err := Analysis.Analyze(core.SourceCLI, tasks, req)
		if err != nil {
			return fmt.Errorf("analyzing tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if analyzeFormat == formatJSON {
			if err := writeJSON(out, newRenderer().Analyze(outcome)); err != nil {
				return err
			}
		} else if outcome.Rejected() {
			renderRejection(out, outcome)
		} else if analyzeFormat == formatTable {
			renderRankedTable(out, outcome)
		} else {
			renderRankedText(out, outcome, location())
		}

		if outcome.Rejected() {
			return errCycles
		}
		return nil
	},
}

var (
	suggestOpts analysisFlags
	suggestJSON bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest the tasks to focus on today",
	Long: `Pick the top-ranked tasks and explain why each one comes first.

Takes the same task sources and strategy options as analyze. The number of
suggestions is set by suggestions.count in .staconfig.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}

		tasks, req, err := suggestOpts.load(cmd)
		if err != nil {
			return err
		}

		set, err := Analysis.Suggest(core.SourceCLI, tasks, req)
		if err != nil {
			return fmt.Errorf("suggesting tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if suggestJSON {
			if err := writeJSON(out, newRenderer().Suggest(set)); err != nil {
				return err
			}
		} else if set.Outcome.Rejected() {
			renderRejection(out, set.Outcome)
		} else {
			renderSuggestions(out, set, location())
		}

		if set.Outcome.Rejected() {
			return errCycles
		}
		return nil
	},
}

var (
	matrixOpts  analysisFlags
	matrixWidth int
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show tasks in an urgency/importance matrix",
	Long: `Place every ranked task in one of four cells. A task is urgent when its
urgency score is at least 70 and important when its importance score is at
least 70. Tasks keep their rank order inside each cell.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}

		tasks, req, err := matrixOpts.load(cmd)
		if err != nil {
			return err
		}

		outcome, err := Analysis.Analyze(core.SourceCLI, tasks, req)
		if err != nil {
			return fmt.Errorf("analyzing tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if outcome.Rejected() {
			renderRejection(out, outcome)
			return errCycles
		}

		fmt.Fprintln(out, strategyLine(outcome))
		fmt.Fprintln(out, renderMatrix(outcome, matrixWidth))
		renderWarnings(out, outcome.Warnings)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		formatText + "\tRanked list with explanations",
		formatTable + "\tOne row per task with component scores",
		formatJSON + "\tThe HTTP API response document",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	analyzeOpts.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "o", formatText, "Output format (text, table, json)")
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", completeFormats)
	rootCmd.AddCommand(analyzeCmd)

	suggestOpts.register(suggestCmd)
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)

	matrixOpts.register(matrixCmd)
	matrixCmd.Flags().IntVar(&matrixWidth, "width", 100, "Total width of the matrix in columns")
	rootCmd.AddCommand(matrixCmd)
}
