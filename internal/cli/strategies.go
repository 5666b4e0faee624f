package cli

import (
	"github.com/DHariharanD/Smart-Task-Analyser/internal/api"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/spf13/cobra"
)

var strategiesJSON bool

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the built-in prioritization strategies",
	Long: `List every built-in strategy with the share of the priority score given to
urgency, importance, effort and dependencies. Roles only change the
smart_balance weights; --weights replaces them for a single run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strategiesJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"strategies": api.Strategies()})
		}
		renderStrategies(cmd.OutOrStdout(), core.BuiltinStrategies())
		return nil
	},
}

func init() {
	strategiesCmd.Flags().BoolVar(&strategiesJSON, "json", false, "Output strategies as JSON")
	rootCmd.AddCommand(strategiesCmd)
}
