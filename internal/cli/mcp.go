package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	stamcp "github.com/DHariharanD/Smart-Task-Analyser/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the sta MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sta MCP server on stdio",
	Long: `Start the sta MCP server on stdio transport.

The server exposes the analysis engine as MCP tools that AI assistants can
call: analyze_tasks, suggest_tasks, list_strategies, list_tasks and
get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}

		srv := stamcp.NewServer(Analysis, TaskMgr, MetricsCalc, DefaultDueTime, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
