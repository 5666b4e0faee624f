package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/httpapi"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve the JSON API until interrupted.

Endpoints:
  POST /api/tasks/analyze/         rank a submitted task set
  GET  /api/tasks/suggest/         suggest from ?tasks=<json>&strategy=&role=
  POST /api/tasks/suggest/         suggest from a submitted task set
  GET  /api/strategies/            list the built-in strategies
  GET  /api/tasks/                 list saved tasks (?role=, ?q=)
  POST /api/tasks/                 save one task or a batch
  GET|PUT|PATCH|DELETE /api/tasks/{id}/

The listen address defaults to server.addr in .staconfig.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analysis == nil {
			return fmt.Errorf("analysis service not initialized")
		}

		addr := serveAddr
		if addr == "" {
			addr = ServerAddr
		}
		if addr == "" {
			addr = ":8000"
		}

		srv := httpapi.NewServer(Analysis, TaskMgr, DefaultDueTime)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		err := srv.ListenAndServe(ctx, addr, func(a net.Addr) {
			fmt.Fprintf(out, "Listening on http://%s (Ctrl+C to stop)\n", a)
		})
		if err != nil {
			return fmt.Errorf("running HTTP server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr from .staconfig)")
	rootCmd.AddCommand(serveCmd)
}
