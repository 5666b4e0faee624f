package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/observability"
	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display analysis and task store metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include analyses run, cycle rejections, invalid requests, tasks
scored, strategy and front-end usage, and task store activity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be disabled)")
		}

		sinceTime, err := observability.ParseSince(metricsSince, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, metrics)
		}

		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Analyses:", metrics.Analyses)
		fmt.Fprintf(out, "  %-24s %d (%.0f%%)\n", "Cycle rejections:", metrics.Rejections, metrics.RejectionRate()*100)
		fmt.Fprintf(out, "  %-24s %d\n", "Invalid requests:", metrics.InvalidRequests)
		fmt.Fprintf(out, "  %-24s %d\n", "Suggestion requests:", metrics.SuggestionRequests)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks scored:", metrics.TasksScored)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks updated:", metrics.TasksUpdated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)

		printCounts(out, "By strategy", metrics.ByStrategy)
		printCounts(out, "By source", metrics.BySource)

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// printCounts writes a labelled breakdown in key order.
func printCounts(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "\n  %s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "    %-20s %d\n", k+":", counts[k])
	}
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", observability.DefaultWindow, "Time window for metrics (e.g. 7d, 2w, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
