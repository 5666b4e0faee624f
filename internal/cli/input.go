package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/api"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"github.com/spf13/cobra"
)

// analysisFlags holds the options shared by analyze, suggest, matrix and
// board.
type analysisFlags struct {
	file     string
	strategy string
	role     string
	weights  string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read tasks from a JSON or YAML file instead of the task store (- for stdin)")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "Prioritization strategy (smart_balance, fastest_wins, high_impact, deadline_driven)")
	cmd.Flags().StringVarP(&f.role, "role", "r", "", "Role for smart_balance (developer, program_manager)")
	cmd.Flags().StringVar(&f.weights, "weights", "", "Custom smart_balance weights as urgency,importance,effort,dependencies percentages (e.g. 40,35,10,15)")
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategies)
	_ = cmd.RegisterFlagCompletionFunc("role", completeRoles)
}

// load returns the task set and request selected by the flags. Tasks come
// from --file when it is set and from the task store otherwise. Flags win
// over selections made inside the file; configured defaults fill the rest.
func (f *analysisFlags) load(cmd *cobra.Command) ([]models.Task, models.AnalysisRequest, error) {
	var (
		tasks []models.Task
		req   models.AnalysisRequest
	)

	if f.file != "" {
		data, err := readInput(cmd, f.file)
		if err != nil {
			return nil, req, err
		}
		decoded, err := api.DecodeTaskFile(data, api.FormatFromPath(f.file))
		if err != nil {
			return nil, req, fmt.Errorf("reading %s: %w", inputName(f.file), err)
		}
		tasks, req, err = newConverter().Request(decoded)
		if err != nil {
			return nil, req, fmt.Errorf("reading %s: %w", inputName(f.file), err)
		}
	} else {
		if TaskMgr == nil {
			return nil, req, fmt.Errorf("task manager not initialized")
		}
		stored, err := TaskMgr.ListTasks(core.TaskQuery{})
		if err != nil {
			return nil, req, fmt.Errorf("listing tasks: %w", err)
		}
		if len(stored) == 0 {
			return nil, req, errors.New("no saved tasks; add one with 'sta task add' or pass --file")
		}
		tasks = stored
	}

	if f.strategy != "" {
		req.Strategy = models.StrategyName(f.strategy)
	}
	if f.role != "" {
		req.Role = models.Role(f.role)
	}
	if f.weights != "" {
		override, err := parseWeights(f.weights)
		if err != nil {
			return nil, req, err
		}
		req.Override = override
	}
	if req.Strategy == "" {
		req.Strategy = DefaultStrategy
	}
	if req.Role == "" {
		req.Role = DefaultRole
	}
	return tasks, req, nil
}

// parseWeights reads --weights. Both the positional form "40,35,10,15" and
// the named form "urgency=40,effort=10,..." are accepted; a named form that
// leaves a component out is rejected later by weight validation.
func parseWeights(s string) (*models.WeightOverride, error) {
	parts := strings.Split(s, ",")
	override := &models.WeightOverride{}
	slots := []**int{&override.Urgency, &override.Importance, &override.Effort, &override.Dependencies}

	if !strings.Contains(s, "=") {
		if len(parts) != len(slots) {
			return nil, fmt.Errorf("invalid --weights %q: want four comma-separated percentages", s)
		}
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("invalid --weights %q: %q is not a whole number", s, p)
			}
			*slots[i] = models.Int(v)
		}
		return override, nil
	}

	named := map[string]**int{
		"urgency":      &override.Urgency,
		"importance":   &override.Importance,
		"effort":       &override.Effort,
		"dependencies": &override.Dependencies,
		"dependency":   &override.Dependencies,
	}
	for _, p := range parts {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --weights %q: mix of named and positional values", s)
		}
		slot, known := named[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			return nil, fmt.Errorf("invalid --weights %q: unknown component %q", s, key)
		}
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid --weights %q: %q is not a whole number", s, value)
		}
		*slot = models.Int(v)
	}
	return override, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	return data, nil
}

func inputName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// location is the zone due dates are read and shown in.
func location() *time.Location {
	if Analysis != nil {
		return Analysis.Location()
	}
	return time.Local
}

func newConverter() api.Converter {
	return api.NewConverter(location(), DefaultDueTime)
}

func newRenderer() api.Renderer {
	return api.NewRenderer(location())
}
