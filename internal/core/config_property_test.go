package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"pgregory.net/rapid"
)

// =============================================================================
// Generators
// =============================================================================

type globalConfigValues struct {
	Strategy       models.StrategyName
	Role           models.Role
	MaxEffortHours int
	DefaultDueDays int
	DueHour        int
	DueMinute      int
	Suggestions    int
	EventLog       bool
}

func genGlobalConfigValues(t *rapid.T) globalConfigValues {
	return globalConfigValues{
		Strategy:       rapid.SampledFrom(models.ValidStrategies()).Draw(t, "strategy"),
		Role:           rapid.SampledFrom(models.ValidRoles()).Draw(t, "role"),
		MaxEffortHours: rapid.IntRange(1, 200).Draw(t, "maxEffort"),
		DefaultDueDays: rapid.IntRange(1, 60).Draw(t, "dueDays"),
		DueHour:        rapid.IntRange(0, 23).Draw(t, "hour"),
		DueMinute:      rapid.IntRange(0, 59).Draw(t, "minute"),
		Suggestions:    rapid.IntRange(1, 20).Draw(t, "suggestions"),
		EventLog:       rapid.Bool().Draw(t, "eventLog"),
	}
}

func mustWriteStaconfigYAML(t *testing.T, dir string, v globalConfigValues) {
	t.Helper()
	content := fmt.Sprintf(`defaults:
  strategy: %s
  role: %s
scoring:
  max_effort_hours: %d
  default_due_days: %d
  default_due_time: "%02d:%02d"
suggestions:
  count: %d
event_log:
  enabled: %v
`, v.Strategy, v.Role, v.MaxEffortHours, v.DefaultDueDays, v.DueHour, v.DueMinute, v.Suggestions, v.EventLog)

	path := filepath.Join(dir, ".staconfig.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .staconfig.yaml: %v", err)
	}
}

// =============================================================================
// Property: Configuration file values are loaded verbatim and validate
// =============================================================================

func TestProperty_ConfigurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		vals := genGlobalConfigValues(rt)
		dir := t.TempDir()
		mustWriteStaconfigYAML(t, dir, vals)

		cm := NewConfigurationManager(dir)
		cfg, err := cm.LoadGlobalConfig()
		if err != nil {
			rt.Fatalf("LoadGlobalConfig failed: %v", err)
		}

		if cfg.DefaultStrategy != vals.Strategy {
			rt.Errorf("DefaultStrategy: got %q, want %q", cfg.DefaultStrategy, vals.Strategy)
		}
		if cfg.DefaultRole != vals.Role {
			rt.Errorf("DefaultRole: got %q, want %q", cfg.DefaultRole, vals.Role)
		}
		if cfg.Scoring.MaxEffortHours != float64(vals.MaxEffortHours) {
			rt.Errorf("MaxEffortHours: got %v, want %d", cfg.Scoring.MaxEffortHours, vals.MaxEffortHours)
		}
		if cfg.Scoring.DefaultDueDays != vals.DefaultDueDays {
			rt.Errorf("DefaultDueDays: got %d, want %d", cfg.Scoring.DefaultDueDays, vals.DefaultDueDays)
		}
		if want := fmt.Sprintf("%02d:%02d", vals.DueHour, vals.DueMinute); cfg.Scoring.DefaultDueTime != want {
			rt.Errorf("DefaultDueTime: got %q, want %q", cfg.Scoring.DefaultDueTime, want)
		}
		if cfg.SuggestionCount != vals.Suggestions {
			rt.Errorf("SuggestionCount: got %d, want %d", cfg.SuggestionCount, vals.Suggestions)
		}
		if cfg.EventLogEnabled != vals.EventLog {
			rt.Errorf("EventLogEnabled: got %v, want %v", cfg.EventLogEnabled, vals.EventLog)
		}

		if err := cm.ValidateConfig(cfg); err != nil {
			rt.Errorf("generated config should validate: %v", err)
		}
	})
}
