// Package core contains the prioritization engine for Smart Task Analyser:
// component scoring, strategy resolution, weighted aggregation, dependency
// cycle detection and focus suggestions, plus the configuration that tunes
// them.
package core

import (
	"fmt"
	"regexp"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"github.com/spf13/viper"
)

// clockPattern matches HH:MM on a 24-hour clock.
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ConfigurationManager defines the interface for loading and validating the
// .staconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .staconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with the policy
// defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DefaultStrategy: models.StrategySmartBalance,
		DefaultRole:     models.RoleDeveloper,
		Scoring: models.ScoringConfig{
			MaxEffortHours: DefaultMaxEffortHours,
			DefaultDueDays: int(DefaultDueIn / day),
			DefaultDueTime: "23:59",
		},
		SuggestionCount: DefaultSuggestionCount,
		Timezone:        "Local",
		ServerAddr:      ":8000",
		EventLogEnabled: true,
	}
}

// LoadGlobalConfig reads the .staconfig file from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".staconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("defaults.strategy", string(cfg.DefaultStrategy))
	v.SetDefault("defaults.role", string(cfg.DefaultRole))
	v.SetDefault("scoring.max_effort_hours", cfg.Scoring.MaxEffortHours)
	v.SetDefault("scoring.default_due_days", cfg.Scoring.DefaultDueDays)
	v.SetDefault("scoring.default_due_time", cfg.Scoring.DefaultDueTime)
	v.SetDefault("suggestions.count", cfg.SuggestionCount)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("server.addr", cfg.ServerAddr)
	v.SetDefault("event_log.enabled", cfg.EventLogEnabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .staconfig: %w", err)
	}

	cfg.DefaultStrategy = models.StrategyName(v.GetString("defaults.strategy"))
	cfg.DefaultRole = models.Role(v.GetString("defaults.role"))
	cfg.Scoring.MaxEffortHours = v.GetFloat64("scoring.max_effort_hours")
	cfg.Scoring.DefaultDueDays = v.GetInt("scoring.default_due_days")
	cfg.Scoring.DefaultDueTime = v.GetString("scoring.default_due_time")
	cfg.SuggestionCount = v.GetInt("suggestions.count")
	cfg.Timezone = v.GetString("timezone")
	cfg.ServerAddr = v.GetString("server.addr")
	cfg.EventLogEnabled = v.GetBool("event_log.enabled")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if _, _, err := NormalizeStrategy(cfg.DefaultStrategy); err != nil {
		return fmt.Errorf("defaults.strategy: %w", err)
	}
	if _, err := NormalizeRole(cfg.DefaultRole); err != nil {
		return fmt.Errorf("defaults.role: %w", err)
	}
	if cfg.Scoring.MaxEffortHours <= 0 {
		return fmt.Errorf("scoring.max_effort_hours must be positive, got %v", cfg.Scoring.MaxEffortHours)
	}
	if cfg.Scoring.DefaultDueDays <= 0 {
		return fmt.Errorf("scoring.default_due_days must be positive, got %d", cfg.Scoring.DefaultDueDays)
	}
	if !clockPattern.MatchString(cfg.Scoring.DefaultDueTime) {
		return fmt.Errorf("scoring.default_due_time %q must be HH:MM", cfg.Scoring.DefaultDueTime)
	}
	if cfg.SuggestionCount < 1 {
		return fmt.Errorf("suggestions.count must be at least 1, got %d", cfg.SuggestionCount)
	}
	if _, err := LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// AnalyzerConfigFrom derives analyzer settings from the global config.
func AnalyzerConfigFrom(cfg *models.GlobalConfig) AnalyzerConfig {
	return AnalyzerConfig{
		MaxEffortHours:  cfg.Scoring.MaxEffortHours,
		DefaultDueIn:    time.Duration(cfg.Scoring.DefaultDueDays) * day,
		SuggestionCount: cfg.SuggestionCount,
	}
}

// LoadLocation resolves a configured timezone name. Empty and "Local" mean
// the process's local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}
