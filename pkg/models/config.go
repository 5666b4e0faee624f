package models

// ScoringConfig tunes the component scorer.
type ScoringConfig struct {
	MaxEffortHours float64 `yaml:"max_effort_hours" mapstructure:"max_effort_hours"`
	DefaultDueDays int     `yaml:"default_due_days" mapstructure:"default_due_days"`
	DefaultDueTime string  `yaml:"default_due_time" mapstructure:"default_due_time"`
}

// GlobalConfig holds system-wide settings read from .staconfig via Viper.
type GlobalConfig struct {
	DefaultStrategy StrategyName  `yaml:"default_strategy" mapstructure:"default_strategy"`
	DefaultRole     Role          `yaml:"default_role" mapstructure:"default_role"`
	Scoring         ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	SuggestionCount int           `yaml:"suggestion_count" mapstructure:"suggestion_count"`
	Timezone        string        `yaml:"timezone" mapstructure:"timezone"`
	ServerAddr      string        `yaml:"server_addr" mapstructure:"server_addr"`
	EventLogEnabled bool          `yaml:"event_log_enabled" mapstructure:"event_log_enabled"`
}
