package cli

import (
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/observability"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Analysis *core.AnalysisService
	TaskMgr  core.TaskManager
)

// MetricsCalc stays nil when the event log is disabled.
var MetricsCalc observability.MetricsCalculator

// Settings read from .staconfig.
var (
	DefaultStrategy models.StrategyName
	DefaultRole     models.Role
	DefaultDueTime  string
	ServerAddr      string
)
