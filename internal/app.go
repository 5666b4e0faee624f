// Package internal provides the App struct that wires the components of
// Smart Task Analyser together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/cli"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/observability"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/storage"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// ConfigFileName marks a base directory.
const ConfigFileName = ".staconfig"

// EventLogFileName is the JSONL event log inside the base directory.
const EventLogFileName = ".sta_events.jsonl"

// App holds the service dependencies.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	ConfigMgr core.ConfigurationManager
	TaskStore storage.TaskStoreManager

	TaskMgr  core.TaskManager
	Analysis *core.AnalysisService

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires every component. basePath is the directory holding
// .staconfig, tasks.yaml and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	app.Config = cfg

	loc, err := core.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	// --- Observability ---
	var events core.EventLogger
	if cfg.EventLogEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
		if err != nil {
			// Non-fatal: run without an event log.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Storage and core services ---
	app.TaskStore = storage.NewTaskStoreManager(basePath)
	app.TaskMgr = core.NewTaskManager(&taskStoreAdapter{mgr: app.TaskStore}, events)
	app.Analysis = core.NewAnalysisService(core.NewAnalyzer(core.AnalyzerConfigFrom(cfg)), events, loc)

	// --- Wire CLI package-level variables ---
	cli.Analysis = app.Analysis
	cli.TaskMgr = app.TaskMgr
	cli.MetricsCalc = app.MetricsCalc
	cli.DefaultStrategy = cfg.DefaultStrategy
	cli.DefaultRole = cfg.DefaultRole
	cli.DefaultDueTime = cfg.Scoring.DefaultDueTime
	cli.ServerAddr = cfg.ServerAddr

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the data directory. STA_HOME wins; otherwise
// the nearest ancestor of the working directory holding .staconfig, and
// finally the working directory itself.
func ResolveBasePath() string {
	if home := os.Getenv("STA_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// taskStoreAdapter adapts storage.TaskStoreManager to core.TaskStore.
type taskStoreAdapter struct {
	mgr storage.TaskStoreManager
}

func (a *taskStoreAdapter) AllocateID() string {
	return a.mgr.AllocateID()
}

func (a *taskStoreAdapter) AddTask(task models.Task) error {
	return a.mgr.AddTask(task)
}

func (a *taskStoreAdapter) UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error) {
	t, err := a.mgr.UpdateTask(taskID, patch)
	return t, notFound(err)
}

func (a *taskStoreAdapter) RemoveTask(taskID string) error {
	return notFound(a.mgr.RemoveTask(taskID))
}

func (a *taskStoreAdapter) GetTask(taskID string) (*models.Task, error) {
	t, err := a.mgr.GetTask(taskID)
	return t, notFound(err)
}

func (a *taskStoreAdapter) ListTasks(query core.TaskQuery) ([]models.Task, error) {
	return a.mgr.ListTasks(storage.TaskFilter{
		IDs:   query.IDs,
		Role:  query.Role,
		Query: query.Query,
	})
}

func (a *taskStoreAdapter) Load() error {
	return a.mgr.Load()
}

func (a *taskStoreAdapter) Save() error {
	return a.mgr.Save()
}

func (a *taskStoreAdapter) Lock() (func() error, error) {
	return a.mgr.Lock()
}

// notFound rewraps the storage sentinel as the core one so callers above
// core only need to know core.ErrTaskNotFound.
func notFound(err error) error {
	if errors.Is(err, storage.ErrTaskNotFound) {
		return fmt.Errorf("%w: %v", core.ErrTaskNotFound, err)
	}
	return err
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
	now func() time.Time
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	level := observability.LevelInfo
	switch eventType {
	case observability.EventAnalysisRejected, observability.EventAnalysisInvalid:
		level = observability.LevelWarn
	}
	return a.log.Write(observability.Event{
		Time:    now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventMessage(eventType),
		Data:    data,
	})
}

func eventMessage(eventType string) string {
	switch eventType {
	case observability.EventAnalysisCompleted:
		return "tasks ranked"
	case observability.EventAnalysisRejected:
		return "analysis rejected: circular dependencies"
	case observability.EventAnalysisInvalid:
		return "analysis request invalid"
	case observability.EventSuggestionsServed:
		return "suggestions served"
	case observability.EventTaskCreated:
		return "task created"
	case observability.EventTaskUpdated:
		return "task updated"
	case observability.EventTaskDeleted:
		return "task deleted"
	default:
		return eventType
	}
}
