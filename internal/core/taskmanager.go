package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// MaxTitleLength bounds task titles.
const MaxTitleLength = 200

// ErrTaskNotFound is returned when an operation names a task that is not saved.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore is the subset of storage.TaskStoreManager that TaskManager needs.
// Defining it here keeps core independent of the storage package.
type TaskStore interface {
	AllocateID() string
	AddTask(task models.Task) error
	UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error)
	RemoveTask(taskID string) error
	GetTask(taskID string) (*models.Task, error)
	ListTasks(query TaskQuery) ([]models.Task, error)
	Load() error
	Save() error
	Lock() (unlock func() error, err error)
}

// TaskQuery mirrors storage.TaskFilter.
type TaskQuery struct {
	IDs   []string
	Role  string
	Query string
}

// TaskManager defines the saved-task operations.
type TaskManager interface {
	CreateTask(task models.Task) (*models.Task, error)
	ImportTasks(tasks []models.Task) ([]models.Task, error)
	GetTask(taskID string) (*models.Task, error)
	ListTasks(query TaskQuery) ([]models.Task, error)
	UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(taskID string) error
}

// taskManager serialises access to the store. Each operation reloads the
// file, and mutations hold the store's cross-process lock from Load to Save,
// so several processes can share one base directory.
type taskManager struct {
	mu     sync.Mutex
	store  TaskStore
	events EventLogger
	now    func() time.Time
}

// NewTaskManager creates a TaskManager over store. events may be nil.
func NewTaskManager(store TaskStore, events EventLogger) TaskManager {
	return &taskManager{store: store, events: events, now: time.Now}
}

func (tm *taskManager) CreateTask(task models.Task) (*models.Task, error) {
	created, err := tm.ImportTasks([]models.Task{task})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// ImportTasks saves a batch of tasks under freshly allocated ids. Dependencies
// may name other tasks in the batch by their incoming id, or tasks that are
// already saved; batch references are rewritten to the new ids.
func (tm *taskManager) ImportTasks(tasks []models.Task) ([]models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tasks {
		if err := validateTask(tasks[i]); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}

	unlock, err := tm.store.Lock()
	if err != nil {
		return nil, fmt.Errorf("importing tasks: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("importing tasks: loading store: %w", err)
	}

	remap := make(map[string]string, len(tasks))
	assigned := make([]string, len(tasks))
	for i, t := range tasks {
		assigned[i] = tm.store.AllocateID()
		if t.ID != "" {
			remap[t.ID] = assigned[i]
		}
	}

	now := tm.now().UTC()
	out := make([]models.Task, 0, len(tasks))
	for i, t := range tasks {
		t.ID = assigned[i]
		t.Created = now
		deps := make([]string, 0, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if mapped, ok := remap[dep]; ok {
				dep = mapped
			} else if _, err := tm.store.GetTask(dep); err != nil {
				return nil, validationErrorf("dependencies", "task %q depends on unknown task %q", tasks[i].Title, dep)
			}
			if dep == t.ID {
				return nil, validationErrorf("dependencies", "task %q cannot depend on itself", t.Title)
			}
			deps = appendUnique(deps, dep)
		}
		t.Dependencies = deps
		out = append(out, t)
	}

	for _, t := range out {
		if err := tm.store.AddTask(t); err != nil {
			return nil, fmt.Errorf("importing tasks: %w", err)
		}
	}
	if err := tm.store.Save(); err != nil {
		return nil, fmt.Errorf("importing tasks: saving store: %w", err)
	}

	for _, t := range out {
		logEvent(tm.events, "task.created", map[string]any{"task_id": t.ID, "title": t.Title})
	}
	return out, nil
}

func (tm *taskManager) GetTask(taskID string) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("getting task: loading store: %w", err)
	}
	return tm.store.GetTask(taskID)
}

func (tm *taskManager) ListTasks(query TaskQuery) ([]models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("listing tasks: loading store: %w", err)
	}
	return tm.store.ListTasks(query)
}

func (tm *taskManager) UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	unlock, err := tm.store.Lock()
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("updating task: loading store: %w", err)
	}
	existing, err := tm.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := validateTask(patch.Apply(*existing)); err != nil {
		return nil, err
	}
	if patch.Dependencies != nil {
		deps := make([]string, 0, len(*patch.Dependencies))
		for _, dep := range *patch.Dependencies {
			if dep == taskID {
				return nil, validationErrorf("dependencies", "task %s cannot depend on itself", taskID)
			}
			if _, err := tm.store.GetTask(dep); err != nil {
				return nil, validationErrorf("dependencies", "task %s depends on unknown task %q", taskID, dep)
			}
			deps = appendUnique(deps, dep)
		}
		patch.Dependencies = &deps
	}

	updated, err := tm.store.UpdateTask(taskID, patch)
	if err != nil {
		return nil, err
	}
	if err := tm.store.Save(); err != nil {
		return nil, fmt.Errorf("updating task: saving store: %w", err)
	}
	logEvent(tm.events, "task.updated", map[string]any{"task_id": taskID})
	return updated, nil
}

func (tm *taskManager) DeleteTask(taskID string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	unlock, err := tm.store.Lock()
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := tm.store.Load(); err != nil {
		return fmt.Errorf("deleting task: loading store: %w", err)
	}
	if err := tm.store.RemoveTask(taskID); err != nil {
		return err
	}
	if err := tm.store.Save(); err != nil {
		return fmt.Errorf("deleting task: saving store: %w", err)
	}
	logEvent(tm.events, "task.deleted", map[string]any{"task_id": taskID})
	return nil
}

// validateTask applies the field rules for saved tasks.
func validateTask(t models.Task) error {
	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		return validationErrorf("title", "title is required")
	case len([]rune(title)) > MaxTitleLength:
		return validationErrorf("title", "title must be at most %d characters", MaxTitleLength)
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < minEstimatedHours {
		return validationErrorf("estimated_hours", "estimated hours must be at least %.1f", minEstimatedHours)
	}
	if t.Importance != nil && (*t.Importance < 1 || *t.Importance > 10) {
		return validationErrorf("importance", "importance must be between 1 and 10, got %d", *t.Importance)
	}
	if t.Role != "" {
		if _, err := NormalizeRole(models.Role(t.Role)); err != nil {
			return err
		}
	}
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
