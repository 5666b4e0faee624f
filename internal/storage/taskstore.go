package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrTaskNotFound is returned when a lookup names an id the store does not hold.
var ErrTaskNotFound = errors.New("task not found")

// TaskFilter narrows ListTasks. All set fields must match.
type TaskFilter struct {
	IDs  []string
	Role string
	// Query matches a case-insensitive substring of the title.
	Query string
}

// TaskFile is the on-disk layout of tasks.yaml.
type TaskFile struct {
	Version string                 `yaml:"version"`
	NextID  int                    `yaml:"next_id"`
	Tasks   map[string]models.Task `yaml:"tasks"`
}

// TaskStoreManager persists saved tasks in a single YAML file. Mutations are
// held in memory until Save.
type TaskStoreManager interface {
	AllocateID() string
	AddTask(task models.Task) error
	UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error)
	RemoveTask(taskID string) error
	GetTask(taskID string) (*models.Task, error)
	ListTasks(filter TaskFilter) ([]models.Task, error)
	Load() error
	Save() error
	Lock() (unlock func() error, err error)
}

type fileTaskStore struct {
	basePath string
	data     TaskFile
}

// NewTaskStoreManager creates a TaskStoreManager backed by tasks.yaml in
// basePath.
func NewTaskStoreManager(basePath string) TaskStoreManager {
	return &fileTaskStore{basePath: basePath, data: emptyTaskFile()}
}

func emptyTaskFile() TaskFile {
	return TaskFile{Version: "1.0", NextID: 1, Tasks: make(map[string]models.Task)}
}

func (s *fileTaskStore) filePath() string {
	return filepath.Join(s.basePath, "tasks.yaml")
}

// AllocateID hands out the next sequential id. Ids are never reused, even
// after the task holding one is removed.
func (s *fileTaskStore) AllocateID() string {
	for {
		id := strconv.Itoa(s.data.NextID)
		s.data.NextID++
		if _, taken := s.data.Tasks[id]; !taken {
			return id
		}
	}
}

func (s *fileTaskStore) AddTask(task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("adding task: ID must not be empty")
	}
	if _, exists := s.data.Tasks[task.ID]; exists {
		return fmt.Errorf("adding task: task %s already exists", task.ID)
	}
	s.data.Tasks[task.ID] = task
	if n, err := strconv.Atoi(task.ID); err == nil && n >= s.data.NextID {
		s.data.NextID = n + 1
	}
	return nil
}

func (s *fileTaskStore) UpdateTask(taskID string, patch models.TaskPatch) (*models.Task, error) {
	existing, exists := s.data.Tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("updating task %s: %w", taskID, ErrTaskNotFound)
	}
	updated := patch.Apply(existing)
	updated.ID = existing.ID
	updated.Created = existing.Created
	s.data.Tasks[taskID] = updated
	return &updated, nil
}

// RemoveTask deletes a task and drops it from every other task's dependency
// list.
func (s *fileTaskStore) RemoveTask(taskID string) error {
	if _, exists := s.data.Tasks[taskID]; !exists {
		return fmt.Errorf("removing task %s: %w", taskID, ErrTaskNotFound)
	}
	delete(s.data.Tasks, taskID)

	for id, t := range s.data.Tasks {
		if !t.DependsOn(taskID) {
			continue
		}
		kept := t.Dependencies[:0:0]
		for _, dep := range t.Dependencies {
			if dep != taskID {
				kept = append(kept, dep)
			}
		}
		t.Dependencies = kept
		s.data.Tasks[id] = t
	}
	return nil
}

func (s *fileTaskStore) GetTask(taskID string) (*models.Task, error) {
	t, exists := s.data.Tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return &t, nil
}

// ListTasks returns matching tasks newest first. Tasks created at the same
// instant fall back to descending numeric id.
func (s *fileTaskStore) ListTasks(filter TaskFilter) ([]models.Task, error) {
	var wanted map[string]struct{}
	if len(filter.IDs) > 0 {
		wanted = make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = struct{}{}
		}
	}
	query := strings.ToLower(filter.Query)

	tasks := make([]models.Task, 0, len(s.data.Tasks))
	for _, t := range s.data.Tasks {
		if wanted != nil {
			if _, ok := wanted[t.ID]; !ok {
				continue
			}
		}
		if filter.Role != "" && t.Role != filter.Role {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return idGreater(a.ID, b.ID)
	})
	return tasks, nil
}

// idGreater orders numeric ids numerically and everything else lexically.
func idGreater(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na > nb
	}
	return a > b
}

func (s *fileTaskStore) Load() error {
	raw, err := os.ReadFile(s.filePath())
	if errors.Is(err, os.ErrNotExist) {
		s.data = emptyTaskFile()
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return fmt.Errorf("loading tasks: parsing YAML: %w", err)
	}
	if tf.Tasks == nil {
		tf.Tasks = make(map[string]models.Task)
	}
	if tf.NextID < 1 {
		tf.NextID = 1
	}
	s.data = tf
	return nil
}

func (s *fileTaskStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving tasks: creating directory: %w", err)
	}
	raw, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("saving tasks: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), raw, 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	return nil
}
