// Package api is the wire contract shared by the HTTP server, the MCP server
// and the CLI: it decodes submitted task sets, validates them field by field,
// and renders analysis outcomes as JSON documents.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"gopkg.in/yaml.v3"
)

// Input limits.
const (
	MaxTitleLength    = 200
	MinEstimatedHours = 0.1
	DefaultDueTime    = "23:59"

	dateLayout = "2006-01-02"
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

// FlexibleID accepts an identifier written as a JSON/YAML string or number.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id *FlexibleID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a string or a number", node.Line)
	}
	*id = FlexibleID(strings.TrimSpace(node.Value))
	return nil
}

// TaskInput is one submitted task as it arrives over the wire.
type TaskInput struct {
	ID             FlexibleID   `json:"id,omitempty" yaml:"id,omitempty"`
	Title          string       `json:"title" yaml:"title"`
	DueDate        string       `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	DueTime        string       `json:"due_time,omitempty" yaml:"due_time,omitempty"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	Importance     *int         `json:"importance,omitempty" yaml:"importance,omitempty"`
	Dependencies   []FlexibleID `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Role           string       `json:"role,omitempty" yaml:"role,omitempty"`
	Notes          string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// AnalyzeRequest is the body of an analyze or suggest call.
type AnalyzeRequest struct {
	Tasks         []TaskInput            `json:"tasks" yaml:"tasks"`
	Strategy      string                 `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Role          string                 `json:"role,omitempty" yaml:"role,omitempty"`
	CustomWeights *models.WeightOverride `json:"custom_weights,omitempty" yaml:"custom_weights,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every validation failure in a submission.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) add(field, format string, args ...any) {
	*e = append(*e, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e FieldErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Format is a task-file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks an encoding by file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DecodeAnalyzeRequest decodes a JSON submission. Three shapes are accepted:
// an object with a "tasks" array, a bare array of tasks, or a single task
// object.
func DecodeAnalyzeRequest(data []byte) (*AnalyzeRequest, error) {
	return decodeRequest(data, FormatJSON)
}

// DecodeTaskFile decodes a task file in the given format. It accepts the same
// shapes as DecodeAnalyzeRequest; strategy fields in the file are kept.
func DecodeTaskFile(data []byte, format Format) (*AnalyzeRequest, error) {
	return decodeRequest(data, format)
}

func decodeRequest(data []byte, format Format) (*AnalyzeRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, FieldErrors{{Field: "tasks", Message: "Tasks list is required"}}
	}

	if format == FormatYAML {
		return decodeYAMLRequest(data)
	}

	switch data[0] {
	case '[':
		var tasks []TaskInput
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, decodeError(err)
		}
		return &AnalyzeRequest{Tasks: tasks}, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, decodeError(err)
		}
		if _, ok := probe["tasks"]; !ok {
			var task TaskInput
			if err := json.Unmarshal(data, &task); err != nil {
				return nil, decodeError(err)
			}
			return &AnalyzeRequest{Tasks: []TaskInput{task}}, nil
		}
		var req AnalyzeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, decodeError(err)
		}
		return &req, nil
	}
	return nil, FieldErrors{{Field: "body", Message: "Request body must be a JSON object or array"}}
}

func decodeYAMLRequest(data []byte) (*AnalyzeRequest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, FieldErrors{{Field: "body", Message: err.Error()}}
	}
	if len(root.Content) == 0 {
		return nil, FieldErrors{{Field: "tasks", Message: "Tasks list is required"}}
	}
	doc := root.Content[0]

	switch doc.Kind {
	case yaml.SequenceNode:
		var tasks []TaskInput
		if err := doc.Decode(&tasks); err != nil {
			return nil, FieldErrors{{Field: "tasks", Message: err.Error()}}
		}
		return &AnalyzeRequest{Tasks: tasks}, nil
	case yaml.MappingNode:
		if !yamlHasKey(doc, "tasks") {
			var task TaskInput
			if err := doc.Decode(&task); err != nil {
				return nil, FieldErrors{{Field: "body", Message: err.Error()}}
			}
			return &AnalyzeRequest{Tasks: []TaskInput{task}}, nil
		}
		var req AnalyzeRequest
		if err := doc.Decode(&req); err != nil {
			return nil, FieldErrors{{Field: "body", Message: err.Error()}}
		}
		return &req, nil
	}
	return nil, FieldErrors{{Field: "body", Message: "task file must hold a mapping or a list"}}
}

func yamlHasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

// decodeError turns a JSON decoding failure into a field error where the
// failing field is known.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return FieldErrors{{Field: typeErr.Field, Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return FieldErrors{{Field: "body", Message: "Request body must be valid JSON"}}
	}
	return FieldErrors{{Field: "body", Message: err.Error()}}
}

// Converter turns validated wire input into engine values. Due dates are
// interpreted in Location.
type Converter struct {
	Location       *time.Location
	DefaultDueTime string
}

// NewConverter creates a Converter. An empty defaultDueTime means 23:59; a nil
// loc means UTC.
func NewConverter(loc *time.Location, defaultDueTime string) Converter {
	if loc == nil {
		loc = time.UTC
	}
	if defaultDueTime == "" {
		defaultDueTime = DefaultDueTime
	}
	return Converter{Location: loc, DefaultDueTime: defaultDueTime}
}

// Request validates a whole submission. Any failures come back together as
// FieldErrors; nothing partial is returned.
func (c Converter) Request(r *AnalyzeRequest) ([]models.Task, models.AnalysisRequest, error) {
	var errs FieldErrors
	if r == nil || len(r.Tasks) == 0 {
		errs.add("tasks", "At least one task is required")
		return nil, models.AnalysisRequest{}, errs
	}

	tasks := c.tasks(r.Tasks, false, &errs)
	if r.Role != "" && !validRole(r.Role) {
		errs.add("role", "%q is not a valid choice", r.Role)
	}
	if err := errs.err(); err != nil {
		return nil, models.AnalysisRequest{}, err
	}

	return tasks, models.AnalysisRequest{
		Strategy: models.StrategyName(r.Strategy),
		Role:     models.Role(r.Role),
		Override: r.CustomWeights,
	}, nil
}

// Tasks validates a list of task inputs for analysis.
func (c Converter) Tasks(inputs []TaskInput) ([]models.Task, error) {
	var errs FieldErrors
	tasks := c.tasks(inputs, false, &errs)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// StoredTasks validates a batch submitted for the task store. Unlike analysis
// input, an importance outside 1..10 is rejected rather than clamped.
func (c Converter) StoredTasks(inputs []TaskInput) ([]models.Task, error) {
	var errs FieldErrors
	if len(inputs) == 0 {
		errs.add("tasks", "At least one task is required")
		return nil, errs
	}
	tasks := c.tasks(inputs, true, &errs)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c Converter) tasks(inputs []TaskInput, strict bool, errs *FieldErrors) []models.Task {
	tasks := make([]models.Task, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, in := range inputs {
		prefix := fmt.Sprintf("tasks[%d]", i)
		t := c.task(in, prefix, strict, errs)
		if t.ID == "" {
			t.ID = fmt.Sprintf("task_%d", i)
		}
		if first, dup := seen[t.ID]; dup {
			errs.add(prefix+".id", "duplicate id %q (also used by tasks[%d])", t.ID, first)
		} else {
			seen[t.ID] = i
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// Task validates a single input, as submitted for the task store.
func (c Converter) Task(in TaskInput) (models.Task, error) {
	var errs FieldErrors
	t := c.task(in, "", true, &errs)
	return t, errs.err()
}

func (c Converter) task(in TaskInput, prefix string, strict bool, errs *FieldErrors) models.Task {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	t := models.Task{
		ID:    string(in.ID),
		Title: strings.TrimSpace(in.Title),
		Role:  in.Role,
		Notes: in.Notes,
	}

	switch {
	case t.Title == "":
		errs.add(field("title"), "This field is required.")
	case len([]rune(t.Title)) > MaxTitleLength:
		errs.add(field("title"), "Ensure this field has no more than %d characters.", MaxTitleLength)
	}

	due, err := c.Due(in.DueDate, in.DueTime)
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			for _, e := range fe {
				errs.add(field(e.Field), "%s", e.Message)
			}
		}
	}
	t.Due = due

	if in.EstimatedHours != nil {
		if *in.EstimatedHours < MinEstimatedHours {
			errs.add(field("estimated_hours"), "Ensure this value is greater than or equal to %.1f.", MinEstimatedHours)
		} else {
			t.EstimatedHours = models.Float64(*in.EstimatedHours)
		}
	}

	if in.Importance != nil {
		switch {
		case !strict:
			t.Importance = models.Int(min(10, max(1, *in.Importance)))
		case *in.Importance < 1 || *in.Importance > 10:
			errs.add(field("importance"), "Ensure this value is between 1 and 10.")
		default:
			t.Importance = models.Int(*in.Importance)
		}
	}

	if in.Role != "" && !validRole(in.Role) {
		errs.add(field("role"), "%q is not a valid choice.", in.Role)
	}

	for _, dep := range in.Dependencies {
		if dep == "" {
			errs.add(field("dependencies"), "dependency ids must not be empty")
			continue
		}
		t.Dependencies = append(t.Dependencies, string(dep))
	}
	return t
}

// Due combines a YYYY-MM-DD date and an optional HH:MM[:SS] time into an
// instant in the converter's location. A missing date means no due date;
// the time is then ignored.
func (c Converter) Due(date, clock string) (*time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	var errs FieldErrors
	if clock != "" && !timePattern.MatchString(clock) {
		errs.add("due_time", "Time must be in HH:MM format (e.g., 14:30)")
	}
	if date == "" {
		return nil, errs.err()
	}

	day, err := time.ParseInLocation(dateLayout, date, c.Location)
	if err != nil {
		errs.add("due_date", "Date must be in YYYY-MM-DD format (e.g., 2024-12-31)")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if clock == "" {
		clock = c.DefaultDueTime
	}
	h, m, s := splitClock(clock)
	due := time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, c.Location)
	return &due, nil
}

// NormalizeTime strips seconds from an HH:MM:SS value.
func NormalizeTime(clock string) string {
	if len(clock) == len("15:04:05") {
		return clock[:5]
	}
	return clock
}

func splitClock(clock string) (h, m, s int) {
	parts := strings.Split(clock, ":")
	h, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		m, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		s, _ = strconv.Atoi(parts[2])
	}
	return h, m, s
}

func validRole(role string) bool {
	for _, r := range models.ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}

// DecodeTaskPatch decodes a partial update. Keys that are absent stay
// unchanged; an explicit null clears an optional field.
func (c Converter) DecodeTaskPatch(data []byte) (models.TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.TaskPatch{}, FieldErrors{{Field: "body", Message: "Request body must be a JSON object"}}
	}

	var (
		patch models.TaskPatch
		errs  FieldErrors
	)
	isNull := func(v json.RawMessage) bool { return bytes.Equal(bytes.TrimSpace(v), []byte("null")) }

	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil || strings.TrimSpace(title) == "" {
			errs.add("title", "This field may not be blank.")
		} else {
			title = strings.TrimSpace(title)
			patch.Title = &title
		}
	}

	dateRaw, hasDate := raw["due_date"]
	timeRaw, hasTime := raw["due_time"]
	switch {
	case hasDate && (isNull(dateRaw) || string(bytes.TrimSpace(dateRaw)) == `""`):
		patch.ClearDue = true
	case hasDate:
		var date, clock string
		if err := json.Unmarshal(dateRaw, &date); err != nil {
			errs.add("due_date", "Date must be in YYYY-MM-DD format (e.g., 2024-12-31)")
			break
		}
		if hasTime && !isNull(timeRaw) {
			if err := json.Unmarshal(timeRaw, &clock); err != nil {
				errs.add("due_time", "Time must be in HH:MM format (e.g., 14:30)")
				break
			}
		}
		due, err := c.Due(date, clock)
		var fe FieldErrors
		if errors.As(err, &fe) {
			errs = append(errs, fe...)
		} else if due != nil {
			patch.Due = due
		}
	case hasTime:
		errs.add("due_time", "due_time can only be changed together with due_date")
	}

	if v, ok := raw["estimated_hours"]; ok {
		if isNull(v) {
			patch.ClearHours = true
		} else {
			var h float64
			if err := json.Unmarshal(v, &h); err != nil || h < MinEstimatedHours {
				errs.add("estimated_hours", "Ensure this value is greater than or equal to %.1f.", MinEstimatedHours)
			} else {
				patch.EstimatedHours = &h
			}
		}
	}

	if v, ok := raw["importance"]; ok {
		if isNull(v) {
			patch.ClearImportance = true
		} else {
			var n int
			if err := json.Unmarshal(v, &n); err != nil || n < 1 || n > 10 {
				errs.add("importance", "Ensure this value is between 1 and 10.")
			} else {
				patch.Importance = &n
			}
		}
	}

	if v, ok := raw["dependencies"]; ok {
		var ids []FlexibleID
		if err := json.Unmarshal(v, &ids); err != nil {
			errs.add("dependencies", "Expected a list of task ids.")
		} else {
			deps := make([]string, 0, len(ids))
			for _, id := range ids {
				deps = append(deps, string(id))
			}
			patch.Dependencies = &deps
		}
	}

	if v, ok := raw["role"]; ok {
		var role string
		if err := json.Unmarshal(v, &role); err != nil || (role != "" && !validRole(role)) {
			errs.add("role", "%s is not a valid choice.", strings.TrimSpace(string(v)))
		} else {
			patch.Role = &role
		}
	}

	if v, ok := raw["notes"]; ok {
		var notes string
		if err := json.Unmarshal(v, &notes); err != nil && !isNull(v) {
			errs.add("notes", "Not a valid string.")
		} else {
			patch.Notes = &notes
		}
	}

	if err := errs.err(); err != nil {
		return models.TaskPatch{}, err
	}
	return patch, nil
}
