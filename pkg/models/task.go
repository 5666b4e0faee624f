package models

import "time"

// Role identifies who the ranking is tuned for. It only changes weights for
// the smart-balance strategy family.
type Role string

const (
	RoleDeveloper      Role = "developer"
	RoleProgramManager Role = "program_manager"
)

// DisplayName returns the human-readable role name used in explanations.
func (r Role) DisplayName() string {
	if r == RoleProgramManager {
		return "Program Manager"
	}
	return "Developer"
}

// ValidRoles lists the roles accepted at the system boundary.
func ValidRoles() []Role {
	return []Role{RoleDeveloper, RoleProgramManager}
}

// Task is a unit of work submitted for prioritization. The engine treats it
// as read-only. Optional fields are nil when the submitter left them out.
type Task struct {
	ID             string     `yaml:"id"`
	Title          string     `yaml:"title"`
	Due            *time.Time `yaml:"due,omitempty"`
	EstimatedHours *float64   `yaml:"estimated_hours,omitempty"`
	Importance     *int       `yaml:"importance,omitempty"`
	Dependencies   []string   `yaml:"dependencies,omitempty"`
	Role           string     `yaml:"role,omitempty"`
	Notes          string     `yaml:"notes,omitempty"`
	Created        time.Time  `yaml:"created"`
}

// DependsOn reports whether id appears in the task's dependency list.
func (t Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Float64 returns a pointer to v. It keeps optional-field literals short.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Time returns a pointer to v.
func Time(v time.Time) *time.Time { return &v }

// TaskPatch is a partial update. Nil fields are left unchanged; the Clear
// flags remove an optional value.
type TaskPatch struct {
	Title           *string
	Due             *time.Time
	ClearDue        bool
	EstimatedHours  *float64
	ClearHours      bool
	Importance      *int
	ClearImportance bool
	Dependencies    *[]string
	Role            *string
	Notes           *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p == (TaskPatch{})
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.ClearDue:
		t.Due = nil
	case p.Due != nil:
		due := *p.Due
		t.Due = &due
	}
	switch {
	case p.ClearHours:
		t.EstimatedHours = nil
	case p.EstimatedHours != nil:
		t.EstimatedHours = Float64(*p.EstimatedHours)
	}
	switch {
	case p.ClearImportance:
		t.Importance = nil
	case p.Importance != nil:
		t.Importance = Int(*p.Importance)
	}
	if p.Dependencies != nil {
		t.Dependencies = append([]string(nil), (*p.Dependencies)...)
	}
	if p.Role != nil {
		t.Role = *p.Role
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}
