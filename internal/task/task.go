// Package task defines the task model the scheduler consumes and the
// Task Sources that provide it. Sources are read-only: the engine never
// writes task state back.
package task

import (
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
)

// Statuses a task can be in.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusBlocked    = "blocked"
)

// Priorities a task can carry. Critical outranks nothing yet: it shares
// high's default weight and exists for forward compatibility.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// DefaultEstimatedHours is assumed when a task has no positive estimate.
const DefaultEstimatedHours = 4

// Statuses and Priorities list the allowed values, used for validation.
var (
	Statuses   = []string{StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
)

// Task is one unit of work as reported by a Task Source.
type Task struct {
	ID             string     `yaml:"id" json:"id"`
	Name           string     `yaml:"name" json:"name"`
	Status         string     `yaml:"status" json:"status"`
	Priority       string     `yaml:"priority" json:"priority"`
	DueDate        *date.Date `yaml:"due,omitempty" json:"dueDate,omitempty"`
	EstimatedHours float64    `yaml:"estimated_hours,omitempty" json:"estimatedHours,omitempty"`
	Dependencies   []string   `yaml:"depends_on,omitempty" json:"dependencies,omitempty"`
	AssignedTo     string     `yaml:"assigned_to,omitempty" json:"assignedTo,omitempty"`
	CompletedDate  *date.Date `yaml:"completed,omitempty" json:"completedDate,omitempty"`

	// Body is the markdown content below the frontmatter (not in YAML).
	Body string `yaml:"-" json:"-"`

	// File is the path the task was read from, when file-backed.
	File string `yaml:"-" json:"-"`
}

// Completed reports whether the task is done.
func (t *Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Hours returns the effective effort estimate. Missing or non-positive
// estimates fall back to DefaultEstimatedHours.
func (t *Task) Hours() float64 {
	if t.EstimatedHours <= 0 {
		return DefaultEstimatedHours
	}
	return t.EstimatedHours
}

// ByID indexes tasks by id. Later duplicates win, matching the
// last-write semantics of the sources.
func ByID(tasks []Task) map[string]Task {
	m := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}
