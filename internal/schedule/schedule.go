// Package schedule turns a flat task set into a calendar-anchored plan
// and keeps the persisted plan in step with the task source. The
// builder derives start and end dates, the reconciler applies source
// drift, and the store moves snapshots to and from disk.
package schedule

import (
	"time"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// ScheduledTask is a task annotated with computed dates. StartDate and
// EndDate stay null until the builder assigns a slot; once assigned,
// StartDate <= EndDate and StartDate falls strictly after the EndDate
// of every incomplete dependency.
type ScheduledTask struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *date.Date `json:"dueDate,omitempty"`
	EstimatedHours float64    `json:"estimatedHours"`
	Dependencies   []string   `json:"dependencies,omitempty"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	CompletedDate  *date.Date `json:"completedDate,omitempty"`
	StartDate      *date.Date `json:"startDate"`
	EndDate        *date.Date `json:"endDate"`
	BlockedBy      []string   `json:"blockedBy,omitempty"`
}

// Scheduled reports whether the task has been assigned a slot.
func (st *ScheduledTask) Scheduled() bool {
	return st.StartDate != nil
}

// Completed reports whether the task is done.
func (st *ScheduledTask) Completed() bool {
	return st.Status == task.StatusCompleted
}

// AsTask strips the computed fields back off, returning the task as a
// source would report it. The preserved CompletedDate rides along so a
// rebuild keeps historical stamps.
func (st *ScheduledTask) AsTask() task.Task {
	return task.Task{
		ID:             st.ID,
		Name:           st.Name,
		Status:         st.Status,
		Priority:       st.Priority,
		DueDate:        st.DueDate,
		EstimatedHours: st.EstimatedHours,
		Dependencies:   append([]string(nil), st.Dependencies...),
		AssignedTo:     st.AssignedTo,
		CompletedDate:  st.CompletedDate,
	}
}

// Shell wraps a source task in an unscheduled ScheduledTask: null
// dates, empty blockedBy. The reconciler inserts shells for ids that
// appear in the source but not in the schedule.
func Shell(t task.Task) ScheduledTask {
	return ScheduledTask{
		ID:             t.ID,
		Name:           t.Name,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		Dependencies:   append([]string(nil), t.Dependencies...),
		AssignedTo:     t.AssignedTo,
		CompletedDate:  t.CompletedDate,
	}
}

// Schedule is the persisted plan: every task with its computed dates,
// plus the time of the last mutation.
type Schedule struct {
	Tasks       []ScheduledTask `json:"tasks"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Find returns the task with the given id, or nil.
func (s *Schedule) Find(id string) *ScheduledTask {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// Remove deletes the task with the given id, reporting whether it was
// present.
func (s *Schedule) Remove(id string) bool {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// AsTasks converts the whole schedule back to source-shaped tasks,
// the input the builder regenerates from.
func (s *Schedule) AsTasks() []task.Task {
	out := make([]task.Task, 0, len(s.Tasks))
	for i := range s.Tasks {
		out = append(out, s.Tasks[i].AsTask())
	}
	return out
}

// NamesByID maps task ids to display names, for blocker lookups.
func (s *Schedule) NamesByID() map[string]string {
	m := make(map[string]string, len(s.Tasks))
	for i := range s.Tasks {
		m[s.Tasks[i].ID] = s.Tasks[i].Name
	}
	return m
}
