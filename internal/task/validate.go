package task

import (
	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
)

// Normalize fills the optional fields a loose source may omit: empty
// status becomes todo, empty priority becomes medium. Estimates are not
// touched here; Hours applies the default lazily.
func Normalize(t *Task) {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// Validate checks that a task is usable by the scheduler: non-empty id,
// known status, known priority. Dangling dependency ids are not checked
// here; the builder treats them as unconstrained and warns.
func Validate(t *Task) error {
	if t.ID == "" {
		return clierr.New(clierr.ValidationFailed, "task has no id")
	}
	if err := ValidateStatus(t.Status); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return clierr.Newf(clierr.ValidationFailed, "task %q depends on itself", t.ID).
				WithDetails(map[string]any{"id": t.ID})
		}
	}
	return nil
}

// ValidateStatus checks that a status is one of the allowed values.
func ValidateStatus(status string) error {
	for _, s := range Statuses {
		if s == status {
			return nil
		}
	}
	return clierr.Newf(clierr.ValidationFailed, "invalid status %q", status).
		WithDetails(map[string]any{
			"status":  status,
			"allowed": Statuses,
		})
}

// ValidatePriority checks that a priority is one of the allowed values.
func ValidatePriority(priority string) error {
	for _, p := range Priorities {
		if p == priority {
			return nil
		}
	}
	return clierr.Newf(clierr.ValidationFailed, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  Priorities,
		})
}
