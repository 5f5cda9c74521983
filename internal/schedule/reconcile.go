package schedule

import (
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// Result summarizes one reconciliation pass.
type Result struct {
	Added    []string  `json:"added,omitempty"`
	Removed  []string  `json:"removed,omitempty"`
	Updated  []string  `json:"updated,omitempty"`
	Rebuilt  bool      `json:"rebuilt"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Changed reports whether the pass found any drift.
func (r *Result) Changed() bool {
	return len(r.Added)+len(r.Removed)+len(r.Updated) > 0
}

// Reconciler re-synchronizes a persisted schedule against the live
// task source. It is the only component that copies source-owned
// fields (status, priority, dependencies and the rest) into the
// schedule; everyone else treats the schedule as read-only input.
type Reconciler struct {
	Builder *Builder
}

// NewReconciler creates a Reconciler that regenerates through b.
func NewReconciler(b *Builder) *Reconciler {
	return &Reconciler{Builder: b}
}

// Reconcile applies source drift to sched and, if anything changed,
// rebuilds every computed date from scratch. With no drift it leaves
// sched untouched, so it is safe to call on every monitor tick.
//
// Drift handling: ids on both sides get their source-owned fields
// copied forward (stamping a completion date on the transition to
// completed when neither side has one); ids only in the source are
// inserted as unscheduled shells; ids only in the schedule are hard
// deleted.
func (r *Reconciler) Reconcile(sched *Schedule, live []task.Task, today date.Date) Result {
	var res Result
	liveByID := task.ByID(live)

	next := make([]ScheduledTask, 0, len(live))
	present := make(map[string]bool, len(sched.Tasks))
	for _, st := range sched.Tasks {
		lt, ok := liveByID[st.ID]
		if !ok {
			res.Removed = append(res.Removed, st.ID)
			continue
		}
		present[st.ID] = true
		if syncFields(&st, lt, today) {
			res.Updated = append(res.Updated, st.ID)
		}
		next = append(next, st)
	}

	for _, lt := range live {
		if present[lt.ID] {
			continue
		}
		present[lt.ID] = true
		next = append(next, Shell(lt))
		res.Added = append(res.Added, lt.ID)
	}

	if !res.Changed() {
		return res
	}

	sched.Tasks = next
	rebuilt, warns := r.Builder.Build(sched.AsTasks(), today)
	sched.Tasks = rebuilt.Tasks
	res.Rebuilt = true
	res.Warnings = warns
	return res
}

// syncFields copies the source-owned fields of lt onto st, reporting
// whether anything differed. Completion dates are special: a source
// date always wins, a transition to completed without one stamps
// today, and reopening clears the stale stamp.
func syncFields(st *ScheduledTask, lt task.Task, today date.Date) bool {
	changed := false
	wasCompleted := st.Status == task.StatusCompleted

	if st.Name != lt.Name {
		st.Name = lt.Name
		changed = true
	}
	if st.Status != lt.Status {
		st.Status = lt.Status
		changed = true
	}
	if st.Priority != lt.Priority {
		st.Priority = lt.Priority
		changed = true
	}
	if !datesEqual(st.DueDate, lt.DueDate) {
		st.DueDate = lt.DueDate
		changed = true
	}
	if st.EstimatedHours != lt.EstimatedHours {
		st.EstimatedHours = lt.EstimatedHours
		changed = true
	}
	if !stringsEqual(st.Dependencies, lt.Dependencies) {
		st.Dependencies = append([]string(nil), lt.Dependencies...)
		changed = true
	}
	if st.AssignedTo != lt.AssignedTo {
		st.AssignedTo = lt.AssignedTo
		changed = true
	}
	if lt.CompletedDate != nil && !datesEqual(st.CompletedDate, lt.CompletedDate) {
		st.CompletedDate = lt.CompletedDate
		changed = true
	}

	nowCompleted := st.Status == task.StatusCompleted
	if !wasCompleted && nowCompleted && st.CompletedDate == nil {
		d := today
		st.CompletedDate = &d
		changed = true
	}
	if wasCompleted && !nowCompleted && lt.CompletedDate == nil && st.CompletedDate != nil {
		st.CompletedDate = nil
		changed = true
	}

	return changed
}

func datesEqual(a, b *date.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b.Time)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
