package schedule

import (
	"encoding/json"
	"testing"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

func testReconciler() *Reconciler {
	return NewReconciler(testBuilder())
}

func buildFrom(t *testing.T, tasks []task.Task) *Schedule {
	t.Helper()
	sched, warns := testBuilder().Build(tasks, testToday)
	if len(warns) != 0 {
		t.Fatalf("unexpected build warnings: %v", warns)
	}
	return sched
}

func TestReconcileNoDriftIsNoOp(t *testing.T) {
	tasks := []task.Task{
		mkTask("a", task.PriorityHigh, 6, ""),
		mkTask("b", task.PriorityMedium, 6, "", "a"),
	}
	sched := buildFrom(t, tasks)

	before, err := json.Marshal(sched.Tasks)
	if err != nil {
		t.Fatal(err)
	}

	res := testReconciler().Reconcile(sched, tasks, testToday)
	if res.Changed() || res.Rebuilt {
		t.Fatalf("no-drift pass reported changes: %+v", res)
	}

	after, err := json.Marshal(sched.Tasks)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("no-drift pass mutated the schedule:\n%s\n%s", before, after)
	}
}

func TestReconcileAddsNewTask(t *testing.T) {
	tasks := []task.Task{mkTask("a", task.PriorityMedium, 6, "")}
	sched := buildFrom(t, tasks)

	live := append(tasks, mkTask("b", task.PriorityHigh, 6, "", "a"))
	res := testReconciler().Reconcile(sched, live, testToday)

	if len(res.Added) != 1 || res.Added[0] != "b" {
		t.Fatalf("added = %v, want [b]", res.Added)
	}
	if !res.Rebuilt {
		t.Error("drift did not trigger a rebuild")
	}
	b := find(t, sched, "b")
	if !b.Scheduled() {
		t.Error("inserted task was not scheduled by the rebuild")
	}
	a := find(t, sched, "a")
	if !b.StartDate.After(a.EndDate.Time) {
		t.Errorf("new task starts %s, not after its dependency ends %s", b.StartDate, a.EndDate)
	}
}

func TestReconcileRemovesMissingTask(t *testing.T) {
	tasks := []task.Task{
		mkTask("a", task.PriorityMedium, 6, ""),
		mkTask("b", task.PriorityMedium, 6, ""),
	}
	sched := buildFrom(t, tasks)

	res := testReconciler().Reconcile(sched, tasks[:1], testToday)

	if len(res.Removed) != 1 || res.Removed[0] != "b" {
		t.Fatalf("removed = %v, want [b]", res.Removed)
	}
	if sched.Find("b") != nil {
		t.Error("removed task still present in the schedule")
	}
	if sched.Find("a") == nil {
		t.Error("surviving task dropped")
	}
}

func TestReconcileCopiesSourceFields(t *testing.T) {
	tasks := []task.Task{mkTask("a", task.PriorityLow, 6, "")}
	sched := buildFrom(t, tasks)

	due := date.New(2026, 9, 15)
	live := []task.Task{{
		ID:             "a",
		Name:           "Renamed",
		Status:         task.StatusInProgress,
		Priority:       task.PriorityCritical,
		DueDate:        &due,
		EstimatedHours: 13,
		AssignedTo:     "dana",
	}}

	res := testReconciler().Reconcile(sched, live, testToday)
	if len(res.Updated) != 1 || res.Updated[0] != "a" {
		t.Fatalf("updated = %v, want [a]", res.Updated)
	}

	a := find(t, sched, "a")
	if a.Name != "Renamed" || a.Status != task.StatusInProgress ||
		a.Priority != task.PriorityCritical || a.AssignedTo != "dana" {
		t.Errorf("source fields not copied forward: %+v", a)
	}
	if a.DueDate == nil || a.DueDate.String() != "2026-09-15" {
		t.Errorf("dueDate = %v, want 2026-09-15", a.DueDate)
	}
	// ceil(13/6) = 3 days after the rebuild.
	if got := a.StartDate.DaysUntil(*a.EndDate) + 1; got != 3 {
		t.Errorf("rebuilt duration = %d days, want 3", got)
	}
}

func TestReconcileStampsCompletionOnTransition(t *testing.T) {
	tasks := []task.Task{mkTask("a", task.PriorityMedium, 6, "")}
	sched := buildFrom(t, tasks)

	live := []task.Task{{ID: "a", Name: "Task a", Status: task.StatusCompleted, Priority: task.PriorityMedium, EstimatedHours: 6}}
	testReconciler().Reconcile(sched, live, testToday)

	a := find(t, sched, "a")
	if a.CompletedDate == nil || !a.CompletedDate.Equal(testToday.Time) {
		t.Errorf("completedDate = %v, want today", a.CompletedDate)
	}
}

func TestReconcileSourceCompletionDateWins(t *testing.T) {
	tasks := []task.Task{mkTask("a", task.PriorityMedium, 6, "")}
	sched := buildFrom(t, tasks)

	done := date.New(2026, 8, 1)
	live := []task.Task{{ID: "a", Name: "Task a", Status: task.StatusCompleted, Priority: task.PriorityMedium, EstimatedHours: 6, CompletedDate: &done}}
	testReconciler().Reconcile(sched, live, testToday)

	a := find(t, sched, "a")
	if a.CompletedDate == nil || a.CompletedDate.String() != "2026-08-01" {
		t.Errorf("completedDate = %v, want the source's 2026-08-01", a.CompletedDate)
	}
}

func TestReconcileReopenClearsStaleStamp(t *testing.T) {
	done := date.New(2026, 8, 10)
	tasks := []task.Task{{ID: "a", Name: "Task a", Status: task.StatusCompleted, Priority: task.PriorityMedium, EstimatedHours: 6, CompletedDate: &done}}
	sched := buildFrom(t, tasks)

	live := []task.Task{mkTask("a", task.PriorityMedium, 6, "")}
	testReconciler().Reconcile(sched, live, testToday)

	a := find(t, sched, "a")
	if a.Status != task.StatusTodo {
		t.Errorf("status = %s, want todo", a.Status)
	}
	if a.CompletedDate != nil {
		t.Errorf("completedDate = %v, want cleared on reopen", a.CompletedDate)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	tasks := []task.Task{
		mkTask("a", task.PriorityMedium, 6, ""),
		mkTask("b", task.PriorityMedium, 6, "", "a"),
	}
	sched := buildFrom(t, tasks)

	live := append(tasks, mkTask("c", task.PriorityHigh, 6, ""))
	rec := testReconciler()

	first := rec.Reconcile(sched, live, testToday)
	if !first.Changed() {
		t.Fatal("first pass saw no drift")
	}
	snap, err := json.Marshal(sched.Tasks)
	if err != nil {
		t.Fatal(err)
	}

	second := rec.Reconcile(sched, live, testToday)
	if second.Changed() || second.Rebuilt {
		t.Fatalf("second pass against the same source changed things: %+v", second)
	}
	again, err := json.Marshal(sched.Tasks)
	if err != nil {
		t.Fatal(err)
	}
	if string(snap) != string(again) {
		t.Errorf("second pass mutated the schedule:\n%s\n%s", snap, again)
	}
}

func TestReconcileEmptySourceDropsEverything(t *testing.T) {
	tasks := []task.Task{
		mkTask("a", task.PriorityMedium, 6, ""),
		mkTask("b", task.PriorityMedium, 6, ""),
	}
	sched := buildFrom(t, tasks)

	res := testReconciler().Reconcile(sched, nil, testToday)

	if len(res.Removed) != 2 {
		t.Errorf("removed = %v, want both ids", res.Removed)
	}
	if len(sched.Tasks) != 0 {
		t.Errorf("schedule still holds %d tasks", len(sched.Tasks))
	}
}

func TestReconcileDependencyChangeRebuildsDates(t *testing.T) {
	tasks := []task.Task{
		mkTask("a", task.PriorityMedium, 6, ""),
		mkTask("b", task.PriorityMedium, 6, ""),
	}
	sched := buildFrom(t, tasks)

	live := []task.Task{
		mkTask("a", task.PriorityMedium, 6, ""),
		mkTask("b", task.PriorityMedium, 6, "", "a"),
	}
	res := testReconciler().Reconcile(sched, live, testToday)

	if len(res.Updated) != 1 || res.Updated[0] != "b" {
		t.Fatalf("updated = %v, want [b]", res.Updated)
	}
	a := find(t, sched, "a")
	b := find(t, sched, "b")
	if !b.StartDate.After(a.EndDate.Time) {
		t.Errorf("dependent starts %s, not after %s", b.StartDate, a.EndDate)
	}
}
