package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

var testToday = date.New(2026, 8, 24)

// failSource always errors, standing in for an unreachable backend.
type failSource struct{}

func (failSource) List(_ context.Context) ([]task.Task, error) {
	return nil, errors.New("connection refused")
}

func testMonitor(t *testing.T, source task.Source, onCycle func(Cycle)) (*Monitor, string) {
	t.Helper()
	cfg := config.NewDefault()
	cfg.SetDir(t.TempDir())
	snapshot := filepath.Join(cfg.Dir(), "schedule.json")
	m := New(cfg, source, schedule.NewStore(snapshot), onCycle)
	m.today = func() date.Date { return testToday }
	return m, snapshot
}

func TestRunOnceBuildsAndPersists(t *testing.T) {
	due := testToday.AddDays(1)
	source := task.NewStaticSource([]task.Task{
		{ID: "a", Name: "Task a", Status: task.StatusTodo, Priority: task.PriorityHigh, DueDate: &due},
	})
	m, snapshot := testMonitor(t, source, nil)

	cycle := m.RunOnce(context.Background(), TriggerStart)
	if cycle.Err != nil {
		t.Fatalf("cycle error: %v", cycle.Err)
	}
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if len(cycle.Reminders) != 1 {
		t.Errorf("want 1 deadline reminder, got %+v", cycle.Reminders)
	}
}

func TestRunOnceUnchangedSourceIsNoOp(t *testing.T) {
	source := task.NewStaticSource([]task.Task{
		{ID: "a", Name: "Task a", Status: task.StatusTodo, Priority: task.PriorityMedium},
	})
	m, snapshot := testMonitor(t, source, nil)

	m.RunOnce(context.Background(), TriggerStart)
	before, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	cycle := m.RunOnce(context.Background(), TriggerTimer)
	if cycle.Result.Changed() {
		t.Errorf("unchanged source reported drift: %+v", cycle.Result)
	}

	after, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("re-reading snapshot: %v", err)
	}
	if string(before) != string(after) {
		t.Error("snapshot rewritten without drift")
	}
}

func TestRunOnceAppliesDrift(t *testing.T) {
	source := task.NewStaticSource([]task.Task{
		{ID: "a", Name: "Task a", Status: task.StatusTodo, Priority: task.PriorityMedium},
	})
	m, _ := testMonitor(t, source, nil)
	m.RunOnce(context.Background(), TriggerStart)

	source.Tasks = append(source.Tasks, task.Task{
		ID: "b", Name: "Task b", Status: task.StatusTodo, Priority: task.PriorityLow,
	})

	cycle := m.RunOnce(context.Background(), TriggerTimer)
	if len(cycle.Result.Added) != 1 || cycle.Result.Added[0] != "b" {
		t.Errorf("Added = %v, want [b]", cycle.Result.Added)
	}
	if !cycle.Result.Rebuilt {
		t.Error("drift did not trigger a rebuild")
	}
}

func TestRunOnceSourceFailureSkipsReconcile(t *testing.T) {
	source := task.NewStaticSource([]task.Task{
		{ID: "a", Name: "Task a", Status: task.StatusTodo, Priority: task.PriorityMedium},
	})
	m, snapshot := testMonitor(t, source, nil)
	m.RunOnce(context.Background(), TriggerStart)

	m.source = failSource{}
	cycle := m.RunOnce(context.Background(), TriggerTimer)
	if cycle.Err != nil {
		t.Fatalf("source failure must be recoverable, got error: %v", cycle.Err)
	}
	if cycle.Result.Changed() {
		t.Errorf("source failure mutated the schedule: %+v", cycle.Result)
	}
	if len(cycle.Warnings) == 0 {
		t.Error("source failure produced no warning")
	}

	// The persisted schedule still has the task.
	data, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if !containsTask(t, data, "a") {
		t.Error("task dropped from snapshot after source failure")
	}
}

func containsTask(t *testing.T, snapshot []byte, id string) bool {
	t.Helper()
	var sched schedule.Schedule
	if err := json.Unmarshal(snapshot, &sched); err != nil {
		t.Fatalf("parsing snapshot: %v", err)
	}
	return sched.Find(id) != nil
}

func TestRunImmediateCycleThenCancel(t *testing.T) {
	source := task.NewStaticSource(nil)
	cycles := make(chan Cycle, 8)
	m, _ := testMonitor(t, source, func(c Cycle) { cycles <- c })
	m.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, nil)
		close(done)
	}()

	select {
	case c := <-cycles:
		if c.Trigger != TriggerStart {
			t.Errorf("first trigger = %q, want %q", c.Trigger, TriggerStart)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no immediate cycle")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunWatchEventTriggersCycle(t *testing.T) {
	source := task.NewStaticSource(nil)
	cycles := make(chan Cycle, 8)
	m, _ := testMonitor(t, source, func(c Cycle) { cycles <- c })
	m.Interval = time.Hour

	events := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, events)

	<-cycles // immediate cycle
	events <- struct{}{}

	select {
	case c := <-cycles:
		if c.Trigger != TriggerWatch {
			t.Errorf("trigger = %q, want %q", c.Trigger, TriggerWatch)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch event produced no cycle")
	}
}

func TestRunIDIsStable(t *testing.T) {
	m, _ := testMonitor(t, task.NewStaticSource(nil), nil)
	if m.RunID() == "" {
		t.Fatal("empty run id")
	}
	if m.RunID() != m.RunID() {
		t.Error("run id changed between calls")
	}
}
