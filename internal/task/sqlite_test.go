package task

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLiteSource {
	t.Helper()
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func seedTask(t *testing.T, src *SQLiteSource, id, name, status, priority, due, deps string, hours float64) {
	t.Helper()
	_, err := src.db.Exec(`
		INSERT INTO tasks (id, name, status, priority, due_date, estimated_hours, depends_on)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, NULLIF(?, ''))`,
		id, name, status, priority, due, hours, deps)
	if err != nil {
		t.Fatalf("seeding task %s: %v", id, err)
	}
}

func TestSQLiteSourceList(t *testing.T) {
	src := openTestDB(t)
	seedTask(t, src, "research", "Research", "completed", "high", "2026-08-20", "", 8)
	seedTask(t, src, "build", "Build", "todo", "medium", "", `["research"]`, 12)

	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("List returned %d tasks, want 2", len(tasks))
	}

	// Ordered by id: build before research.
	build := tasks[0]
	if build.ID != "build" {
		t.Fatalf("first task = %s, want build", build.ID)
	}
	if build.DueDate != nil {
		t.Errorf("build.DueDate = %v, want nil", build.DueDate)
	}
	if len(build.Dependencies) != 1 || build.Dependencies[0] != "research" {
		t.Errorf("build.Dependencies = %v", build.Dependencies)
	}

	research := tasks[1]
	if research.DueDate == nil || research.DueDate.String() != "2026-08-20" {
		t.Errorf("research.DueDate = %v, want 2026-08-20", research.DueDate)
	}
	if research.EstimatedHours != 8 {
		t.Errorf("research.EstimatedHours = %v, want 8", research.EstimatedHours)
	}
}

func TestSQLiteSourceEmpty(t *testing.T) {
	src := openTestDB(t)
	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("List = %v, want empty", tasks)
	}
}
