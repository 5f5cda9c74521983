package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTaskFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDirSourceListsValidTasks(t *testing.T) {
	dir := t.TempDir()
	writeTaskFile(t, dir, "research.md",
		"---\nid: research\nname: Research\nstatus: completed\npriority: high\ncompleted: 2026-08-20\n---\n")
	writeTaskFile(t, dir, "build.md",
		"---\nid: build\nname: Build\nstatus: todo\npriority: medium\ndepends_on: [research]\n---\n")
	writeTaskFile(t, dir, "notes.txt", "not a task\n")

	src := NewDirSource(dir)
	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("List returned %d tasks, want 2", len(tasks))
	}
	if warns := src.Warnings(); len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
}

func TestDirSourceSkipsBadFilesWithWarnings(t *testing.T) {
	dir := t.TempDir()
	writeTaskFile(t, dir, "good.md",
		"---\nid: good\nname: Good\nstatus: todo\npriority: low\n---\n")
	writeTaskFile(t, dir, "broken.md", "no frontmatter here\n")
	writeTaskFile(t, dir, "bad-status.md",
		"---\nid: bad-status\nname: Bad\nstatus: someday\npriority: low\n---\n")

	src := NewDirSource(dir)
	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "good" {
		t.Fatalf("List returned %v, want only the good task", tasks)
	}
	warns := src.Warnings()
	if len(warns) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warns), warns)
	}
}

func TestDirSourceMissingDirIsEmpty(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "nope"))
	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("List = %v, want empty", tasks)
	}
}

func TestDirSourceNormalizesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeTaskFile(t, dir, "bare.md", "---\nname: Bare minimum\n---\n")

	src := NewDirSource(dir)
	tasks, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	got := tasks[0]
	if got.ID != "bare" {
		t.Errorf("ID = %q, want filename stem", got.ID)
	}
	if got.Status != StatusTodo || got.Priority != PriorityMedium {
		t.Errorf("defaults not applied: status=%q priority=%q", got.Status, got.Priority)
	}
}

func TestDirSourceFindByID(t *testing.T) {
	dir := t.TempDir()
	writeTaskFile(t, dir, "a.md", "---\nid: a\nname: A\nstatus: todo\npriority: low\n---\n")

	src := NewDirSource(dir)
	if _, err := src.FindByID(context.Background(), "a"); err != nil {
		t.Errorf("FindByID(a): %v", err)
	}
	if _, err := src.FindByID(context.Background(), "missing"); err == nil {
		t.Error("FindByID(missing) succeeded, want error")
	}
}
