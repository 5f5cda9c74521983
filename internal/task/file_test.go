package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
)

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	due := date.New(2026, 9, 15)
	orig := &Task{
		ID:             "api-design",
		Name:           "Design the public API",
		Status:         StatusInProgress,
		Priority:       PriorityHigh,
		DueDate:        &due,
		EstimatedHours: 12,
		Dependencies:   []string{"research"},
		AssignedTo:     "mira",
		Body:           "Sketch endpoints first.\n",
	}

	path := filepath.Join(dir, Filename(orig.ID))
	if err := WriteFile(path, orig); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != orig.ID || got.Name != orig.Name || got.Status != orig.Status {
		t.Errorf("core fields lost: got %+v", got)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-09-15" {
		t.Errorf("due date lost: %v", got.DueDate)
	}
	if got.EstimatedHours != 12 {
		t.Errorf("estimated hours = %v, want 12", got.EstimatedHours)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != "research" {
		t.Errorf("dependencies = %v", got.Dependencies)
	}
	if !strings.Contains(got.Body, "Sketch endpoints") {
		t.Errorf("body lost: %q", got.Body)
	}
	if got.File != path {
		t.Errorf("File = %q, want %q", got.File, path)
	}
}

func TestReadFileIDFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "research.md")
	content := "---\nname: Research the problem\nstatus: todo\npriority: low\n---\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != "research" {
		t.Errorf("ID = %q, want filename stem", got.ID)
	}
}

func TestReadFileRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"no-frontmatter.md", "just some text\n"},
		{"unclosed.md", "---\nid: x\nname: y\n"},
		{"bad-yaml.md", "---\nid: [unclosed\n---\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFile(path); err == nil {
			t.Errorf("ReadFile(%s) succeeded, want error", tt.name)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Design the public API", "design-the-public-api"},
		{"Fix  double  spaces!", "fix-double-spaces"},
		{"---trim---", "trim"},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
