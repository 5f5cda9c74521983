package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
)

// DirSource reads tasks from markdown files in a directory. Reading is
// lenient: files that fail to parse or validate become warnings, not
// errors, so one bad file never hides the rest of the plan.
type DirSource struct {
	Dir string

	warnings []ReadWarning
}

// NewDirSource creates a DirSource over the given tasks directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// List reads every .md file in the directory. A missing directory is an
// empty task set, not an error. Warnings from the last call are
// available via Warnings.
func (s *DirSource) List(_ context.Context) ([]Task, error) {
	s.warnings = nil

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []Task
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		t, readErr := ReadFile(path)
		if readErr != nil {
			s.warnings = append(s.warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		Normalize(t)
		if err := Validate(t); err != nil {
			s.warnings = append(s.warnings, ReadWarning{File: entry.Name(), Err: err})
			continue
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

// Warnings returns the per-file warnings collected by the last List.
func (s *DirSource) Warnings() []ReadWarning {
	return s.warnings
}

// FindByID reads the directory until a task with the given id turns up.
func (s *DirSource) FindByID(ctx context.Context, id string) (*Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}
