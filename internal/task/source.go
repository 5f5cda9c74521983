package task

import "context"

// Source is an external provider of task records. The scheduler only
// ever reads from it; status, priority and dependency edits happen on
// the source's side of the fence.
type Source interface {
	List(ctx context.Context) ([]Task, error)
}

// Warner is implemented by sources that tolerate partially bad data and
// collect per-record warnings during List instead of failing.
type Warner interface {
	Warnings() []ReadWarning
}

// ReadWarning describes a record that a lenient source skipped.
type ReadWarning struct {
	File string // base filename or record key
	Err  error
}

// StaticSource serves a fixed in-memory task list. It backs tests and
// one-off schedule builds from already-loaded data.
type StaticSource struct {
	Tasks []Task
}

// NewStaticSource copies tasks into a StaticSource.
func NewStaticSource(tasks []Task) *StaticSource {
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return &StaticSource{Tasks: cp}
}

// List returns a copy of the task list.
func (s *StaticSource) List(_ context.Context) ([]Task, error) {
	out := make([]Task, len(s.Tasks))
	copy(out, s.Tasks)
	return out, nil
}
