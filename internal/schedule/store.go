package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/filelock"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

const snapshotMode = 0o600

// Sentinel errors for snapshot reads.
var (
	ErrNoSnapshot = errors.New("schedule snapshot not found")
	ErrMalformed  = errors.New("malformed schedule snapshot")
)

// Store reads and writes the persisted schedule snapshot. Writes go to
// a temp file in the same directory and are renamed into place under an
// advisory lock, so concurrent invocations never interleave half a
// snapshot.
type Store struct {
	Path string

	now func() time.Time
}

// NewStore creates a Store for the snapshot at path.
func NewStore(path string) *Store {
	return &Store{Path: path, now: time.Now}
}

// Load reads the snapshot. A missing file returns ErrNoSnapshot and an
// unparseable one ErrMalformed, both detectable with errors.Is; callers
// recover from either by rebuilding from the task source.
func (s *Store) Load() (*Schedule, error) {
	data, err := os.ReadFile(s.Path) //nolint:gosec // snapshot path from trusted plan dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, s.Path)
		}
		return nil, fmt.Errorf("reading schedule %s: %w", s.Path, err)
	}

	var sched Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.Path, err)
	}
	return &sched, nil
}

// Save stamps lastUpdated and overwrites the snapshot.
func (s *Store) Save(sched *Schedule) error {
	sched.LastUpdated = s.now().UTC().Truncate(time.Second)
	return s.Replace(sched)
}

// Replace overwrites the snapshot without restamping lastUpdated, which
// is what import needs to keep a snapshot verbatim.
func (s *Store) Replace(sched *Schedule) error {
	unlock, err := filelock.Lock(s.Path + ".lock")
	if err != nil {
		return fmt.Errorf("locking schedule: %w", err)
	}
	defer unlock() //nolint:errcheck // advisory unlock

	return writeSnapshot(s.Path, sched)
}

// Export writes the full schedule verbatim to path, no field filtering.
func (s *Store) Export(sched *Schedule, path string) error {
	return writeSnapshot(path, sched)
}

// Import reads a full schedule from path. The caller replaces the
// current schedule with it; no reconciliation happens here.
func (s *Store) Import(path string) (*Schedule, error) {
	data, err := os.ReadFile(path) //nolint:gosec // import path named by the user
	if err != nil {
		return nil, fmt.Errorf("reading import file %s: %w", path, err)
	}
	var sched Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &sched, nil
}

// writeSnapshot serializes v and atomically replaces path with it.
func writeSnapshot(path string, sched *Schedule) error {
	data, err := json.MarshalIndent(sched, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, snapshotMode); err != nil {
		return fmt.Errorf("writing schedule %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing schedule %s: %w", path, err)
	}
	return nil
}

// LoadOrBuild returns the persisted schedule when one is readable, and
// otherwise synthesizes a fresh one from the task source. Snapshot and
// source failures degrade to warnings, never errors: a missing or
// corrupt snapshot rebuilds, an unavailable source builds from an empty
// task list. The returned bool reports whether a fresh build happened,
// in which case the caller should persist it.
func LoadOrBuild(ctx context.Context, st *Store, src task.Source, b *Builder, today date.Date) (*Schedule, []Warning, bool) {
	sched, err := st.Load()
	if err == nil {
		return sched, nil, false
	}

	var warnings []Warning
	if !errors.Is(err, ErrNoSnapshot) {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("schedule snapshot unusable, rebuilding from task source: %v", err),
		})
	}

	tasks, srcErr := src.List(ctx)
	if srcErr != nil {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("task source unavailable, building empty schedule: %v", srcErr),
		})
		tasks = nil
	}

	sched, buildWarns := b.Build(tasks, today)
	return sched, append(warnings, buildWarns...), true
}
