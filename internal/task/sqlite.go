package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'todo',
	priority        TEXT NOT NULL DEFAULT 'medium',
	due_date        TEXT,
	estimated_hours REAL,
	depends_on      TEXT,
	assigned_to     TEXT,
	completed_date  TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

// SQLiteSource reads tasks from a local SQLite database. Dates are
// stored as YYYY-MM-DD text and depends_on as a JSON string array.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a task database.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening task database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing task schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// List returns every task row, normalized and ordered by id.
func (s *SQLiteSource) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, priority, due_date, estimated_hours,
		       depends_on, assigned_to, completed_date
		FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading task rows: %w", err)
	}
	return tasks, nil
}

func scanTaskRow(rows *sql.Rows) (*Task, error) {
	var (
		t         Task
		due       sql.NullString
		hours     sql.NullFloat64
		deps      sql.NullString
		assigned  sql.NullString
		completed sql.NullString
	)
	if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.Priority,
		&due, &hours, &deps, &assigned, &completed); err != nil {
		return nil, fmt.Errorf("scanning task row: %w", err)
	}

	if due.Valid && due.String != "" {
		d, err := date.Parse(due.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: bad due_date: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	if completed.Valid && completed.String != "" {
		d, err := date.Parse(completed.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: bad completed_date: %w", t.ID, err)
		}
		t.CompletedDate = &d
	}
	if hours.Valid {
		t.EstimatedHours = hours.Float64
	}
	if deps.Valid && deps.String != "" {
		if err := json.Unmarshal([]byte(deps.String), &t.Dependencies); err != nil {
			return nil, fmt.Errorf("task %s: bad depends_on: %w", t.ID, err)
		}
	}
	if assigned.Valid {
		t.AssignedTo = assigned.String
	}

	Normalize(&t)
	return &t, nil
}
