package task

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'todo',
	priority        TEXT NOT NULL DEFAULT 'medium',
	due_date        DATE,
	estimated_hours DOUBLE PRECISION,
	depends_on      TEXT[] NOT NULL DEFAULT '{}',
	assigned_to     TEXT,
	completed_date  DATE
)`

// PostgresSource reads tasks from a PostgreSQL table, for plans shared
// by more than one machine.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database named by dsn and makes sure the
// tasks table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to task database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing task schema: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// List returns every task row, normalized and ordered by id.
func (s *PostgresSource) List(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, status, priority, due_date, estimated_hours,
		       depends_on, assigned_to, completed_date
		FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			t         Task
			due       *time.Time
			hours     *float64
			assigned  *string
			completed *time.Time
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.Priority,
			&due, &hours, &t.Dependencies, &assigned, &completed); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		if due != nil {
			d := date.New(due.Year(), due.Month(), due.Day())
			t.DueDate = &d
		}
		if completed != nil {
			d := date.New(completed.Year(), completed.Month(), completed.Day())
			t.CompletedDate = &d
		}
		if hours != nil {
			t.EstimatedHours = *hours
		}
		if assigned != nil {
			t.AssignedTo = *assigned
		}
		Normalize(&t)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading task rows: %w", err)
	}
	return tasks, nil
}
