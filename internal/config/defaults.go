// Package config handles plan directory configuration.
package config

import "github.com/twiced-technology-gmbh/taskplan/internal/task"

const (
	// DefaultDir is the default plan directory name.
	DefaultDir = "taskplan"
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultScheduleFile is the default schedule snapshot filename.
	DefaultScheduleFile = "schedule.json"

	// ConfigFileName is the name of the config file within the plan directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3

	// DefaultReminderThresholdDays is how close a due date must be
	// before a deadline reminder fires.
	DefaultReminderThresholdDays = 2
	// DefaultMonitorIntervalMinutes is the monitor cycle interval.
	DefaultMonitorIntervalMinutes = 30
	// DefaultMaxTasksPerDay caps how many tasks may start on one day.
	DefaultMaxTasksPerDay = 3
	// DefaultProductiveHoursPerDay converts effort estimates to days.
	DefaultProductiveHoursPerDay = 6.0
	// DefaultHorizonDays bounds the capacity search lookahead.
	DefaultHorizonDays = 60
)

// Task source kinds.
const (
	SourceDir      = "dir"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Calendar export defaults.
const (
	DefaultCalendarID      = "primary"
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
)

// DefaultPriorityWeights returns the base priority weighting. Critical
// shares high's weight until it earns its own tier.
func DefaultPriorityWeights() map[string]int {
	return map[string]int{
		task.PriorityCritical: 3,
		task.PriorityHigh:     3,
		task.PriorityMedium:   2,
		task.PriorityLow:      1,
	}
}
