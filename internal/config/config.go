package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no plan directory found (run 'taskplan init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config is the immutable plan configuration. It is loaded once,
// validated, and passed by value of reference into each component;
// nothing mutates it after Load returns.
type Config struct {
	Version                int            `yaml:"version"`
	ReminderThresholdDays  int            `yaml:"reminder_threshold_days"`
	MonitorIntervalMinutes int            `yaml:"monitor_interval_minutes"`
	MaxTasksPerDay         int            `yaml:"max_tasks_per_day"`
	ProductiveHoursPerDay  float64        `yaml:"productive_hours_per_day"`
	HorizonDays            int            `yaml:"horizon_days"`
	PriorityWeights        map[string]int `yaml:"priority_weights"`
	Source                 SourceConfig   `yaml:"source"`
	ScheduleFile           string         `yaml:"schedule_file"`
	Calendar               CalendarConfig `yaml:"calendar,omitempty"`

	// LegacyTasksDir is the pre-v3 flat tasks_dir key; the v2→v3
	// migration folds it into Source and clears it.
	LegacyTasksDir string `yaml:"tasks_dir,omitempty"`

	// dir is the absolute path to the plan directory (not serialized).
	dir string `yaml:"-"`
}

// SourceConfig selects and parameterizes the task source.
type SourceConfig struct {
	Type string `yaml:"type"`
	// Path is the tasks directory for type "dir" or the database file
	// for type "sqlite", relative paths resolved against the plan dir.
	Path string `yaml:"path,omitempty"`
	// DSN is the connection string for type "postgres".
	DSN string `yaml:"dsn,omitempty"`
}

// CalendarConfig parameterizes the Google Calendar export.
type CalendarConfig struct {
	CalendarID      string `yaml:"calendar_id,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	TokenFile       string `yaml:"token_file,omitempty"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:                CurrentVersion,
		ReminderThresholdDays:  DefaultReminderThresholdDays,
		MonitorIntervalMinutes: DefaultMonitorIntervalMinutes,
		MaxTasksPerDay:         DefaultMaxTasksPerDay,
		ProductiveHoursPerDay:  DefaultProductiveHoursPerDay,
		HorizonDays:            DefaultHorizonDays,
		PriorityWeights:        DefaultPriorityWeights(),
		Source:                 SourceConfig{Type: SourceDir, Path: DefaultTasksDir},
		ScheduleFile:           DefaultScheduleFile,
		Calendar: CalendarConfig{
			CalendarID:      DefaultCalendarID,
			CredentialsFile: DefaultCredentialsFile,
			TokenFile:       DefaultTokenFile,
		},
	}
}

// Dir returns the absolute path to the plan directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the plan directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// SchedulePath returns the absolute path to the schedule snapshot.
func (c *Config) SchedulePath() string {
	return c.resolve(c.ScheduleFile)
}

// TasksPath returns the absolute path to the tasks directory (or the
// sqlite database file, depending on the source type).
func (c *Config) TasksPath() string {
	return c.resolve(c.Source.Path)
}

// CredentialsPath returns the absolute path to the calendar OAuth
// client credentials file.
func (c *Config) CredentialsPath() string {
	return c.resolve(c.Calendar.CredentialsFile)
}

// TokenPath returns the absolute path to the cached calendar token.
func (c *Config) TokenPath() string {
	return c.resolve(c.Calendar.TokenFile)
}

// resolve anchors a relative path at the plan directory.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Weight returns the scheduling weight for a priority. Priorities
// missing from the map weigh 0 and sort last among their peers.
func (c *Config) Weight(priority string) int {
	return c.PriorityWeights[priority]
}

// MonitorInterval returns the monitor cycle interval as a duration.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalMinutes) * time.Minute
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.ReminderThresholdDays < 0 {
		return fmt.Errorf("%w: reminder_threshold_days must be >= 0", ErrInvalid)
	}
	if c.MonitorIntervalMinutes < 1 {
		return fmt.Errorf("%w: monitor_interval_minutes must be >= 1", ErrInvalid)
	}
	if c.MaxTasksPerDay < 1 {
		return fmt.Errorf("%w: max_tasks_per_day must be >= 1", ErrInvalid)
	}
	if c.ProductiveHoursPerDay <= 0 {
		return fmt.Errorf("%w: productive_hours_per_day must be > 0", ErrInvalid)
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("%w: horizon_days must be >= 1", ErrInvalid)
	}
	if len(c.PriorityWeights) == 0 {
		return fmt.Errorf("%w: priority_weights is required", ErrInvalid)
	}
	for p, w := range c.PriorityWeights {
		if task.ValidatePriority(p) != nil {
			return fmt.Errorf("%w: priority_weights references unknown priority %q", ErrInvalid, p)
		}
		if w < 0 {
			return fmt.Errorf("%w: priority_weights[%q] must be >= 0", ErrInvalid, p)
		}
	}
	if c.ScheduleFile == "" {
		return fmt.Errorf("%w: schedule_file is required", ErrInvalid)
	}
	return c.validateSource()
}

func (c *Config) validateSource() error {
	switch c.Source.Type {
	case SourceDir, SourceSQLite:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for type %q", ErrInvalid, c.Source.Type)
		}
	case SourcePostgres:
		if c.Source.DSN == "" {
			return fmt.Errorf("%w: source.dsn is required for type %q", ErrInvalid, c.Source.Type)
		}
	default:
		return fmt.Errorf("%w: unknown source.type %q (want dir, sqlite or postgres)", ErrInvalid, c.Source.Type)
	}
	return nil
}

// Init creates a new plan directory with default settings: the
// directory itself, the tasks subdirectory, and the config file.
func Init(dir string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads, migrates and validates a config from the given plan
// directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a plan directory
// containing config.yml. Returns the absolute path to the plan directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the plan directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.PlanNotFound,
				"no plan directory found (run 'taskplan init' to create one)")
		}
		dir = parent
	}
}
