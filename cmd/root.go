// Package cmd implements the taskplan CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskplan/internal/activity"
	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "taskplan",
	Short: "Dependency-aware task scheduler",
	Long: `taskplan turns a flat set of tasks into a calendar-anchored schedule,
keeps the schedule in step with task changes, and raises deadline,
overdue and blocked reminders from it.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || termenv.EnvNoColor() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to plan directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlag)
}

// normalizeFlag maps the pre-1.0 --plan-dir flag onto --dir.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "plan-dir" {
		name = "dir"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TASKPLAN_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/taskplan.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/taskplan"), nil
}

// resolveDir returns the absolute path to the plan directory. Falls
// back to ~/.config/taskplan if no plan is found in the current
// directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	// Fall back to ~/.config/taskplan.
	return defaultHomeDir()
}

// loadConfig finds and loads the plan config. If the resolved directory
// is ~/.config/taskplan and it doesn't exist yet, it is auto-created
// with defaults.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	// Auto-create ~/.config/taskplan if it's the home default and doesn't exist.
	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, err
	}

	return config.Init(homeDir)
}

// openSource builds the task source the config selects. The returned
// cleanup func releases database handles and is a no-op for the dir
// source.
func openSource(ctx context.Context, cfg *config.Config) (task.Source, func(), error) {
	switch cfg.Source.Type {
	case config.SourceDir:
		return task.NewDirSource(cfg.TasksPath()), func() {}, nil
	case config.SourceSQLite:
		src, err := task.OpenSQLite(cfg.TasksPath())
		if err != nil {
			return nil, nil, clierr.Newf(clierr.SourceUnavailable, "opening sqlite task source: %v", err)
		}
		return src, func() { _ = src.Close() }, nil
	case config.SourcePostgres:
		src, err := task.OpenPostgres(ctx, cfg.Source.DSN)
		if err != nil {
			return nil, nil, clierr.Newf(clierr.SourceUnavailable, "connecting to postgres task source: %v", err)
		}
		return src, src.Close, nil
	default:
		// Validate catches this on load; belt and braces.
		return nil, nil, clierr.Newf(clierr.ConfigInvalid, "unknown source type %q", cfg.Source.Type)
	}
}

// newStore creates the snapshot store for the configured schedule file.
func newStore(cfg *config.Config) *schedule.Store {
	return schedule.NewStore(cfg.SchedulePath())
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printSourceWarnings writes per-record read warnings to stderr.
func printSourceWarnings(src task.Source) {
	warner, ok := src.(task.Warner)
	if !ok {
		return
	}
	for _, w := range warner.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed task %s: %v\n", w.File, w.Err)
	}
}

// printBuildWarnings writes scheduler warnings to stderr. In JSON mode
// warnings travel in the payload instead.
func printBuildWarnings(warnings []schedule.Warning) {
	if outputFormat() == output.FormatJSON {
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
}

// logEvent appends to the plan's activity log. Errors are discarded
// because logging must never fail a command.
func logEvent(cfg *config.Config, event string, details map[string]any) {
	activity.Record(cfg.Dir(), "", event, details)
}

// outputSchedule renders a schedule in the active format.
func outputSchedule(sched *schedule.Schedule, warnings []schedule.Warning) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, struct {
			*schedule.Schedule
			Warnings []schedule.Warning `json:"warnings,omitempty"`
		}{sched, warnings})
	case output.FormatCompact:
		output.ScheduleCompact(os.Stdout, sched)
	default:
		output.ScheduleTable(os.Stdout, sched)
	}
	return nil
}
