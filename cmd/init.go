package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new plan directory",
	Long:  `Creates a plan directory with config.yml and a tasks/ subdirectory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("sample", false, "create a few sample task files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// Check if already initialized.
	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.ConfigInvalid, "plan already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg, err := config.Init(absDir)
	if err != nil {
		return err
	}

	if sample, _ := cmd.Flags().GetBool("sample"); sample {
		if err := writeSampleTasks(cfg); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":   "initialized",
			"dir":      absDir,
			"config":   cfg.ConfigPath(),
			"tasks":    cfg.TasksPath(),
			"schedule": cfg.SchedulePath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized plan in %s", absDir)
	output.Messagef(os.Stdout, "  Config:   %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:    %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Schedule: %s", cfg.SchedulePath())
	output.Messagef(os.Stdout, "  Hint:     add task files to tasks/, then run: taskplan generate")
	return nil
}

// writeSampleTasks drops a small dependency chain into the tasks
// directory so a fresh plan has something to schedule.
func writeSampleTasks(cfg *config.Config) error {
	samples := []task.Task{
		{
			ID:             "research",
			Name:           "Research the problem",
			Status:         task.StatusTodo,
			Priority:       task.PriorityHigh,
			EstimatedHours: 6,
			Body:           "Replace these sample tasks with your own.",
		},
		{
			ID:             "build",
			Name:           "Build the thing",
			Status:         task.StatusTodo,
			Priority:       task.PriorityMedium,
			EstimatedHours: 12,
			Dependencies:   []string{"research"},
		},
	}

	for i := range samples {
		path := filepath.Join(cfg.TasksPath(), task.Filename(samples[i].ID))
		if err := task.WriteFile(path, &samples[i]); err != nil {
			return fmt.Errorf("writing sample task: %w", err)
		}
	}
	return nil
}
