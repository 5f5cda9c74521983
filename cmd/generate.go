package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate the schedule from the task source",
	Long: `Reads every task from the configured source, derives start and end
dates for each one, and persists the result as the schedule snapshot.
An unreadable task source degrades to an empty task set with a warning.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	var warnings []schedule.Warning
	tasks, err := source.List(cmd.Context())
	if err != nil {
		warnings = append(warnings, schedule.Warning{
			Message: fmt.Sprintf("task source unavailable, generating empty schedule: %v", err),
		})
		tasks = nil
	}
	printSourceWarnings(source)

	builder := schedule.NewBuilder(cfg)
	sched, buildWarns := builder.Build(tasks, date.Today())
	warnings = append(warnings, buildWarns...)

	if err := newStore(cfg).Save(sched); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}

	logEvent(cfg, "generate", map[string]any{
		"tasks":    len(sched.Tasks),
		"warnings": len(warnings),
	})

	printBuildWarnings(warnings)
	return outputSchedule(sched, warnings)
}
