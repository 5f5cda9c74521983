package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var showCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show the schedule, or one scheduled task",
	Long: `With no argument, displays the full schedule. With a task id, displays
that task's computed dates and blockers. Builds the schedule from the
task source when no snapshot exists yet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	store := newStore(cfg)
	sched, warnings, built := schedule.LoadOrBuild(cmd.Context(), store, source, schedule.NewBuilder(cfg), date.Today())
	if built {
		if err := store.Save(sched); err != nil {
			return err
		}
	}
	printBuildWarnings(warnings)

	if len(args) == 0 {
		return outputSchedule(sched, warnings)
	}

	st := sched.Find(args[0])
	if st == nil {
		return clierr.Newf(clierr.TaskNotFound, "task not found in schedule: %s", args[0]).
			WithDetails(map[string]any{"id": args[0]})
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, st)
	case output.FormatCompact:
		output.ScheduleDetailCompact(os.Stdout, st)
	default:
		output.ScheduleDetail(os.Stdout, st)
	}
	return nil
}
