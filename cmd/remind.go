package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/remind"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Print the reminders due right now",
	Long: `Scans the schedule and emits deadline, overdue and blocked reminders.
Reminders are derived fresh on every run and never stored.`,
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
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
	today := date.Today()
	sched, warnings, built := schedule.LoadOrBuild(cmd.Context(), store, source, schedule.NewBuilder(cfg), today)
	if built {
		if err := store.Save(sched); err != nil {
			return err
		}
	}
	printBuildWarnings(warnings)

	reminders := remind.NewEngine(cfg).Scan(sched, today)

	switch outputFormat() {
	case output.FormatJSON:
		if reminders == nil {
			reminders = []remind.Reminder{}
		}
		return output.JSON(os.Stdout, reminders)
	case output.FormatCompact:
		output.ReminderCompact(os.Stdout, reminders)
	default:
		output.ReminderTable(os.Stdout, reminders)
	}
	return nil
}
