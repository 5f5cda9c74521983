package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/gcal"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Push the schedule to Google Calendar",
}

var calendarAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize calendar access",
	Long: `Runs the OAuth consent flow using credentials.json from the plan
directory and caches the resulting token next to it.`,
	RunE: runCalendarAuth,
}

var calendarSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync scheduled tasks as all-day events",
	Long: `Pushes every scheduled, non-completed task as an all-day calendar
event. Events created by earlier syncs are updated in place; events
for tasks that left the schedule are removed.`,
	RunE: runCalendarSync,
}

func init() {
	calendarCmd.AddCommand(calendarAuthCmd)
	calendarCmd.AddCommand(calendarSyncCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := gcal.Authorize(cmd.Context(), os.Stderr, cfg.CredentialsPath(), cfg.TokenPath()); err != nil {
		return clierr.Newf(clierr.CalendarError, "calendar authorization failed: %v", err)
	}

	output.Messagef(os.Stdout, "Calendar authorized; token cached at %s", cfg.TokenPath())
	return nil
}

func runCalendarSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := gcal.NewService(cmd.Context(), cfg.CredentialsPath(), cfg.TokenPath())
	if err != nil {
		if errors.Is(err, gcal.ErrNoToken) {
			return clierr.New(clierr.CalendarError, err.Error())
		}
		return clierr.Newf(clierr.CalendarError, "calendar service: %v", err)
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

	res, err := gcal.NewClient(srv, cfg.Calendar.CalendarID).Sync(cmd.Context(), sched)
	if err != nil {
		return clierr.Newf(clierr.CalendarError, "calendar sync failed: %v", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, res)
	}
	output.Messagef(os.Stdout, "Calendar synced: %d created, %d updated, %d deleted, %d unchanged.",
		res.Created, res.Updated, res.Deleted, res.Unchanged)
	return nil
}
