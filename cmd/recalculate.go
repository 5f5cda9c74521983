package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var recalculateCmd = &cobra.Command{
	Use:     "recalculate",
	Aliases: []string{"recalc"},
	Short:   "Reconcile the schedule against the task source",
	Long: `Pulls status, priority and dependency changes from the task source
into the schedule, then regenerates every computed date if anything
drifted. A no-op when source and schedule already agree. If the source
is unreachable the schedule stays untouched.`,
	RunE: runRecalculate,
}

func init() {
	rootCmd.AddCommand(recalculateCmd)
}

func runRecalculate(cmd *cobra.Command, _ []string) error {
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
	builder := schedule.NewBuilder(cfg)

	sched, warnings, built := schedule.LoadOrBuild(cmd.Context(), store, source, builder, today)
	if built {
		if err := store.Save(sched); err != nil {
			return fmt.Errorf("saving schedule: %w", err)
		}
	}

	var res schedule.Result
	live, err := source.List(cmd.Context())
	if err != nil {
		warnings = append(warnings, schedule.Warning{
			Message: fmt.Sprintf("task source unavailable, schedule left unchanged: %v", err),
		})
	} else {
		printSourceWarnings(source)
		res = schedule.NewReconciler(builder).Reconcile(sched, live, today)
		warnings = append(warnings, res.Warnings...)
		if res.Changed() {
			if err := store.Save(sched); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}
		}
	}

	logEvent(cfg, "recalculate", map[string]any{
		"added":   len(res.Added),
		"removed": len(res.Removed),
		"updated": len(res.Updated),
		"rebuilt": res.Rebuilt,
	})

	printBuildWarnings(warnings)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, struct {
			schedule.Result
			Tasks int `json:"tasks"`
		}{res, len(sched.Tasks)})
	}

	if !res.Changed() && !built {
		output.Messagef(os.Stdout, "Schedule already in sync (%d tasks).", len(sched.Tasks))
		return nil
	}
	output.Messagef(os.Stdout, "Reconciled: %d added, %d removed, %d updated; %d tasks scheduled.",
		len(res.Added), len(res.Removed), len(res.Updated), len(sched.Tasks))
	return nil
}
