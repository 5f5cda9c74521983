package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/monitor"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/watcher"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the plan and re-run reconciliation on an interval",
	Long: `Runs one reconcile-and-remind cycle immediately, then repeats on the
configured interval until interrupted. With --watch, edits to the
tasks directory trigger an extra cycle as soon as they settle.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().Int("interval", 0, "minutes between cycles (default from config)")
	monitorCmd.Flags().Bool("watch", false, "also react to task file changes")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	m := monitor.New(cfg, source, newStore(cfg), printCycle)
	if minutes, _ := cmd.Flags().GetInt("interval"); minutes > 0 {
		m.Interval = time.Duration(minutes) * time.Minute
	}

	var events chan struct{}
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if cfg.Source.Type != config.SourceDir {
			return fmt.Errorf("--watch requires a dir task source, not %q", cfg.Source.Type)
		}
		events = make(chan struct{}, 1)
		w, err := watcher.New([]string{cfg.TasksPath()}, func() {
			select {
			case events <- struct{}{}:
			default: // a cycle is already pending
			}
		})
		if err != nil {
			return fmt.Errorf("watching tasks directory: %w", err)
		}
		defer w.Close()
		go w.Run(ctx, func(err error) {
			fmt.Fprintf(os.Stderr, "warning: watcher: %v\n", err)
		})
	}

	output.Messagef(os.Stderr, "Monitoring every %s (run %s); Ctrl-C to stop.", m.Interval, m.RunID())
	m.Run(ctx, events)
	return nil
}

// printCycle reports one monitor cycle's outcome on stdout.
func printCycle(c monitor.Cycle) {
	if outputFormat() == output.FormatJSON {
		_ = output.JSON(os.Stdout, c)
		return
	}

	for _, w := range c.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	if c.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: cycle persist failed: %v\n", c.Err)
	}

	stamp := c.Time.Format("15:04:05")
	if c.Result.Changed() {
		output.Messagef(os.Stdout, "[%s] %s: %d added, %d removed, %d updated",
			stamp, c.Trigger, len(c.Result.Added), len(c.Result.Removed), len(c.Result.Updated))
	} else {
		output.Messagef(os.Stdout, "[%s] %s: no changes", stamp, c.Trigger)
	}
	output.ReminderCompact(os.Stdout, c.Reminders)
}
