package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var exportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Export the schedule to a file",
	Long: `Writes the full schedule verbatim to the given path, every field
included, so it can be re-imported elsewhere without loss.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	if err := store.Export(sched, args[0]); err != nil {
		return clierr.Newf(clierr.FileError, "exporting schedule: %v", err).
			WithDetails(map[string]any{"path": args[0]})
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "exported",
			"path":   args[0],
			"tasks":  len(sched.Tasks),
		})
	}
	output.Messagef(os.Stdout, "Exported %d tasks to %s", len(sched.Tasks), args[0])
	return nil
}
