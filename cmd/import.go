package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Replace the schedule with an exported file",
	Long: `Reads a previously exported schedule and replaces the current snapshot
with it verbatim, no reconciliation. Run 'recalculate' afterward to
resync it against the live task source.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := newStore(cfg)
	sched, err := store.Import(args[0])
	if err != nil {
		if errors.Is(err, schedule.ErrMalformed) {
			return clierr.Newf(clierr.SnapshotMalformed, "import file is not a valid schedule: %v", err).
				WithDetails(map[string]any{"path": args[0]})
		}
		return clierr.Newf(clierr.FileError, "reading import file: %v", err).
			WithDetails(map[string]any{"path": args[0]})
	}

	// Importing discards the current schedule; make sure that is meant.
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Replace the current schedule with %d tasks from %s? [y/N] ",
			len(sched.Tasks), args[0])
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := store.Replace(sched); err != nil {
		return clierr.Newf(clierr.FileError, "writing schedule: %v", err)
	}

	logEvent(cfg, "import", map[string]any{
		"path":  args[0],
		"tasks": len(sched.Tasks),
	})

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "imported",
			"path":   args[0],
			"tasks":  len(sched.Tasks),
		})
	}
	output.Messagef(os.Stdout, "Imported %d tasks from %s", len(sched.Tasks), args[0])
	return nil
}
