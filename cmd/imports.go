package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/imports"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
)

var importsCmd = &cobra.Command{
	Use:   "imports [DIR]",
	Short: "Find circular imports in a source tree",
	Long: `Scans Go, Python, JavaScript and TypeScript files under the given
directory (default: the current one), builds their import graph, and
reports circular references. Exits non-zero when cycles exist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImports,
}

func init() {
	rootCmd.AddCommand(importsCmd)
}

func runImports(_ *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	report, err := imports.Scan(root)
	if err != nil {
		return clierr.Newf(clierr.FileError, "scanning %s: %v", root, err)
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, report); err != nil {
			return err
		}
		if len(report.Cycles) > 0 {
			return &clierr.SilentError{Code: 1}
		}
		return nil
	}

	if len(report.Cycles) == 0 {
		output.Messagef(os.Stdout, "OK: %d files, %d internal references, no import cycles.",
			report.Files, report.Edges)
		return nil
	}

	for _, cycle := range report.Cycles {
		output.Messagef(os.Stdout, "cycle: %s", strings.Join(append(cycle, cycle[0]), " -> "))
	}
	return clierr.Newf(clierr.CycleDetected, "%d import cycle(s) found", len(report.Cycles))
}
