package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/graph"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the task set for dependency problems",
	Long: `Reports dependency cycles and references to missing tasks. Cycles make
the affected tasks unorderable and exit non-zero; dangling references
are warnings only.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkReport struct {
	Tasks    int        `json:"tasks"`
	Cycles   [][]string `json:"cycles,omitempty"`
	Dangling []string   `json:"dangling,omitempty"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	tasks, err := source.List(cmd.Context())
	if err != nil {
		return clierr.Newf(clierr.SourceUnavailable, "reading task source: %v", err)
	}
	printSourceWarnings(source)

	byID := task.ByID(tasks)
	g := make(graph.Graph, len(tasks))
	var dangling []string
	for _, t := range tasks {
		g[t.ID] = t.Dependencies
		for _, dep := range t.Dependencies {
			if _, ok := byID[dep]; !ok {
				dangling = append(dangling, t.ID+" -> "+dep)
			}
		}
	}

	report := checkReport{
		Tasks:    len(tasks),
		Cycles:   graph.Cycles(g),
		Dangling: dangling,
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

	for _, ref := range report.Dangling {
		output.Messagef(os.Stderr, "warning: dangling dependency %s", ref)
	}
	if len(report.Cycles) == 0 {
		output.Messagef(os.Stdout, "OK: %d tasks, no dependency cycles.", report.Tasks)
		return nil
	}

	for _, cycle := range report.Cycles {
		output.Messagef(os.Stdout, "cycle: %s", strings.Join(append(cycle, cycle[0]), " -> "))
	}
	return clierr.Newf(clierr.CycleDetected, "%d dependency cycle(s) found", len(report.Cycles))
}
