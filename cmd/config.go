package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Shows the configuration in effect after discovery, migration and
defaulting, plus the resolved plan paths.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"dir":                      cfg.Dir(),
			"schedule_file":            cfg.SchedulePath(),
			"reminder_threshold_days":  cfg.ReminderThresholdDays,
			"monitor_interval_minutes": cfg.MonitorIntervalMinutes,
			"max_tasks_per_day":        cfg.MaxTasksPerDay,
			"productive_hours_per_day": cfg.ProductiveHoursPerDay,
			"horizon_days":             cfg.HorizonDays,
			"priority_weights":         cfg.PriorityWeights,
			"source":                   cfg.Source,
			"calendar":                 cfg.Calendar,
		})
	}

	output.Messagef(os.Stdout, "# plan directory: %s", cfg.Dir())
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(os.Stdout, string(data))
	return nil
}

// configValue resolves a dotted key to its effective value.
func configValue(cfg *config.Config, key string) (any, bool) {
	switch key {
	case "dir":
		return cfg.Dir(), true
	case "schedule_file":
		return cfg.SchedulePath(), true
	case "reminder_threshold_days":
		return cfg.ReminderThresholdDays, true
	case "monitor_interval_minutes":
		return cfg.MonitorIntervalMinutes, true
	case "max_tasks_per_day":
		return cfg.MaxTasksPerDay, true
	case "productive_hours_per_day":
		return cfg.ProductiveHoursPerDay, true
	case "horizon_days":
		return cfg.HorizonDays, true
	case "source.type":
		return cfg.Source.Type, true
	case "source.path":
		return cfg.TasksPath(), true
	case "calendar.calendar_id":
		return cfg.Calendar.CalendarID, true
	default:
		if weight, ok := strings.CutPrefix(key, "priority_weights."); ok {
			w, exists := cfg.PriorityWeights[weight]
			return w, exists
		}
		return nil, false
	}
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	value, ok := configValue(cfg, args[0])
	if !ok {
		return clierr.Newf(clierr.ConfigInvalid, "unknown config key %q", args[0])
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": args[0], "value": value})
	}
	output.Messagef(os.Stdout, "%v", value)
	return nil
}
