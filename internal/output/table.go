package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/remind"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle   = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		task.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		task.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}

	priorityStyles = map[string]lipgloss.Style{
		task.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		task.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	reminderStyles = map[string]lipgloss.Style{
		remind.TypeDeadline: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		remind.TypeOverdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		remind.TypeBlocked:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	reminderStyles = map[string]lipgloss.Style{}
}

// ScheduleTable renders the scheduled tasks as a formatted table.
func ScheduleTable(w io.Writer, sched *schedule.Schedule) {
	if len(sched.Tasks) == 0 {
		fmt.Fprintln(os.Stderr, "Schedule is empty.")
		return
	}

	const pad = 2
	idW, statusW, prioW, nameW := 4, 8, 10, 6
	for i := range sched.Tasks {
		st := &sched.Tasks[i]
		idW = max(idW, len(st.ID)+pad)
		statusW = max(statusW, len(st.Status)+pad)
		prioW = max(prioW, len(st.Priority)+pad)
		nameW = max(nameW, min(len(st.Name)+pad, 40)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-12s %-12s %-12s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		nameW, "NAME", "START", "END", "DUE", "BLOCKED BY")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for i := range sched.Tasks {
		st := &sched.Tasks[i]
		name := st.Name
		const maxName = 38
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}
		blocked := strings.Join(st.BlockedBy, ",")
		if blocked == "" {
			blocked = dimStyle.Render("--")
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %s %s %s",
			idW, st.ID,
			padRight(styledValue(st.Status, statusStyles), statusW),
			padRight(styledValue(st.Priority, priorityStyles), prioW),
			padRight(name, nameW),
			padRight(dateOrDash(st.StartDate), 12), //nolint:mnd // date column width
			padRight(dateOrDash(st.EndDate), 12),   //nolint:mnd // date column width
			padRight(dateOrDash(st.DueDate), 12),   //nolint:mnd // date column width
			blocked)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render("Last updated: "+sched.LastUpdated.Format("2006-01-02 15:04:05 MST")))
}

// ScheduleDetail renders a single scheduled task with full detail.
func ScheduleDetail(w io.Writer, st *schedule.ScheduledTask) {
	titleLine := fmt.Sprintf("Task %s: %s", st.ID, st.Name)
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("-", len(titleLine)))

	printField(w, "Status", styledValue(st.Status, statusStyles))
	printField(w, "Priority", styledValue(st.Priority, priorityStyles))
	printField(w, "Estimate", fmt.Sprintf("%gh", st.EstimatedHours))
	printField(w, "Assignee", stringOrDash(st.AssignedTo))
	printField(w, "Due", dateOrDash(st.DueDate))
	printField(w, "Start", dateOrDash(st.StartDate))
	printField(w, "End", dateOrDash(st.EndDate))
	if st.CompletedDate != nil {
		printField(w, "Completed", st.CompletedDate.String())
	}
	if len(st.Dependencies) > 0 {
		printField(w, "Depends on", strings.Join(st.Dependencies, ", "))
	}
	if len(st.BlockedBy) > 0 {
		printField(w, "Blocked by", strings.Join(st.BlockedBy, ", "))
	}
}

// TaskTable renders source tasks (no computed dates) as a table.
func TaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, statusW, prioW, nameW := 4, 8, 10, 6
	for i := range tasks {
		idW = max(idW, len(tasks[i].ID)+pad)
		statusW = max(statusW, len(tasks[i].Status)+pad)
		prioW = max(prioW, len(tasks[i].Priority)+pad)
		nameW = max(nameW, min(len(tasks[i].Name)+pad, 40)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %8s %-12s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY", nameW, "NAME", "HOURS", "DUE", "DEPENDS ON")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for i := range tasks {
		t := &tasks[i]
		deps := strings.Join(t.Dependencies, ",")
		if deps == "" {
			deps = dimStyle.Render("--")
		}
		row := fmt.Sprintf("%-*s %s %s %s %8g %s %s",
			idW, t.ID,
			padRight(styledValue(t.Status, statusStyles), statusW),
			padRight(styledValue(t.Priority, priorityStyles), prioW),
			padRight(t.Name, nameW),
			t.Hours(),
			padRight(dateOrDash(t.DueDate), 12), //nolint:mnd // date column width
			deps)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// ReminderTable renders reminders as a formatted table.
func ReminderTable(w io.Writer, reminders []remind.Reminder) {
	if len(reminders) == 0 {
		fmt.Fprintln(w, "No reminders.")
		return
	}

	const pad = 2
	typeW, idW := 10, 4
	for _, r := range reminders {
		typeW = max(typeW, len(r.Type)+pad)
		idW = max(idW, len(r.TaskID)+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %s", typeW, "TYPE", idW, "TASK", "MESSAGE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, r := range reminders {
		row := fmt.Sprintf("%s %-*s %s",
			padRight(styledValue(r.Type, reminderStyles), typeW),
			idW, r.TaskID, r.Message)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

func dateOrDash(d *date.Date) string {
	if d == nil {
		return dimStyle.Render("--")
	}
	return d.String()
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
