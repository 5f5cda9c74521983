package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/twiced-technology-gmbh/taskplan/internal/remind"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// ScheduleCompact renders scheduled tasks in one-line-per-record
// compact format.
func ScheduleCompact(w io.Writer, sched *schedule.Schedule) {
	if len(sched.Tasks) == 0 {
		fmt.Fprintln(os.Stderr, "Schedule is empty.")
		return
	}
	for i := range sched.Tasks {
		fmt.Fprintln(w, formatScheduledLine(&sched.Tasks[i]))
	}
}

// ScheduleDetailCompact renders a single scheduled task in compact format.
func ScheduleDetailCompact(w io.Writer, st *schedule.ScheduledTask) {
	line := formatScheduledLine(st)
	line += fmt.Sprintf(" est:%gh", st.EstimatedHours)
	if st.AssignedTo != "" {
		line += " @" + st.AssignedTo
	}
	fmt.Fprintln(w, line)

	if len(st.Dependencies) > 0 {
		fmt.Fprintln(w, "  depends_on: "+strings.Join(st.Dependencies, ", "))
	}
	if st.CompletedDate != nil {
		fmt.Fprintln(w, "  completed: "+st.CompletedDate.String())
	}
}

// TaskCompact renders source tasks in compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for i := range tasks {
		t := &tasks[i]
		line := t.ID + " [" + t.Status + "/" + t.Priority + "] " + t.Name
		line += fmt.Sprintf(" %gh", t.Hours())
		if t.DueDate != nil {
			line += " due:" + t.DueDate.String()
		}
		if len(t.Dependencies) > 0 {
			line += " deps:" + strings.Join(t.Dependencies, ",")
		}
		fmt.Fprintln(w, line)
	}
}

// ReminderCompact renders reminders one per line.
func ReminderCompact(w io.Writer, reminders []remind.Reminder) {
	if len(reminders) == 0 {
		fmt.Fprintln(w, "No reminders.")
		return
	}
	for _, r := range reminders {
		fmt.Fprintf(w, "%s %s: %s\n", r.Type, r.TaskID, r.Message)
	}
}

// formatScheduledLine builds the one-line representation of a
// scheduled task.
func formatScheduledLine(st *schedule.ScheduledTask) string {
	line := st.ID + " [" + st.Status + "/" + st.Priority + "] " + st.Name

	if st.StartDate != nil && st.EndDate != nil {
		line += " " + st.StartDate.String() + ".." + st.EndDate.String()
	} else {
		line += " unscheduled"
	}
	if st.DueDate != nil {
		line += " due:" + st.DueDate.String()
	}
	if len(st.BlockedBy) > 0 {
		line += " blocked_by:" + strings.Join(st.BlockedBy, ",")
	}

	return line
}
