// Package remind derives reminder events from a schedule. The engine
// is a pure function of the schedule and the current date: it returns
// reminders, it never persists or mutates anything.
package remind

import (
	"fmt"
	"strings"

	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

// Reminder types.
const (
	TypeDeadline = "deadline"
	TypeOverdue  = "overdue"
	TypeBlocked  = "blocked"
)

// Reminder is one ephemeral notification about a scheduled task. It is
// produced fresh on every engine run and never stored.
type Reminder struct {
	Type     string `json:"type"`
	TaskID   string `json:"taskId"`
	TaskName string `json:"taskName"`
	Message  string `json:"message"`

	// DaysOverdue is set on overdue reminders.
	DaysOverdue int `json:"daysOverdue,omitempty"`
	// BlockedBy names the blocking tasks on blocked reminders.
	BlockedBy []string `json:"blockedBy,omitempty"`
}

// Engine turns a schedule into reminders.
type Engine struct {
	ThresholdDays int
}

// NewEngine creates an Engine from the plan configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{ThresholdDays: cfg.ReminderThresholdDays}
}

// Scan walks the schedule and emits every reminder due on the given
// day. One task can emit more than one reminder in the same pass: a
// task can be overdue and blocked at once.
//
// Deadline fires when a non-completed task is due within ThresholdDays
// (today included); overdue when the due date has passed; blocked for
// every task with an unfinished dependency. Blocker lookups fall back
// to the raw id when the blocking task is missing from the schedule.
func (e *Engine) Scan(sched *schedule.Schedule, today date.Date) []Reminder {
	var out []Reminder
	names := sched.NamesByID()

	for i := range sched.Tasks {
		st := &sched.Tasks[i]
		if st.Completed() {
			continue
		}

		if st.DueDate != nil {
			days := today.DaysUntil(*st.DueDate)
			switch {
			case days < 0:
				out = append(out, overdueReminder(st, -days))
			case days <= e.ThresholdDays:
				out = append(out, deadlineReminder(st, days))
			}
		}

		if len(st.BlockedBy) > 0 {
			out = append(out, blockedReminder(st, names))
		}
	}

	return out
}

func deadlineReminder(st *schedule.ScheduledTask, days int) Reminder {
	msg := fmt.Sprintf("%q is due in %d days (%s)", st.Name, days, st.DueDate)
	switch days {
	case 0:
		msg = fmt.Sprintf("%q is due today (%s)", st.Name, st.DueDate)
	case 1:
		msg = fmt.Sprintf("%q is due tomorrow (%s)", st.Name, st.DueDate)
	}
	return Reminder{
		Type:     TypeDeadline,
		TaskID:   st.ID,
		TaskName: st.Name,
		Message:  msg,
	}
}

func overdueReminder(st *schedule.ScheduledTask, days int) Reminder {
	noun := "days"
	if days == 1 {
		noun = "day"
	}
	return Reminder{
		Type:        TypeOverdue,
		TaskID:      st.ID,
		TaskName:    st.Name,
		Message:     fmt.Sprintf("%q is %d %s overdue (was due %s)", st.Name, days, noun, st.DueDate),
		DaysOverdue: days,
	}
}

func blockedReminder(st *schedule.ScheduledTask, names map[string]string) Reminder {
	blockers := make([]string, 0, len(st.BlockedBy))
	for _, id := range st.BlockedBy {
		if name, ok := names[id]; ok && name != "" {
			blockers = append(blockers, name)
			continue
		}
		blockers = append(blockers, id)
	}
	return Reminder{
		Type:      TypeBlocked,
		TaskID:    st.ID,
		TaskName:  st.Name,
		Message:   fmt.Sprintf("%q is waiting on: %s", st.Name, strings.Join(blockers, ", ")),
		BlockedBy: blockers,
	}
}

// CountByType tallies reminders per type, for cycle summaries.
func CountByType(reminders []Reminder) map[string]int {
	counts := make(map[string]int, 3)
	for _, r := range reminders {
		counts[r.Type]++
	}
	return counts
}
