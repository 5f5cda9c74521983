package gcal

import (
	"testing"

	"google.golang.org/api/calendar/v3"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

func scheduledTask(id string, start, end date.Date) *schedule.ScheduledTask {
	return &schedule.ScheduledTask{
		ID:        id,
		Name:      "Task " + id,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestEventForSpansExclusiveEnd(t *testing.T) {
	st := scheduledTask("a", date.New(2026, 8, 24), date.New(2026, 8, 26))

	ev := eventFor(st)
	if ev.Start.Date != "2026-08-24" {
		t.Errorf("Start = %q", ev.Start.Date)
	}
	if ev.End.Date != "2026-08-27" {
		t.Errorf("End = %q, want day after the task ends", ev.End.Date)
	}
	if ev.ExtendedProperties.Private[taskIDProperty] != "a" {
		t.Errorf("task id property = %q", ev.ExtendedProperties.Private[taskIDProperty])
	}
}

func TestDiffEventNilWhenUnchanged(t *testing.T) {
	st := scheduledTask("a", date.New(2026, 8, 24), date.New(2026, 8, 24))

	if patch := diffEvent(st, eventFor(st)); patch != nil {
		t.Errorf("patch = %+v, want nil for identical event", patch)
	}
}

func TestDiffEventDetectsDrift(t *testing.T) {
	st := scheduledTask("a", date.New(2026, 8, 24), date.New(2026, 8, 24))

	cases := map[string]func(*calendar.Event){
		"summary": func(ev *calendar.Event) { ev.Summary = "renamed" },
		"start":   func(ev *calendar.Event) { ev.Start.Date = "2026-08-20" },
		"end":     func(ev *calendar.Event) { ev.End.Date = "2026-08-30" },
		"missing dates": func(ev *calendar.Event) { ev.Start = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := eventFor(st)
			mutate(ev)
			if diffEvent(st, ev) == nil {
				t.Error("drift not detected")
			}
		})
	}
}
