package schedule

import (
	"fmt"
	"math"

	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/graph"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// Warning is a non-fatal condition met while building: a dangling
// dependency, a dependency cycle, or a capacity search that ran past
// the horizon. Warnings are reported, never thrown.
type Warning struct {
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// Builder derives start and end dates for a task set. It is
// deterministic: the same tasks and the same today always produce the
// same schedule, which is what makes regenerate-from-scratch a safe
// reconciliation strategy.
type Builder struct {
	MaxTasksPerDay        int
	ProductiveHoursPerDay float64
	HorizonDays           int
	Weights               map[string]int
}

// NewBuilder creates a Builder from the plan configuration.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		MaxTasksPerDay:        cfg.MaxTasksPerDay,
		ProductiveHoursPerDay: cfg.ProductiveHoursPerDay,
		HorizonDays:           cfg.HorizonDays,
		Weights:               cfg.PriorityWeights,
	}
}

// Build produces a schedule where every task has a start and end date.
// Completed tasks keep their completion date as both dates instead of
// taking a slot in the future.
//
// Tasks are ordered dependency-first by a full topological sort, with
// ready-set ties broken by priority weight descending, then due date
// ascending (no due date sorts as year end), then id. Each task is then
// placed on the earliest day at or after max(today, day after its last
// incomplete dependency ends) that still has capacity, scanning at most
// HorizonDays ahead; a full horizon degrades to force-placement on the
// cap day plus a warning.
func (b *Builder) Build(tasks []task.Task, today date.Date) (*Schedule, []Warning) {
	var warnings []Warning
	byID := task.ByID(tasks)

	order := b.sortTasks(tasks, byID, today, &warnings)

	placed := make(map[string]*ScheduledTask, len(tasks))
	starts := make(map[string]int, len(tasks))
	out := make([]ScheduledTask, 0, len(tasks))

	for _, id := range order {
		t := byID[id]
		st := Shell(t)
		st.BlockedBy = nil

		feasible := today
		for _, dep := range t.Dependencies {
			dt, ok := byID[dep]
			if !ok {
				warnings = append(warnings, Warning{
					TaskID:  id,
					Message: fmt.Sprintf("task %q depends on unknown task %q; constraint ignored", id, dep),
				})
				continue
			}
			if dt.Completed() {
				continue
			}
			st.BlockedBy = append(st.BlockedBy, dep)
			if p, ok := placed[dep]; ok && p.EndDate != nil {
				feasible = date.Max(feasible, p.EndDate.AddDays(1))
			}
		}

		if t.Completed() {
			done := today
			if t.CompletedDate != nil {
				done = *t.CompletedDate
			}
			cd, start, end := done, done, done
			st.CompletedDate = &cd
			st.StartDate = &start
			st.EndDate = &end
			// Historical stamps still occupy start slots so future
			// placements see the day's real load.
			starts[done.String()]++
		} else {
			day, overflowed := b.findSlot(feasible, starts)
			if overflowed {
				warnings = append(warnings, Warning{
					TaskID: id,
					Message: fmt.Sprintf("no free day within %d days of %s for task %q; placing on %s anyway",
						b.HorizonDays, feasible, id, day),
				})
			}
			starts[day.String()]++

			end := day.AddDays(b.durationDays(t) - 1)
			start := day
			st.StartDate = &start
			st.EndDate = &end
		}

		placed[id] = &st
		out = append(out, st)
	}

	return &Schedule{Tasks: out}, warnings
}

// sortTasks returns task ids in scheduling order and records a warning
// for every task trapped on a dependency cycle. Cycle members are
// appended after the sortable tasks rather than dropped.
func (b *Builder) sortTasks(tasks []task.Task, byID map[string]task.Task, today date.Date, warnings *[]Warning) []string {
	g := make(graph.Graph, len(tasks))
	for _, t := range tasks {
		g[t.ID] = t.Dependencies
	}

	order, cyclic := graph.TopoSort(g, b.lessByPriority(byID, today))
	for _, id := range cyclic {
		*warnings = append(*warnings, Warning{
			TaskID:  id,
			Message: fmt.Sprintf("task %q is part of a dependency cycle; scheduling it without dependency ordering", id),
		})
	}
	return append(order, cyclic...)
}

// lessByPriority orders ready tasks by weight descending, due date
// ascending, id ascending.
func (b *Builder) lessByPriority(byID map[string]task.Task, today date.Date) func(x, y string) bool {
	return func(x, y string) bool {
		tx, ty := byID[x], byID[y]
		wx, wy := b.Weights[tx.Priority], b.Weights[ty.Priority]
		if wx != wy {
			return wx > wy
		}
		dx, dy := effectiveDue(tx, today), effectiveDue(ty, today)
		if !dx.Equal(dy.Time) {
			return dx.Before(dy.Time)
		}
		return x < y
	}
}

// effectiveDue is the due date used for ordering: the task's own, or
// year end when it has none.
func effectiveDue(t task.Task, today date.Date) date.Date {
	if t.DueDate != nil {
		return *t.DueDate
	}
	return today.YearEnd()
}

// findSlot scans forward from feasible for the first day with spare
// start capacity. After HorizonDays of full days it gives up and
// reports the cap day as an overflow placement.
func (b *Builder) findSlot(feasible date.Date, starts map[string]int) (date.Date, bool) {
	day := feasible
	for scanned := 0; scanned < b.HorizonDays; scanned++ {
		if starts[day.String()] < b.MaxTasksPerDay {
			return day, false
		}
		day = day.AddDays(1)
	}
	if starts[day.String()] < b.MaxTasksPerDay {
		return day, false
	}
	return day, true
}

// durationDays converts an effort estimate to whole calendar days.
func (b *Builder) durationDays(t task.Task) int {
	hours := b.ProductiveHoursPerDay
	if hours <= 0 {
		hours = config.DefaultProductiveHoursPerDay
	}
	days := int(math.Ceil(t.Hours() / hours))
	if days < 1 {
		days = 1
	}
	return days
}
