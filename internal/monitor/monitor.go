// Package monitor runs the periodic reconcile-and-remind loop. One
// goroutine owns the loop; cycles run synchronously inside it, so two
// cycles can never overlap no matter how the ticker and file events
// interleave.
package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/taskplan/internal/activity"
	"github.com/twiced-technology-gmbh/taskplan/internal/config"
	"github.com/twiced-technology-gmbh/taskplan/internal/date"
	"github.com/twiced-technology-gmbh/taskplan/internal/remind"
	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
	"github.com/twiced-technology-gmbh/taskplan/internal/task"
)

// Cycle triggers.
const (
	TriggerStart = "start"
	TriggerTimer = "timer"
	TriggerWatch = "watch"
)

// Cycle is the outcome of one reconcile-and-remind pass.
type Cycle struct {
	Time      time.Time          `json:"time"`
	Trigger   string             `json:"trigger"`
	Result    schedule.Result    `json:"result"`
	Reminders []remind.Reminder  `json:"reminders,omitempty"`
	Warnings  []schedule.Warning `json:"warnings,omitempty"`
	Err       error              `json:"-"`
}

// Monitor drives the Reconciler and the ReminderEngine on a repeating
// interval. Between cycles it is idle; a cycle runs to completion
// before the next trigger is consumed.
type Monitor struct {
	// Interval between timer cycles. Set from the config by New;
	// callers may override it before Run.
	Interval time.Duration

	cfg     *config.Config
	source  task.Source
	store   *schedule.Store
	rec     *schedule.Reconciler
	engine  *remind.Engine
	runID   string
	onCycle func(Cycle)

	// today is injectable so tests can pin the calendar.
	today func() date.Date
}

// New creates a Monitor. onCycle is invoked after every cycle with its
// outcome; a nil onCycle discards them.
func New(cfg *config.Config, source task.Source, store *schedule.Store, onCycle func(Cycle)) *Monitor {
	builder := schedule.NewBuilder(cfg)
	return &Monitor{
		Interval: cfg.MonitorInterval(),
		cfg:      cfg,
		source:   source,
		store:    store,
		rec:      schedule.NewReconciler(builder),
		engine:   remind.NewEngine(cfg),
		runID:    uuid.NewString(),
		onCycle:  onCycle,
		today:    date.Today,
	}
}

// RunID identifies this monitor process lifetime in the activity log.
func (m *Monitor) RunID() string {
	return m.runID
}

// Run executes one immediate cycle and then loops on the interval
// timer until ctx is cancelled. events, when non-nil, feeds file-change
// notifications from the watcher into the same loop: each notification
// triggers an extra cycle. Recoverable cycle errors are reported
// through onCycle and never stop the loop.
func (m *Monitor) Run(ctx context.Context, events <-chan struct{}) {
	m.RunOnce(ctx, TriggerStart)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx, TriggerTimer)
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.RunOnce(ctx, TriggerWatch)
		}
	}
}

// RunOnce performs a single reconcile-and-remind cycle: load (or
// rebuild) the schedule, apply source drift, persist if anything
// changed, then scan for reminders.
//
// A source read failure skips reconciliation for this cycle instead of
// reconciling against an empty list; treating a transient outage as
// "every task deleted" would throw away completion stamps the source
// cannot give back.
func (m *Monitor) RunOnce(ctx context.Context, trigger string) Cycle {
	today := m.today()
	cycle := Cycle{Time: time.Now(), Trigger: trigger}

	builder := m.rec.Builder
	sched, warns, built := schedule.LoadOrBuild(ctx, m.store, m.source, builder, today)
	cycle.Warnings = warns
	if built {
		if err := m.store.Save(sched); err != nil {
			cycle.Err = err
		}
	}

	live, err := m.source.List(ctx)
	if err != nil {
		cycle.Warnings = append(cycle.Warnings, schedule.Warning{
			Message: "task source unavailable, skipping reconciliation: " + err.Error(),
		})
	} else {
		cycle.Result = m.rec.Reconcile(sched, live, today)
		cycle.Warnings = append(cycle.Warnings, cycle.Result.Warnings...)
		if cycle.Result.Changed() {
			if err := m.store.Save(sched); err != nil {
				cycle.Err = err
			}
		}
	}

	cycle.Reminders = m.engine.Scan(sched, today)

	m.log(cycle)
	if m.onCycle != nil {
		m.onCycle(cycle)
	}
	return cycle
}

// log records the cycle in the plan's activity log, best-effort.
func (m *Monitor) log(c Cycle) {
	details := map[string]any{
		"trigger":   c.Trigger,
		"added":     len(c.Result.Added),
		"removed":   len(c.Result.Removed),
		"updated":   len(c.Result.Updated),
		"rebuilt":   c.Result.Rebuilt,
		"reminders": remind.CountByType(c.Reminders),
		"warnings":  len(c.Warnings),
	}
	if c.Err != nil {
		details["error"] = c.Err.Error()
	}
	activity.Record(m.cfg.Dir(), m.runID, "cycle", details)
}
