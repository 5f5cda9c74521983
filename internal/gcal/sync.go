package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/twiced-technology-gmbh/taskplan/internal/schedule"
)

// taskIDProperty is the private extended property that ties a calendar
// event to its task.
const taskIDProperty = "taskplan_id"

// Client syncs a schedule into one Google calendar.
type Client struct {
	srv        *calendar.Service
	calendarID string
}

// NewClient creates a Client for the given calendar id ("primary" for
// the account's default calendar).
func NewClient(srv *calendar.Service, calendarID string) *Client {
	return &Client{srv: srv, calendarID: calendarID}
}

// SyncResult summarizes one push.
type SyncResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Sync pushes every scheduled, non-completed task as an all-day event
// spanning its start and end dates. Events are matched by task id:
// missing ones are created, drifted ones patched, and events whose
// task has left the schedule are deleted. The schedule itself is never
// modified; a failed API call aborts the push with an error and leaves
// the calendar partially synced, which the next run repairs.
func (c *Client) Sync(ctx context.Context, sched *schedule.Schedule) (SyncResult, error) {
	var res SyncResult

	existing, err := c.taggedEvents(ctx)
	if err != nil {
		return res, err
	}

	want := make(map[string]bool, len(sched.Tasks))
	for i := range sched.Tasks {
		st := &sched.Tasks[i]
		if st.Completed() || !st.Scheduled() {
			continue
		}
		want[st.ID] = true

		ev, ok := existing[st.ID]
		if !ok {
			if _, err := c.srv.Events.Insert(c.calendarID, eventFor(st)).Context(ctx).Do(); err != nil {
				return res, fmt.Errorf("creating event for task %s: %w", st.ID, err)
			}
			res.Created++
			continue
		}
		if patch := diffEvent(st, ev); patch != nil {
			if _, err := c.srv.Events.Patch(c.calendarID, ev.Id, patch).Context(ctx).Do(); err != nil {
				return res, fmt.Errorf("updating event for task %s: %w", st.ID, err)
			}
			res.Updated++
		} else {
			res.Unchanged++
		}
	}

	for id, ev := range existing {
		if want[id] {
			continue
		}
		if err := c.srv.Events.Delete(c.calendarID, ev.Id).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("deleting orphaned event for task %s: %w", id, err)
		}
		res.Deleted++
	}

	return res, nil
}

// taggedEvents returns the calendar's taskplan-managed events keyed by
// task id, paging through the full list.
func (c *Client) taggedEvents(ctx context.Context) (map[string]*calendar.Event, error) {
	events := make(map[string]*calendar.Event)
	pageToken := ""
	for {
		call := c.srv.Events.List(c.calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(time.Now().AddDate(-1, 0, 0).Format(time.RFC3339)).
			MaxResults(2500). //nolint:mnd // API page-size ceiling
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing calendar events: %w", err)
		}
		for _, ev := range page.Items {
			if ev.ExtendedProperties == nil {
				continue
			}
			if id := ev.ExtendedProperties.Private[taskIDProperty]; id != "" {
				events[id] = ev
			}
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			return events, nil
		}
	}
}

// eventFor builds the all-day event for a scheduled task. All-day
// events use an exclusive end date, hence the extra day.
func eventFor(st *schedule.ScheduledTask) *calendar.Event {
	return &calendar.Event{
		Summary:     st.Name,
		Description: fmt.Sprintf("taskplan task %s (%s, %s priority)", st.ID, st.Status, st.Priority),
		Start:       &calendar.EventDateTime{Date: st.StartDate.String()},
		End:         &calendar.EventDateTime{Date: st.EndDate.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: st.ID},
		},
	}
}

// diffEvent returns a patch bringing ev in line with the task, or nil
// when nothing drifted.
func diffEvent(st *schedule.ScheduledTask, ev *calendar.Event) *calendar.Event {
	fresh := eventFor(st)
	drifted := ev.Summary != fresh.Summary ||
		ev.Description != fresh.Description ||
		ev.Start == nil || ev.Start.Date != fresh.Start.Date ||
		ev.End == nil || ev.End.Date != fresh.End.Date
	if !drifted {
		return nil
	}
	return fresh
}
