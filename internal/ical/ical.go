// Package ical renders the task list as an iCalendar feed suitable
// for subscription from external calendar apps.
package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"matrixdo/internal/task"
)

// Timed tasks become a 30-minute block ending at the due time; tasks
// with only a date become all-day events.
const eventBlock = 30 * time.Minute

// Feed serializes all tasks with a due date into a PUBLISH calendar.
// now stamps the events; loc resolves date-only due values.
func Feed(tasks []task.Task, groups []task.Group, name string, now time.Time, loc *time.Location) string {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//%s//%s Calendar//EN", name, name))
	cal.SetXWRCalName(name)
	cal.SetXPublishedTTL("PT15M") // suggest 15-minute refresh

	for _, t := range tasks {
		due, timed, ok := t.Due(loc)
		if !ok {
			continue
		}

		groupName := "General Tasks"
		if t.GroupID != "" {
			if n, found := names[t.GroupID]; found {
				groupName = n
			}
		}

		event := cal.AddEvent(t.ID)
		event.SetDtStampTime(now)
		event.SetSummary(fmt.Sprintf("%s- %s", t.Title, groupName))
		event.SetDescription(description(t, groupName))
		if t.Completed {
			event.SetStatus(ics.ObjectStatusConfirmed)
		}

		if timed {
			start := due.Add(-eventBlock)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(eventBlock))
		} else {
			event.SetAllDayStartAt(due)
		}
	}

	return cal.Serialize()
}

func description(t task.Task, groupName string) string {
	var parts []string
	if t.Notes != "" {
		parts = append(parts, t.Notes)
	}
	due := "Due: " + t.DueDate
	if t.DueTime != "" {
		due += " at " + t.DueTime
	}
	parts = append(parts, due)
	parts = append(parts, "Priority: "+t.Quadrant().DisplayName())
	parts = append(parts, "List: "+groupName)
	if t.Completed {
		parts = append(parts, "Status: Completed")
	}
	return strings.Join(parts, "\n")
}
