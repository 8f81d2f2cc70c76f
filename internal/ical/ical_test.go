package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"matrixdo/internal/task"
)

var feedNow = time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

// unfold undoes RFC 5545 line folding so assertions can match whole
// property values.
func unfold(s string) string {
	return strings.ReplaceAll(s, "\r\n ", "")
}

func TestFeedSkipsTasksWithoutDueDate(t *testing.T) {
	out := Feed([]task.Task{{ID: "t1", Title: "no date"}}, nil, "matrixdo", feedNow, time.UTC)
	assert.NotContains(t, out, "no date")
	assert.Contains(t, out, "METHOD:PUBLISH")
}

func TestFeedTimedEventBlock(t *testing.T) {
	tasks := []task.Task{{
		ID:      "t1",
		Title:   "Standup",
		DueDate: "2026-02-20",
		DueTime: "09:00",
	}}

	out := Feed(tasks, nil, "matrixdo", feedNow, time.UTC)
	assert.Contains(t, out, "SUMMARY:Standup- General Tasks")
	// 30-minute block ending at the due time.
	assert.Contains(t, out, "DTSTART:20260220T083000Z")
	assert.Contains(t, out, "DTEND:20260220T090000Z")
}

func TestFeedAllDayEvent(t *testing.T) {
	tasks := []task.Task{{
		ID:      "t1",
		Title:   "Pay rent",
		DueDate: "2026-03-01",
	}}

	out := Feed(tasks, nil, "matrixdo", feedNow, time.UTC)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260301")
}

func TestFeedDescriptionAndGroup(t *testing.T) {
	groups := []task.Group{{ID: "g1", Name: "Work"}}
	tasks := []task.Task{{
		ID:        "t1",
		Title:     "Report",
		Notes:     "with appendix",
		Urgent:    task.Bool(true),
		Important: task.Bool(true),
		DueDate:   "2026-02-20",
		GroupID:   "g1",
		Completed: true,
	}}

	out := unfold(Feed(tasks, groups, "matrixdo", feedNow, time.UTC))
	assert.Contains(t, out, "SUMMARY:Report- Work")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "Priority: Do First")
	assert.Contains(t, out, "List: Work")
	assert.Contains(t, out, "Status: Completed")
}

func TestFeedUnresolvedGroupFallsBack(t *testing.T) {
	tasks := []task.Task{{
		ID:      "t1",
		Title:   "Orphan",
		DueDate: "2026-02-20",
		GroupID: "missing",
	}}

	out := Feed(tasks, nil, "matrixdo", feedNow, time.UTC)
	assert.Contains(t, out, "SUMMARY:Orphan- General Tasks")
}

func TestFeedEventCount(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "one", DueDate: "2026-02-20"},
		{ID: "b", Title: "two", DueDate: "2026-02-21"},
		{ID: "c", Title: "dateless"},
	}

	out := Feed(tasks, nil, "matrixdo", feedNow, time.UTC)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
}
