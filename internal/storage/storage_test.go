package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixdo/internal/task"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFetchTask(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreateTask(TaskDraft{
		Title:          "Write report",
		Notes:          "quarterly numbers",
		Urgent:         task.Bool(true),
		Important:      task.Bool(false),
		DueDate:        "2026-03-01",
		DueTime:        "14:00",
		AutoUrgentDays: task.Int(2),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "quarterly numbers", got.Notes)
	require.NotNil(t, got.Urgent)
	assert.True(t, *got.Urgent)
	require.NotNil(t, got.Important)
	assert.False(t, *got.Important)
	assert.Equal(t, "2026-03-01", got.DueDate)
	assert.Equal(t, "14:00", got.DueTime)
	require.NotNil(t, got.AutoUrgentDays)
	assert.Equal(t, 2, *got.AutoUrgentDays)
	assert.False(t, got.Completed)
}

func TestUnsetFlagsStayUnset(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.CreateTask(TaskDraft{Title: "unclassified"})
	require.NoError(t, err)

	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].Urgent)
	assert.Nil(t, tasks[0].Important)
	assert.Nil(t, tasks[0].AutoUrgentDays)
	assert.Equal(t, task.QuadrantNone, tasks[0].Quadrant())
}

func TestUpdateTaskRefreshesUpdatedAt(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreateTask(TaskDraft{Title: "before"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.UpdateTask(created.ID, TaskDraft{Title: "after", Urgent: task.Bool(false), Important: task.Bool(true)}))

	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "after", tasks[0].Title)
	assert.Equal(t, task.QuadrantSchedule, tasks[0].Quadrant())
	assert.True(t, tasks[0].UpdatedAt.After(tasks[0].CreatedAt))
}

func TestSetCompleted(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreateTask(TaskDraft{Title: "toggle me"})
	require.NoError(t, err)

	require.NoError(t, s.SetCompleted(created.ID, true))
	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, s.SetCompleted(created.ID, false))
	tasks, err = s.FetchTasks()
	require.NoError(t, err)
	assert.False(t, tasks[0].Completed)
}

func TestSetUrgentLeavesImportantAlone(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreateTask(TaskDraft{Title: "escalate", Urgent: task.Bool(false)})
	require.NoError(t, err)

	require.NoError(t, s.SetUrgent(created.ID))
	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.NotNil(t, tasks[0].Urgent)
	assert.True(t, *tasks[0].Urgent)
	assert.Nil(t, tasks[0].Important)
}

func TestDeleteTask(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreateTask(TaskDraft{Title: "doomed"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(created.ID))

	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFetchTasksOrdering(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.CreateTask(TaskDraft{Title: "second", Order: 2})
	require.NoError(t, err)
	_, err = s.CreateTask(TaskDraft{Title: "first", Order: 1})
	require.NoError(t, err)

	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestGroupCRUD(t *testing.T) {
	s := setupTestStore(t)

	g, err := s.CreateGroup("Work", "#6366f1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	require.NoError(t, s.UpdateGroup(g.ID, "Office", "", 1))
	groups, err := s.FetchGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Office", groups[0].Name)
	assert.Equal(t, "", groups[0].Color)

	require.NoError(t, s.DeleteGroup(g.ID))
	groups, err = s.FetchGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDeleteGroupKeepsTasks(t *testing.T) {
	s := setupTestStore(t)

	g, err := s.CreateGroup("Work", "", 0)
	require.NoError(t, err)
	created, err := s.CreateTask(TaskDraft{Title: "orphan", GroupID: g.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteGroup(g.ID))
	tasks, err := s.FetchTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.Equal(t, g.ID, tasks[0].GroupID)
}

func TestCalendarTokenStable(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.CalendarToken()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.CalendarToken()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
