package autourgent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"matrixdo/internal/task"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 9, 30, 0, 0, time.Local)
}

func escalatable() task.Task {
	return task.Task{
		ID:             "t1",
		DueDate:        "2026-02-20",
		AutoUrgentDays: task.Int(3),
		Urgent:         task.Bool(false),
	}
}

func TestScanTriggersPastLeadTime(t *testing.T) {
	// Trigger date is 2026-02-17.
	ids := Scan([]task.Task{escalatable()}, day(2026, 2, 19))
	assert.Equal(t, []string{"t1"}, ids)
}

func TestScanTriggersOnTriggerDate(t *testing.T) {
	ids := Scan([]task.Task{escalatable()}, day(2026, 2, 17))
	assert.Equal(t, []string{"t1"}, ids)
}

func TestScanNotYetDue(t *testing.T) {
	ids := Scan([]task.Task{escalatable()}, day(2026, 2, 10))
	assert.Empty(t, ids)
}

func TestScanSkipsCompleted(t *testing.T) {
	tk := escalatable()
	tk.Completed = true
	assert.Empty(t, Scan([]task.Task{tk}, day(2026, 3, 1)))
}

func TestScanSkipsAlreadyUrgent(t *testing.T) {
	tk := escalatable()
	tk.Urgent = task.Bool(true)
	assert.Empty(t, Scan([]task.Task{tk}, day(2026, 2, 19)))
}

func TestScanSkipsWithoutDueDateOrRule(t *testing.T) {
	noDue := escalatable()
	noDue.DueDate = ""
	noRule := escalatable()
	noRule.AutoUrgentDays = nil
	assert.Empty(t, Scan([]task.Task{noDue, noRule}, day(2026, 2, 19)))
}

func TestScanUnsetUrgentStillTriggers(t *testing.T) {
	tk := escalatable()
	tk.Urgent = nil
	assert.Equal(t, []string{"t1"}, Scan([]task.Task{tk}, day(2026, 2, 19)))
}

type fakeStore struct {
	tasks    []task.Task
	urgent   []string
	fetchErr error
	setErr   error
}

func (f *fakeStore) FetchTasks() ([]task.Task, error) { return f.tasks, f.fetchErr }
func (f *fakeStore) SetUrgent(id string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.urgent = append(f.urgent, id)
	return nil
}

func TestMonitorRunsImmediatelyOnStart(t *testing.T) {
	tk := escalatable()
	tk.DueDate = time.Now().AddDate(0, 0, 1).Format(task.DateLayout)
	store := &fakeStore{tasks: []task.Task{tk}}

	m := New(store, time.Hour)
	assert.NoError(t, m.Start())
	defer m.Stop()

	assert.Equal(t, []string{"t1"}, store.urgent)
}

func TestMonitorStopWithoutStart(t *testing.T) {
	m := New(&fakeStore{}, 0)
	m.Stop()
}

func TestMonitorIgnoresSetErrors(t *testing.T) {
	tk := escalatable()
	tk.DueDate = time.Now().Format(task.DateLayout)
	store := &fakeStore{tasks: []task.Task{tk}, setErr: assert.AnError}

	m := New(store, time.Hour)
	assert.NoError(t, m.Start())
	m.Stop()
	assert.Empty(t, store.urgent)
}
