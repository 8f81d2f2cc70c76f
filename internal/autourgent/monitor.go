// Package autourgent escalates tasks to urgent once their configured
// lead time before the due date has been reached.
package autourgent

import (
	"fmt"
	"log"
	"time"

	rcron "github.com/robfig/cron/v3"

	"matrixdo/internal/task"
)

// DefaultInterval is how often the monitor re-evaluates the task set.
const DefaultInterval = 5 * time.Minute

// Store is the slice of the persistence layer the monitor needs.
type Store interface {
	FetchTasks() ([]task.Task, error)
	SetUrgent(id string) error
}

// Scan returns the ids of tasks due for escalation at the given date.
// A task matches when autoUrgentDays and dueDate are set, it is not
// completed, urgent is not already true, and today has reached
// dueDate minus autoUrgentDays (date-only, inclusive). The predicate
// is idempotent: once a task is urgent it no longer matches.
func Scan(tasks []task.Task, today time.Time) []string {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	var ids []string
	for _, t := range tasks {
		if t.AutoUrgentDays == nil || t.DueDate == "" || t.Completed {
			continue
		}
		if t.Urgent != nil && *t.Urgent {
			continue
		}
		due, err := time.ParseInLocation(task.DateLayout, t.DueDate, today.Location())
		if err != nil {
			continue
		}
		trigger := due.AddDate(0, 0, -*t.AutoUrgentDays)
		if !day.Before(trigger) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Monitor runs Scan on a fixed schedule and fires one SetUrgent per
// match. Mutations are fire-and-forget: a failed write is retried
// implicitly because the task still matches on the next tick.
type Monitor struct {
	store Store
	spec  string
	cron  *rcron.Cron
}

// New builds a monitor ticking at the given interval (DefaultInterval
// when zero or negative).
func New(store Store, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		store: store,
		spec:  fmt.Sprintf("@every %s", interval),
	}
}

// Start runs one check immediately, then on every tick until Stop.
func (m *Monitor) Start() error {
	m.runOnce()

	c := rcron.New()
	if _, err := c.AddFunc(m.spec, m.runOnce); err != nil {
		return fmt.Errorf("schedule %q: %w", m.spec, err)
	}
	c.Start()
	m.cron = c
	return nil
}

// Stop tears down the schedule. Safe to call without Start.
func (m *Monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
		m.cron = nil
	}
}

func (m *Monitor) runOnce() {
	tasks, err := m.store.FetchTasks()
	if err != nil {
		log.Printf("[autourgent] fetch failed: %v", err)
		return
	}
	for _, id := range Scan(tasks, time.Now()) {
		if err := m.store.SetUrgent(id); err != nil {
			// Left for the next tick; the task still matches.
			log.Printf("[autourgent] escalate %s failed: %v", id, err)
			continue
		}
		log.Printf("[autourgent] escalated task %s", id)
	}
}
