package storage

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"matrixdo/internal/task"
)

// Store is the sqlite-backed persistence layer. Every task update
// refreshes updated_at, which the stats layer reads as the completion
// time of completed tasks.
type Store struct {
	db *sql.DB
}

// TaskDraft carries the caller-editable task fields for create/update.
type TaskDraft struct {
	Title          string
	Notes          string
	Urgent         *bool
	Important      *bool
	Reminder       bool
	DueDate        string
	DueTime        string
	GroupID        string
	AutoUrgentDays *int
	Order          int
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	urgent INTEGER DEFAULT NULL,
	important INTEGER DEFAULT NULL,
	reminder INTEGER NOT NULL DEFAULT 0,
	due_date TEXT DEFAULT NULL,
	due_time TEXT DEFAULT NULL,
	group_id TEXT DEFAULT NULL,
	auto_urgent_days INTEGER DEFAULT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS task_groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT DEFAULT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"reminder":         "ALTER TABLE tasks ADD COLUMN reminder INTEGER NOT NULL DEFAULT 0;",
		"auto_urgent_days": "ALTER TABLE tasks ADD COLUMN auto_urgent_days INTEGER DEFAULT NULL;",
		"sort_order":       "ALTER TABLE tasks ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FetchTasks returns all tasks ordered by sort_order, then creation.
func (s *Store) FetchTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, notes, urgent, important, reminder, due_date, due_time, group_id, auto_urgent_days, completed, sort_order, created_at, updated_at
FROM tasks ORDER BY sort_order, created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var urgent, important, autoDays sql.NullInt64
		var reminderInt, completedInt int
		var dueDate, dueTime, groupID sql.NullString
		var createdStr, updatedStr string

		if err := rows.Scan(&t.ID, &t.Title, &t.Notes, &urgent, &important, &reminderInt, &dueDate, &dueTime, &groupID, &autoDays, &completedInt, &t.Order, &createdStr, &updatedStr); err != nil {
			return nil, err
		}
		t.Urgent = nullBool(urgent)
		t.Important = nullBool(important)
		t.Reminder = reminderInt == 1
		t.Completed = completedInt == 1
		t.DueDate = dueDate.String
		t.DueTime = dueTime.String
		t.GroupID = groupID.String
		if autoDays.Valid {
			v := int(autoDays.Int64)
			t.AutoUrgentDays = &v
		}
		t.CreatedAt = parseTime(createdStr)
		t.UpdatedAt = parseTime(updatedStr)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask inserts a new task and returns it with id and timestamps
// assigned.
func (s *Store) CreateTask(d TaskDraft) (task.Task, error) {
	now := time.Now()
	t := task.Task{
		ID:             uuid.NewString(),
		Title:          d.Title,
		Notes:          d.Notes,
		Urgent:         d.Urgent,
		Important:      d.Important,
		Reminder:       d.Reminder,
		DueDate:        d.DueDate,
		DueTime:        d.DueTime,
		GroupID:        d.GroupID,
		AutoUrgentDays: d.AutoUrgentDays,
		Order:          d.Order,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := s.db.Exec(`INSERT INTO tasks (id, title, notes, urgent, important, reminder, due_date, due_time, group_id, auto_urgent_days, completed, sort_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?);`,
		t.ID, t.Title, t.Notes, boolVal(t.Urgent), boolVal(t.Important), boolInt(t.Reminder),
		nullStr(t.DueDate), nullStr(t.DueTime), nullStr(t.GroupID), intVal(t.AutoUrgentDays),
		t.Order, formatTime(now), formatTime(now))
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask replaces a task's editable fields and refreshes
// updated_at.
func (s *Store) UpdateTask(id string, d TaskDraft) error {
	_, err := s.db.Exec(`UPDATE tasks SET title = ?, notes = ?, urgent = ?, important = ?, reminder = ?, due_date = ?, due_time = ?, group_id = ?, auto_urgent_days = ?, sort_order = ?, updated_at = ? WHERE id = ?;`,
		d.Title, d.Notes, boolVal(d.Urgent), boolVal(d.Important), boolInt(d.Reminder),
		nullStr(d.DueDate), nullStr(d.DueTime), nullStr(d.GroupID), intVal(d.AutoUrgentDays),
		d.Order, formatTime(time.Now()), id)
	return err
}

// SetCompleted toggles completion. The refreshed updated_at becomes
// the task's completion time while it stays completed.
func (s *Store) SetCompleted(id string, done bool) error {
	_, err := s.db.Exec(`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?;`,
		boolInt(done), formatTime(time.Now()), id)
	return err
}

// SetUrgent flips the urgent flag to true. Used by the auto-urgent
// monitor; never touches important.
func (s *Store) SetUrgent(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET urgent = 1, updated_at = ? WHERE id = ?;`,
		formatTime(time.Now()), id)
	return err
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	return err
}

// FetchGroups returns all groups ordered by sort_order, then creation.
func (s *Store) FetchGroups() ([]task.Group, error) {
	rows, err := s.db.Query(`SELECT id, name, color, sort_order, created_at FROM task_groups ORDER BY sort_order, created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []task.Group
	for rows.Next() {
		var g task.Group
		var color sql.NullString
		var createdStr string
		if err := rows.Scan(&g.ID, &g.Name, &color, &g.Order, &createdStr); err != nil {
			return nil, err
		}
		g.Color = color.String
		g.CreatedAt = parseTime(createdStr)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) CreateGroup(name, color string, order int) (task.Group, error) {
	now := time.Now()
	g := task.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Order:     order,
		CreatedAt: now,
	}
	_, err := s.db.Exec(`INSERT INTO task_groups (id, name, color, sort_order, created_at) VALUES (?, ?, ?, ?, ?);`,
		g.ID, g.Name, nullStr(g.Color), g.Order, formatTime(now))
	if err != nil {
		return task.Group{}, err
	}
	return g, nil
}

func (s *Store) UpdateGroup(id, name, color string, order int) error {
	_, err := s.db.Exec(`UPDATE task_groups SET name = ?, color = ?, sort_order = ? WHERE id = ?;`,
		name, nullStr(color), order, id)
	return err
}

// DeleteGroup removes the group only. Tasks keep their group_id and
// fall back to the General bucket when it no longer resolves.
func (s *Store) DeleteGroup(id string) error {
	_, err := s.db.Exec(`DELETE FROM task_groups WHERE id = ?;`, id)
	return err
}

// CalendarToken returns the stable token identifying the iCal feed,
// creating one on first use.
func (s *Store) CalendarToken() (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'calendar_token';`).Scan(&token)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	token = uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO meta (key, value) VALUES ('calendar_token', ?);`, token); err != nil {
		return "", err
	}
	return token, nil
}

// formatTime keeps nanoseconds so that completion deltas stay strictly
// positive even for quick toggles. time.Parse with the plain RFC3339
// layout accepts the fractional part on the way back in.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a stored RFC3339 timestamp leniently: malformed
// values come back as the zero time and drop out of the stats buckets.
func parseTime(v string) time.Time {
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return parsed.Local()
}

func nullBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 == 1
	return &b
}

func boolVal(v *bool) any {
	if v == nil {
		return nil
	}
	return boolInt(*v)
}

func intVal(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
