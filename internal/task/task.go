package task

import "time"

// Quadrant is an Eisenhower-matrix priority category. It is never
// persisted; it is always derived from the urgent/important flags.
type Quadrant string

const (
	// QuadrantNone means the task has not been classified yet: at
	// least one of the two flags is still unset.
	QuadrantNone     Quadrant = ""
	QuadrantDo       Quadrant = "DO"
	QuadrantSchedule Quadrant = "SCHEDULE"
	QuadrantDelegate Quadrant = "DELEGATE"
	QuadrantDelete   Quadrant = "DELETE"
)

const (
	// DateLayout is the calendar-date format used for due dates and
	// day bucketing throughout the app.
	DateLayout = "2006-01-02"
	// TimeLayout is the due time-of-day format.
	TimeLayout = "15:04"
)

// Task is a single to-do item. Urgent and Important are tri-state:
// nil means the user has not classified that axis yet. DueDate and
// DueTime are stored as strings in DateLayout/TimeLayout, empty when
// absent; DueTime is only meaningful together with DueDate.
//
// UpdatedAt is refreshed on every write and doubles as the completion
// timestamp while Completed is true.
type Task struct {
	ID             string
	Title          string
	Notes          string
	Urgent         *bool
	Important      *bool
	Reminder       bool
	DueDate        string
	DueTime        string
	GroupID        string
	AutoUrgentDays *int
	Completed      bool
	Order          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Group is a named bucket of tasks. An empty Task.GroupID refers to
// the implicit "General" group, which is not stored.
type Group struct {
	ID        string
	Name      string
	Color     string
	Order     int
	CreatedAt time.Time
}

// GeneralName and GeneralColor are the display fallbacks for tasks
// without a resolvable group.
const (
	GeneralName  = "General"
	GeneralColor = "#64748b"

	// DefaultGroupColor is applied when a stored group has no color.
	DefaultGroupColor = "#6366f1"
)

// Classify maps the two tri-state flags to a quadrant. Either flag
// unset yields QuadrantNone. Total over its input domain; depends on
// nothing else.
func Classify(urgent, important *bool) Quadrant {
	if urgent == nil || important == nil {
		return QuadrantNone
	}
	switch {
	case *urgent && *important:
		return QuadrantDo
	case !*urgent && *important:
		return QuadrantSchedule
	case *urgent && !*important:
		return QuadrantDelegate
	default:
		return QuadrantDelete
	}
}

// Quadrant classifies the task from its own flags.
func (t Task) Quadrant() Quadrant {
	return Classify(t.Urgent, t.Important)
}

// DisplayName returns the user-facing quadrant label.
func (q Quadrant) DisplayName() string {
	switch q {
	case QuadrantDo:
		return "Do First"
	case QuadrantSchedule:
		return "Schedule"
	case QuadrantDelegate:
		return "Delegate"
	case QuadrantDelete:
		return "Eliminate"
	default:
		return "Unclassified"
	}
}

// Color returns the fixed chart color for the quadrant.
func (q Quadrant) Color() string {
	switch q {
	case QuadrantDo:
		return "#ef4444"
	case QuadrantSchedule:
		return "#3b82f6"
	case QuadrantDelegate:
		return "#f59e0b"
	case QuadrantDelete:
		return "#6b7280"
	default:
		return GeneralColor
	}
}

// Quadrants lists the four real quadrants in display order.
func Quadrants() []Quadrant {
	return []Quadrant{QuadrantDo, QuadrantSchedule, QuadrantDelegate, QuadrantDelete}
}

// Due parses the task's due date, and time-of-day when present, in the
// given location. ok is false when DueDate is absent or malformed.
// Without a DueTime the result is midnight of the due date.
func (t Task) Due(loc *time.Location) (due time.Time, timed bool, ok bool) {
	if t.DueDate == "" {
		return time.Time{}, false, false
	}
	d, err := time.ParseInLocation(DateLayout, t.DueDate, loc)
	if err != nil {
		return time.Time{}, false, false
	}
	if t.DueTime == "" {
		return d, false, true
	}
	tod, err := time.ParseInLocation(TimeLayout, t.DueTime, loc)
	if err != nil {
		return d, false, true
	}
	return d.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true, true
}

// Bool is a convenience for building the tri-state flag fields.
func Bool(v bool) *bool { return &v }

// Int is the AutoUrgentDays counterpart of Bool.
func Int(v int) *int { return &v }
