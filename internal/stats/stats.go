// Package stats derives dashboard data from a task/group snapshot.
// Everything here is a pure function of the snapshot and an injected
// "now"; nothing is cached across calls and no field is ever mutated.
package stats

import (
	"math"
	"sort"
	"time"

	"matrixdo/internal/task"
)

// DailyStat is one bucket of the 30-day creation/completion series.
type DailyStat struct {
	Date      string
	Created   int
	Completed int
	ByGroup   map[string]int
}

// StackedRow is the per-group projection of a daily bucket: every
// known group id gets a zero-filled column.
type StackedRow struct {
	Date        string
	DisplayDate string
	Groups      map[string]int
}

// QuadrantStat is one slice of the quadrant histogram.
type QuadrantStat struct {
	Name  string
	Value int
	Color string
}

// HeatmapCell is one cell of the 7x24 completion grid.
// Day is 0=Sunday..6=Saturday, Hour 0..23.
type HeatmapCell struct {
	Day   int
	Hour  int
	Count int
}

// StreakStats summarizes runs of consecutive completion days.
type StreakStats struct {
	Current        int
	Longest        int
	LastActiveDate string
}

// GroupInfo is a resolved group display name and color.
type GroupInfo struct {
	Name  string
	Color string
}

// MostUsedGroup is the group holding the most tasks.
type MostUsedGroup struct {
	Name  string
	Color string
	Count int
}

// QuickStats are the scalar dashboard numbers.
type QuickStats struct {
	TotalTasks             int
	CompletedTasks         int
	CompletionRate         float64
	AvgTasksPerDay         float64
	MostProductiveDay      string
	MostUsedGroup          *MostUsedGroup
	AvgCompletionTime      *float64 // hours
	TasksThisWeek          int
	TasksCompletedThisWeek int
}

// RecentCompletion is one entry of the recent-completions list.
type RecentCompletion struct {
	ID          string
	Title       string
	CompletedAt time.Time
	GroupName   string
	GroupColor  string
}

// Report bundles every derived structure computed from one snapshot.
type Report struct {
	Daily           []DailyStat
	Stacked         []StackedRow
	Quadrants       []QuadrantStat
	Heatmap         []HeatmapCell
	MaxHeatmapCount int
	Streak          StreakStats
	Quick           QuickStats
	Recent          []RecentCompletion
	GroupColors     map[string]GroupInfo
}

const recentLimit = 8

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Compute derives the full report from the given snapshot. now anchors
// the 30-day window, the week boundary, and the streak origin; callers
// pass wall-clock time, tests pass a fixture. The snapshot is treated
// as immutable.
func Compute(tasks []task.Task, groups []task.Group, now time.Time) Report {
	colors := groupColorMap(groups)
	daily := dailySeries(tasks, now)
	cells := heatmap(tasks)
	return Report{
		Daily:           daily,
		Stacked:         stackedSeries(daily, groups),
		Quadrants:       quadrantHistogram(tasks),
		Heatmap:         cells,
		MaxHeatmapCount: maxHeatmap(cells),
		Streak:          streaks(tasks, now),
		Quick:           quickStats(tasks, colors, now),
		Recent:          recentCompletions(tasks, colors),
		GroupColors:     colors,
	}
}

func groupColorMap(groups []task.Group) map[string]GroupInfo {
	m := map[string]GroupInfo{
		"": {Name: task.GeneralName, Color: task.GeneralColor},
	}
	for _, g := range groups {
		color := g.Color
		if color == "" {
			color = task.DefaultGroupColor
		}
		m[g.ID] = GroupInfo{Name: g.Name, Color: color}
	}
	return m
}

func dateOf(t time.Time) string {
	return t.Format(task.DateLayout)
}

func dailySeries(tasks []task.Task, now time.Time) []DailyStat {
	days := make([]DailyStat, 0, 30)
	index := make(map[string]int, 30)
	for i := 29; i >= 0; i-- {
		d := dateOf(now.AddDate(0, 0, -i))
		index[d] = len(days)
		days = append(days, DailyStat{Date: d, ByGroup: map[string]int{}})
	}

	for _, t := range tasks {
		if !t.CreatedAt.IsZero() {
			if i, ok := index[dateOf(t.CreatedAt)]; ok {
				days[i].Created++
				days[i].ByGroup[t.GroupID]++
			}
		}
		if t.Completed && !t.UpdatedAt.IsZero() {
			if i, ok := index[dateOf(t.UpdatedAt)]; ok {
				days[i].Completed++
			}
		}
	}
	return days
}

func stackedSeries(daily []DailyStat, groups []task.Group) []StackedRow {
	ids := []string{""}
	for _, g := range groups {
		ids = append(ids, g.ID)
	}

	rows := make([]StackedRow, 0, len(daily))
	for _, d := range daily {
		display := d.Date
		if parsed, err := time.Parse(task.DateLayout, d.Date); err == nil {
			display = parsed.Format("Jan 2")
		}
		row := StackedRow{Date: d.Date, DisplayDate: display, Groups: make(map[string]int, len(ids))}
		for _, id := range ids {
			row.Groups[id] = d.ByGroup[id]
		}
		rows = append(rows, row)
	}
	return rows
}

// quadrantHistogram counts incomplete tasks per quadrant. Unclassified
// tasks are skipped; all four entries are present even at zero.
func quadrantHistogram(tasks []task.Task) []QuadrantStat {
	counts := map[task.Quadrant]int{}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if q := t.Quadrant(); q != task.QuadrantNone {
			counts[q]++
		}
	}

	out := make([]QuadrantStat, 0, 4)
	for _, q := range task.Quadrants() {
		out = append(out, QuadrantStat{Name: q.DisplayName(), Value: counts[q], Color: q.Color()})
	}
	return out
}

func heatmap(tasks []task.Task) []HeatmapCell {
	var grid [7][24]int
	for _, t := range tasks {
		if t.Completed && !t.UpdatedAt.IsZero() {
			grid[int(t.UpdatedAt.Weekday())][t.UpdatedAt.Hour()]++
		}
	}

	cells := make([]HeatmapCell, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			cells = append(cells, HeatmapCell{Day: day, Hour: hour, Count: grid[day][hour]})
		}
	}
	return cells
}

// maxHeatmap floors the maximum at 1 so intensity normalization never
// divides by zero.
func maxHeatmap(cells []HeatmapCell) int {
	max := 1
	for _, c := range cells {
		if c.Count > max {
			max = c.Count
		}
	}
	return max
}

func streaks(tasks []task.Task, now time.Time) StreakStats {
	seen := map[string]bool{}
	for _, t := range tasks {
		if t.Completed && !t.UpdatedAt.IsZero() {
			seen[dateOf(t.UpdatedAt)] = true
		}
	}
	if len(seen) == 0 {
		return StreakStats{}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	longest, run := 0, 0
	var last time.Time
	for _, ds := range dates {
		d := atNoon(ds)
		if run == 0 {
			run = 1
		} else if consecutive(last, d) {
			run++
		} else {
			if run > longest {
				longest = run
			}
			run = 1
		}
		last = d
	}
	if run > longest {
		longest = run
	}

	current := 0
	today := dateOf(now)
	yesterday := dateOf(now.AddDate(0, 0, -1))
	if dates[0] == today || dates[0] == yesterday {
		current = 1
		for i := 1; i < len(dates); i++ {
			if consecutive(atNoon(dates[i-1]), atNoon(dates[i])) {
				current++
			} else {
				break
			}
		}
	}

	return StreakStats{Current: current, Longest: longest, LastActiveDate: dates[0]}
}

// atNoon anchors a date string at 12:00 local time so that day
// differences stay near whole numbers across DST transitions.
func atNoon(date string) time.Time {
	d, err := time.ParseInLocation(task.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}
	}
	return d.Add(12 * time.Hour)
}

// consecutive reports whether newer is exactly one calendar day after
// older, within a 0.1-day tolerance.
func consecutive(newer, older time.Time) bool {
	diff := newer.Sub(older).Hours() / 24
	return math.Abs(diff-1) < 0.1
}

func quickStats(tasks []task.Task, colors map[string]GroupInfo, now time.Time) QuickStats {
	qs := QuickStats{TotalTasks: len(tasks)}
	weekAgo := dateOf(now.AddDate(0, 0, -7))

	var dayCount [7]int
	completions := 0
	var totalHours float64
	timed := 0
	creationDays := map[string]bool{}
	groupCount := map[string]int{}
	var groupOrder []string

	for _, t := range tasks {
		if !t.CreatedAt.IsZero() {
			if dateOf(t.CreatedAt) >= weekAgo {
				qs.TasksThisWeek++
			}
			creationDays[dateOf(t.CreatedAt)] = true
		}
		if _, ok := groupCount[t.GroupID]; !ok {
			groupOrder = append(groupOrder, t.GroupID)
		}
		groupCount[t.GroupID]++

		if !t.Completed {
			continue
		}
		qs.CompletedTasks++
		if !t.UpdatedAt.IsZero() {
			if dateOf(t.UpdatedAt) >= weekAgo {
				qs.TasksCompletedThisWeek++
			}
			dayCount[int(t.UpdatedAt.Weekday())]++
			completions++
			if !t.CreatedAt.IsZero() {
				if delta := t.UpdatedAt.Sub(t.CreatedAt); delta > 0 {
					totalHours += delta.Hours()
					timed++
				}
			}
		}
	}

	if qs.TotalTasks > 0 {
		qs.CompletionRate = float64(qs.CompletedTasks) / float64(qs.TotalTasks) * 100
	}

	qs.MostProductiveDay = "N/A"
	if completions > 0 {
		best := 0
		for day := 1; day < 7; day++ {
			if dayCount[day] > dayCount[best] {
				best = day
			}
		}
		qs.MostProductiveDay = dayNames[best]
	}

	// Highest count wins; ties keep the group seen first in task order.
	if len(groupOrder) > 0 {
		topID, topCount := groupOrder[0], groupCount[groupOrder[0]]
		for _, id := range groupOrder[1:] {
			if groupCount[id] > topCount {
				topID, topCount = id, groupCount[id]
			}
		}
		info, ok := colors[topID]
		if !ok {
			info = GroupInfo{Name: task.GeneralName, Color: task.GeneralColor}
		}
		qs.MostUsedGroup = &MostUsedGroup{Name: info.Name, Color: info.Color, Count: topCount}
	}

	if timed > 0 {
		avg := round1(totalHours / float64(timed))
		qs.AvgCompletionTime = &avg
	}

	if len(creationDays) > 0 {
		denom := len(creationDays)
		if denom > 30 {
			denom = 30
		}
		qs.AvgTasksPerDay = round1(float64(qs.TotalTasks) / float64(denom))
	}

	return qs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func recentCompletions(tasks []task.Task, colors map[string]GroupInfo) []RecentCompletion {
	var done []task.Task
	for _, t := range tasks {
		if t.Completed && !t.UpdatedAt.IsZero() {
			done = append(done, t)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].UpdatedAt.After(done[j].UpdatedAt)
	})
	if len(done) > recentLimit {
		done = done[:recentLimit]
	}

	out := make([]RecentCompletion, 0, len(done))
	for _, t := range done {
		info, ok := colors[t.GroupID]
		if !ok {
			info = GroupInfo{Name: task.GeneralName, Color: task.GeneralColor}
		}
		out = append(out, RecentCompletion{
			ID:          t.ID,
			Title:       t.Title,
			CompletedAt: t.UpdatedAt,
			GroupName:   info.Name,
			GroupColor:  info.Color,
		})
	}
	return out
}
