package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"matrixdo/internal/autourgent"
	"matrixdo/internal/config"
	"matrixdo/internal/stats"
	"matrixdo/internal/storage"
	"matrixdo/internal/task"
)

type tab int

const (
	tabTasks tab = iota
	tabMatrix
	tabCalendar
	tabStats
)

func (t tab) label() string {
	switch t {
	case tabTasks:
		return "Tasks"
	case tabMatrix:
		return "Matrix"
	case tabCalendar:
		return "Calendar"
	default:
		return "Stats"
	}
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeGroups
	modeGroupInput
)

// editState holds the form values for the task editor. Flags and the
// auto-urgent threshold are edited as text and parsed on save.
type editState struct {
	taskID    string
	title     string
	notes     string
	urgent    string
	important string
	dueDate   string
	dueTime   string
	group     string
	autoDays  string
	index     int
}

type groupAction int

const (
	groupActionAdd groupAction = iota
	groupActionRename
)

type Model struct {
	store  *storage.Store
	cfg    config.Config
	tasks  []task.Task
	groups []task.Group

	tab        tab
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	filter     string
	month      time.Time
	width      int
	confirmDel bool
	pendingDel *task.Task
	edit       *editState

	groupCursor  int
	groupAct     groupAction
	groupEditID  string
	confirmGroup bool
	pendingGroup *task.Group
}

// Run loads the snapshot, starts the auto-urgent monitor, and blocks
// in the TUI until quit. The monitor is stopped before returning.
func Run(store *storage.Store, cfg config.Config) error {
	tasks, err := store.FetchTasks()
	if err != nil {
		return err
	}
	groups, err := store.FetchGroups()
	if err != nil {
		return err
	}

	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	now := time.Now()
	m := Model{
		store:  store,
		cfg:    cfg,
		tasks:  tasks,
		groups: groups,
		cursor: 0,
		mode:   modeList,
		input:  ti,
		status: "Press 'a' to add, space to toggle, 'e' to edit, 'g' for lists.",
		filter: strings.ToLower(cfg.DefaultFilter),
		month:  time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}

	monitor := autourgent.New(store, cfg.MonitorInterval())
	if err := monitor.Start(); err != nil {
		return err
	}
	defer monitor.Stop()

	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if m.edit != nil {
			return m.updateEditMode(key, msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(key)
		}
		if m.confirmGroup {
			return m.updateGroupDeleteConfirm(key)
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(key, msg)
		case modeGroups:
			return m.updateGroupsMode(key)
		case modeGroupInput:
			return m.updateGroupInput(key, msg)
		default:
			return m.updateListMode(key)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// visible applies the completion filter to the task snapshot. The
// cursor always indexes this slice, never m.tasks directly.
func (m Model) visible() []task.Task {
	switch m.filter {
	case "active":
		var out []task.Task
		for _, t := range m.tasks {
			if !t.Completed {
				out = append(out, t)
			}
		}
		return out
	case "done":
		var out []task.Task
		for _, t := range m.tasks {
			if t.Completed {
				out = append(out, t)
			}
		}
		return out
	default:
		return m.tasks
	}
}

func (m *Model) reload() error {
	tasks, err := m.store.FetchTasks()
	if err != nil {
		return err
	}
	groups, err := m.store.FetchGroups()
	if err != nil {
		return err
	}
	m.tasks = tasks
	m.groups = groups
	m.cursor = clampCursor(m.cursor, len(m.visible()))
	return nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	visible := m.visible()
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.NextTab:
		m.tab = (m.tab + 1) % 4
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		}
		return m, nil
	case m.cfg.Keys.PrevTab:
		m.tab = (m.tab + 3) % 4
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		}
		return m, nil
	case m.cfg.Keys.Down, "down":
		if len(visible) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(visible))
		}
	case "f":
		m.filter = nextFilter(m.filter)
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		m.status = "Filter: " + m.filter
	case m.cfg.Keys.PrevMonth:
		if m.tab == tabCalendar {
			m.month = m.month.AddDate(0, -1, 0)
		}
	case m.cfg.Keys.NextMonth:
		if m.tab == tabCalendar {
			m.month = m.month.AddDate(0, 1, 0)
		}
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Task title"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add mode: type a title and press Enter"
	case m.cfg.Keys.Groups:
		m.mode = modeGroups
		m.groupCursor = clampCursor(m.groupCursor, len(m.groups))
		m.status = "Lists: 'a' add, 'r' rename, 'd' delete, esc back"
	case m.cfg.Keys.Toggle:
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.cursor]
		if err := m.store.SetCompleted(t.ID, !t.Completed); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Toggled task"
		}
	case m.cfg.Keys.Delete:
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Edit:
		if len(visible) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startEdit(visible[m.cursor])
	}
	return m, nil
}

func nextFilter(f string) string {
	switch f {
	case "all":
		return "active"
	case "active":
		return "done"
	default:
		return "all"
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		if _, err := m.store.CreateTask(storage.TaskDraft{Title: title, Order: len(m.tasks)}); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Added task"
			m.cursor = clampCursor(len(m.visible())-1, len(m.visible()))
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.store.DeleteTask(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

// Task editor

func editFields() []string {
	return []string{
		"title", "notes", "urgent (y/n/-)", "important (y/n/-)",
		"due date (YYYY-MM-DD)", "due time (HH:MM)", "list", "auto-urgent days",
	}
}

func (m Model) startEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.edit = &editState{
		taskID:    t.ID,
		title:     t.Title,
		notes:     t.Notes,
		urgent:    triToYN(t.Urgent),
		important: triToYN(t.Important),
		dueDate:   t.DueDate,
		dueTime:   t.DueTime,
		group:     m.groupName(t.GroupID),
		autoDays:  intToStr(t.AutoUrgentDays),
		index:     0,
	}
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.input.Focus()
	m.mode = modeEdit
	m.status = "Edit: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.edit = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index+1, len(editFields()))
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	case "shift+tab", "up":
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index-1, len(editFields()))
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.edit.setCurrentValue(m.input.Value())
		if m.edit.index >= len(editFields())-1 {
			return m.saveEdit()
		}
		m.edit.index++
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	e := m.edit
	title := strings.TrimSpace(e.title)
	if title == "" {
		m.status = "Title cannot be empty"
		return m, nil
	}
	dueDate, err := parseDateField(e.dueDate)
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		return m, nil
	}
	dueTime, err := parseTimeField(e.dueTime)
	if err != nil {
		m.status = fmt.Sprintf("due time invalid: %v", err)
		return m, nil
	}
	if dueDate == "" {
		dueTime = ""
	}
	autoDays, err := parseDaysField(e.autoDays)
	if err != nil {
		m.status = fmt.Sprintf("auto-urgent days invalid: %v", err)
		return m, nil
	}
	groupID, err := m.resolveGroup(e.group)
	if err != nil {
		m.status = fmt.Sprintf("list failed: %v", err)
		return m, nil
	}

	var order int
	var reminder bool
	for _, t := range m.tasks {
		if t.ID == e.taskID {
			order = t.Order
			reminder = t.Reminder
			break
		}
	}
	draft := storage.TaskDraft{
		Title:          title,
		Notes:          strings.TrimSpace(e.notes),
		Urgent:         ynToTri(e.urgent),
		Important:      ynToTri(e.important),
		Reminder:       reminder,
		DueDate:        dueDate,
		DueTime:        dueTime,
		GroupID:        groupID,
		AutoUrgentDays: autoDays,
		Order:          order,
	}
	if err := m.store.UpdateTask(e.taskID, draft); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	taskID := e.taskID
	m.edit = nil
	m.mode = modeList
	m.input.Blur()
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}
	for i, t := range m.visible() {
		if t.ID == taskID {
			m.cursor = clampCursor(i, len(m.visible()))
			break
		}
	}
	m.status = "Saved task"
	return m, nil
}

// resolveGroup maps a typed list name to a group id. Empty means the
// implicit General bucket; an unknown name creates the list on the
// spot. Matching is case-insensitive.
func (m *Model) resolveGroup(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, task.GeneralName) {
		return "", nil
	}
	for _, g := range m.groups {
		if strings.EqualFold(g.Name, name) {
			return g.ID, nil
		}
	}
	g, err := m.store.CreateGroup(name, task.DefaultGroupColor, len(m.groups))
	if err != nil {
		return "", err
	}
	m.groups = append(m.groups, g)
	return g.ID, nil
}

func (m Model) groupName(id string) string {
	if id == "" {
		return ""
	}
	for _, g := range m.groups {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// Group management

func (m Model) updateGroupsMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc", m.cfg.Keys.Quit:
		m.mode = modeList
		m.status = "Back to tasks"
		return m, nil
	case m.cfg.Keys.Down, "down":
		if len(m.groups) == 0 {
			return m, nil
		}
		m.groupCursor = clampCursor(m.groupCursor+1, len(m.groups))
	case m.cfg.Keys.Up, "up":
		if m.groupCursor > 0 {
			m.groupCursor = clampCursor(m.groupCursor-1, len(m.groups))
		}
	case m.cfg.Keys.Add:
		m.groupAct = groupActionAdd
		m.mode = modeGroupInput
		m.input.Placeholder = "List name"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "New list: type a name and press Enter"
	case "r":
		if len(m.groups) == 0 {
			m.status = "No lists to rename"
			return m, nil
		}
		g := m.groups[m.groupCursor]
		m.groupAct = groupActionRename
		m.groupEditID = g.ID
		m.mode = modeGroupInput
		m.input.Placeholder = "List name"
		m.input.SetValue(g.Name)
		m.input.Focus()
		m.status = fmt.Sprintf("Rename \"%s\"", g.Name)
	case m.cfg.Keys.Delete:
		if len(m.groups) == 0 {
			m.status = "No lists to delete"
			return m, nil
		}
		g := m.groups[m.groupCursor]
		m.confirmGroup = true
		m.pendingGroup = &g
		m.status = fmt.Sprintf("Delete list \"%s\"? Its tasks move to General. y/n", g.Name)
	}
	return m, nil
}

func (m Model) updateGroupInput(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeGroups
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.status = "Name cannot be empty"
			return m, nil
		}
		var err error
		if m.groupAct == groupActionRename {
			for _, g := range m.groups {
				if g.ID == m.groupEditID {
					err = m.store.UpdateGroup(g.ID, name, g.Color, g.Order)
					break
				}
			}
		} else {
			_, err = m.store.CreateGroup(name, task.DefaultGroupColor, len(m.groups))
		}
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Saved list"
			m.groupCursor = clampCursor(m.groupCursor, len(m.groups))
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeGroups
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateGroupDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmGroup = false
		m.pendingGroup = nil
		return m, nil
	case "y", "Y":
		if m.pendingGroup == nil {
			m.confirmGroup = false
			return m, nil
		}
		if err := m.store.DeleteGroup(m.pendingGroup.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Deleted list"
			m.groupCursor = clampCursor(m.groupCursor, len(m.groups))
		}
		m.confirmGroup = false
		m.pendingGroup = nil
		return m, nil
	default:
		return m, nil
	}
}

// Views

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("matrixdo"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.mode == modeGroups || m.mode == modeGroupInput || m.confirmGroup:
		b.WriteString(m.renderGroups())
	case m.edit != nil:
		b.WriteString(m.renderEditForm())
	default:
		switch m.tab {
		case tabTasks:
			b.WriteString(m.renderTaskList())
		case tabMatrix:
			b.WriteString(m.renderMatrix())
		case tabCalendar:
			b.WriteString(m.renderCalendar())
		default:
			b.WriteString(m.renderStats())
		}
	}

	if m.mode == modeAdd || m.mode == modeGroupInput || m.edit != nil {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.renderHelp()))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, 4)
	for _, t := range []tab{tabTasks, tabMatrix, tabCalendar, tabStats} {
		if t == m.tab {
			parts = append(parts, activeTabStyle.Render(t.label()))
		} else {
			parts = append(parts, inactiveTabStyle.Render(t.label()))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	if m.mode == modeGroups {
		return fmt.Sprintf("%s/%s move • %s add • r rename • %s delete • %s back",
			k.Up, k.Down, k.Add, k.Delete, k.Cancel)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit • %s delete • f filter • %s lists • %s/%s tab • %s quit",
		k.Up, k.Down, k.Add, k.Toggle, k.Edit, k.Delete, k.Groups, k.NextTab, k.PrevTab, k.Quit)
}

func (m Model) renderTaskList() string {
	visible := m.visible()
	if len(visible) == 0 {
		return "No tasks. Press 'a' to add one."
	}
	var b strings.Builder
	for i, t := range visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		line := fmt.Sprintf("%s %s %s", cursor, checkbox, t.Title)
		if q := t.Quadrant(); q != task.QuadrantNone {
			line += " " + quadrantStyle(q).Render("("+q.DisplayName()+")")
		}
		if t.DueDate != "" {
			due := t.DueDate
			if t.DueTime != "" {
				due += " " + t.DueTime
			}
			line += dimStyle.Render(" due " + due)
		}
		if name := m.groupName(t.GroupID); name != "" {
			line += dimStyle.Render(" @" + name)
		}

		if m.cursor == i && m.mode == modeList {
			line = selectedStyle.Render(line)
		} else if t.Completed {
			line = doneStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMatrix() string {
	byQuadrant := map[task.Quadrant][]task.Task{}
	var unclassified []task.Task
	for _, t := range m.tasks {
		if t.Completed {
			continue
		}
		q := t.Quadrant()
		if q == task.QuadrantNone {
			unclassified = append(unclassified, t)
			continue
		}
		byQuadrant[q] = append(byQuadrant[q], t)
	}

	paneWidth := 38
	if m.width > 80 {
		paneWidth = m.width/2 - 4
	}
	pane := func(q task.Quadrant) string {
		var b strings.Builder
		b.WriteString(quadrantStyle(q).Bold(true).Render(q.DisplayName()))
		b.WriteString("\n")
		tasks := byQuadrant[q]
		if len(tasks) == 0 {
			b.WriteString(dimStyle.Render("(empty)"))
		}
		for _, t := range tasks {
			b.WriteString("• " + t.Title + "\n")
		}
		return paneStyle.Width(paneWidth).Render(b.String())
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, pane(task.QuadrantDo), pane(task.QuadrantSchedule))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, pane(task.QuadrantDelegate), pane(task.QuadrantDelete))
	out := lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	if len(unclassified) > 0 {
		out += "\n" + dimStyle.Render(fmt.Sprintf("%d unclassified task(s) not shown. Set urgent/important via 'e'.", len(unclassified)))
	}
	return out
}

func (m Model) renderCalendar() string {
	now := time.Now()
	dueCounts := dueCountsByDate(m.tasks)

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.month.Format("January 2006")))
	b.WriteString("\n Su  Mo  Tu  We  Th  Fr  Sa\n")

	first := m.month
	offset := int(first.Weekday())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	b.WriteString(strings.Repeat("    ", offset))
	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1)
		cell := fmt.Sprintf("%3d", day)
		if date.Year() == now.Year() && date.YearDay() == now.YearDay() {
			cell = todayStyle.Render(cell)
		}
		marker := " "
		if dueCounts[date.Format(task.DateLayout)] > 0 {
			marker = "•"
		}
		b.WriteString(cell + marker)
		if (offset+day)%7 == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")

	monthPrefix := m.month.Format("2006-01")
	var due []task.Task
	for _, t := range m.tasks {
		if !t.Completed && strings.HasPrefix(t.DueDate, monthPrefix) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		b.WriteString(dimStyle.Render("Nothing due this month."))
	} else {
		b.WriteString("Due this month:\n")
		for _, t := range due {
			line := "  " + t.DueDate
			if t.DueTime != "" {
				line += " " + t.DueTime
			}
			line += "  " + t.Title
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (m Model) renderStats() string {
	report := stats.Compute(m.tasks, m.groups, time.Now())
	var b strings.Builder

	q := report.Quick
	b.WriteString(fmt.Sprintf("Total: %d  Completed: %d  Rate: %.0f%%  This week: %d (%d done)\n",
		q.TotalTasks, q.CompletedTasks, q.CompletionRate, q.TasksThisWeek, q.TasksCompletedThisWeek))
	b.WriteString(fmt.Sprintf("Avg tasks/day: %.1f", q.AvgTasksPerDay))
	if q.AvgCompletionTime != nil {
		b.WriteString(fmt.Sprintf("  Avg completion: %.1fh", *q.AvgCompletionTime))
	}
	if q.MostProductiveDay != "" {
		b.WriteString("  Best day: " + q.MostProductiveDay)
	}
	if q.MostUsedGroup != nil {
		b.WriteString(fmt.Sprintf("  Top list: %s (%d)", q.MostUsedGroup.Name, q.MostUsedGroup.Count))
	}
	b.WriteString("\n\n")

	b.WriteString("Open tasks by quadrant\n")
	maxCount := 0
	for _, qs := range report.Quadrants {
		if qs.Value > maxCount {
			maxCount = qs.Value
		}
	}
	if maxCount < 1 {
		maxCount = 1
	}
	for _, qs := range report.Quadrants {
		bar := strings.Repeat("█", qs.Value*20/maxCount)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(qs.Color))
		b.WriteString(fmt.Sprintf("  %-10s %3d %s\n", qs.Name, qs.Value, style.Render(bar)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Streak: %d day(s), longest %d", report.Streak.Current, report.Streak.Longest))
	if report.Streak.LastActiveDate != "" {
		b.WriteString("  last active " + report.Streak.LastActiveDate)
	}
	b.WriteString("\n\n")

	b.WriteString("Completions by hour (Sun..Sat)\n")
	grid := map[[2]int]int{}
	for _, c := range report.Heatmap {
		grid[[2]int{c.Day, c.Hour}] = c.Count
	}
	for day := 0; day < 7; day++ {
		b.WriteString("  " + [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}[day] + " ")
		for hour := 0; hour < 24; hour++ {
			b.WriteString(shadeFor(grid[[2]int{day, hour}], report.MaxHeatmapCount))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(report.Recent) > 0 {
		b.WriteString("Recently completed\n")
		for _, r := range report.Recent {
			b.WriteString(fmt.Sprintf("  %s  %s (%s)\n",
				r.CompletedAt.Format("Jan 2 15:04"), r.Title, r.GroupName))
		}
	}
	return b.String()
}

func (m Model) renderEditForm() string {
	e := m.edit
	fields := editFields()
	values := []string{
		e.title, e.notes, e.urgent, e.important,
		e.dueDate, e.dueTime, e.group, e.autoDays,
	}
	var b strings.Builder
	b.WriteString("Edit task (tab to move, enter to save/next, esc to cancel)\n\n")
	for i, name := range fields {
		prefix := " "
		if i == e.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderGroups() string {
	var b strings.Builder
	b.WriteString("Lists\n\n")
	if len(m.groups) == 0 {
		b.WriteString(dimStyle.Render("No lists yet. Tasks live in General. Press 'a' to add one."))
		b.WriteString("\n")
		return b.String()
	}
	counts := map[string]int{}
	for _, t := range m.tasks {
		counts[t.GroupID]++
	}
	for i, g := range m.groups {
		cursor := " "
		if i == m.groupCursor && m.mode == modeGroups {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s (%d)", cursor, g.Name, counts[g.ID])
		if i == m.groupCursor && m.mode == modeGroups {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if n := counts[""]; n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  General (%d)", n)) + "\n")
	}
	return b.String()
}

// Field parsing helpers

func dueCountsByDate(tasks []task.Task) map[string]int {
	counts := map[string]int{}
	for _, t := range tasks {
		if t.DueDate != "" && !t.Completed {
			counts[t.DueDate]++
		}
	}
	return counts
}

func triToYN(v *bool) string {
	if v == nil {
		return "-"
	}
	if *v {
		return "y"
	}
	return "n"
}

func ynToTri(v string) *bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return task.Bool(true)
	case "n", "no", "false", "0":
		return task.Bool(false)
	default:
		return nil
	}
}

func intToStr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseDateField(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(task.DateLayout, v); err != nil {
		return "", err
	}
	return v, nil
}

func parseTimeField(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(task.TimeLayout, v); err != nil {
		return "", err
	}
	return v, nil
}

func parseDaysField(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "-" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("must be >= 0")
	}
	return task.Int(n), nil
}

func (e editState) currentLabel() string {
	return editFields()[e.index]
}

func (e editState) currentValue() string {
	switch e.index {
	case 0:
		return e.title
	case 1:
		return e.notes
	case 2:
		return e.urgent
	case 3:
		return e.important
	case 4:
		return e.dueDate
	case 5:
		return e.dueTime
	case 6:
		return e.group
	case 7:
		return e.autoDays
	default:
		return ""
	}
}

func (e *editState) setCurrentValue(v string) {
	switch e.index {
	case 0:
		e.title = v
	case 1:
		e.notes = v
	case 2:
		e.urgent = v
	case 3:
		e.important = v
	case 4:
		e.dueDate = v
	case 5:
		e.dueTime = v
	case 6:
		e.group = v
	case 7:
		e.autoDays = v
	}
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
