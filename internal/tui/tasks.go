package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

const (
	formNewTask  = "task"
	formEditTask = "edit_task"
	formOverride = "override"
)

// Tri-state select values for override flags.
const (
	inherit = "inherit"
	flagOn  = "on"
	flagOff = "off"
)

type tasksModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	tasks    []store.Task
	activeID string
	cursor   int
	showDone bool

	formActive bool
	form       *huh.Form
	formType   string

	// Form field pointers (survive value copies)
	formTitle     *string
	formEstimate  *string
	formWork      *string
	formShort     *string
	formLong      *string
	formAutoBreak *string
	formAutoWork  *string
	formLongOn    *string

	editingID string
}

func newTasksModel(s *store.Store, e *timer.Engine) tasksModel {
	var title, est, work, short, long string
	ab, aw, lo := inherit, inherit, inherit
	return tasksModel{
		store:         s,
		engine:        e,
		formTitle:     &title,
		formEstimate:  &est,
		formWork:      &work,
		formShort:     &short,
		formLong:      &long,
		formAutoBreak: &ab,
		formAutoWork:  &aw,
		formLongOn:    &lo,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type tasksDataMsg struct {
	tasks    []store.Task
	activeID string
}

type taskActivatedMsg struct {
	id string
}

func (p tasksModel) refresh() tea.Cmd {
	showDone := p.showDone
	return func() tea.Msg {
		tasks, err := p.store.ListTasks(showDone)
		if err != nil {
			return errStatus("Load tasks: %v", err)
		}
		active, _ := p.store.ActiveTask()
		return tasksDataMsg{tasks: tasks, activeID: active}
	}
}

// activateTask makes id the task work sessions count toward; "" clears it.
// The task's timer override takes effect right away. With start set a work
// interval is started for it.
func activateTask(s *store.Store, e *timer.Engine, id string, start bool) tea.Cmd {
	if start {
		e.StartTask(id)
	} else {
		if err := s.SetActiveTask(id); err != nil {
			return func() tea.Msg { return errStatus("Set active task: %v", err) }
		}
		e.SettingsChanged()
	}
	return func() tea.Msg { return taskActivatedMsg{id: id} }
}

func (p tasksModel) selected() (store.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return store.Task{}, false
	}
	return p.tasks[p.cursor], true
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		p.tasks = msg.tasks
		p.activeID = msg.activeID
		if p.cursor >= len(p.tasks) {
			p.cursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
		return p, nil
	case key.Matches(msg, keys.New):
		return p.showTaskForm(nil)
	case key.Matches(msg, keys.ShowDone):
		p.showDone = !p.showDone
		return p, p.refresh()
	}

	t, ok := p.selected()
	if !ok {
		return p, nil
	}

	switch {
	case key.Matches(msg, keys.Edit):
		return p.showTaskForm(&t)
	case key.Matches(msg, keys.Override):
		return p.showOverrideForm(t)
	case key.Matches(msg, keys.Done):
		done, err := p.store.ToggleTaskComplete(t.ID)
		if err != nil {
			return p, func() tea.Msg { return errStatus("Complete task: %v", err) }
		}
		text := "Reopened " + done.Title
		if done.Completed {
			text = "Completed " + done.Title
		}
		return p, tea.Batch(p.refresh(), func() tea.Msg { return statusMsg{text: text} })
	case key.Matches(msg, keys.Delete):
		if err := p.store.DeleteTask(t.ID); err != nil {
			return p, func() tea.Msg { return errStatus("Delete task: %v", err) }
		}
		if t.ID == p.activeID {
			p.engine.SettingsChanged()
			return p, tea.Batch(p.refresh(), func() tea.Msg { return taskActivatedMsg{} })
		}
		return p, p.refresh()
	case key.Matches(msg, keys.Activate), key.Matches(msg, keys.Enter):
		if t.ID == p.activeID {
			return p, activateTask(p.store, p.engine, "", false)
		}
		return p, activateTask(p.store, p.engine, t.ID, false)
	case key.Matches(msg, keys.Pomodoro):
		return p, activateTask(p.store, p.engine, t.ID, true)
	}
	return p, nil
}

func (p tasksModel) showTaskForm(t *store.Task) (tasksModel, tea.Cmd) {
	*p.formTitle = ""
	*p.formEstimate = "1"
	p.formType = formNewTask
	p.editingID = ""
	if t != nil {
		*p.formTitle = t.Title
		*p.formEstimate = strconv.Itoa(t.Estimated)
		p.formType = formEditTask
		p.editingID = t.ID
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formTitle).Validate(requireText),
			huh.NewInput().Title("Estimated pomodoros").Value(p.formEstimate).Validate(intBetween(1, 99)),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) showOverrideForm(t store.Task) (tasksModel, tea.Cmd) {
	o := t.Override
	if o == nil {
		o = &timer.Override{}
	}
	*p.formWork = optInt(o.WorkMinutes)
	*p.formShort = optInt(o.ShortBreakMinutes)
	*p.formLong = optInt(o.LongBreakMinutes)
	*p.formAutoBreak = optBool(o.AutoStartBreak)
	*p.formAutoWork = optBool(o.AutoStartWork)
	*p.formLongOn = optBool(o.LongBreakEnabled)
	p.formType = formOverride
	p.editingID = t.ID

	flag := func(title string, v *string) *huh.Select[string] {
		return huh.NewSelect[string]().Title(title).Options(
			huh.NewOption("Use global setting", inherit),
			huh.NewOption("On", flagOn),
			huh.NewOption("Off", flagOff),
		).Value(v)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min, blank = global)").Value(p.formWork).Validate(optIntBetween(1, 180)),
			huh.NewInput().Title("Short break (min, blank = global)").Value(p.formShort).Validate(optIntBetween(1, 60)),
			huh.NewInput().Title("Long break (min, blank = global)").Value(p.formLong).Validate(optIntBetween(1, 120)),
		).Title("Durations"),
		huh.NewGroup(
			flag("Auto-start breaks", p.formAutoBreak),
			flag("Auto-start work", p.formAutoWork),
			flag("Long breaks", p.formLongOn),
		).Title("Behaviour"),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, tea.Batch(p.submitForm(), p.refresh())
	}

	return p, cmd
}

func (p tasksModel) submitForm() tea.Cmd {
	title := strings.TrimSpace(*p.formTitle)
	est, _ := strconv.Atoi(*p.formEstimate)

	var err error
	switch p.formType {
	case formNewTask:
		_, err = p.store.CreateTask(title, est)
	case formEditTask:
		err = p.store.UpdateTask(p.editingID, title, est)
	case formOverride:
		err = p.store.SetTaskOverride(p.editingID, p.overrideFromForm())
		if err == nil && p.editingID == p.activeID {
			p.engine.SettingsChanged()
		}
	}
	if err != nil {
		return func() tea.Msg { return errStatus("Save task: %v", err) }
	}
	return nil
}

func (p tasksModel) overrideFromForm() *timer.Override {
	return &timer.Override{
		WorkMinutes:       parseOptInt(*p.formWork),
		ShortBreakMinutes: parseOptInt(*p.formShort),
		LongBreakMinutes:  parseOptInt(*p.formLong),
		AutoStartBreak:    parseOptBool(*p.formAutoBreak),
		AutoStartWork:     parseOptBool(*p.formAutoWork),
		LongBreakEnabled:  parseOptBool(*p.formLongOn),
	}
}

func (p tasksModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		switch p.formType {
		case formEditTask:
			title = titleStyle.Render("Edit Task")
		case formOverride:
			title = titleStyle.Render("Timer Override")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}
	return p.renderList()
}

func (p tasksModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Tasks")
	if p.showDone {
		title += mutedStyle.Render("  (including completed)")
	}

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-36s %9s", "", "Task", "Pomodoros")))

	for i, t := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "○"
		if t.Completed {
			check = successStyle.Render("✓")
			if i != p.cursor {
				style = mutedStyle
			}
		}
		marks := ""
		if t.ID == p.activeID {
			marks += accentStyle.Render(" ● active")
		}
		if !t.Override.Empty() {
			marks += highlightStyle.Render(" ⚙")
		}
		row := style.Render(fmt.Sprintf("%s%s %-36s %4d/%-4d", cursor, check, t.Title, t.Actual, t.Estimated)) + marks
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: complete  d: delete  a: set active  p: start pomodoro  o: override  f: show completed"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// --- Form helpers ---

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func intBetween(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a number from %d to %d", lo, hi)
		}
		return nil
	}
}

func optIntBetween(lo, hi int) func(string) error {
	check := intBetween(lo, hi)
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return check(s)
	}
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseOptInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func optBool(v *bool) string {
	switch {
	case v == nil:
		return inherit
	case *v:
		return flagOn
	default:
		return flagOff
	}
}

func parseOptBool(s string) *bool {
	var b bool
	switch s {
	case flagOn:
		b = true
	case flagOff:
		b = false
	default:
		return nil
	}
	return &b
}
