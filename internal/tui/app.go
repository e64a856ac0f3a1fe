package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/export"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// eventQueue collects engine events raised while a message is handled so the
// app can react to them with commands afterwards.
type eventQueue struct {
	events []timer.Event
}

func (q *eventQueue) push(ev timer.Event) {
	if ev.Kind == timer.EventTick {
		return
	}
	q.events = append(q.events, ev)
}

func (q *eventQueue) drain() []timer.Event {
	evs := q.events
	q.events = nil
	return evs
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	pomodoro  pomodoroModel
	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	settings  settingsModel

	ticker ticker
	queue  *eventQueue
	title  string

	help   help.Model
	status string
	isErr  bool
}

// NewApp builds the UI around an engine whose collaborators already write
// to s.
func NewApp(s *store.Store, e *timer.Engine) App {
	h := help.New()
	h.ShowAll = false

	q := &eventQueue{}
	e.Subscribe(q.push)

	return App{
		store:      s,
		engine:     e,
		activeView: viewTimer,
		pomodoro:   newPomodoroModel(s, e),
		dashboard:  newDashboardModel(s, e),
		tasks:      newTasksModel(s, e),
		reports:    newReportsModel(s),
		settings:   newSettingsModel(s, e),
		queue:      q,
		help:       h,
		status:     s.MigrationNotice(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.pomodoro.refresh(),
		a.dashboard.loadData(),
		tea.SetWindowTitle(windowTitle(a.engine.State())),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a, post := a.settle()
	return a, tea.Batch(cmd, post)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.pomodoro.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tickMsg:
		if a.ticker.accept(msg) {
			a.engine.Tick()
		}
		return a, nil

	// Losing terminal focus or being suspended is the terminal's version of
	// a hidden tab.
	case tea.BlurMsg:
		a.engine.Background()
		return a, nil
	case tea.FocusMsg:
		a.engine.Foreground()
		return a, nil
	case tea.ResumeMsg:
		a.engine.Foreground()
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.engine.Pause()
			return a, tea.Quit
		case key.Matches(msg, keys.Suspend):
			a.engine.Background()
			return a, tea.Suspend
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case taskActivatedMsg:
		a.status = "Active task cleared"
		if msg.id != "" {
			a.status = "Active task set"
		}
		a.isErr = false
		return a, tea.Batch(a.pomodoro.refresh(), a.tasks.refresh(), a.dashboard.loadData())

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil

	case activeTaskMsg:
		a.pomodoro, _ = a.pomodoro.update(msg)
		return a, nil
	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	case tasksDataMsg:
		a.tasks, _ = a.tasks.update(msg)
		return a, nil
	case reportsDataMsg:
		a.reports, _ = a.reports.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

// settle reacts to engine events raised while handling the last message,
// keeps exactly one tick scheduled while the engine runs, and mirrors the
// countdown into the window title.
func (a App) settle() (App, tea.Cmd) {
	var cmds []tea.Cmd
	for _, ev := range a.queue.drain() {
		if ev.Kind != timer.EventCompleted || ev.Session == nil {
			continue
		}
		a.status = ev.Session.Mode.Label() + " complete. Next: " + ev.State.Mode.Label()
		a.isErr = false
		cmds = append(cmds, a.pomodoro.refresh(), a.dashboard.loadData(), a.tasks.refresh())
		if a.activeView == viewReports {
			cmds = append(cmds, a.reports.refresh())
		}
	}

	st := a.engine.State()
	cmds = append(cmds, a.ticker.sync(st.Running))

	if t := windowTitle(st); t != a.title {
		a.title = t
		cmds = append(cmds, tea.SetWindowTitle(t))
	}
	return a, tea.Batch(cmds...)
}

func (a App) switchView(v viewState) (App, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		if k, ok := msg.(tea.KeyMsg); ok && (a.dashboard.picking || key.Matches(k, keys.Activate)) {
			a.dashboard, cmd = a.dashboard.update(msg)
			return a, cmd
		}
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return tea.Batch(a.pomodoro.refresh(), a.dashboard.loadData())
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = lipgloss.JoinVertical(lipgloss.Left, a.pomodoro.view(), a.dashboard.view())
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pomo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Timer indicator in footer
	timerInfo := ""
	st := a.engine.State()
	switch {
	case st.Running:
		timerInfo = modeStyle(st.Mode).Render(" ● " + windowTitle(st))
	case st.Remaining < a.engine.Duration():
		timerInfo = warningStyle.Render(" ⏸ " + windowTitle(st))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.CSV, export.JSON}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(store.SessionFilter{})
		if err != nil {
			return errStatus("Export error: %v", err)
		}
		tasks, _ := a.store.ListTasks(true)

		home, _ := os.UserHomeDir()
		path := filepath.Join(home, fmt.Sprintf("pomo-export-%s.%s", time.Now().Format("2006-01-02"), f))
		if err := export.ToFile(f, sessions, export.TaskIndex(tasks), path); err != nil {
			return errStatus("Export error: %v", err)
		}
		return exportDoneMsg{path: path}
	}
}
