package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	activitydto "tally/internal/modules/activity/dto"
	mirrordto "tally/internal/modules/mirror/dto"
	timerdto "tally/internal/modules/timer/dto"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timeutil"
	"tally/internal/ui/components"
	"tally/internal/ui/theme"
)

// Each port is the minimal slice of a module this dashboard needs.

type activityPort interface {
	Create(ctx context.Context, name, color string) (activitydto.ActivityOutput, error)
	Delete(ctx context.Context, activityID string) (activitydto.DeleteOutput, error)
	List(ctx context.Context) ([]activitydto.ActivityOutput, error)
}

type timerPort interface {
	Start(ctx context.Context, activityID string) (timerdto.StartOutput, error)
	Stop(ctx context.Context) (timerdto.SessionOutput, error)
	GetActive(ctx context.Context) (timerdto.ActiveOutput, error)
}

type mirrorPort interface {
	Status(ctx context.Context) (mirrordto.StatusOutput, error)
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Start  key.Binding
	Stop   key.Binding
	Add    key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Start, k.Stop, k.Add, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

type refreshMsg struct {
	activities []activitydto.ActivityOutput
	active     timerdto.ActiveOutput
	running    bool
	mirror     mirrordto.StatusOutput
	err        error
}

type actionMsg struct{ err error }

type Model struct {
	activities activityPort
	timer      timerPort
	mirror     mirrorPort

	keys keyMap
	help help.Model
	form components.ActivityForm

	list    []activitydto.ActivityOutput
	cursor  int
	active  timerdto.ActiveOutput
	running bool
	sync    mirrordto.StatusOutput
	errLine string
	width   int
	height  int
}

func NewModel(activities activityPort, timer timerPort, mirror mirrorPort) Model {
	return Model{
		activities: activities,
		timer:      timer,
		mirror:     mirror,
		keys: keyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("", "")),
			Start:  key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("s", "start")),
			Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
			Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add activity")),
			Delete: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete activity")),
			Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		},
		help: help.New(),
		form: components.NewActivityForm(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh reloads everything the dashboard shows. Elapsed time is
// recomputed from the persisted start time on every load, so the view
// survives restarts without drift.
func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		out := refreshMsg{}
		out.activities, out.err = m.activities.List(ctx)
		if out.err != nil {
			return out
		}
		active, err := m.timer.GetActive(ctx)
		switch {
		case err == nil:
			out.active = active
			out.running = true
		case !errors.Is(err, apperrors.ErrTimerIdle):
			out.err = err
			return out
		}
		out.mirror, out.err = m.mirror.Status(ctx)
		return out
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form = m.form.SetWidth(msg.Width)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case refreshMsg:
		if msg.err != nil {
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.errLine = ""
		m.list = msg.activities
		m.active = msg.active
		m.running = msg.running
		m.sync = msg.mirror
		if m.cursor >= len(m.list) {
			m.cursor = max(len(m.list)-1, 0)
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.errLine = msg.err.Error()
		} else {
			m.errLine = ""
		}
		return m, m.refresh()

	case components.SubmitMsg:
		name, color := msg.Name, msg.Color
		return m, func() tea.Msg {
			_, err := m.activities.Create(context.Background(), name, color)
			return actionMsg{err: err}
		}

	case components.CancelMsg:
		return m, nil

	case tea.KeyMsg:
		if m.form.Visible() {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.list)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Start):
			if m.cursor < len(m.list) {
				activityID := m.list[m.cursor].ID
				return m, func() tea.Msg {
					_, err := m.timer.Start(context.Background(), activityID)
					return actionMsg{err: err}
				}
			}
		case key.Matches(msg, m.keys.Stop):
			return m, func() tea.Msg {
				_, err := m.timer.Stop(context.Background())
				return actionMsg{err: err}
			}
		case key.Matches(msg, m.keys.Add):
			var cmd tea.Cmd
			m.form, cmd = m.form.Open()
			return m, cmd
		case key.Matches(msg, m.keys.Delete):
			if m.cursor < len(m.list) {
				activityID := m.list[m.cursor].ID
				return m, func() tea.Msg {
					_, err := m.activities.Delete(context.Background(), activityID)
					return actionMsg{err: err}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := theme.Title.Render("tally")

	timerPane := theme.Idle.Render("idle. press s to start the selected activity")
	if m.running {
		timerPane = theme.Running.Render(m.active.ActivityName+"  "+timeutil.FormatElapsed(m.active.Elapsed)) +
			theme.Muted.Render("  since "+timeutil.FormatStamp(m.active.StartedAt))
	}

	rows := make([]string, 0, len(m.list))
	for i, activity := range m.list {
		line := theme.Swatch(activity.Color) + activity.Name + "  " + theme.Muted.Render(timeutil.FormatMinutes(activity.TotalMinutes))
		if i == m.cursor {
			line = theme.Hot.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, theme.Muted.Render("no activities. press a to add one"))
	}

	statusLine := theme.Muted.Render("mirror: " + m.sync.Status)
	if m.sync.LastError != "" {
		statusLine += "  " + theme.Alert.Render(m.sync.LastError)
	}
	if m.errLine != "" {
		statusLine += "\n" + theme.Alert.Render(m.errLine)
	}

	sections := []string{
		title,
		theme.PaneActive.Render(timerPane),
		theme.Pane.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		statusLine,
	}
	if m.form.Visible() {
		sections = append(sections, m.form.View())
	}
	sections = append(sections, m.help.View(m.keys))
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
