package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/ui/theme"
)

// SubmitMsg is emitted when the user confirms the new-activity form:
// a name, optionally followed by a color token.
type SubmitMsg struct {
	Name  string
	Color string
}

// CancelMsg is emitted when the user presses esc.
type CancelMsg struct{}

var (
	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// ActivityForm is a one-line overlay for adding an activity, backed by
// bubbles/textinput.
type ActivityForm struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewActivityForm() ActivityForm {
	ti := textinput.New()
	ti.Placeholder = "name [#color]"
	ti.CharLimit = 64
	return ActivityForm{input: ti}
}

func (f ActivityForm) Visible() bool { return f.visible }

func (f ActivityForm) Open() (ActivityForm, tea.Cmd) {
	f.visible = true
	f.input.SetValue("")
	return f, f.input.Focus()
}

func (f ActivityForm) Close() ActivityForm {
	f.visible = false
	f.input.Blur()
	return f
}

func (f ActivityForm) SetWidth(width int) ActivityForm {
	f.width = width
	return f
}

func (f ActivityForm) Update(msg tea.Msg) (ActivityForm, tea.Cmd) {
	if !f.visible {
		return f, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			name, color := splitInput(f.input.Value())
			f = f.Close()
			if name == "" {
				return f, func() tea.Msg { return CancelMsg{} }
			}
			return f, func() tea.Msg { return SubmitMsg{Name: name, Color: color} }
		case "esc":
			f = f.Close()
			return f, func() tea.Msg { return CancelMsg{} }
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f ActivityForm) View() string {
	if !f.visible {
		return ""
	}
	prompt := formStyle.Width(max(f.width-4, 20)).Render("new activity: " + f.input.View())
	hint := hintStyle.Render("enter to add, esc to cancel")
	return prompt + "\n" + hint
}

func splitInput(raw string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if strings.HasPrefix(last, "#") && len(fields) > 1 {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}
