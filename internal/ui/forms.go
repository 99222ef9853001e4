package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/questguild/questguild/internal/model"
)

type field struct {
	label       string
	placeholder string
	secret      bool
	limit       int
}

// form is a vertical stack of text inputs. Tab and arrows move between
// fields; enter on the last field submits.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(title string, fields ...field) form {
	f := form{title: title}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.placeholder
		ti.Prompt = ""
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.Width = 40
		if fd.limit > 0 {
			ti.CharLimit = fd.limit
		}
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	f.inputs[0].Focus()
	return f
}

// Register form fields.
const (
	regUsername = iota
	regPassword
	regEmail
	regPhone
)

func newRegisterForm() form {
	return newForm("Register a new hero",
		field{label: "Username", placeholder: "3-20 letters, digits or _", limit: 20},
		field{label: "Password", placeholder: "at least 6 characters", secret: true},
		field{label: "Email", placeholder: "hero@guild.com"},
		field{label: "Phone", placeholder: "optional, for SMS alerts"},
	)
}

const (
	loginUsername = iota
	loginPassword
)

func newLoginForm() form {
	return newForm("Hero login",
		field{label: "Username"},
		field{label: "Password", secret: true},
	)
}

// Quest form fields.
const (
	qfTitle = iota
	qfDescription
	qfDue
	qfPriority
	qfChallenge
)

func newQuestForm(defaultTarget int) form {
	return newForm("New quest",
		field{label: "Title", limit: model.MaxTitleLength},
		field{label: "Description", placeholder: "ctrl+g asks the Guild Advisor"},
		field{label: "Due", placeholder: "YYYY-MM-DD [HH:MM], blank for one week"},
		field{label: "Priority", placeholder: "low, medium, high; blank asks the advisor"},
		field{label: "Challenge", placeholder: "tetris level 1-10, y for level " + strconv.Itoa(defaultTarget) + ", blank for none"},
	)
}

func (f *form) focusField(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// update routes msg to the focused input. It reports true when the form
// was submitted.
func (f *form) update(msg tea.Msg) (bool, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return false, f.focusField(f.focus + 1)
		case "shift+tab", "up":
			return false, f.focusField(f.focus - 1)
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return true, nil
			}
			return false, f.focusField(f.focus + 1)
		case "ctrl+s":
			return true, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

var labelStyle = lipgloss.NewStyle().Width(13)

func (f form) view() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render(f.title) + "\n\n")
	for i, ti := range f.inputs {
		label := labelStyle.Render(f.labels[i] + ":")
		if i == f.focus {
			label = scoreStyle.Render(label)
		}
		b.WriteString(label + " " + ti.View() + "\n")
	}
	return b.String()
}
