package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	mainMenuTitle = "Welcome to the Quest Guild"
	heroMenuTitle = "Guild Hall"
)

var mainMenuItems = []string{"Register", "Login", "Quit"}

const (
	mainRegister = iota
	mainLogin
	mainQuit
)

var heroMenuItems = []string{
	"Add quest",
	"View all quests",
	"Complete a quest",
	"Game challenges",
	"Consult the Guild Advisor",
	"Quest report",
	"Check deadlines",
	"Logout",
}

const (
	heroAddQuest = iota
	heroViewQuests
	heroComplete
	heroChallenges
	heroAdvisor
	heroReport
	heroDeadlines
	heroLogout
)

type menu struct {
	title  string
	items  []string
	cursor int
}

func newMenu(title string, items ...string) menu {
	return menu{title: title, items: items}
}

// update moves the cursor and reports a chosen item. Digits pick an item
// directly.
func (m *menu) update(msg tea.KeyMsg) (int, bool) {
	switch key := msg.String(); key {
	case "up", "k":
		m.cursor = (m.cursor + len(m.items) - 1) % len(m.items)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.items)
	case "enter":
		return m.cursor, true
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.items) {
				m.cursor = i
				return i, true
			}
		}
	}
	return 0, false
}

func (m menu) view() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render(m.title) + "\n\n")
	for i, item := range m.items {
		line := fmt.Sprintf("%d. %s", i+1, item)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
