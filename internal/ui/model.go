// Package ui is the interactive Quest Guild shell: hero login, the quest
// log, the Guild Advisor and game challenges, as one bubbletea program.
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/hero"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/quest"
	"github.com/questguild/questguild/internal/scoring"
)

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

// Services are the collaborators the shell drives.
type Services struct {
	Heroes     *hero.Service
	Quests     *quest.Service
	Advisor    advisor.Advisor
	Notifier   *notify.Sender
	Challenges *challenge.Manager
	// Scores may be nil, the report then omits challenge history.
	Scores        scoring.ScoreStorage
	Clock         clock.Clock
	Logger        *zap.Logger
	DefaultTarget int
}

type Model struct {
	ctx    context.Context
	svc    Services
	screen *fsm.FSM

	hero   *model.Hero
	menu   menu
	form   form
	list   questList
	filter questFilter
	panel  string
	busy   bool
	width  int

	status string
	err    error
}

type authMsg struct {
	hero       *model.Hero
	registered bool
	err        error
}

func New(ctx context.Context, svc Services) *Model {
	if svc.Logger == nil {
		svc.Logger = zap.NewNop()
	}
	if svc.Clock == nil {
		svc.Clock = clock.New()
	}
	if svc.DefaultTarget == 0 {
		svc.DefaultTarget = model.DefaultRequiredLevel
	}

	m := &Model{ctx: ctx, svc: svc, width: 80}
	m.screen = newScreenFSM(m)
	m.menu = newMenu(mainMenuTitle, mainMenuItems...)
	return m
}

// Screen is the name of the current screen.
func (m *Model) Screen() string { return m.screen.Current() }

// Hero is the logged in hero, nil before login.
func (m *Model) Hero() *model.Hero { return m.hero }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) goTo(event string) tea.Cmd {
	if err := m.screen.Event(m.ctx, event); err != nil {
		m.svc.Logger.Debug("screen event ignored", zap.String("event", event), zap.Error(err))
		return nil
	}
	return m.enterCmd()
}

// enterCmd starts the work a screen needs when it opens.
func (m *Model) enterCmd() tea.Cmd {
	switch m.screen.Current() {
	case screenQuests:
		return m.loadQuests()
	case screenAdvisor:
		m.busy = true
		return m.summarize()
	case screenReport:
		m.busy = true
		return m.loadReport()
	case screenDeadlines:
		m.busy = true
		return m.checkDeadlines()
	}
	return nil
}

func (m *Model) register() tea.Cmd {
	f := m.form
	username, password := f.value(regUsername), f.inputs[regPassword].Value()
	email, phone := f.value(regEmail), f.value(regPhone)
	return func() tea.Msg {
		h, err := m.svc.Heroes.Register(m.ctx, username, password, email, phone)
		return authMsg{hero: h, registered: true, err: err}
	}
}

func (m *Model) login() tea.Cmd {
	username, password := m.form.value(loginUsername), m.form.inputs[loginPassword].Value()
	return func() tea.Msg {
		h, err := m.svc.Heroes.Login(m.ctx, username, password)
		return authMsg{hero: h, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.status = ""
		return m, m.updateKey(msg)

	case authMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.hero = msg.hero
		if msg.registered {
			m.status = fmt.Sprintf("Welcome to the guild, %s! Your adventure begins now.", msg.hero.Username)
		} else {
			m.status = fmt.Sprintf("Welcome back, %s!", msg.hero.Username)
		}
		m.svc.Logger.Info("hero logged in", zap.String("username", msg.hero.Username))
		return m, m.goTo(evLoggedIn)

	case questSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		status := fmt.Sprintf("Quest '%s' added.", msg.quest.Title)
		if msg.suggested {
			status += fmt.Sprintf(" The Guild Advisor rates it %s priority.", msg.quest.Priority)
		}
		m.filter = filterAll
		cmd := m.goTo(evSaved)
		m.status = status
		return m, cmd

	case describeMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.form.set(qfDescription, msg.text)
		m.status = "The Guild Advisor wrote a description."
		return m, nil

	case panelMsg:
		m.busy = false
		m.panel, m.err = msg.text, msg.err
		return m, nil
	}

	if cmd := m.handleQuestMsg(msg); cmd != nil {
		return m, cmd
	}

	switch m.screen.Current() {
	case screenRegister, screenLogin, screenQuestForm:
		_, cmd := m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch m.screen.Current() {
	case screenMain:
		if msg.String() == "q" || msg.String() == "esc" {
			return tea.Quit
		}
		choice, ok := m.menu.update(msg)
		if !ok {
			return nil
		}
		switch choice {
		case mainRegister:
			return m.goTo(evRegister)
		case mainLogin:
			return m.goTo(evLogin)
		default:
			return tea.Quit
		}

	case screenRegister, screenLogin:
		if msg.String() == "esc" {
			return m.goTo(evBack)
		}
		submitted, cmd := m.form.update(msg)
		if !submitted {
			return cmd
		}
		if m.screen.Current() == screenRegister {
			return m.register()
		}
		return m.login()

	case screenHero:
		choice, ok := m.menu.update(msg)
		if !ok {
			return nil
		}
		return m.heroChoice(choice)

	case screenQuestForm:
		switch msg.String() {
		case "esc":
			return m.goTo(evBack)
		case "ctrl+g":
			title := m.form.value(qfTitle)
			if title == "" {
				m.err = model.ErrInvalidTitle
				return nil
			}
			m.busy = true
			return m.describe(title)
		}
		submitted, cmd := m.form.update(msg)
		if submitted {
			return m.submitQuest()
		}
		return cmd

	case screenQuests:
		return m.updateQuests(msg)

	case screenAdvisor, screenReport, screenDeadlines:
		switch msg.String() {
		case "esc", "q", "enter":
			return m.goTo(evBack)
		case "r":
			return m.enterCmd()
		}
	}
	return nil
}

func (m *Model) heroChoice(choice int) tea.Cmd {
	switch choice {
	case heroAddQuest:
		return m.goTo(evAddQuest)
	case heroViewQuests:
		m.filter = filterAll
		return m.goTo(evQuests)
	case heroComplete:
		m.filter = filterActive
		return m.goTo(evQuests)
	case heroChallenges:
		m.filter = filterChallenges
		return m.goTo(evQuests)
	case heroAdvisor:
		return m.goTo(evAdvisor)
	case heroReport:
		return m.goTo(evReport)
	case heroDeadlines:
		return m.goTo(evDeadlines)
	case heroLogout:
		return m.goTo(evLogout)
	}
	return nil
}

func (m *Model) banner() string {
	text := "┃ QUEST GUILD"
	if m.hero != nil {
		text += fmt.Sprintf(" | %s, level %d %s", m.hero.Username, m.hero.Level, m.hero.Class)
	}
	border := lipgloss.ThickBorder()
	border.Left = ""
	border.Right = ""
	return lipgloss.NewStyle().
		Border(border, true, false).
		Bold(true).
		Render(text)
}

func (m *Model) help() string {
	switch m.screen.Current() {
	case screenMain, screenHero:
		return "↑/↓ move • enter select • 1-9 shortcut • ctrl+c quit"
	case screenRegister, screenLogin:
		return "tab next field • enter on last field submits • esc back"
	case screenQuestForm:
		return "tab next field • ctrl+g advisor description • ctrl+s save • esc back"
	case screenQuests:
		return "enter/c complete • p play challenge • d abandon • tab filter • esc back"
	default:
		return "r refresh • esc back"
	}
}

func (m *Model) View() string {
	var body string
	switch m.screen.Current() {
	case screenMain, screenHero:
		body = m.menu.view()
	case screenRegister, screenLogin, screenQuestForm:
		body = m.form.view()
	case screenQuests:
		body = m.questsView()
	default:
		body = m.panel
	}
	if m.busy {
		body += "\n" + scoreStyle.Render("Consulting the guild records...")
	}

	var b strings.Builder
	b.WriteString(m.banner() + "\n\n")
	b.WriteString(body + "\n")
	if m.err != nil {
		b.WriteString("\n" + redStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + greenStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(m.help()))
	return b.String()
}
