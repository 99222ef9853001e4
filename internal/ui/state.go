package ui

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Screens of the shell.
const (
	screenMain      = "main"
	screenRegister  = "register"
	screenLogin     = "login"
	screenHero      = "hero"
	screenQuestForm = "questForm"
	screenQuests    = "quests"
	screenAdvisor   = "advisor"
	screenReport    = "report"
	screenDeadlines = "deadlines"
)

// Navigation events.
const (
	evRegister  = "register"
	evLogin     = "login"
	evLoggedIn  = "loggedIn"
	evLogout    = "logout"
	evBack      = "back"
	evAddQuest  = "addQuest"
	evQuests    = "quests"
	evSaved     = "saved"
	evAdvisor   = "advisor"
	evReport    = "report"
	evDeadlines = "deadlines"
)

var heroScreens = []string{screenQuestForm, screenQuests, screenAdvisor, screenReport, screenDeadlines}

func screenTransitions() fsm.Events {
	return fsm.Events{
		{Name: evRegister, Src: []string{screenMain}, Dst: screenRegister},
		{Name: evLogin, Src: []string{screenMain}, Dst: screenLogin},
		{Name: evLoggedIn, Src: []string{screenRegister, screenLogin}, Dst: screenHero},
		{Name: evBack, Src: []string{screenRegister, screenLogin}, Dst: screenMain},
		{Name: evBack, Src: heroScreens, Dst: screenHero},
		{Name: evLogout, Src: []string{screenHero}, Dst: screenMain},

		{Name: evAddQuest, Src: []string{screenHero}, Dst: screenQuestForm},
		{Name: evQuests, Src: []string{screenHero}, Dst: screenQuests},
		{Name: evSaved, Src: []string{screenQuestForm}, Dst: screenQuests},
		{Name: evAdvisor, Src: []string{screenHero}, Dst: screenAdvisor},
		{Name: evReport, Src: []string{screenHero}, Dst: screenReport},
		{Name: evDeadlines, Src: []string{screenHero}, Dst: screenDeadlines},
	}
}

func screenCallbacks(m *Model) fsm.Callbacks {
	return fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			m.err = nil
			m.svc.Logger.Debug("screen", zap.String("from", e.Src), zap.String("to", e.Dst))
		},
		"enter_" + screenMain: func(_ context.Context, e *fsm.Event) {
			if e.Event == evLogout {
				m.svc.Logger.Info("hero logged out", zap.String("username", m.hero.Username))
				m.hero = nil
				m.status = "Farewell, hero."
			}
			m.menu = newMenu(mainMenuTitle, mainMenuItems...)
		},
		"enter_" + screenRegister: func(context.Context, *fsm.Event) {
			m.form = newRegisterForm()
		},
		"enter_" + screenLogin: func(context.Context, *fsm.Event) {
			m.form = newLoginForm()
		},
		"enter_" + screenHero: func(context.Context, *fsm.Event) {
			m.menu = newMenu(heroMenuTitle, heroMenuItems...)
			m.panel = ""
		},
		"enter_" + screenQuestForm: func(context.Context, *fsm.Event) {
			m.form = newQuestForm(m.svc.DefaultTarget)
		},
		"enter_" + screenQuests: func(context.Context, *fsm.Event) {
			m.list = newQuestList(m.filter)
		},
	}
}

func newScreenFSM(m *Model) *fsm.FSM {
	return fsm.NewFSM(screenMain, screenTransitions(), screenCallbacks(m))
}
