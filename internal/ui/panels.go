package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/quest"
	"github.com/questguild/questguild/internal/scoring"
)

// panelMsg carries the text of a read-only screen.
type panelMsg struct {
	text string
	err  error
}

type describeMsg struct {
	text string
	err  error
}

const topScores = 5

func (m *Model) summarize() tea.Cmd {
	heroID, width := m.hero.ID, m.width
	return func() tea.Msg {
		active, err := m.svc.Quests.Active(m.ctx, heroID)
		if err != nil {
			return panelMsg{err: err}
		}
		completed, err := m.svc.Quests.Completed(m.ctx, heroID)
		if err != nil {
			return panelMsg{err: err}
		}
		near, err := m.svc.Quests.NearDeadline(m.ctx, heroID)
		if err != nil {
			return panelMsg{err: err}
		}
		text, err := m.svc.Advisor.Summarize(m.ctx, active, completed, near)
		if err != nil {
			return panelMsg{err: err}
		}
		return panelMsg{text: advisor.Render(text, width)}
	}
}

func (m *Model) describe(title string) tea.Cmd {
	return func() tea.Msg {
		text, err := m.svc.Advisor.Describe(m.ctx, title)
		return describeMsg{text: text, err: err}
	}
}

func (m *Model) loadReport() tea.Cmd {
	hero := m.hero
	return func() tea.Msg {
		sum, err := m.svc.Quests.Summary(m.ctx, hero.ID)
		if err != nil {
			return panelMsg{err: err}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s the %s, level %d (%d XP)\n\n", hero.Username, hero.Class, hero.Level, hero.Experience)
		b.WriteString(sum.String() + "\n")

		if m.svc.Scores != nil {
			sc, err := scoring.InitScoring(hero.Username, model.DefaultRequiredGame, m.svc.Scores)
			if err != nil {
				return panelMsg{err: err}
			}
			b.WriteString("\n" + scoreReport(sc))
		}
		return panelMsg{text: b.String()}
	}
}

func scoreReport(sc *scoring.Scoring) string {
	if sc.GetAttempts() == 0 {
		return "No game challenges attempted yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Game challenges: %d attempts, %d won, best score %d\n",
		sc.GetAttempts(), sc.GetWins(), sc.GetHighScore().Score)
	for _, e := range sc.GetNScoreEntries(topScores) {
		outcome := "lost"
		if e.Success {
			outcome = "won"
		}
		fmt.Fprintf(&b, "  * %d points, level %d, %s on %s", e.Score, e.Level, outcome, e.Timestamp)
		if e.Title != "" {
			fmt.Fprintf(&b, " (%s)", e.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) checkDeadlines() tea.Cmd {
	hero := m.hero
	return func() tea.Msg {
		near, err := m.svc.Quests.NearDeadline(m.ctx, hero.ID)
		if err != nil {
			return panelMsg{err: err}
		}
		if len(near) == 0 {
			return panelMsg{text: "No quests near their deadline. Well done, hero!"}
		}

		before := len(m.svc.Notifier.Sent())
		count, err := m.svc.Notifier.CheckDeadlines(m.ctx, hero, near)

		var b strings.Builder
		fmt.Fprintf(&b, "%d quest(s) near their deadline, %d alert(s) sent:\n\n", len(near), count)
		for _, n := range m.svc.Notifier.Sent()[before:] {
			fmt.Fprintf(&b, "[%s] %s: %s\n", n.Kind, n.To, n.Message)
		}
		return panelMsg{text: b.String(), err: err}
	}
}

// submitQuest validates the quest form and saves the quest, asking the
// advisor for a priority when none was given.
func (m *Model) submitQuest() tea.Cmd {
	f := m.form
	title := f.value(qfTitle)
	if title == "" {
		m.err = model.ErrInvalidTitle
		return nil
	}

	due := m.svc.Clock.Now().AddDate(0, 0, 7)
	if v := f.value(qfDue); v != "" {
		parsed, err := quest.ParseDue(v)
		if err != nil {
			m.err = err
			return m.form.focusField(qfDue)
		}
		due = parsed
	}

	var priority *model.Priority
	if v := f.value(qfPriority); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			m.err = err
			return m.form.focusField(qfPriority)
		}
		priority = &p
	}

	withChallenge := false
	level := 0
	if v := f.value(qfChallenge); v != "" {
		withChallenge = true
		if strings.EqualFold(v, "y") || strings.EqualFold(v, "yes") {
			v = strconv.Itoa(m.svc.DefaultTarget)
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < challenge.MinTargetLevel || n > challenge.MaxTargetLevel {
			m.err = model.ErrInvalidGameTarget
			return m.form.focusField(qfChallenge)
		}
		level = n
	}

	q := &model.Quest{
		Title:             title,
		Description:       f.value(qfDescription),
		DueDate:           due,
		RequiredGameLevel: level,
	}
	heroID := m.hero.ID
	return func() tea.Msg {
		if priority != nil {
			q.Priority = *priority
		} else {
			p, err := m.svc.Advisor.SuggestPriority(m.ctx, q.Title, q.DueDate)
			if err != nil {
				return questSavedMsg{err: err}
			}
			q.Priority = p
		}
		if err := m.svc.Quests.Add(m.ctx, heroID, q, withChallenge); err != nil {
			return questSavedMsg{err: err}
		}
		return questSavedMsg{quest: q, suggested: priority == nil}
	}
}

type questSavedMsg struct {
	quest     *model.Quest
	suggested bool
	err       error
}
