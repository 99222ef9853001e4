package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/quest"
)

type questFilter int

const (
	filterAll questFilter = iota
	filterActive
	filterChallenges
)

func (f questFilter) String() string {
	switch f {
	case filterActive:
		return "Active quests"
	case filterChallenges:
		return "Quests awaiting a game challenge"
	default:
		return "All quests"
	}
}

type questList struct {
	filter questFilter
	quests []*model.Quest
	table  table.Model
}

func newQuestList(filter questFilter) questList {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "Title", Width: 30},
			{Title: "Due", Width: 16},
			{Title: "Priority", Width: 8},
			{Title: "Status", Width: 34},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	return questList{filter: filter, table: t}
}

func (l *questList) setQuests(quests []*model.Quest, now time.Time) {
	l.quests = quests
	rows := make([]table.Row, 0, len(quests))
	for _, q := range quests {
		rows = append(rows, table.Row{
			strconv.FormatInt(q.ID, 10),
			q.Title,
			q.DueDate.Format("2006-01-02 15:04"),
			q.Priority.String(),
			q.Status(now),
		})
	}
	l.table.SetRows(rows)
	if c := l.table.Cursor(); c >= len(rows) {
		l.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (l *questList) selected() *model.Quest {
	c := l.table.Cursor()
	if c < 0 || c >= len(l.quests) {
		return nil
	}
	return l.quests[c]
}

type questsLoadedMsg struct {
	quests []*model.Quest
	err    error
}

// questDoneMsg reports a quest that was completed, directly or by a game.
type questDoneMsg struct {
	quest *model.Quest
	hero  *model.Hero
	err   error
}

type questDeletedMsg struct {
	title string
	err   error
}

type challengeDoneMsg struct {
	questID int64
	run     *challenge.Command
	err     error
}

type challengeAppliedMsg struct {
	result    challenge.Result
	quest     *model.Quest
	hero      *model.Hero
	highScore bool
	err       error
}

func (m *Model) loadQuests() tea.Cmd {
	heroID, filter := m.hero.ID, m.list.filter
	return func() tea.Msg {
		var (
			quests []*model.Quest
			err    error
		)
		switch filter {
		case filterActive:
			quests, err = m.svc.Quests.Active(m.ctx, heroID)
		case filterChallenges:
			quests, err = m.svc.Quests.WithGameChallenge(m.ctx, heroID)
		default:
			quests, err = m.svc.Quests.All(m.ctx, heroID)
		}
		return questsLoadedMsg{quests: quests, err: err}
	}
}

func (m *Model) completeQuest(q *model.Quest) tea.Cmd {
	heroID := m.hero.ID
	return func() tea.Msg {
		done, err := m.svc.Quests.Complete(m.ctx, heroID, q.ID)
		if err != nil {
			return questDoneMsg{err: err}
		}
		hero, err := m.svc.Heroes.AwardExperience(m.ctx, heroID, quest.Reward(done))
		return questDoneMsg{quest: done, hero: hero, err: err}
	}
}

func (m *Model) deleteQuest(q *model.Quest) tea.Cmd {
	heroID := m.hero.ID
	return func() tea.Msg {
		return questDeletedMsg{title: q.Title, err: m.svc.Quests.Delete(m.ctx, heroID, q.ID)}
	}
}

// playChallenge hands the terminal to the quest's game and resumes the
// shell with its result.
func (m *Model) playChallenge(q *model.Quest) tea.Cmd {
	if m.svc.Challenges == nil {
		m.err = challenge.ErrUnknownGame
		return nil
	}
	_, req, err := m.svc.Quests.PrepareChallenge(m.ctx, m.hero.ID, q.ID)
	if err != nil {
		m.err = err
		return nil
	}
	m.svc.Logger.Info("launching challenge", zap.Int64("quest_id", q.ID), zap.String("game", q.RequiredGame))
	run := challenge.NewCommand(m.ctx, m.svc.Challenges, q.RequiredGame, req)
	return tea.Exec(run, func(err error) tea.Msg {
		return challengeDoneMsg{questID: q.ID, run: run, err: err}
	})
}

func (m *Model) applyChallenge(msg challengeDoneMsg) tea.Cmd {
	hero := m.hero
	return func() tea.Msg {
		if msg.err != nil {
			return challengeAppliedMsg{err: msg.err}
		}
		res := msg.run.Result
		att, err := m.svc.Quests.ApplyChallengeResult(m.ctx, hero, msg.questID, res)
		applied := challengeAppliedMsg{result: res, quest: att.Quest, hero: hero, highScore: att.HighScore, err: err}
		if err != nil || !res.Success {
			return applied
		}
		applied.hero, applied.err = m.svc.Heroes.AwardExperience(m.ctx, hero.ID, quest.Reward(att.Quest))
		return applied
	}
}

func challengeStatus(msg challengeAppliedMsg) string {
	res := msg.result
	var status string
	if res.Success {
		status = fmt.Sprintf("Challenge won! Level %d reached with %d points. Quest '%s' complete.",
			res.FinalLevel, res.Score, msg.quest.Title)
	} else {
		status = fmt.Sprintf("Challenge failed at level %d with %d points. The quest remains open, try again!",
			res.FinalLevel, res.Score)
	}
	if msg.highScore {
		status += " New high score!"
	}
	return status
}

func (m *Model) updateQuests(msg tea.KeyMsg) tea.Cmd {
	q := m.list.selected()

	switch msg.String() {
	case "esc", "q":
		return m.goTo(evBack)
	case "tab":
		m.filter = (m.list.filter + 1) % 3
		m.list = newQuestList(m.filter)
		return m.loadQuests()
	case "enter", "c":
		if q == nil {
			return nil
		}
		if q.IsCompleted {
			m.err = model.ErrQuestCompleted
			return nil
		}
		if q.HasPendingChallenge() {
			return m.playChallenge(q)
		}
		return m.completeQuest(q)
	case "p":
		if q != nil {
			return m.playChallenge(q)
		}
		return nil
	case "d":
		if q != nil {
			return m.deleteQuest(q)
		}
		return nil
	}

	var cmd tea.Cmd
	m.list.table, cmd = m.list.table.Update(msg)
	return cmd
}

func (m *Model) handleQuestMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case questsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.list.setQuests(msg.quests, m.svc.Clock.Now())
	case questDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.hero = msg.hero
		m.status = fmt.Sprintf("Quest '%s' completed! +%d XP", msg.quest.Title, quest.Reward(msg.quest))
		return m.loadQuests()
	case questDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.status = fmt.Sprintf("Quest '%s' abandoned.", msg.title)
		return m.loadQuests()
	case challengeDoneMsg:
		return m.applyChallenge(msg)
	case challengeAppliedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		if msg.hero != nil {
			m.hero = msg.hero
		}
		if msg.quest != nil {
			m.status = challengeStatus(msg)
		}
		if m.screen.Current() == screenQuests {
			return m.loadQuests()
		}
	}
	return nil
}

func (m *Model) questsView() string {
	if len(m.list.quests) == 0 {
		return boldStyle.Render(m.list.filter.String()) + "\n\nNo quests here yet."
	}
	return boldStyle.Render(m.list.filter.String()) + "\n\n" + m.list.table.View()
}
