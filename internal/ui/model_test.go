package ui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/dependencies/mocks"
	"github.com/questguild/questguild/internal/hero"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/quest"
	"github.com/questguild/questguild/internal/scoring"
	"github.com/questguild/questguild/internal/storage/memory"
)

var now = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

type memScores struct{ entries []scoring.ScoreHistoryEntry }

func (m *memScores) LoadAll() ([]scoring.ScoreHistoryEntry, error) { return m.entries, nil }
func (m *memScores) SaveAll(e []scoring.ScoreHistoryEntry) error {
	m.entries = e
	return nil
}

type harness struct {
	t      *testing.T
	m      *Model
	clock  *mocks.MockClock
	sender *notify.Sender
	scores *memScores
}

func newHarness(t *testing.T) *harness {
	clk := mocks.NewMockClock(now)
	store := memory.New()
	sender := notify.NewSender(notify.DefaultConfig(), io.Discard, clk, zap.NewNop())
	scores := &memScores{}
	svc := Services{
		Heroes:     hero.New(store, clk, sender, zap.NewNop()),
		Quests:     quest.New(store, clk, nil, scores, zap.NewNop()),
		Advisor:    advisor.NewTemplateAdvisor(mocks.NewMockRandom(), clk),
		Notifier:   sender,
		Challenges: challenge.NewManager(zap.NewNop()),
		Scores:     scores,
		Clock:      clk,
	}
	return &harness{t: t, m: New(context.Background(), svc), clock: clk, sender: sender, scores: scores}
}

// send delivers msg and keeps feeding back the messages of the shell's own
// commands, the way the bubbletea runtime would.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	for i := 0; cmd != nil && i < 10; i++ {
		next := cmd()
		switch next.(type) {
		case authMsg, questSavedMsg, questsLoadedMsg, questDoneMsg, questDeletedMsg,
			panelMsg, describeMsg, challengeAppliedMsg:
			_, cmd = h.m.Update(next)
		default:
			return cmd
		}
	}
	return cmd
}

func (h *harness) key(k tea.KeyType) tea.Cmd { return h.send(tea.KeyMsg{Type: k}) }

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// fill types values into consecutive form fields, then submits.
func (h *harness) fill(values ...string) tea.Cmd {
	for i, v := range values {
		if v != "" {
			h.typeText(v)
		}
		if i < len(values)-1 {
			h.key(tea.KeyTab)
		}
	}
	return h.key(tea.KeyEnter)
}

func (h *harness) expectScreen(want string) {
	h.t.Helper()
	if got := h.m.Screen(); got != want {
		h.t.Fatalf("screen = %q, want %q (err: %v)", got, want, h.m.err)
	}
}

func (h *harness) registerAria() {
	h.t.Helper()
	h.typeText("1")
	h.expectScreen(screenRegister)
	h.fill("aria", "secret1", "aria@guild.com", "")
	h.expectScreen(screenHero)
}

func (h *harness) choose(item int) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune('1' + item)}})
}

func (h *harness) addQuest(values ...string) {
	h.t.Helper()
	h.choose(heroAddQuest)
	h.expectScreen(screenQuestForm)
	h.fill(values...)
	h.expectScreen(screenQuests)
}

func TestMainMenuNavigation(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyUp)
	if h.m.menu.cursor != len(mainMenuItems)-1 {
		t.Errorf("cursor = %d, want wrap to last item", h.m.menu.cursor)
	}
	if !isQuit(h.key(tea.KeyEnter)) {
		t.Error("selecting Quit should quit")
	}

	h = newHarness(t)
	h.typeText("2")
	h.expectScreen(screenLogin)
	h.key(tea.KeyEsc)
	h.expectScreen(screenMain)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestRegisterLogsIn(t *testing.T) {
	h := newHarness(t)
	h.registerAria()

	if h.m.Hero() == nil || h.m.Hero().Username != "aria" {
		t.Fatalf("hero = %+v", h.m.Hero())
	}
	if !strings.Contains(h.m.View(), "aria, level 1 Adventurer") {
		t.Errorf("banner missing hero:\n%s", h.m.View())
	}
	sent := h.sender.Sent()
	if len(sent) != 1 || sent[0].Kind != notify.ContactEmail {
		t.Errorf("expected one welcome email, got %+v", sent)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	h.typeText("1")
	h.fill("aria", "123", "aria@guild.com", "")

	h.expectScreen(screenRegister)
	if h.m.err != model.ErrWeakPassword {
		t.Errorf("err = %v, want %v", h.m.err, model.ErrWeakPassword)
	}
	if !strings.Contains(h.m.View(), "Error:") {
		t.Error("view should show the error")
	}
}

func TestLogoutAndLogin(t *testing.T) {
	h := newHarness(t)
	h.registerAria()

	h.choose(heroLogout)
	h.expectScreen(screenMain)
	if h.m.Hero() != nil {
		t.Fatal("logout should forget the hero")
	}

	h.typeText("2")
	h.fill("aria", "wrong-password")
	h.expectScreen(screenLogin)
	if h.m.err != hero.ErrInvalidCredentials {
		t.Errorf("err = %v, want invalid credentials", h.m.err)
	}

	h.key(tea.KeyEsc)
	h.typeText("2")
	h.fill("aria", "secret1")
	h.expectScreen(screenHero)
	if !strings.Contains(h.m.status, "Welcome back, aria") {
		t.Errorf("status = %q", h.m.status)
	}
}

func TestAddQuestAsksAdvisorForPriority(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.addQuest("Urgent laundry", "", "", "", "")

	if len(h.m.list.quests) != 1 {
		t.Fatalf("expected 1 quest listed, got %d", len(h.m.list.quests))
	}
	q := h.m.list.quests[0]
	if q.Priority != model.PriorityHigh {
		t.Errorf("priority = %s, want High from the advisor", q.Priority)
	}
	if !q.DueDate.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("due = %s, want one week out", q.DueDate)
	}
	if !strings.Contains(h.m.status, "rates it High priority") {
		t.Errorf("status = %q", h.m.status)
	}
}

func TestQuestFormValidation(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.choose(heroAddQuest)

	h.fill("Dragon", "", "next tuesday", "", "")
	h.expectScreen(screenQuestForm)
	if h.m.err == nil {
		t.Fatal("bad due date should be rejected")
	}
	if h.m.form.focus != qfDue {
		t.Errorf("focus = %d, want the due field", h.m.form.focus)
	}
}

func TestAdvisorDescription(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.choose(heroAddQuest)
	h.typeText("Red dragon")
	h.key(tea.KeyCtrlG)

	if got := h.m.form.value(qfDescription); !strings.Contains(got, "ancient dragon Red dragon") {
		t.Errorf("description = %q", got)
	}
}

func TestCompleteQuestAwardsExperience(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.addQuest("Buy bread", "", "", "high", "")

	h.key(tea.KeyEnter)
	if !strings.Contains(h.m.status, "Quest 'Buy bread' completed! +40 XP") {
		t.Errorf("status = %q (err %v)", h.m.status, h.m.err)
	}
	if h.m.Hero().Experience != 40 {
		t.Errorf("experience = %d, want 40", h.m.Hero().Experience)
	}
	if !h.m.list.quests[0].IsCompleted {
		t.Error("listed quest should be completed")
	}

	h.key(tea.KeyEnter)
	if h.m.err != model.ErrQuestCompleted {
		t.Errorf("err = %v, want already completed", h.m.err)
	}
}

func TestChallengeQuest(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.addQuest("Slay the dragon", "", "", "medium", "y")

	q := h.m.list.quests[0]
	if !q.RequiresGameCompletion || q.RequiredGameLevel != model.DefaultRequiredLevel {
		t.Fatalf("quest should require a level %d game: %+v", model.DefaultRequiredLevel, q)
	}

	if cmd := h.key(tea.KeyEnter); cmd == nil {
		t.Fatal("completing a gated quest should launch the challenge")
	}
	if h.m.list.quests[0].IsCompleted {
		t.Fatal("quest must stay open until the game is won")
	}

	lost := &challenge.Command{Result: challenge.Result{Game: "tetris", FinalLevel: 1, Score: 300}}
	h.send(challengeDoneMsg{questID: q.ID, run: lost})
	if !strings.Contains(h.m.status, "Challenge failed at level 1") {
		t.Errorf("status = %q", h.m.status)
	}
	if !strings.HasSuffix(h.m.status, "New high score!") {
		t.Errorf("first scoring run should be a high score: %q", h.m.status)
	}

	h.clock.Advance(time.Minute)
	won := &challenge.Command{Result: challenge.Result{Game: "tetris", Success: true, FinalLevel: 3, Score: 2300, LinesCleared: 20}}
	h.send(challengeDoneMsg{questID: q.ID, run: won})
	if !strings.Contains(h.m.status, "Challenge won! Level 3 reached with 2300 points") {
		t.Errorf("status = %q (err %v)", h.m.status, h.m.err)
	}
	if !strings.HasSuffix(h.m.status, "New high score!") {
		t.Errorf("2300 beats 300, expected a high score: %q", h.m.status)
	}
	if !h.m.list.quests[0].IsCompleted {
		t.Error("a won challenge completes the quest")
	}
	if h.m.Hero().Experience != 60 {
		t.Errorf("experience = %d, want 60", h.m.Hero().Experience)
	}
	if len(h.scores.entries) != 2 {
		t.Errorf("expected both runs recorded, got %d", len(h.scores.entries))
	}
}

func TestQuestFilters(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.addQuest("Plain", "", "", "low", "")
	h.key(tea.KeyEsc)
	h.addQuest("Gated", "", "", "low", "2")
	h.key(tea.KeyEsc)

	h.choose(heroChallenges)
	h.expectScreen(screenQuests)
	if len(h.m.list.quests) != 1 || h.m.list.quests[0].Title != "Gated" {
		t.Errorf("challenge filter listed %d quests", len(h.m.list.quests))
	}

	h.key(tea.KeyTab)
	if h.m.list.filter != filterAll || len(h.m.list.quests) != 2 {
		t.Errorf("tab should cycle to all quests, got filter %s with %d", h.m.list.filter, len(h.m.list.quests))
	}

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if len(h.m.list.quests) != 1 || !strings.Contains(h.m.status, "abandoned") {
		t.Errorf("delete left %d quests, status %q", len(h.m.list.quests), h.m.status)
	}
}

func TestAdvisorReportAndDeadlines(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.addQuest("Rent", "", "2024-05-20 18:00", "high", "")
	h.key(tea.KeyEsc)

	h.choose(heroAdvisor)
	h.expectScreen(screenAdvisor)
	if h.m.busy || !strings.Contains(h.m.panel, "Rent") {
		t.Errorf("advisor panel:\n%s", h.m.panel)
	}
	h.key(tea.KeyEsc)

	h.choose(heroReport)
	if !strings.Contains(h.m.panel, "Total: 1 | Active: 1") || !strings.Contains(h.m.panel, "No game challenges attempted yet.") {
		t.Errorf("report panel:\n%s", h.m.panel)
	}
	h.key(tea.KeyEsc)

	before := len(h.sender.Sent())
	h.choose(heroDeadlines)
	if got := len(h.sender.Sent()) - before; got != 1 {
		t.Errorf("sent %d deadline alerts, want 1", got)
	}
	if !strings.Contains(h.m.panel, "URGENT: Hero, your quest 'Rent'") {
		t.Errorf("deadline panel:\n%s", h.m.panel)
	}
	h.key(tea.KeyEsc)
	h.expectScreen(screenHero)
}

func TestCtrlCQuitsAnywhere(t *testing.T) {
	h := newHarness(t)
	h.registerAria()
	h.choose(heroAddQuest)
	if !isQuit(h.key(tea.KeyCtrlC)) {
		t.Error("ctrl+c should quit from a form")
	}
}
