package quest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/dependencies/mocks"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/scoring"
	"github.com/questguild/questguild/internal/storage/memory"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakePlayer struct {
	result challenge.Result
	err    error
	games  []string
	reqs   []challenge.Request
}

func (p *fakePlayer) Play(_ context.Context, game string, req challenge.Request) (challenge.Result, error) {
	p.games = append(p.games, game)
	p.reqs = append(p.reqs, req)
	return p.result, p.err
}

type memScores struct{ entries []scoring.ScoreHistoryEntry }

func (m *memScores) LoadAll() ([]scoring.ScoreHistoryEntry, error) { return m.entries, nil }
func (m *memScores) SaveAll(e []scoring.ScoreHistoryEntry) error {
	m.entries = e
	return nil
}

type fixture struct {
	svc    *Service
	clock  *mocks.MockClock
	player *fakePlayer
	scores *memScores
	hero   *model.Hero
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	hero := &model.Hero{Username: "aria", Email: "aria@guild.com"}
	require.NoError(t, store.CreateHero(context.Background(), hero))

	f := &fixture{
		clock:  mocks.NewMockClock(now),
		player: &fakePlayer{},
		scores: &memScores{},
		hero:   hero,
	}
	f.svc = New(store, f.clock, f.player, f.scores, zap.NewNop())
	return f
}

func (f *fixture) add(t *testing.T, title string, due time.Duration, challenge bool) *model.Quest {
	t.Helper()
	q := &model.Quest{Title: title, DueDate: now.Add(due), Priority: model.PriorityMedium}
	require.NoError(t, f.svc.Add(context.Background(), f.hero.ID, q, challenge))
	return q
}

func TestAddAppliesChallengeDefaults(t *testing.T) {
	f := newFixture(t)

	q := f.add(t, "  Slay the dragon ", 48*time.Hour, true)
	assert.NotZero(t, q.ID)
	assert.Equal(t, "Slay the dragon", q.Title)
	assert.Equal(t, f.hero.ID, q.HeroID)
	assert.Equal(t, now, q.CreatedAt)
	assert.True(t, q.RequiresGameCompletion)
	assert.Equal(t, model.DefaultRequiredGame, q.RequiredGame)
	assert.Equal(t, model.DefaultRequiredLevel, q.RequiredGameLevel)

	plain := f.add(t, "Buy bread", time.Hour, false)
	assert.False(t, plain.RequiresGameCompletion)
	assert.Empty(t, plain.RequiredGame)
}

func TestAddRejectsInvalidQuest(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Add(context.Background(), f.hero.ID, &model.Quest{Title: "   "}, false)
	assert.ErrorIs(t, err, model.ErrInvalidTitle)

	err = f.svc.Add(context.Background(), f.hero.ID, &model.Quest{Title: "x", RequiredGameLevel: 11}, true)
	assert.ErrorIs(t, err, model.ErrInvalidGameTarget)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	later := f.add(t, "Later", 72*time.Hour, false)
	soon := f.add(t, "Soon", 2*time.Hour, false)
	overdue := f.add(t, "Overdue", -time.Hour, true)
	first := f.add(t, "Done first", 96*time.Hour, false)
	second := f.add(t, "Done second", 96*time.Hour, false)

	_, err := f.svc.Complete(ctx, f.hero.ID, first.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Complete(ctx, f.hero.ID, second.ID)
	require.NoError(t, err)

	all, err := f.svc.All(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	active, err := f.svc.Active(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{overdue.ID, soon.ID, later.ID}, ids(active))

	done, err := f.svc.Completed(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID, first.ID}, ids(done))

	near, err := f.svc.NearDeadline(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{overdue.ID, soon.ID}, ids(near))

	gated, err := f.svc.WithGameChallenge(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{overdue.ID}, ids(gated))

	sum, err := f.svc.Summary(ctx, f.hero.ID)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 5, Active: 3, Completed: 2, NearDeadline: 2, Overdue: 1, PendingChallenges: 1}, sum)
	assert.Contains(t, sum.String(), "Challenges pending: 1")
}

func ids(quests []*model.Quest) []int64 {
	out := make([]int64, 0, len(quests))
	for _, q := range quests {
		out = append(out, q.ID)
	}
	return out
}

func TestQuestsAreScopedToHero(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Mine", time.Hour, false)

	_, err := f.svc.Get(context.Background(), f.hero.ID+1, q.ID)
	assert.ErrorIs(t, err, model.ErrQuestNotFound)
	_, err = f.svc.Complete(context.Background(), f.hero.ID+1, q.ID)
	assert.ErrorIs(t, err, model.ErrQuestNotFound)
}

func TestCompleteRefusesPendingChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.add(t, "Gated", time.Hour, true)

	_, err := f.svc.Complete(ctx, f.hero.ID, q.ID)
	assert.ErrorIs(t, err, model.ErrChallengePending)

	pending, err := f.svc.HasPendingGameChallenge(ctx, f.hero.ID, q.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	status, err := f.svc.Status(ctx, f.hero.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Awaiting tetris challenge (level 3)", status)
}

func TestCompleteTwice(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Once", time.Hour, false)

	done, err := f.svc.Complete(context.Background(), f.hero.ID, q.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, now, *done.CompletedAt)

	_, err = f.svc.Complete(context.Background(), f.hero.ID, q.ID)
	assert.ErrorIs(t, err, model.ErrQuestCompleted)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Old", time.Hour, false)
	due := now.Add(10 * time.Hour)

	got, err := f.svc.Update(context.Background(), f.hero.ID, q.ID, "New", "desc", due, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, due, got.DueDate)
	assert.Equal(t, model.PriorityHigh, got.Priority)

	_, err = f.svc.Update(context.Background(), f.hero.ID, q.ID, "", "", due, model.PriorityHigh)
	assert.ErrorIs(t, err, model.ErrInvalidTitle)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Gone", time.Hour, false)
	require.NoError(t, f.svc.Delete(context.Background(), f.hero.ID, q.ID))
	_, err := f.svc.Get(context.Background(), f.hero.ID, q.ID)
	assert.ErrorIs(t, err, model.ErrQuestNotFound)
}

func TestAttemptCompletionWithoutChallenge(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Plain", time.Hour, false)

	att, err := f.svc.AttemptCompletion(context.Background(), f.hero, q.ID, challenge.Request{})
	require.NoError(t, err)
	assert.False(t, att.Played)
	assert.True(t, att.Quest.IsCompleted)
	assert.Empty(t, f.player.games)
}

func TestAttemptCompletionWin(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Slay the dragon", time.Hour, true)
	f.player.result = challenge.Result{Game: "tetris", Success: true, FinalLevel: 3, Score: 2300, LinesCleared: 20}

	att, err := f.svc.AttemptCompletion(context.Background(), f.hero, q.ID, challenge.Request{})
	require.NoError(t, err)
	assert.True(t, att.Played)
	assert.True(t, att.Quest.IsCompleted)
	assert.True(t, att.Quest.IsGameCompleted)

	require.Len(t, f.player.reqs, 1)
	assert.Equal(t, "tetris", f.player.games[0])
	assert.Equal(t, 3, f.player.reqs[0].TargetLevel)
	assert.Equal(t, "Slay the dragon", f.player.reqs[0].Title)

	require.Len(t, f.scores.entries, 1)
	assert.Equal(t, "aria", f.scores.entries[0].Hero)
	assert.Equal(t, 2300, f.scores.entries[0].Score)
	assert.True(t, f.scores.entries[0].Success)
}

func TestAttemptCompletionLossKeepsQuestOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.add(t, "Hard", time.Hour, true)
	f.player.result = challenge.Result{Game: "tetris", FinalLevel: 1, Score: 100}

	att, err := f.svc.AttemptCompletion(ctx, f.hero, q.ID, challenge.Request{})
	require.NoError(t, err)
	assert.True(t, att.Played)
	assert.False(t, att.Quest.IsCompleted)

	pending, err := f.svc.HasPendingGameChallenge(ctx, f.hero.ID, q.ID)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Len(t, f.scores.entries, 1)
}

func TestAttemptCompletionPlayerError(t *testing.T) {
	f := newFixture(t)
	q := f.add(t, "Broken", time.Hour, true)
	f.player.err = errors.New("no terminal")

	_, err := f.svc.AttemptCompletion(context.Background(), f.hero, q.ID, challenge.Request{})
	assert.Error(t, err)
	assert.Empty(t, f.scores.entries)
}

func TestPrepareChallenge(t *testing.T) {
	f := newFixture(t)
	plain := f.add(t, "Plain", time.Hour, false)

	_, _, err := f.svc.PrepareChallenge(context.Background(), f.hero.ID, plain.ID)
	assert.ErrorIs(t, err, model.ErrNoChallenge)

	gated := &model.Quest{Title: "Gated", DueDate: now, RequiredGameLevel: 5}
	require.NoError(t, f.svc.Add(context.Background(), f.hero.ID, gated, true))
	q, req, err := f.svc.PrepareChallenge(context.Background(), f.hero.ID, gated.ID)
	require.NoError(t, err)
	assert.Equal(t, gated.ID, q.ID)
	assert.Equal(t, 5, req.TargetLevel)
}

func TestReward(t *testing.T) {
	assert.Equal(t, 20, Reward(&model.Quest{Priority: model.PriorityLow}))
	assert.Equal(t, 40, Reward(&model.Quest{Priority: model.PriorityHigh}))
	won := &model.Quest{Priority: model.PriorityMedium, RequiresGameCompletion: true, RequiredGameLevel: 3, IsGameCompleted: true}
	assert.Equal(t, 60, Reward(won))
	won.IsGameCompleted = false
	assert.Equal(t, 30, Reward(won))
}

func TestApplyChallengeResultReportsHighScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.add(t, "Hard", time.Hour, true)

	att, err := f.svc.ApplyChallengeResult(ctx, f.hero, q.ID, challenge.Result{Game: "tetris", FinalLevel: 1})
	require.NoError(t, err)
	assert.False(t, att.HighScore, "a scoreless run is never a high score")

	f.clock.Advance(time.Minute)
	att, err = f.svc.ApplyChallengeResult(ctx, f.hero, q.ID, challenge.Result{Game: "tetris", FinalLevel: 2, Score: 900})
	require.NoError(t, err)
	assert.True(t, att.HighScore)
	assert.True(t, att.Played)
	assert.False(t, att.Quest.IsCompleted)

	f.clock.Advance(time.Minute)
	att, err = f.svc.ApplyChallengeResult(ctx, f.hero, q.ID, challenge.Result{Game: "tetris", FinalLevel: 1, Score: 400})
	require.NoError(t, err)
	assert.False(t, att.HighScore)

	f.clock.Advance(time.Minute)
	att, err = f.svc.ApplyChallengeResult(ctx, f.hero, q.ID, challenge.Result{Game: "tetris", Success: true, FinalLevel: 3, Score: 2300})
	require.NoError(t, err)
	assert.True(t, att.HighScore)
	assert.True(t, att.Quest.IsCompleted)
	assert.Len(t, f.scores.entries, 4)
}
