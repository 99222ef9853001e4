package quest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/scoring"
	"github.com/questguild/questguild/internal/storage"
)

// ChallengePlayer runs a named game to completion.
type ChallengePlayer interface {
	Play(ctx context.Context, game string, req challenge.Request) (challenge.Result, error)
}

// Service manages the quests of heroes. Every call is scoped to a hero; a
// quest owned by someone else reads as not found.
type Service struct {
	store      storage.Store
	clock      clock.Clock
	challenges ChallengePlayer
	scores     scoring.ScoreStorage
	logger     *zap.Logger
}

// New creates a quest Service. challenges and scores may be nil when game
// challenges are not available.
func New(store storage.Store, clk clock.Clock, challenges ChallengePlayer, scores scoring.ScoreStorage, logger *zap.Logger) *Service {
	return &Service{store: store, clock: clk, challenges: challenges, scores: scores, logger: logger}
}

// Add stores a new quest for heroID. With withChallenge the quest can only
// be completed by winning its game; game and level default to tetris at
// level 3 when unset.
func (s *Service) Add(ctx context.Context, heroID int64, q *model.Quest, withChallenge bool) error {
	q.HeroID = heroID
	q.Title = strings.TrimSpace(q.Title)
	q.IsCompleted = false
	q.CompletedAt = nil
	q.IsGameCompleted = false
	q.CreatedAt = s.clock.Now()

	q.RequiresGameCompletion = withChallenge
	if withChallenge {
		if q.RequiredGame == "" {
			q.RequiredGame = model.DefaultRequiredGame
		}
		if q.RequiredGameLevel == 0 {
			q.RequiredGameLevel = model.DefaultRequiredLevel
		}
	} else {
		q.RequiredGame = ""
		q.RequiredGameLevel = 0
	}

	if err := q.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateQuest(ctx, q); err != nil {
		return fmt.Errorf("failed to save quest: %w", err)
	}
	s.logger.Info("quest added",
		zap.Int64("hero_id", heroID),
		zap.Int64("quest_id", q.ID),
		zap.Bool("challenge", withChallenge))
	return nil
}

// All returns every quest of the hero in creation order.
func (s *Service) All(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	return s.store.ListQuests(ctx, heroID)
}

func (s *Service) filter(ctx context.Context, heroID int64, keep func(*model.Quest) bool) ([]*model.Quest, error) {
	all, err := s.store.ListQuests(ctx, heroID)
	if err != nil {
		return nil, err
	}
	var out []*model.Quest
	for _, q := range all {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func byDueDate(quests []*model.Quest) {
	sort.SliceStable(quests, func(i, j int) bool {
		return quests[i].DueDate.Before(quests[j].DueDate)
	})
}

// Active returns open quests, soonest due first.
func (s *Service) Active(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	out, err := s.filter(ctx, heroID, func(q *model.Quest) bool { return !q.IsCompleted })
	byDueDate(out)
	return out, err
}

// Completed returns finished quests, most recently completed first.
func (s *Service) Completed(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	out, err := s.filter(ctx, heroID, func(q *model.Quest) bool { return q.IsCompleted })
	sort.SliceStable(out, func(i, j int) bool {
		return completedAt(out[i]).After(completedAt(out[j]))
	})
	return out, err
}

func completedAt(q *model.Quest) time.Time {
	if q.CompletedAt == nil {
		return time.Time{}
	}
	return *q.CompletedAt
}

// NearDeadline returns open quests due within the next day, soonest first.
func (s *Service) NearDeadline(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	now := s.clock.Now()
	out, err := s.filter(ctx, heroID, func(q *model.Quest) bool { return q.IsNearDeadline(now) })
	byDueDate(out)
	return out, err
}

// WithGameChallenge returns open quests still waiting on a game win.
func (s *Service) WithGameChallenge(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	out, err := s.filter(ctx, heroID, func(q *model.Quest) bool { return !q.IsCompleted && q.HasPendingChallenge() })
	byDueDate(out)
	return out, err
}

// Get returns one of the hero's quests.
func (s *Service) Get(ctx context.Context, heroID, id int64) (*model.Quest, error) {
	q, err := s.store.GetQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.HeroID != heroID {
		return nil, model.ErrQuestNotFound
	}
	return q, nil
}

// Complete marks a quest done. Quests with an unfinished game challenge are refused.
func (s *Service) Complete(ctx context.Context, heroID, id int64) (*model.Quest, error) {
	q, err := s.Get(ctx, heroID, id)
	if err != nil {
		return nil, err
	}
	if q.IsCompleted {
		return nil, model.ErrQuestCompleted
	}
	if q.HasPendingChallenge() {
		return nil, model.ErrChallengePending
	}
	q.MarkComplete(s.clock.Now())
	if err := s.store.UpdateQuest(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to complete quest: %w", err)
	}
	s.logger.Info("quest completed", zap.Int64("hero_id", heroID), zap.Int64("quest_id", id))
	return q, nil
}

// Update replaces the editable fields of a quest.
func (s *Service) Update(ctx context.Context, heroID, id int64, title, description string, due time.Time, priority model.Priority) (*model.Quest, error) {
	q, err := s.Get(ctx, heroID, id)
	if err != nil {
		return nil, err
	}
	q.Title = strings.TrimSpace(title)
	q.Description = description
	q.DueDate = due
	q.Priority = priority
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateQuest(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to update quest: %w", err)
	}
	return q, nil
}

// Delete removes a quest.
func (s *Service) Delete(ctx context.Context, heroID, id int64) error {
	if _, err := s.Get(ctx, heroID, id); err != nil {
		return err
	}
	return s.store.DeleteQuest(ctx, id)
}

// HasPendingGameChallenge reports whether the quest still needs a game win.
func (s *Service) HasPendingGameChallenge(ctx context.Context, heroID, id int64) (bool, error) {
	q, err := s.Get(ctx, heroID, id)
	if err != nil {
		return false, err
	}
	return !q.IsCompleted && q.HasPendingChallenge(), nil
}

// Status describes the state of one quest.
func (s *Service) Status(ctx context.Context, heroID, id int64) (string, error) {
	q, err := s.Get(ctx, heroID, id)
	if err != nil {
		return "", err
	}
	return q.Status(s.clock.Now()), nil
}

// Summary counts a hero's quests by state.
type Summary struct {
	Total             int
	Active            int
	Completed         int
	NearDeadline      int
	Overdue           int
	PendingChallenges int
}

func (s Summary) String() string {
	return fmt.Sprintf("Total: %d | Active: %d | Completed: %d | Due soon: %d | Overdue: %d | Challenges pending: %d",
		s.Total, s.Active, s.Completed, s.NearDeadline, s.Overdue, s.PendingChallenges)
}

// Summary tallies the hero's quests.
func (s *Service) Summary(ctx context.Context, heroID int64) (Summary, error) {
	all, err := s.store.ListQuests(ctx, heroID)
	if err != nil {
		return Summary{}, err
	}
	now := s.clock.Now()
	sum := Summary{Total: len(all)}
	for _, q := range all {
		if q.IsCompleted {
			sum.Completed++
			continue
		}
		sum.Active++
		if q.IsNearDeadline(now) {
			sum.NearDeadline++
		}
		if now.After(q.DueDate) {
			sum.Overdue++
		}
		if q.HasPendingChallenge() {
			sum.PendingChallenges++
		}
	}
	return sum, nil
}

// Attempt is the outcome of AttemptCompletion.
type Attempt struct {
	Quest *model.Quest
	// Played is false when the quest completed without a game.
	Played    bool
	Challenge challenge.Result
	// HighScore is set when the game beat or matched the hero's best
	// recorded score.
	HighScore bool
}

// PrepareChallenge checks that a quest is waiting on a game and returns the
// request to play it with.
func (s *Service) PrepareChallenge(ctx context.Context, heroID, id int64) (*model.Quest, challenge.Request, error) {
	q, err := s.Get(ctx, heroID, id)
	if err != nil {
		return nil, challenge.Request{}, err
	}
	if q.IsCompleted {
		return nil, challenge.Request{}, model.ErrQuestCompleted
	}
	if !q.HasPendingChallenge() {
		return nil, challenge.Request{}, model.ErrNoChallenge
	}
	return q, challenge.Request{TargetLevel: q.RequiredGameLevel, Title: q.Title}, nil
}

// AttemptCompletion completes the quest, playing its game challenge first
// when one is pending. A lost game leaves the quest open.
func (s *Service) AttemptCompletion(ctx context.Context, hero *model.Hero, id int64, streams challenge.Request) (Attempt, error) {
	q, req, err := s.PrepareChallenge(ctx, hero.ID, id)
	if errors.Is(err, model.ErrNoChallenge) {
		done, err := s.Complete(ctx, hero.ID, id)
		return Attempt{Quest: done}, err
	}
	if err != nil {
		return Attempt{}, err
	}
	if s.challenges == nil {
		return Attempt{}, fmt.Errorf("%w: no games available", challenge.ErrUnknownGame)
	}

	req.Input, req.Output = streams.Input, streams.Output
	res, err := s.challenges.Play(ctx, q.RequiredGame, req)
	if err != nil {
		return Attempt{}, err
	}
	return s.ApplyChallengeResult(ctx, hero, id, res)
}

// ApplyChallengeResult records a finished game for the quest. A win marks
// the game done and completes the quest.
func (s *Service) ApplyChallengeResult(ctx context.Context, hero *model.Hero, id int64, res challenge.Result) (Attempt, error) {
	q, err := s.Get(ctx, hero.ID, id)
	if err != nil {
		return Attempt{}, err
	}
	att := Attempt{Quest: q, Played: true, Challenge: res, HighScore: s.recordScore(hero, q, res)}

	if !res.Success {
		s.logger.Info("challenge lost", zap.Int64("quest_id", id), zap.Int("final_level", res.FinalLevel))
		return att, nil
	}

	q.IsGameCompleted = true
	if !q.IsCompleted {
		q.MarkComplete(s.clock.Now())
	}
	if err := s.store.UpdateQuest(ctx, q); err != nil {
		return Attempt{}, fmt.Errorf("failed to complete quest: %w", err)
	}
	s.logger.Info("quest completed by challenge", zap.Int64("quest_id", id), zap.Int("score", res.Score))
	return att, nil
}

// recordScore saves the run and reports whether it is a new best. A
// scoreless run never counts as one.
func (s *Service) recordScore(hero *model.Hero, q *model.Quest, res challenge.Result) bool {
	if s.scores == nil {
		return false
	}
	game := res.Game
	if game == "" {
		game = q.RequiredGame
	}
	sc, err := scoring.InitScoring(hero.Username, game, s.scores)
	if err == nil {
		sc.Record(res, q.Title, s.clock.Now())
		err = sc.SaveEntries()
	}
	if err != nil {
		s.logger.Warn("failed to record challenge score", zap.Error(err))
		return false
	}
	return res.Score > 0 && sc.GotHighScore()
}

const (
	baseReward      = 20
	priorityReward  = 10
	challengeReward = 10
)

// Reward is the experience a hero earns for completing q: a base amount,
// more for higher priority, and more per challenge level won.
func Reward(q *model.Quest) int {
	xp := baseReward + int(q.Priority)*priorityReward
	if q.RequiresGameCompletion && q.IsGameCompleted {
		xp += q.RequiredGameLevel * challengeReward
	}
	return xp
}
