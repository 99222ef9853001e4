package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	heroes      map[int64]*model.Hero
	usernameIdx map[string]int64
	quests      map[int64]*model.Quest

	nextHeroID  int64
	nextQuestID int64
}

// New creates a new in-memory storage
func New() *Storage {
	return &Storage{
		heroes:      make(map[int64]*model.Hero),
		usernameIdx: make(map[string]int64),
		quests:      make(map[int64]*model.Quest),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Close() error { return nil }

// Hero operations

func (s *Storage) CreateHero(_ context.Context, hero *model.Hero) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIdx[hero.Username]; taken {
		return model.ErrUsernameExists
	}
	s.nextHeroID++
	hero.ID = s.nextHeroID
	h := *hero
	s.heroes[h.ID] = &h
	s.usernameIdx[h.Username] = h.ID
	return nil
}

func (s *Storage) GetHero(_ context.Context, id int64) (*model.Hero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.heroes[id]
	if !ok {
		return nil, model.ErrHeroNotFound
	}
	out := *h
	return &out, nil
}

func (s *Storage) GetHeroByUsername(ctx context.Context, username string) (*model.Hero, error) {
	s.mu.RLock()
	id, ok := s.usernameIdx[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrHeroNotFound
	}
	return s.GetHero(ctx, id)
}

func (s *Storage) UpdateHero(_ context.Context, hero *model.Hero) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.heroes[hero.ID]
	if !ok {
		return model.ErrHeroNotFound
	}
	if existing.Username != hero.Username {
		if _, taken := s.usernameIdx[hero.Username]; taken {
			return model.ErrUsernameExists
		}
		delete(s.usernameIdx, existing.Username)
		s.usernameIdx[hero.Username] = hero.ID
	}
	h := *hero
	s.heroes[h.ID] = &h
	return nil
}

// Quest operations

func copyQuest(q *model.Quest) *model.Quest {
	out := *q
	if q.CompletedAt != nil {
		at := *q.CompletedAt
		out.CompletedAt = &at
	}
	return &out
}

func (s *Storage) CreateQuest(_ context.Context, quest *model.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextQuestID++
	quest.ID = s.nextQuestID
	s.quests[quest.ID] = copyQuest(quest)
	return nil
}

func (s *Storage) GetQuest(_ context.Context, id int64) (*model.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quests[id]
	if !ok {
		return nil, model.ErrQuestNotFound
	}
	return copyQuest(q), nil
}

func (s *Storage) UpdateQuest(_ context.Context, quest *model.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quests[quest.ID]; !ok {
		return model.ErrQuestNotFound
	}
	s.quests[quest.ID] = copyQuest(quest)
	return nil
}

func (s *Storage) DeleteQuest(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quests[id]; !ok {
		return model.ErrQuestNotFound
	}
	delete(s.quests, id)
	return nil
}

func (s *Storage) ListQuests(_ context.Context, heroID int64) ([]*model.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Quest
	for _, q := range s.quests {
		if q.HeroID == heroID {
			out = append(out, copyQuest(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
