package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Hero operations

func (s *Storage) CreateHero(ctx context.Context, hero *model.Hero) error {
	id, err := s.client.Incr(ctx, heroSeqKey()).Result()
	if err != nil {
		return err
	}

	// Claim the username before writing the record
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(hero.Username), id, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameExists
	}

	hero.ID = id
	data, err := json.Marshal(hero)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, heroKey(id), data, 0).Err()
}

func (s *Storage) GetHero(ctx context.Context, id int64) (*model.Hero, error) {
	data, err := s.client.Get(ctx, heroKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrHeroNotFound
		}
		return nil, err
	}

	var hero model.Hero
	if err := json.Unmarshal(data, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (s *Storage) GetHeroByUsername(ctx context.Context, username string) (*model.Hero, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrHeroNotFound
		}
		return nil, err
	}
	return s.GetHero(ctx, id)
}

func (s *Storage) UpdateHero(ctx context.Context, hero *model.Hero) error {
	existing, err := s.GetHero(ctx, hero.ID)
	if err != nil {
		return err
	}
	if existing.Username != hero.Username {
		claimed, err := s.client.SetNX(ctx, usernameIndexKey(hero.Username), hero.ID, 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrUsernameExists
		}
	}

	data, err := json.Marshal(hero)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, heroKey(hero.ID), data, 0)
	if existing.Username != hero.Username {
		pipe.Del(ctx, usernameIndexKey(existing.Username))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Quest operations

func (s *Storage) CreateQuest(ctx context.Context, quest *model.Quest) error {
	id, err := s.client.Incr(ctx, questSeqKey()).Result()
	if err != nil {
		return err
	}
	quest.ID = id
	data, err := json.Marshal(quest)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, questKey(id), data, 0)
	pipe.SAdd(ctx, heroQuestsKey(quest.HeroID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetQuest(ctx context.Context, id int64) (*model.Quest, error) {
	data, err := s.client.Get(ctx, questKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestNotFound
		}
		return nil, err
	}

	var quest model.Quest
	if err := json.Unmarshal(data, &quest); err != nil {
		return nil, err
	}
	return &quest, nil
}

func (s *Storage) UpdateQuest(ctx context.Context, quest *model.Quest) error {
	exists, err := s.client.Exists(ctx, questKey(quest.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrQuestNotFound
	}
	data, err := json.Marshal(quest)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, questKey(quest.ID), data, 0).Err()
}

func (s *Storage) DeleteQuest(ctx context.Context, id int64) error {
	quest, err := s.GetQuest(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, questKey(id))
	pipe.SRem(ctx, heroQuestsKey(quest.HeroID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListQuests(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	members, err := s.client.SMembers(ctx, heroQuestsKey(heroID)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	quests := make([]*model.Quest, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // removed between SMEMBERS and MGET
		}
		var q model.Quest
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, err
		}
		quests = append(quests, &q)
	}
	return quests, nil
}
