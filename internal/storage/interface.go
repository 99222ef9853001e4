package storage

import (
	"context"

	"github.com/questguild/questguild/internal/model"
)

// Store defines the persistence contract for heroes and their quests.
// Create methods assign the record ID.
type Store interface {
	// Hero operations
	CreateHero(ctx context.Context, hero *model.Hero) error
	GetHero(ctx context.Context, id int64) (*model.Hero, error)
	GetHeroByUsername(ctx context.Context, username string) (*model.Hero, error)
	UpdateHero(ctx context.Context, hero *model.Hero) error

	// Quest operations
	CreateQuest(ctx context.Context, quest *model.Quest) error
	GetQuest(ctx context.Context, id int64) (*model.Quest, error)
	UpdateQuest(ctx context.Context, quest *model.Quest) error
	DeleteQuest(ctx context.Context, id int64) error
	// ListQuests returns a hero's quests ordered by ID.
	ListQuests(ctx context.Context, heroID int64) ([]*model.Quest, error)

	Close() error
}
