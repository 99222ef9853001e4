// Package storagetest holds the behaviour every storage.Store backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/storage"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) storage.Store

var created = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func newHero(name string) *model.Hero {
	return &model.Hero{
		Username:     name,
		PasswordHash: "hash-" + name,
		Email:        name + "@guild.test",
		Level:        1,
		Class:        model.DefaultHeroClass,
		CreatedAt:    created,
	}
}

// Run exercises the shared Store contract against a backend.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("hero round trip", func(t *testing.T) {
		s := newStore(t)
		h := newHero("aria")
		h.Phone = "5551234567"
		require.NoError(t, s.CreateHero(ctx, h))
		require.NotZero(t, h.ID)

		got, err := s.GetHero(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, "aria", got.Username)
		assert.Equal(t, "5551234567", got.Phone)
		assert.Equal(t, model.DefaultHeroClass, got.Class)
		assert.True(t, created.Equal(got.CreatedAt))

		byName, err := s.GetHeroByUsername(ctx, "aria")
		require.NoError(t, err)
		assert.Equal(t, h.ID, byName.ID)
	})

	t.Run("hero ids increase", func(t *testing.T) {
		s := newStore(t)
		a, b := newHero("a"), newHero("b")
		require.NoError(t, s.CreateHero(ctx, a))
		require.NoError(t, s.CreateHero(ctx, b))
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateHero(ctx, newHero("bran")))
		err := s.CreateHero(ctx, newHero("bran"))
		assert.ErrorIs(t, err, model.ErrUsernameExists)
	})

	t.Run("missing hero", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetHero(ctx, 42)
		assert.ErrorIs(t, err, model.ErrHeroNotFound)
		_, err = s.GetHeroByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, model.ErrHeroNotFound)
		assert.ErrorIs(t, s.UpdateHero(ctx, &model.Hero{ID: 42}), model.ErrHeroNotFound)
	})

	t.Run("update hero", func(t *testing.T) {
		s := newStore(t)
		h := newHero("cato")
		require.NoError(t, s.CreateHero(ctx, h))
		h.LastLoginAt = created.Add(time.Hour)
		h.Experience = 50
		require.NoError(t, s.UpdateHero(ctx, h))

		got, err := s.GetHero(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, got.Experience)
		assert.True(t, h.LastLoginAt.Equal(got.LastLoginAt))
	})

	t.Run("quest round trip", func(t *testing.T) {
		s := newStore(t)
		h := newHero("dara")
		require.NoError(t, s.CreateHero(ctx, h))

		q := &model.Quest{
			HeroID:                 h.ID,
			Title:                  "Rescue the village",
			Description:            "Bandits at the gate",
			DueDate:                created.Add(48 * time.Hour),
			Priority:               model.PriorityHigh,
			CreatedAt:              created,
			RequiresGameCompletion: true,
			RequiredGame:           "tetris",
			RequiredGameLevel:      4,
		}
		require.NoError(t, s.CreateQuest(ctx, q))
		require.NotZero(t, q.ID)

		got, err := s.GetQuest(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, q.Title, got.Title)
		assert.Equal(t, q.Description, got.Description)
		assert.Equal(t, model.PriorityHigh, got.Priority)
		assert.True(t, q.DueDate.Equal(got.DueDate))
		assert.True(t, got.RequiresGameCompletion)
		assert.Equal(t, "tetris", got.RequiredGame)
		assert.Equal(t, 4, got.RequiredGameLevel)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("quest times keep their wall clock", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		h := newHero("eris")
		require.NoError(t, s.CreateHero(ctx, h))

		zone := time.FixedZone("UTC+2", 2*60*60)
		due := time.Date(2024, 7, 4, 18, 0, 0, 0, zone)
		q := &model.Quest{HeroID: h.ID, Title: "Pay rent", DueDate: due, CreatedAt: due.Add(-time.Hour)}
		require.NoError(t, s.CreateQuest(ctx, q))
		q.MarkComplete(due.Add(-30 * time.Minute))
		require.NoError(t, s.UpdateQuest(ctx, q))

		got, err := s.GetQuest(ctx, q.ID)
		require.NoError(t, err)
		const layout = "2006-01-02 15:04 -0700"
		assert.Equal(t, "2024-07-04 18:00 +0200", got.DueDate.Format(layout))
		assert.Equal(t, "2024-07-04 17:00 +0200", got.CreatedAt.Format(layout))
		require.NotNil(t, got.CompletedAt)
		assert.Equal(t, "2024-07-04 17:30 +0200", got.CompletedAt.Format(layout))
	})

	t.Run("update and list quests", func(t *testing.T) {
		s := newStore(t)
		h, other := newHero("eli"), newHero("fay")
		require.NoError(t, s.CreateHero(ctx, h))
		require.NoError(t, s.CreateHero(ctx, other))

		first := &model.Quest{HeroID: h.ID, Title: "first", DueDate: created, CreatedAt: created}
		second := &model.Quest{HeroID: h.ID, Title: "second", DueDate: created, CreatedAt: created}
		foreign := &model.Quest{HeroID: other.ID, Title: "foreign", DueDate: created, CreatedAt: created}
		for _, q := range []*model.Quest{first, second, foreign} {
			require.NoError(t, s.CreateQuest(ctx, q))
		}

		first.MarkComplete(created.Add(time.Hour))
		first.IsGameCompleted = true
		require.NoError(t, s.UpdateQuest(ctx, first))

		quests, err := s.ListQuests(ctx, h.ID)
		require.NoError(t, err)
		require.Len(t, quests, 2)
		assert.Equal(t, "first", quests[0].Title)
		assert.True(t, quests[0].IsCompleted)
		assert.True(t, quests[0].IsGameCompleted)
		require.NotNil(t, quests[0].CompletedAt)
		assert.True(t, created.Add(time.Hour).Equal(*quests[0].CompletedAt))
		assert.Equal(t, "second", quests[1].Title)
	})

	t.Run("delete quest", func(t *testing.T) {
		s := newStore(t)
		h := newHero("gus")
		require.NoError(t, s.CreateHero(ctx, h))
		q := &model.Quest{HeroID: h.ID, Title: "gone", DueDate: created, CreatedAt: created}
		require.NoError(t, s.CreateQuest(ctx, q))

		require.NoError(t, s.DeleteQuest(ctx, q.ID))
		_, err := s.GetQuest(ctx, q.ID)
		assert.ErrorIs(t, err, model.ErrQuestNotFound)

		quests, err := s.ListQuests(ctx, h.ID)
		require.NoError(t, err)
		assert.Empty(t, quests)
	})

	t.Run("missing quest", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetQuest(ctx, 7)
		assert.ErrorIs(t, err, model.ErrQuestNotFound)
		assert.ErrorIs(t, s.UpdateQuest(ctx, &model.Quest{ID: 7, Title: "x"}), model.ErrQuestNotFound)
		assert.ErrorIs(t, s.DeleteQuest(ctx, 7), model.ErrQuestNotFound)
	})
}
