package hero

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/questguild/questguild/internal/dependencies/mocks"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/storage/memory"
)

var start = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	clock  *mocks.MockClock
	sender *notify.Sender
	out    *bytes.Buffer
}

func newFixture() *fixture {
	clk := mocks.NewMockClock(start)
	var out bytes.Buffer
	sender := notify.NewSender(notify.DefaultConfig(), &out, clk, zap.NewNop())
	svc := New(memory.New(), clk, sender, zap.NewNop())
	svc.cost = bcrypt.MinCost
	return &fixture{svc: svc, clock: clk, sender: sender, out: &out}
}

func TestRegister(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	h, err := f.svc.Register(ctx, " aria ", "secret1", "aria@guild.com", "")
	require.NoError(t, err)
	assert.Equal(t, "aria", h.Username)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, 0, h.Experience)
	assert.Equal(t, model.DefaultHeroClass, h.Class)
	assert.Equal(t, start, h.CreatedAt)
	assert.NotEqual(t, "secret1", h.PasswordHash)

	require.Len(t, f.sender.Sent(), 1)
	assert.Contains(t, f.out.String(), "Welcome to the Quest Guild, aria!")
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "", "secret1", "a@b.com", "")
	assert.ErrorIs(t, err, model.ErrInvalidUsername)

	_, err = f.svc.Register(ctx, "bran", "123", "a@b.com", "")
	assert.ErrorIs(t, err, model.ErrWeakPassword)

	_, err = f.svc.Register(ctx, "bran", "secret1", "not-an-email", "")
	assert.ErrorIs(t, err, model.ErrInvalidEmail)

	_, err = f.svc.Register(ctx, "bran", "secret1", "bran@guild.com", "555-1234")
	assert.ErrorIs(t, err, model.ErrInvalidPhone)
	_, err = f.svc.store.GetHeroByUsername(ctx, "bran")
	assert.ErrorIs(t, err, model.ErrHeroNotFound)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "cato", "secret1", "c@guild.com", "")
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "cato", "other12", "c2@guild.com", "")
	assert.ErrorIs(t, err, model.ErrUsernameExists)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registered, err := f.svc.Register(ctx, "dara", "secret1", "d@guild.com", "5551234567")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	h, err := f.svc.Login(ctx, "dara", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, h.ID)
	assert.Equal(t, start.Add(time.Hour), h.LastLoginAt)

	_, err = f.svc.Login(ctx, "dara", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAwardExperience(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	h, err := f.svc.Register(ctx, "eli", "secret1", "e@guild.com", "")
	require.NoError(t, err)

	h, err = f.svc.AwardExperience(ctx, h.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, h.Experience)
	assert.Equal(t, 3, h.Level)
}
