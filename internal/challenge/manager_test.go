package challenge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/questguild/questguild/internal/dependencies/mocks"
	"github.com/questguild/questguild/internal/model"
)

type fakeEngine struct {
	name   string
	result Result
	err    error
	block  bool
	got    Request
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Play(ctx context.Context, req Request) (Result, error) {
	f.got = req
	if f.block {
		<-ctx.Done()
		return Result{}, ctx.Err()
	}
	return f.result, f.err
}

func TestAvailableIsSorted(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), &fakeEngine{name: "Tetris"}, &fakeEngine{name: "chess"})
	assert.Equal(t, []string{"chess", "tetris"}, m.Available())
	assert.True(t, m.Has("TETRIS"))
	assert.False(t, m.Has("snake"))
}

func TestPlayValidatesTarget(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), &fakeEngine{name: "tetris"})
	for _, level := range []int{0, 11, -1} {
		_, err := m.Play(context.Background(), "tetris", Request{TargetLevel: level})
		assert.ErrorIs(t, err, model.ErrInvalidGameTarget, "level %d", level)
	}
}

func TestPlayUnknownGame(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	_, err := m.Play(context.Background(), "snake", Request{TargetLevel: 3})
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestPlayReturnsEngineResult(t *testing.T) {
	engine := &fakeEngine{name: "tetris", result: Result{Success: true, FinalLevel: 3, Score: 2100}}
	m := NewManager(zaptest.NewLogger(t), engine)

	res, err := m.Play(context.Background(), "Tetris", Request{TargetLevel: 3, Title: "Slay"})
	require.NoError(t, err)
	assert.Equal(t, "tetris", res.Game)
	assert.True(t, res.Success)
	assert.Equal(t, 2100, res.Score)
	assert.Equal(t, "Slay", engine.got.Title)
}

func TestPlayPropagatesEngineError(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(zaptest.NewLogger(t), &fakeEngine{name: "tetris", err: boom})
	_, err := m.Play(context.Background(), "tetris", Request{TargetLevel: 1})
	assert.ErrorIs(t, err, boom)
}

func TestPlayCancelledDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(zaptest.NewLogger(t), &fakeEngine{name: "tetris", block: true})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Play(ctx, "tetris", Request{TargetLevel: 3})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The engine goroutine observes the same context and exits.
	time.Sleep(20 * time.Millisecond)
}

func TestCommandRunsChallenge(t *testing.T) {
	engine := &fakeEngine{name: "tetris", result: Result{FinalLevel: 2}}
	m := NewManager(zaptest.NewLogger(t), engine)

	cmd := NewCommand(context.Background(), m, "tetris", Request{TargetLevel: 2})
	in := strings.NewReader("")
	var out bytes.Buffer
	cmd.SetStdin(in)
	cmd.SetStdout(&out)
	cmd.SetStderr(&out)

	require.NoError(t, cmd.Run())
	assert.Equal(t, 2, cmd.Result.FinalLevel)
	assert.Same(t, in, engine.got.Input)
	assert.Same(t, &out, engine.got.Output)
}

func TestTetrisEngineQuit(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	engine := NewTetrisEngine(TetrisOptions{Seed: 7, Clock: clk})

	var out bytes.Buffer
	res, err := engine.Play(context.Background(), Request{
		TargetLevel: 3,
		Input:       strings.NewReader("q\r"),
		Output:      &out,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.FinalLevel)
	assert.Zero(t, res.Score)
}
