package challenge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/model"
)

var ErrUnknownGame = errors.New("unknown game")

const (
	MinTargetLevel = 1
	MaxTargetLevel = 10
)

// Request describes one challenge run.
type Request struct {
	TargetLevel int
	// Title is shown while playing, typically the quest title.
	Title string
	// Input and Output override the terminal. Nil means stdin/stdout.
	Input  io.Reader
	Output io.Writer
}

// Result is what a finished challenge reports back to quest logic.
type Result struct {
	Game         string
	Success      bool
	FinalLevel   int
	Score        int
	LinesCleared int
	TimePlayed   time.Duration
}

// Engine is a playable game.
type Engine interface {
	Name() string
	Play(ctx context.Context, req Request) (Result, error)
}

// Manager is the registry of games a quest can require.
type Manager struct {
	engines map[string]Engine
	logger  *zap.Logger
}

// NewManager registers the given engines by lowercase name.
func NewManager(logger *zap.Logger, engines ...Engine) *Manager {
	m := &Manager{engines: make(map[string]Engine), logger: logger}
	for _, e := range engines {
		m.Register(e)
	}
	return m
}

// Register adds or replaces an engine.
func (m *Manager) Register(e Engine) {
	m.engines[strings.ToLower(e.Name())] = e
}

// Available returns the registered game names in sorted order.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.engines))
	for name := range m.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a game is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.engines[strings.ToLower(name)]
	return ok
}

// Play runs the named game to completion. The engine runs on its own
// goroutine; Play waits for it or for ctx to be cancelled.
func (m *Manager) Play(ctx context.Context, name string, req Request) (Result, error) {
	engine, ok := m.engines[strings.ToLower(name)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownGame, name)
	}
	if req.TargetLevel < MinTargetLevel || req.TargetLevel > MaxTargetLevel {
		return Result{}, model.ErrInvalidGameTarget
	}

	m.logger.Info("challenge started", zap.String("game", name), zap.Int("target_level", req.TargetLevel))

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := engine.Play(ctx, req)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			m.logger.Warn("challenge failed", zap.String("game", name), zap.Error(o.err))
			return Result{}, o.err
		}
		o.res.Game = strings.ToLower(name)
		m.logger.Info("challenge finished",
			zap.String("game", name),
			zap.Bool("success", o.res.Success),
			zap.Int("final_level", o.res.FinalLevel),
			zap.Int("score", o.res.Score),
			zap.Duration("time_played", o.res.TimePlayed))
		return o.res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
