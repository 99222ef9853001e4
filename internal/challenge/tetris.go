package challenge

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/dependencies/random"
	"github.com/questguild/questguild/internal/tetris"
	"github.com/questguild/questguild/internal/ui/tetrisview"
)

// TetrisOptions configures the falling-block challenge.
type TetrisOptions struct {
	// Seed fixes the piece sequence. Zero draws pieces from crypto/rand.
	Seed  uint64
	Clock clock.Clock
	// AltScreen runs the game on the terminal's alternate screen.
	AltScreen bool
	Logger    *zap.Logger
}

// TetrisEngine plays tetris.Game sessions in a bubbletea program.
type TetrisEngine struct {
	opts TetrisOptions
}

func NewTetrisEngine(opts TetrisOptions) *TetrisEngine {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &TetrisEngine{opts: opts}
}

func (e *TetrisEngine) Name() string { return "tetris" }

func (e *TetrisEngine) random() random.Random {
	if e.opts.Seed != 0 {
		return random.NewSeeded(e.opts.Seed)
	}
	return random.New()
}

// Play runs one session until it ends and the player dismisses the final screen.
func (e *TetrisEngine) Play(ctx context.Context, req Request) (Result, error) {
	cfg := tetris.DefaultConfig(req.TargetLevel)
	cfg.Logger = e.opts.Logger
	game := tetris.NewGame(cfg, e.random(), e.opts.Clock)
	view := tetrisview.New(game, req.Title)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if req.Input != nil {
		opts = append(opts, tea.WithInput(req.Input))
	}
	if req.Output != nil {
		opts = append(opts, tea.WithOutput(req.Output))
	}
	if e.opts.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(view, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("tetris program failed: %w", err)
	}

	// ctrl+c or an external quit leaves the session open; treat it as a quit.
	game.Quit()
	return fromTetris(game.Result()), nil
}

func fromTetris(r tetris.Result) Result {
	return Result{
		Success:      r.Success,
		FinalLevel:   r.FinalLevel,
		Score:        r.Score,
		LinesCleared: r.LinesCleared,
		TimePlayed:   r.TimePlayed,
	}
}
