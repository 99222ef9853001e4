package tetris

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/dependencies/random"
)

const (
	StateActive = "active"
	StateOver   = "over"

	eventTopOut      = "topOut"
	eventQuit        = "quit"
	eventReachTarget = "reachTarget"

	linesPerLevel  = 10
	pointsPerLine  = 100
	DefaultTarget  = 3
	MaxTargetLevel = 10
)

// Outcome describes how a session ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeTargetReached
	OutcomeToppedOut
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTargetReached:
		return "target reached"
	case OutcomeToppedOut:
		return "topped out"
	case OutcomeQuit:
		return "quit"
	default:
		return "in progress"
	}
}

// Result is the terminal summary of a session.
type Result struct {
	Success      bool
	FinalLevel   int
	Score        int
	LinesCleared int
	TimePlayed   time.Duration
	Outcome      Outcome
}

// Observer is notified synchronously when the level rises and when the
// session ends.
type Observer interface {
	LevelChanged(level int)
	GameOver(result Result)
}

// Config controls board size, target and gravity timing.
type Config struct {
	Width        int
	Height       int
	TargetLevel  int
	BaseInterval time.Duration
	IntervalStep time.Duration
	MinInterval  time.Duration
	// Logger reports state machine failures. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the standard 10x20 board with the given target level.
func DefaultConfig(targetLevel int) Config {
	return Config{
		Width:        10,
		Height:       20,
		TargetLevel:  targetLevel,
		BaseInterval: 700 * time.Millisecond,
		IntervalStep: 10 * time.Millisecond,
		MinInterval:  100 * time.Millisecond,
	}
}

// Game is one falling-block session. It is not safe for concurrent use; the
// loop that drives it owns it exclusively.
type Game struct {
	cfg      Config
	logger   *zap.Logger
	board    *Board
	factory  *Factory
	clock    clock.Clock
	observer Observer
	FSM      *fsm.FSM

	current Piece
	next    Piece

	score         int
	lines         int
	targetReached bool
	outcome       Outcome

	startedAt time.Time
	endedAt   time.Time
	lastDrop  time.Time
}

// NewGame starts a session: the board is empty, the first piece is spawned
// and the gravity timer starts now.
func NewGame(cfg Config, rng random.Random, clk clock.Clock) *Game {
	if cfg.TargetLevel < 1 {
		cfg.TargetLevel = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	g := &Game{
		cfg:     cfg,
		logger:  cfg.Logger,
		board:   NewBoard(cfg.Width, cfg.Height),
		factory: NewFactory(rng),
		clock:   clk,
	}
	g.FSM = fsm.NewFSM(
		StateActive,
		fsm.Events{
			{Name: eventTopOut, Src: []string{StateActive}, Dst: StateOver},
			{Name: eventQuit, Src: []string{StateActive}, Dst: StateOver},
			{Name: eventReachTarget, Src: []string{StateActive}, Dst: StateOver},
		},
		fsm.Callbacks{
			"enter_" + StateOver: func(_ context.Context, e *fsm.Event) {
				switch e.Event {
				case eventReachTarget:
					g.outcome = OutcomeTargetReached
				case eventTopOut:
					g.outcome = OutcomeToppedOut
				case eventQuit:
					g.outcome = OutcomeQuit
				}
				g.endedAt = g.clock.Now()
				if g.observer != nil {
					g.observer.GameOver(g.Result())
				}
			},
		},
	)

	g.startedAt = clk.Now()
	g.lastDrop = g.startedAt
	g.next = g.factory.RandomPiece()
	g.spawn()
	return g
}

// Observe registers the observer for level and game-over notifications.
func (g *Game) Observe(o Observer) {
	g.observer = o
}

// Level is derived from the total number of lines cleared.
func (g *Game) Level() int {
	return 1 + g.lines/linesPerLevel
}

// GravityInterval is the delay between automatic drops at the current level.
func (g *Game) GravityInterval() time.Duration {
	interval := g.cfg.BaseInterval - time.Duration(g.Level()-1)*g.cfg.IntervalStep
	if interval < g.cfg.MinInterval {
		return g.cfg.MinInterval
	}
	return interval
}

func (g *Game) Board() *Board { return g.board }
func (g *Game) Current() Piece { return g.current }
func (g *Game) Next() Piece { return g.next }
func (g *Game) Score() int { return g.score }
func (g *Game) Lines() int { return g.lines }
func (g *Game) TargetLevel() int { return g.cfg.TargetLevel }
func (g *Game) TargetReached() bool { return g.targetReached }

// IsOver reports whether the session has reached its terminal state.
func (g *Game) IsOver() bool {
	return g.FSM.Current() == StateOver
}

// Tick applies gravity once if the interval has elapsed since the last drop.
// It reports whether a gravity step happened.
func (g *Game) Tick() bool {
	if g.IsOver() {
		return false
	}
	now := g.clock.Now()
	if now.Sub(g.lastDrop) < g.GravityInterval() {
		return false
	}
	g.lastDrop = now
	g.step()
	return true
}

// step moves the current piece down one row, locking it when blocked.
func (g *Game) step() {
	if g.tryMove(0, 1) {
		return
	}
	g.lock()
}

func (g *Game) tryMove(dx, dy int) bool {
	x, y := g.current.X+dx, g.current.Y+dy
	if !g.board.CanPlace(g.current, x, y) {
		return false
	}
	g.current.X, g.current.Y = x, y
	return true
}

func (g *Game) lock() {
	g.board.Place(g.current, g.current.X, g.current.Y)
	if cleared := g.board.ClearFullLines(); cleared > 0 {
		before := g.Level()
		g.score += cleared * pointsPerLine * before
		g.lines += cleared
		if after := g.Level(); after > before {
			if g.observer != nil {
				g.observer.LevelChanged(after)
			}
			if after >= g.cfg.TargetLevel && !g.targetReached {
				g.targetReached = true
				g.end(eventReachTarget)
				return
			}
		}
	}
	g.spawn()
}

// spawn promotes next to current at the centred spawn position and draws a
// new next piece. A blocked spawn tops the session out.
func (g *Game) spawn() {
	g.current = g.next
	g.current.X = (g.cfg.Width - 4) / 2
	g.current.Y = 0
	g.next = g.factory.RandomPiece()
	if !g.board.CanPlace(g.current, g.current.X, g.current.Y) {
		g.end(eventTopOut)
	}
}

func (g *Game) end(event string) {
	if err := g.FSM.Event(context.Background(), event); err != nil {
		g.logger.Error("failed to end session",
			zap.String("event", event),
			zap.String("state", g.FSM.Current()),
			zap.Error(err))
	}
}

// Move shifts the current piece by (dx, dy) if the target is legal.
func (g *Game) Move(dx, dy int) bool {
	if g.IsOver() {
		return false
	}
	return g.tryMove(dx, dy)
}

// Rotate turns the current piece, nudging it one column left or right when
// the rotated shape does not fit in place. The rotation is undone when no
// position fits.
func (g *Game) Rotate(clockwise bool) bool {
	if g.IsOver() {
		return false
	}
	original := g.current
	if clockwise {
		g.current.RotateCW()
	} else {
		g.current.RotateCCW()
	}
	for _, dx := range []int{0, -1, 1} {
		if g.board.CanPlace(g.current, original.X+dx, original.Y) {
			g.current.X = original.X + dx
			return true
		}
	}
	g.current = original
	return false
}

// HardDrop moves the piece down until it is blocked and locks it there.
func (g *Game) HardDrop() bool {
	if g.IsOver() {
		return false
	}
	for g.tryMove(0, 1) {
	}
	g.lastDrop = g.clock.Now()
	g.lock()
	return true
}

// Quit ends the session as a non-success.
func (g *Game) Quit() bool {
	if g.IsOver() {
		return false
	}
	g.end(eventQuit)
	return true
}

// Apply dispatches a player action and reports whether it changed the session.
func (g *Game) Apply(a Action) bool {
	switch a {
	case MoveLeft:
		return g.Move(-1, 0)
	case MoveRight:
		return g.Move(1, 0)
	case MoveDown:
		return g.Move(0, 1)
	case RotateCW:
		return g.Rotate(true)
	case RotateCCW:
		return g.Rotate(false)
	case HardDrop:
		return g.HardDrop()
	case Quit:
		return g.Quit()
	}
	return false
}

// Result summarises the session. Before game over it reflects the state so far.
func (g *Game) Result() Result {
	end := g.endedAt
	if !g.IsOver() {
		end = g.clock.Now()
	}
	return Result{
		Success:      g.targetReached,
		FinalLevel:   g.Level(),
		Score:        g.score,
		LinesCleared: g.lines,
		TimePlayed:   end.Sub(g.startedAt),
		Outcome:      g.outcome,
	}
}
