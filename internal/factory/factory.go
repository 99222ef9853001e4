package factory

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/config"
	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/dependencies/random"
	"github.com/questguild/questguild/internal/hero"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/quest"
	"github.com/questguild/questguild/internal/scoring"
	"github.com/questguild/questguild/internal/storage"
	"github.com/questguild/questguild/internal/storage/memory"
	redisstorage "github.com/questguild/questguild/internal/storage/redis"
	"github.com/questguild/questguild/internal/storage/sqlite"
	"github.com/questguild/questguild/internal/ui"
)

// App contains all wired application components
type App struct {
	Config *config.Config
	Logger *zap.Logger

	// Storage
	Store  storage.Store
	Scores scoring.ScoreStorage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Heroes     *hero.Service
	Quests     *quest.Service
	Notifier   *notify.Sender
	Advisor    advisor.Advisor
	Challenges *challenge.Manager
}

// Options holds what the factory needs besides the configuration.
type Options struct {
	// NotifyOutput receives simulated deliveries. Nil discards them.
	NotifyOutput io.Writer
	// Logger is the application logger. Nil means no logging.
	Logger *zap.Logger
}

// OpenStore creates the storage backend selected by cfg.
func OpenStore(cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath, logger)
	case config.BackendRedis:
		store, err := redisstorage.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("invalid storage backend: must be 'memory', 'sqlite' or 'redis'")
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := OpenStore(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	scores, err := scoring.NewJSONFileStorage(cfg.Scores.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create score storage: %w", err)
	}

	clk := clock.New()
	rnd := random.New()

	app, err := newWithDependencies(ctx, cfg, store, scores, clk, rnd, opts.NotifyOutput, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(ctx context.Context, cfg *config.Config, store storage.Store, scores scoring.ScoreStorage,
	clk clock.Clock, rnd random.Random, out io.Writer, logger *zap.Logger) (*App, error) {
	if out == nil {
		out = io.Discard
	}

	adv, err := advisor.New(ctx, cfg.Advisor, rnd, clk, logger)
	if err != nil {
		return nil, err
	}

	notifier := notify.NewSender(cfg.Notifications, out, clk, logger)
	challenges := challenge.NewManager(logger, challenge.NewTetrisEngine(challenge.TetrisOptions{
		Seed:      cfg.Challenge.Seed,
		Clock:     clk,
		AltScreen: cfg.Challenge.AltScreen,
		Logger:    logger,
	}))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Scores:     scores,
		Clock:      clk,
		Random:     rnd,
		Heroes:     hero.New(store, clk, notifier, logger),
		Quests:     quest.New(store, clk, challenges, scores, logger),
		Notifier:   notifier,
		Advisor:    adv,
		Challenges: challenges,
	}, nil
}

// ShellServices exposes the app to the interactive shell.
func (a *App) ShellServices() ui.Services {
	return ui.Services{
		Heroes:        a.Heroes,
		Quests:        a.Quests,
		Advisor:       a.Advisor,
		Notifier:      a.Notifier,
		Challenges:    a.Challenges,
		Scores:        a.Scores,
		Clock:         a.Clock,
		Logger:        a.Logger,
		DefaultTarget: a.Config.Challenge.DefaultTargetLevel,
	}
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Store.Close()
}
