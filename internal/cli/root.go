package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/config"
	"github.com/questguild/questguild/internal/factory"
	"github.com/questguild/questguild/internal/hero"
	"github.com/questguild/questguild/internal/logging"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/ui"
)

var errMissingCredentials = errors.New("--user and --password are required")

// runtime is shared by all commands of one invocation.
type runtime struct {
	configPath string
	backend    string
	dbPath     string
	user       string
	password   string

	logger *zap.Logger
	app    *factory.App
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&runtime{})
}

func newRootCmd(rt *runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "questguild",
		Short: "A terminal quest log for heroes",
		Long: `questguild keeps a hero's to-do list as quests with due dates and priorities.

Without a subcommand it opens the interactive guild hall. Quests can require
winning a falling-block game challenge before they count as complete.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd == cmd.Root() {
				// the shell owns the terminal; it shows deliveries itself
				out = io.Discard
			}
			return rt.start(cmd.Context(), out)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.stop()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(cmd.Context(), rt.app.ShellServices())
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "Config file (default ~/.config/questguild/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rt.backend, "storage", "", "Storage backend: memory, sqlite, redis (env: QUESTGUILD_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&rt.dbPath, "db", "", "SQLite database path (env: QUESTGUILD_DB)")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd(rt))
	rootCmd.AddCommand(newHeroCmd(rt))
	rootCmd.AddCommand(newQuestCmd(rt))
	rootCmd.AddCommand(newAdviseCmd(rt))
	rootCmd.AddCommand(newNotifyCmd(rt))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &runtime{}
	err := newRootCmd(rt).ExecuteContext(ctx)
	// post-run hooks are skipped when a command fails
	_ = rt.stop()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func (rt *runtime) start(ctx context.Context, out io.Writer) error {
	path := rt.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if rt.backend != "" {
		cfg.Storage.Backend = rt.backend
	}
	if rt.dbPath != "" {
		cfg.Storage.SQLitePath = rt.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	rt.app, err = factory.New(ctx, cfg, factory.Options{NotifyOutput: out, Logger: rt.logger})
	return err
}

func (rt *runtime) stop() error {
	var err error
	if rt.app != nil {
		err = rt.app.Close()
		rt.app = nil
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
		rt.logger = nil
	}
	return err
}

// addCredentialFlags registers --user and --password on cmd.
func (rt *runtime) addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rt.user, "user", "u", os.Getenv("QUESTGUILD_USER"), "Hero username (env: QUESTGUILD_USER)")
	cmd.Flags().StringVarP(&rt.password, "password", "p", os.Getenv("QUESTGUILD_PASSWORD"), "Hero password (env: QUESTGUILD_PASSWORD)")
}

func (rt *runtime) login(ctx context.Context) (*model.Hero, error) {
	if rt.user == "" || rt.password == "" {
		return nil, errMissingCredentials
	}
	h, err := rt.app.Heroes.Login(ctx, rt.user, rt.password)
	if errors.Is(err, hero.ErrInvalidCredentials) {
		return nil, fmt.Errorf("login as %q failed: %w", rt.user, err)
	}
	return h, err
}
