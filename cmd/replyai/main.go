package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"replyai/internal/config"
	"replyai/internal/logging"
	"replyai/internal/store"
)

var version = "0.1.0"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	logger    *slog.Logger
	logCloser io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: slog.Default()}

	root := &cobra.Command{
		Use:               "replyai",
		Short:             "Reply AI: draft sales replies to store owners",
		Long:              "Reply AI keeps one conversation thread per store and drafts the next reply with a chat-completion API.",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setupLogging,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logCloser != nil {
				a.logCloser.Close()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config.json (default: ~/.replyai/config.json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override general.logLevel (debug|info|warn|error)")

	root.AddCommand(a.initCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.draftCmd())
	root.AddCommand(a.profileCmd())
	root.AddCommand(a.threadCmd())
	root.AddCommand(a.configCmd())
	root.AddCommand(a.statusCmd())
	return root
}

// resolveConfigPath returns the config path from --config flag or default.
func (a *app) resolveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist yet.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.resolveConfigPath()
	cfg, found, err := config.LoadOrDefaults(path)
	if err != nil {
		return nil, err
	}
	if !found {
		a.logger.Debug("config not found, using defaults", "path", path)
	}
	return cfg, nil
}

func (a *app) setupLogging(*cobra.Command, []string) error {
	level, logFile := "info", ""
	if cfg, _, err := config.LoadOrDefaults(a.resolveConfigPath()); err == nil {
		level, logFile = cfg.General.LogLevel, cfg.General.LogFile
	}
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, closer, err := logging.New(level, logFile)
	if err != nil {
		return err
	}
	a.logger, a.logCloser = logger, closer
	return nil
}

func (a *app) openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(store.Config{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}
