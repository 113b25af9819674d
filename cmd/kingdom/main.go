package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/napolitain/kingdom/internal/config"
	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/loader"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/session"
	"github.com/napolitain/kingdom/internal/store"
)

var (
	configFile string
	dataDir    string
	userID     string
	backend    string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kingdom",
		Short: "Kingdom builder",
		Long: `Found a kingdom, raise buildings and let time do the rest.
Production accrues in real time, including while the game is closed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file (default <data>/kingdom.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Path to data directory")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id for the sqlite backend")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend: auto, local or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newNewCmd(),
		newStatusCmd(),
		newBuildCmd(),
		newTickCmd(),
		newLogCmd(),
		newAdviseCmd(),
		newCatalogCmd(),
		newPlayCmd(),
		newSchemaCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// app bundles what every game command needs
type app struct {
	cfg     config.Config
	catalog models.Catalog
	session *session.Session
	log     *slog.Logger
}

func loadConfig() (config.Config, error) {
	path := configFile
	if path == "" {
		dir := dataDir
		if dir == "" {
			dir = config.Defaults().DataDir
		}
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if userID != "" {
		cfg.UserID = userID
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadCatalog(cfg config.Config) (models.Catalog, error) {
	if cfg.CatalogPath != "" {
		return loader.LoadCatalogFile(cfg.CatalogPath)
	}
	return loader.LoadCatalog(cfg.DataDir)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp wires config, catalog, store and session. logOut receives the
// structured log.
func openApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	st, err := store.Open(cfg, catalog)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.EffectiveBackend(), err)
	}
	logger.Debug("store opened", "backend", st.Kind(), "buildings", catalog.Len())

	e := engine.New(engine.RealClock{}, cfg.EngineRules(), catalog)
	return &app{cfg: cfg, catalog: catalog, session: session.New(e, st, logger), log: logger}, nil
}

func (a *app) Close() {
	if err := a.session.Close(); err != nil {
		a.log.Warn("closing store", "err", err)
	}
}

// start loads and reconciles the saved kingdom, failing when there is none
func (a *app) start(ctx context.Context) error {
	ok, n, err := a.session.Start(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no kingdom yet, found one with: kingdom new --name <name> --ruler <ruler>")
	}
	printNotice(n)
	return nil
}

func printNotice(n session.Notice) {
	if n.Empty() {
		return
	}
	switch n.Level {
	case session.Error:
		color.Red("⚠️  %s", n.Message)
	case session.Warning:
		color.Yellow("%s", n.Message)
	default:
		color.Green("%s", n.Message)
	}
}
