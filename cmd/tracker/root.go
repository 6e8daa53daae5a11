package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/td0m/tracker/internal/config"
	"github.com/td0m/tracker/pkg/persist"
	"github.com/td0m/tracker/pkg/task"
)

var (
	configPath string
	cfg        config.Config
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Track tasks, epics and subtasks on a timeline",
	Long: `tracker keeps tasks, epics and their subtasks, refuses schedules that
overlap, and remembers what you looked at last.

Data lives in a CSV file by default. SQLite, JSON and PostgreSQL are also supported.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.Path(), "Path to config file")
	flags.String("file", "", "Path to the data file (csv, sqlite and json backends)")
	flags.String("backend", "", "Storage backend: csv, sqlite, json or postgres")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

// setup resolves the config (file, then env, then flags) and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	overrides := map[string]*string{
		"file":      &cfg.File,
		"backend":   &cfg.Backend,
		"log-level": &cfg.LogLevel,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err = newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return err
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// openPersistor returns the configured backend and a function releasing it.
func openPersistor(ctx context.Context, c config.Config, log *slog.Logger) (persist.Persistor, func(), error) {
	switch c.Backend {
	case config.BackendPostgres:
		pg, err := persist.ConnectPostgres(ctx, c.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return pg.WithLogger(log), pg.Close, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	switch c.Backend {
	case config.BackendSQLite:
		db, err := persist.OpenSQLite(c.File)
		if err != nil {
			return nil, nil, err
		}
		return db.WithLogger(log), func() { _ = db.Close() }, nil
	case config.BackendJSON:
		return persist.NewJSON(c.File), func() {}, nil
	}
	return persist.InCSV(c.File).WithLogger(log), func() {}, nil
}

// openStore loads the configured store.
func openStore(ctx context.Context, log *slog.Logger) (*persist.Backed, func(), error) {
	p, closer, err := openPersistor(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	opts := []task.Option{task.WithLogger(log)}
	if cfg.SlotGrid {
		opts = append(opts, task.WithSlotGrid())
	}
	b, err := persist.Open(p, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	log.Debug("store opened", "backend", cfg.Backend, "tasks", len(b.Tasks()), "epics", len(b.Epics()))
	return b, closer, nil
}
