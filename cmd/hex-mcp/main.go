package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hex/internal/config"
	"hex/internal/database/history"
	"hex/internal/logging"
	"hex/internal/mcpserver"
	"hex/internal/runner"
	"hex/internal/updates"
)

const version = "0.3.0"

type options struct {
	configPath string
	historyDB  string
	logLevel   string
	noSchedule bool
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "hex-mcp [flags]",
		Short: "Serve hex tasks over MCP on stdio",
		Long: `hex-mcp runs the tasks of a hex configuration without a screen and
exposes them to an MCP client: list tasks, read their latest output, run
them on demand and query recorded history.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the TOML or YAML configuration")
	rootCmd.Flags().StringVar(&opts.historyDB, "history", "", "DuckDB file with run history (overrides settings.history_db)")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.Flags().BoolVar(&opts.noSchedule, "no-schedule", false, "Only run tasks when a client asks")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.historyDB != "" {
		*cfg = cfg.WithHistoryDB(opts.historyDB)
	}
	if opts.logLevel != "" {
		*cfg = cfg.WithLogLevel(opts.logLevel)
	}

	level, err := logging.ParseLevel(cfg.Settings.LogLevel)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	// Nothing draws the panels here; drained updates are dropped.
	queue := updates.NewQueue()
	defer queue.Close()
	go func() {
		for {
			if _, ok := queue.Next(ctx); !ok {
				return
			}
		}
	}()

	schedOpts := []runner.Option{runner.WithLogger(logger)}
	var hist mcpserver.History
	if cfg.Settings.HistoryDB != "" {
		store, err := history.Open(ctx, cfg.Settings.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		schedOpts = append(schedOpts, runner.WithRecorder(store))
		hist = store
	}

	sched, err := runner.NewScheduler(cfg.Tasks, queue, schedOpts...)
	if err != nil {
		return err
	}
	if !opts.noSchedule {
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv, err := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "hex",
		ServerVersion: version,
	}, sched, hist, logger)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
