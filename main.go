package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hex/internal/config"
	"hex/internal/database/history"
	"hex/internal/logging"
	"hex/internal/runner"
	"hex/internal/updates"
	"hex/internal/vt100"
	"hex/ui/compositor"
	"hex/ui/console"
	"hex/ui/terminal"
)

// Options holds the command line.
type Options struct {
	ConfigPath  string
	LogFile     string
	LogLevel    string
	HistoryDB   string
	NoConsole   bool
	PrintLayout bool
	Plain       bool
}

func main() {
	var opts Options

	rootCmd := &cobra.Command{
		Use:   "hex [flags]",
		Short: "Terminal dashboard for periodic commands",
		Long: `hex runs the commands listed in its configuration on their own
schedules and lays their output out in panels on one terminal screen.
A console line at the bottom runs tasks on demand or starts an app in
the main pane.`,
		Example: `  # Run with config/tasks.toml
  hex

  # Use another configuration and keep run history
  hex -c ~/.config/hex/tasks.yaml --history hex.duckdb

  # Show how the layout was read
  hex --print-layout`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to the TOML or YAML configuration")
	rootCmd.Flags().StringVar(&opts.LogFile, "log", "", "Log file (overrides settings.log_file)")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&opts.HistoryDB, "history", "", "DuckDB file recording every run")
	rootCmd.Flags().BoolVar(&opts.NoConsole, "no-console", false, "Do not reserve the bottom row for the console")
	rootCmd.Flags().BoolVar(&opts.PrintLayout, "print-layout", false, "Print the layout tree and exit")
	rootCmd.Flags().BoolVar(&opts.Plain, "plain", false, "Strip colors and other escape sequences from task output")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file and applies command line overrides.
func loadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	c := *cfg
	if opts.LogFile != "" {
		c = c.WithLogFile(opts.LogFile)
	}
	if opts.LogLevel != "" {
		c = c.WithLogLevel(opts.LogLevel)
	}
	if opts.HistoryDB != "" {
		c = c.WithHistoryDB(opts.HistoryDB)
	}
	if opts.NoConsole {
		c = c.WithConsole(false)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.PrintLayout {
		fmt.Print(cfg.Layout.String())
		return nil
	}

	level, err := logging.ParseLevel(cfg.Settings.LogLevel)
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(cfg.Settings.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("starting hex", "config", opts.ConfigPath, "tasks", len(cfg.Tasks), "apps", len(cfg.Apps))

	queue := updates.NewQueue()
	defer queue.Close()

	schedOpts := []runner.Option{runner.WithLogger(logger)}
	if cfg.Settings.HistoryDB != "" {
		store, err := history.Open(ctx, cfg.Settings.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		schedOpts = append(schedOpts, runner.WithRecorder(store))
	}
	if target, ok := cfg.Layout.MainTask(); ok {
		if target == "" {
			target = "unknown"
		}
		schedOpts = append(schedOpts, runner.WithApps(cfg.Apps, target, mainPaneSize(cfg.Layout)))
	} else if len(cfg.Apps) > 0 {
		logger.Warn("apps are configured but the layout has no main pane")
	}

	sched, err := runner.NewScheduler(cfg.Tasks, queue, schedOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := terminal.NewProcessTerminal(os.Stdout)
	compOpts := []compositor.Option{compositor.WithLogger(logger)}
	if opts.Plain {
		compOpts = append(compOpts, compositor.WithFormatter(vt100.PlainFormatter{}))
	}
	if cfg.Settings.Console {
		con := console.New(func(line string) {
			if err := sched.Dispatch(ctx, line); err != nil {
				logger.Warn("console command failed", "line", line, "error", err)
			}
		})
		compOpts = append(compOpts, compositor.WithConsole(con))
	}
	comp, err := compositor.New(cfg.Layout, term, compOpts...)
	if err != nil {
		return err
	}

	if err := term.Enter(); err != nil {
		return err
	}
	defer term.Leave()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return comp.Run(gctx, queue)
	})

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		err := terminal.NewKeyboard(os.Stdin, os.Stdout, queue, logger).Run(gctx)
		if err != nil {
			logger.Error("keyboard stopped", "error", err)
		}
		return err
	})

	g.Go(func() error {
		return watchConfig(gctx, opts, sched, logger)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("hex stopped")
	return err
}

// watchConfig reloads task definitions when the config file changes. Layout
// changes take effect on the next start.
func watchConfig(ctx context.Context, opts Options, sched *runner.Scheduler, logger *slog.Logger) error {
	w, err := config.Watch(opts.ConfigPath)
	if err != nil {
		logger.Warn("config changes will not be picked up", "error", err)
		return nil
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			next, err := loadConfig(opts)
			if err != nil {
				logger.Warn("ignoring invalid config", "path", opts.ConfigPath, "error", err)
				continue
			}
			if err := sched.Reload(next.Tasks); err != nil {
				logger.Warn("reload failed", "error", err)
			}
		}
	}
}

// mainPaneSize is the pty size for apps: the main pane's fixed size when it
// has one, the classic 80x24 otherwise.
func mainPaneSize(l config.Layout) vt100.CharDims {
	pane, ok := findMain(l)
	if !ok || pane.Width == nil || pane.Height == nil || *pane.Width <= 0 || *pane.Height <= 0 {
		return runner.DefaultAppSize
	}
	return vt100.Dims(*pane.Width, *pane.Height)
}

func findMain(l config.Layout) (config.Layout, bool) {
	if l.Main {
		return l, true
	}
	for _, c := range l.Children {
		if m, ok := findMain(c); ok {
			return m, true
		}
	}
	return config.Layout{}, false
}
