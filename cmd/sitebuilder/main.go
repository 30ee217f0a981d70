package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/daemon"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:""`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
	} `cmd:"" help:"Build the site once and exit"`

	Watch struct {
	} `cmd:"" help:"Build, then watch the source tree and rebuild incrementally"`

	Serve struct {
	} `cmd:"" help:"Watch and serve the generated site for local preview"`

	History struct {
		Limit int `short:"n" help:"Number of passes to show" default:"20"`
	} `cmd:"" help:"List recent build passes"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if kctx.Command() == "version" {
		fmt.Printf("sitebuilder %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.Error("load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "build":
		err = runBuild(ctx, cfg, logger)
	case "watch":
		err = runWatch(ctx, cfg, logger, false)
	case "serve":
		err = runWatch(ctx, cfg, logger, true)
	case "history":
		err = runHistory(ctx, cfg, CLI.History.Limit)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newProvider(cfg config.Config) (content.Provider, error) {
	if cfg.Source.GitURL != "" {
		sink := content.NewFSProvider(cfg.Source.Root)
		return content.NewGitProvider(cfg.Source.GitURL, cfg.Source.GitBranch, sink)
	}
	return content.NewFSProvider(cfg.Source.Root), nil
}

func newOrchestrator(cfg config.Config, logger *slog.Logger, registry *prom.Registry) (*build.Orchestrator, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry)
	}
	return &build.Orchestrator{Provider: provider, Log: logger, Metrics: recorder}, nil
}

func runBuild(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	orchestrator, err := newOrchestrator(cfg, logger, nil)
	if err != nil {
		return err
	}
	result, err := orchestrator.InitialBuild(ctx)
	if err != nil {
		return err
	}
	logger.Info("site built",
		slog.Int("rendered", len(result.Rendered)),
		slog.Int("written", len(result.Written)),
		slog.Duration("duration", result.Duration))
	return nil
}

func runWatch(ctx context.Context, cfg config.Config, logger *slog.Logger, serve bool) error {
	if cfg.Source.GitURL != "" {
		return fmt.Errorf("watch mode requires a local source root, not a git source")
	}

	var registry *prom.Registry
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
	}
	orchestrator, err := newOrchestrator(cfg, logger, registry)
	if err != nil {
		return err
	}

	loop := &daemon.Loop{
		Orchestrator: orchestrator,
		Policy:       retry.NewPolicy(retry.BackoffFixed, cfg.Watch.RetryInterval, 0, cfg.Watch.MaxRetries),
		Log:          logger,
		AuditLinks:   true,
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		loop.History = store
	}
	if cfg.Notify.URL != "" {
		publisher, err := notify.NewNATSPublisher(cfg.Notify.URL, cfg.Notify.Subject, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		loop.Publisher = publisher
	}

	watcher, err := daemon.NewWatcher(cfg.Source.Root, logger)
	if err != nil {
		return err
	}
	debouncer := daemon.NewDebouncer(watcher.Changes(), daemon.DebouncerConfig{
		QuietWindow: cfg.Watch.QuietWindow,
		MaxDelay:    cfg.Watch.MaxDelay,
	})

	batches := make(chan daemon.Batch)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return debouncer.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case batch, ok := <-debouncer.Batches():
				if !ok {
					return nil
				}
				select {
				case batches <- batch:
				case <-gctx.Done():
					return nil
				}
			}
		}
	})
	g.Go(func() error { return loop.Run(gctx, batches) })

	if cfg.Watch.FullRebuildEvery > 0 {
		scheduler, err := daemon.NewScheduler(logger)
		if err != nil {
			return err
		}
		if _, err := scheduler.SchedulePeriodicRebuild(gctx, cfg.Watch.FullRebuildEvery, batches); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("stop scheduler", "error", err)
			}
		}()
	}

	if serve {
		outputDir := cfg.Source.Root + "/output"
		g.Go(func() error {
			return server.New(cfg.Serve.Address(), outputDir, registry, logger).Run(gctx)
		})
	}

	return g.Wait()
}

func runHistory(ctx context.Context, cfg config.Config, limit int) error {
	if cfg.History.Path == "" {
		return fmt.Errorf("history requires history.path to be configured")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	passes, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, p := range passes {
		status := "ok"
		switch {
		case p.Error != "":
			status = "failed: " + p.Error
		case p.NoOp:
			status = "noop"
		}
		fmt.Printf("%s  %-12s %-11s rendered=%d removed=%d %s\n",
			p.StartedAt.Format("2006-01-02 15:04:05"), p.ID, p.Kind, p.Rendered, p.RemovedOutput, status)
	}
	return nil
}
