// Command syncup builds the discovery graphs from a data directory and
// either answers one-shot queries on the console or serves the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/syncup/pkg/catalog"
	"github.com/ritzau/syncup/pkg/config"
	"github.com/ritzau/syncup/pkg/engine"
	"github.com/ritzau/syncup/pkg/jobs"
	"github.com/ritzau/syncup/pkg/logging"
	"github.com/ritzau/syncup/pkg/output"
	"github.com/ritzau/syncup/pkg/pubsub"
	"github.com/ritzau/syncup/pkg/watcher"
	"github.com/ritzau/syncup/pkg/web"
)

const (
	shutdownTimeout = 10 * time.Second

	// Saving both data files usually lands within this window
	debounceQuiet   = 500 * time.Millisecond
	debounceMaxWait = 3 * time.Second
)

func main() {
	flags := pflag.NewFlagSet("syncup", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(logging.Options{Level: level, JSON: cfg.Log.JSON, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("syncup failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	publisher := pubsub.NewSSEPublisher()
	pubsub.DefaultTopics(publisher)
	defer publisher.Close()

	tracks, users := catalog.NewFileProviders(cfg.DataDir)
	e, err := engine.New(engine.Options{
		Threshold:     cfg.Threshold,
		RadioSize:     cfg.RadioSize,
		DiscoverySize: cfg.DiscoverySize,
	}, tracks, users, publisher)
	if err != nil {
		return err
	}

	logging.Info("loading data", "dataDir", cfg.DataDir)
	start := time.Now()
	if err := e.BuildAll(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	stats := e.Stats()
	logging.Info("graphs ready",
		"tracks", stats.Tracks,
		"edges", stats.Edges,
		"users", stats.Users,
		"durationMs", time.Since(start).Milliseconds())

	if !cfg.Serve {
		printQueries(os.Stdout, e, cfg)
		return nil
	}
	if cfg.HasQuery() {
		printQueries(os.Stdout, e, cfg)
	}
	return serve(ctx, cfg, e, publisher)
}

// printQueries answers the one-shot queries given on the command line. With
// no query it prints a summary of the loaded data.
func printQueries(w io.Writer, e *engine.Engine, cfg *config.Config) {
	if !cfg.HasQuery() {
		output.PrintStats(w, e.Stats())
		return
	}

	if cfg.Recommend != "" {
		seed, ok := e.Track(cfg.Recommend)
		if !ok {
			fmt.Fprintf(w, "Unknown track: %s\n", cfg.Recommend)
		} else {
			output.PrintRecommendations(w, seed, e.Radio(cfg.Recommend))
		}
	}
	if cfg.Suggest != "" {
		output.PrintSuggestions(w, cfg.Suggest, e.Suggest(cfg.Suggest, cfg.SuggestionLimit))
	}
	if cfg.Prefix != "" {
		output.PrintTitles(w, cfg.Prefix, e.SearchByPrefix(cfg.Prefix))
	}
}

// serve runs the HTTP API and, when enabled, the data directory watcher
// until ctx is cancelled or one of them fails
func serve(ctx context.Context, cfg *config.Config, e *engine.Engine, publisher *pubsub.SSEPublisher) error {
	g, gctx := errgroup.WithContext(ctx)

	// Set up the watcher first so a bad data directory fails before
	// anything is listening
	if cfg.Watch {
		fw, err := watcher.NewFileWatcher(cfg.DataDir)
		if err != nil {
			return err
		}
		if err := fw.Start(gctx); err != nil {
			return err
		}
		debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		debouncer.Start(gctx)

		g.Go(func() error {
			watcher.Run(gctx, debouncer.Output(), e)
			return nil
		})
	}

	jm := jobs.NewManager(publisher)
	server := web.NewServer(e, jm, publisher, web.Options{
		SuggestionLimit: cfg.SuggestionLimit,
		BaseContext:     gctx,
	})

	g.Go(func() error {
		return server.Start(cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down")

		jm.Shutdown()
		// Ends open SSE streams so the server can drain
		publisher.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
