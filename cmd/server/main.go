package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/signalgraph/signalgraph/internal/cache"
	"github.com/signalgraph/signalgraph/internal/config"
	"github.com/signalgraph/signalgraph/internal/metrics"
	"github.com/signalgraph/signalgraph/internal/server"
	mid "github.com/signalgraph/signalgraph/internal/server/middleware"
	"github.com/signalgraph/signalgraph/internal/storage"
	"github.com/signalgraph/signalgraph/internal/watch"
	"github.com/signalgraph/signalgraph/pkg/graph"
	"github.com/signalgraph/signalgraph/pkg/logger"
	"github.com/signalgraph/signalgraph/pkg/logger/console"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg != nil && cfg.Debug,
	})
	logger.Init(consoleLogger)
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notes, err := storage.NewNoteLoader(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open note source", "source", cfg.Source, "err", err)
	}

	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		ParallelFiles: cfg.ParallelFiles,
	})
	if err != nil {
		logger.Fatal("Failed to create graph client", "err", err)
	}
	graphs, err := cache.NewGraphCache(cache.NewGraphCacheParams{
		Build: func(ctx context.Context) (*graph.Result, error) {
			return client.ProcessGraph(ctx, notes)
		},
		TTL:     cfg.CacheTTL(),
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logger.Fatal("Failed to create graph cache", "err", err)
	}

	if cfg.Watch {
		if cfg.Source != config.SourceFS {
			logger.Warn("Watching is only supported for the fs source", "source", cfg.Source)
		} else {
			w, err := watch.NewWatcher(watch.NewWatcherParams{
				Root:       cfg.Root,
				Extensions: cfg.Extensions,
				Debounce:   cfg.WatchDebounce(),
				OnChange: func(paths []string) {
					logger.Info("Notes changed, invalidating graph", "count", len(paths))
					graphs.Invalidate()
				},
			})
			if err != nil {
				logger.Fatal("Failed to watch root", "root", cfg.Root, "err", err)
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("Watcher stopped", "err", err)
				}
			}()
		}
	}

	logger.Info("Serving notes", "root", notes.Root(), "ttl", cfg.CacheTTL())

	e := server.New(&mid.App{
		Graphs:   graphs,
		Notes:    notes,
		Gatherer: prometheus.DefaultGatherer,
	}, server.Options{StaticDir: cfg.StaticDir})

	if err := server.Run(ctx, e, cfg.Addr()); err != nil {
		logger.Fatal("Server failed", "err", err)
	}
}
