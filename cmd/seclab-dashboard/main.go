package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justin4957/seclab-dashboard/internal/config"
	"github.com/justin4957/seclab-dashboard/internal/dashboard"
	"github.com/justin4957/seclab-dashboard/internal/enrich"
	"github.com/justin4957/seclab-dashboard/internal/logger"
	"github.com/justin4957/seclab-dashboard/internal/metrics"
	"github.com/justin4957/seclab-dashboard/internal/source"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

const (
	reloadDebounce = 200 * time.Millisecond
	reloadPoll     = 2 * time.Second
)

func main() {
	var (
		cfgPath = flag.String("config", "seclab.yml", "path to YAML config")
		envPath = flag.String("env", ".env", "optional dotenv file")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "apply env: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Init(cfg.Logging.Environment, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		var loadErr *source.DataLoadError
		if errors.As(err, &loadErr) {
			logger.Error("Cannot start without event data", logger.String("path", loadErr.Path), logger.Err(loadErr.Err))
		} else {
			logger.Error("Dashboard stopped with error", logger.Err(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger.Info("Security lab dashboard starting",
		logger.String("version", Version),
		logger.String("data", cfg.Data.Path),
		logger.String("format", cfg.Data.Format))

	m := metrics.New()
	loader := source.NewLoader(cfg.Data.Format)
	enricher := enrich.NewEnricher(cfg.Enrichment.Seed, cfg.Enrichment.Weights)
	logger.Info("Country enrichment ready", logger.String("seed", fmt.Sprint(enricher.Seed())))

	cache := source.NewCache(func(path string) (*models.EventTable, error) {
		start := time.Now()
		table, err := loader.Load(path)
		if err != nil {
			m.TableLoadFailed()
			return nil, err
		}
		table = enricher.Apply(table)
		m.TableLoaded(table.Len())
		logger.Info("Event table loaded",
			logger.String("path", path),
			logger.Int("rows", table.Len()),
			logger.Bool("enriched", table.Enriched),
			logger.Duration("elapsed", time.Since(start)))
		return table, nil
	})
	tables := cache.Bind(cfg.Data.Path)

	// a missing or malformed file at startup is fatal
	if _, err := tables.Table(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	reloads := make(chan string, 1)

	if cfg.Data.Watch {
		watcher, err := source.NewWatcher(cfg.Data.Path, reloadDebounce, reloadPoll)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()

		g.Go(func() error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return pumpReloads(ctx, cache, tables, watcher.Changes(), reloads)
		})
	}

	server := dashboard.NewServer(cfg.DashboardConfig, tables, m, cfg.Enrichment.Seed)
	g.Go(func() error {
		return server.Start(ctx, reloads)
	})

	err := g.Wait()
	logger.Info("Security lab dashboard stopped")
	return err
}

// pumpReloads refreshes the cache after each file change and tells the
// dashboard to push new views
func pumpReloads(ctx context.Context, cache *source.Cache, tables *source.PathSource, changes <-chan string, reloads chan<- string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			cache.Invalidate(tables.Path())
			if _, err := tables.Table(); err != nil {
				logger.Warn("Reload failed, serving previous table", logger.String("path", path), logger.Err(err))
			}
			select {
			case reloads <- path:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
