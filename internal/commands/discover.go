package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lldpinventory/internal/adapter"
	"lldpinventory/internal/config"
	"lldpinventory/internal/repository/sqlite"
	"lldpinventory/internal/service"
)

// discover loads the inventory source and runs one discovery
func (a *app) discover(cmd *cobra.Command) (*service.RunResult, error) {
	logger, err := a.logger()
	if err != nil {
		return nil, err
	}

	cfg, path, err := config.Load(a.v.GetString(keyInventory))
	if err != nil {
		return nil, err
	}
	logger.Debug("inventory source loaded", "path", path, "switch", cfg.SwitchAddr, "transport", cfg.Transport)

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := service.NewEventBus()
	events := make(chan service.Event, 64)
	bus.Subscribe(events)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			logger.Debug("event", "type", ev.Type, "run_id", ev.RunID, "payload", ev.Payload)
		}
	}()
	defer func() {
		close(events)
		<-done
	}()

	opts := []service.Option{service.WithEventBus(bus)}

	if cfg.Cache {
		cache, err := openCache(cmd.Context(), cfg, logger)
		if err != nil {
			logger.Warn("inventory cache unavailable", "path", cfg.CachePath(), "error", err)
		} else {
			defer cache.Close()
			opts = append(opts, service.WithCache(cache))
		}
	}

	if cfg.Verify {
		probeOpts := []adapter.ReachabilityOption{adapter.WithLogger(logger)}
		if d := cfg.VerifyTimeout.Duration(); d > 0 {
			probeOpts = append(probeOpts, adapter.WithProbeTimeout(d))
		}
		opts = append(opts, service.WithProber(adapter.NewReachability(probeOpts...)))
	}

	svc := service.NewDiscoveryService(fetcher, logger, opts...)
	return svc.Run(cmd.Context(), service.RunOptions{
		SwitchAddr:       cfg.SwitchAddr,
		Rules:            cfg.Rules(),
		LeadingSeparator: cfg.UseLeadingSeparator(),
		UseCache:         cfg.Cache,
		RefreshCache:     a.v.GetBool(keyRefreshCache),
		CacheTimeout:     cfg.CacheTimeout.Duration(),
		Verify:           cfg.Verify,
	})
}

func newFetcher(cfg *config.Config, logger *slog.Logger) (adapter.Fetcher, error) {
	switch cfg.TransportType() {
	case adapter.TransportExec:
		return adapter.NewExecFetcher(cfg.FetcherConfig(), logger), nil
	case adapter.TransportNative:
		return adapter.NewNativeFetcher(cfg.FetcherConfig(), logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// openCache opens the sqlite cache and drops entries that can no longer
// be served
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlite.Repository, error) {
	path := cfg.CachePath()
	if err := config.EnsureDir(path); err != nil {
		return nil, err
	}
	repo, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}

	if maxAge := cfg.CacheTimeout.Duration(); maxAge > 0 {
		n, err := repo.Prune(ctx, maxAge)
		if err != nil {
			logger.Warn("failed to prune inventory cache", "error", err)
		} else if n > 0 {
			logger.Debug("pruned expired cache entries", "count", n)
		}
	}
	return repo, nil
}
