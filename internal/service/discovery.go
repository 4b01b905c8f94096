package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lldpinventory/internal/adapter"
	"lldpinventory/internal/classify"
	"lldpinventory/internal/domain"
	"lldpinventory/internal/inventory"
	"lldpinventory/internal/lldp"
	"lldpinventory/internal/repository"

	"github.com/google/uuid"
)

// VarReachable is set on every host when verification runs
const VarReachable = "reachable"

// Prober checks which addresses answer on the network
type Prober interface {
	Probe(ctx context.Context, ips []string) (map[string]bool, error)
}

// RunOptions controls one discovery run
type RunOptions struct {
	SwitchAddr       string
	Rules            inventory.GroupingConfig
	LeadingSeparator bool

	UseCache     bool
	RefreshCache bool
	CacheTimeout time.Duration

	Verify bool
}

// RunResult is the outcome of a successful run
type RunResult struct {
	RunID     string
	Inventory *inventory.Inventory
	BMCs      int
	Hosts     int
	FromCache bool
}

// DiscoveryService orchestrates fetch, parse, classify and populate
type DiscoveryService struct {
	fetcher  adapter.Fetcher
	parser   *lldp.Parser
	cache    repository.Cache
	prober   Prober
	eventBus *EventBus
	logger   *slog.Logger
	newRunID func() string
}

// Option configures a DiscoveryService
type Option func(*DiscoveryService)

// WithCache enables snapshot caching
func WithCache(cache repository.Cache) Option {
	return func(s *DiscoveryService) { s.cache = cache }
}

// WithProber enables reachability verification
func WithProber(p Prober) Option {
	return func(s *DiscoveryService) { s.prober = p }
}

// WithEventBus publishes run events on bus
func WithEventBus(bus *EventBus) Option {
	return func(s *DiscoveryService) { s.eventBus = bus }
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(fetcher adapter.Fetcher, logger *slog.Logger, opts ...Option) *DiscoveryService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DiscoveryService{
		fetcher:  fetcher,
		logger:   logger.With("component", "discovery"),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = lldp.NewParser(logger)
	return s
}

// Run discovers the neighbors of opts.SwitchAddr and returns the populated
// inventory. Errors are *StageError.
func (s *DiscoveryService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	runID := s.newRunID()
	logger := s.logger.With("run_id", runID, "switch", opts.SwitchAddr)

	s.publish(EventDiscoveryStarted, runID, map[string]any{"switch": opts.SwitchAddr})
	logger.Info("discovery started")

	if res, ok := s.fromCache(ctx, runID, opts, logger); ok {
		return res, nil
	}

	raw, err := s.fetcher.Fetch(ctx, opts.SwitchAddr)
	if err != nil {
		return nil, s.fail(runID, StageFetch, err, logger)
	}

	records, err := s.parser.Parse(raw)
	if err != nil {
		return nil, s.fail(runID, StageParse, err, logger)
	}

	classified := classify.Classify(records)
	logger.Debug("neighbors classified",
		"neighbors", len(records),
		"bmcs", len(classified.BMCs),
		"hosts", len(classified.Hosts))

	inv := inventory.New()
	constructor := inventory.NewConstructor(inv,
		inventory.WithLeadingSeparator(opts.LeadingSeparator),
		inventory.WithLogger(s.logger))
	populator := inventory.NewPopulator(inv, constructor, opts.Rules, s.logger)
	populator.OnHostAdded = func(d domain.DeviceDescriptor) {
		s.publish(EventHostAdded, runID, map[string]any{"host": d.Name(), "role": string(d.Role())})
	}

	if err := populator.Populate(classified.BMCs); err != nil {
		return nil, s.fail(runID, StagePopulate, err, logger)
	}
	if err := populator.Populate(classified.Hosts); err != nil {
		return nil, s.fail(runID, StagePopulate, err, logger)
	}

	if opts.Verify {
		s.verify(ctx, inv, logger)
	}

	res := &RunResult{
		RunID:     runID,
		Inventory: inv,
		BMCs:      len(classified.BMCs),
		Hosts:     len(classified.Hosts),
	}

	if opts.UseCache && s.cache != nil {
		entry := repository.CacheEntry{Key: opts.SwitchAddr, RunID: runID, Snapshot: inv.Snapshot()}
		if err := s.cache.Put(ctx, entry); err != nil {
			logger.Warn("failed to update inventory cache", "error", err)
		}
	}

	s.publish(EventDiscoveryCompleted, runID, map[string]any{"bmcs": res.BMCs, "hosts": res.Hosts})
	logger.Info("discovery completed", "bmcs", res.BMCs, "hosts", res.Hosts)
	return res, nil
}

func (s *DiscoveryService) fromCache(ctx context.Context, runID string, opts RunOptions, logger *slog.Logger) (*RunResult, bool) {
	if !opts.UseCache || opts.RefreshCache || s.cache == nil {
		return nil, false
	}

	entry, err := s.cache.Get(ctx, opts.SwitchAddr, opts.CacheTimeout)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn("failed to read inventory cache", "error", err)
		}
		return nil, false
	}

	inv, err := inventory.Restore(entry.Snapshot)
	if err != nil {
		logger.Warn("discarding unreadable cache entry", "error", err)
		if err := s.cache.Delete(ctx, opts.SwitchAddr); err != nil {
			logger.Warn("failed to delete cache entry", "error", err)
		}
		return nil, false
	}

	res := &RunResult{RunID: runID, Inventory: inv, FromCache: true}
	for _, h := range inv.Hosts() {
		if role, _ := inv.HostVars(h)[domain.VarRole].(string); role == string(domain.RoleBMC) {
			res.BMCs++
		} else {
			res.Hosts++
		}
	}

	s.publish(EventDiscoveryCompleted, runID, map[string]any{
		"bmcs": res.BMCs, "hosts": res.Hosts, "cached_run_id": entry.RunID,
	})
	logger.Info("inventory loaded from cache", "cached_run_id", entry.RunID, "age", time.Since(entry.CreatedAt).Round(time.Second))
	return res, true
}

func (s *DiscoveryService) verify(ctx context.Context, inv *inventory.Inventory, logger *slog.Logger) {
	if s.prober == nil {
		logger.Warn("verification requested but no prober is configured")
		return
	}

	hosts := inv.Hosts()
	ips := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if ip, ok := inv.HostVars(h)[domain.VarIP].(string); ok {
			ips = append(ips, ip)
		}
	}
	if len(ips) == 0 {
		return
	}

	up, err := s.prober.Probe(ctx, ips)
	if err != nil {
		logger.Warn("reachability check skipped", "error", err)
		return
	}
	for _, h := range hosts {
		ip, _ := inv.HostVars(h)[domain.VarIP].(string)
		if err := inv.SetVariable(h, VarReachable, up[ip]); err != nil {
			logger.Warn("failed to set reachability", "host", h, "error", err)
		}
	}
}

func (s *DiscoveryService) fail(runID string, stage Stage, err error, logger *slog.Logger) error {
	s.publish(EventDiscoveryFailed, runID, map[string]any{"stage": string(stage), "error": err.Error()})
	logger.Debug("discovery failed", "stage", stage, "error", err)
	return &StageError{Stage: stage, Err: err}
}

func (s *DiscoveryService) publish(t EventType, runID string, payload map[string]any) {
	s.eventBus.Publish(Event{Type: t, RunID: runID, Payload: payload})
}
