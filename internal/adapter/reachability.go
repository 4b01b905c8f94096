package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

// Reachability checks which management addresses answer a ping sweep
type Reachability struct {
	timeout time.Duration
	binary  string
	logger  *slog.Logger
}

// ReachabilityOption configures Reachability
type ReachabilityOption func(*Reachability)

// WithProbeTimeout bounds the whole sweep
func WithProbeTimeout(d time.Duration) ReachabilityOption {
	return func(r *Reachability) {
		r.timeout = d
	}
}

// WithNmapBinary overrides the nmap binary path
func WithNmapBinary(path string) ReachabilityOption {
	return func(r *Reachability) {
		r.binary = path
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ReachabilityOption {
	return func(r *Reachability) {
		r.logger = logger
	}
}

// NewReachability creates a prober with a two minute default timeout
func NewReachability(opts ...ReachabilityOption) *Reachability {
	r := &Reachability{
		timeout: 2 * time.Minute,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reachability")
	return r
}

// Probe runs one nmap ping scan (-sn) over ips and reports which were up.
// Every requested address appears in the result.
func (r *Reachability) Probe(ctx context.Context, ips []string) (map[string]bool, error) {
	if len(ips) == 0 {
		return map[string]bool{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(ips...),
		nmap.WithPingScan(),
	}
	if r.binary != "" {
		opts = append(opts, nmap.WithBinaryPath(r.binary))
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	r.logger.Debug("starting ping sweep", "targets", len(ips))
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("ping sweep failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		r.logger.Warn("nmap reported warnings", "warnings", *warnings)
	}

	return reachableHosts(result, ips), nil
}

// reachableHosts maps each requested ip to whether nmap saw it up
func reachableHosts(result *nmap.Run, ips []string) map[string]bool {
	up := make(map[string]bool, len(ips))
	for _, ip := range ips {
		up[ip] = false
	}
	if result == nil {
		return up
	}

	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}
		for _, addr := range host.Addresses {
			if addr.AddrType != "ipv4" && addr.AddrType != "ipv6" {
				continue
			}
			if _, ok := up[addr.Addr]; ok {
				up[addr.Addr] = true
			}
		}
	}

	return up
}
