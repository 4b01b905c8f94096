package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"lldpinventory/internal/adapter"
	"lldpinventory/internal/inventory"
	"lldpinventory/internal/lldp"
	"lldpinventory/internal/repository"
	"lldpinventory/internal/repository/sqlite"
)

// host neighbor first, BMC second
const twoNeighbors = `{"lldp":[{"interface":[
	{"name":"swp1","port":[{"id":[{"value":"1c:a0:ef:aa:bb:c0"}]}],"chassis":[{"mgmt-ip":[{"value":"10.0.0.6"}]}]},
	{"name":"swp2","port":[{"id":[{"value":"1c:a0:ef:aa:bb:c1"}]}],"chassis":[{"mgmt-ip":[{"value":"10.0.0.5"}]}]}
]}]}`

type fakeFetcher struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

type fakeProber struct {
	up  map[string]bool
	err error
}

func (p *fakeProber) Probe(_ context.Context, _ []string) (map[string]bool, error) {
	return p.up, p.err
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %#v, got %#v", expected, actual)
	}
}

func newTestCache(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestService(f adapter.Fetcher, opts ...Option) *DiscoveryService {
	svc := NewDiscoveryService(f, nil, opts...)
	n := 0
	svc.newRunID = func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
	return svc
}

func assertStage(t *testing.T, err error, stage Stage) *StageError {
	t.Helper()
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	assertEqual(t, stage, stageErr.Stage)
	return stageErr
}

func TestRunPopulatesBMCsFirst(t *testing.T) {
	svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)})

	res, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
	assertNoError(t, err)

	assertEqual(t, "run-1", res.RunID)
	assertEqual(t, 1, res.BMCs)
	assertEqual(t, 1, res.Hosts)
	assertEqual(t, []string{"10.0.0.5", "10.0.0.6"}, res.Inventory.Hosts())
	assertEqual(t, map[string]any{
		"name":   "10.0.0.5",
		"ip":     "10.0.0.5",
		"role":   "bmc",
		"is_bmc": true,
	}, res.Inventory.HostVars("10.0.0.5"))
	assertEqual(t, true, res.Inventory.HostVars("10.0.0.6")["is_host"])
}

func TestRunAppliesRules(t *testing.T) {
	svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)})

	res, err := svc.Run(context.Background(), RunOptions{
		SwitchAddr:       "192.168.188.161",
		LeadingSeparator: true,
		Rules: inventory.GroupingConfig{
			Groups:      map[string]string{"bmcs": ".is_bmc"},
			KeyedGroups: []inventory.KeyedGroup{{Key: ".role", Prefix: "role"}},
		},
	})
	assertNoError(t, err)

	assertEqual(t, []string{"bmcs", "role_bmc"}, res.Inventory.GroupsOf("10.0.0.5"))
	assertEqual(t, []string{"role_host"}, res.Inventory.GroupsOf("10.0.0.6"))
}

func TestRunNoNeighbors(t *testing.T) {
	svc := newTestService(&fakeFetcher{out: []byte(`{"lldp":[{}]}`)})

	res, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
	assertNoError(t, err)
	assertEqual(t, 0, len(res.Inventory.Hosts()))
}

func TestRunFetchFailure(t *testing.T) {
	remote := &adapter.RemoteCommandError{ExitCode: 1, Stderr: "permission denied"}
	cache := newTestCache(t)
	svc := newTestService(&fakeFetcher{err: remote}, WithCache(cache))

	res, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161", UseCache: true})
	if res != nil {
		t.Fatal("failed run must not return an inventory")
	}
	assertStage(t, err, StageFetch)

	var remoteErr *adapter.RemoteCommandError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteCommandError in chain, got %v", err)
	}
	assertEqual(t, 1, remoteErr.ExitCode)

	if _, err := cache.Get(context.Background(), "192.168.188.161", 0); !errors.Is(err, repository.ErrCacheMiss) {
		t.Fatalf("failed run must not write the cache, got %v", err)
	}
}

func TestRunParseFailure(t *testing.T) {
	tests := []struct {
		name string
		out  []byte
	}{
		{"not json", []byte("lldpctl: command not found")},
		{"invalid utf8", []byte{0xff, 0xfe}},
		{"missing envelope", []byte(`{"interfaces":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeFetcher{out: tt.out})
			_, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
			assertStage(t, err, StageParse)
		})
	}

	svc := newTestService(&fakeFetcher{out: []byte{0xff}})
	_, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
	var encErr *lldp.EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError in chain, got %v", err)
	}
}

func TestRunPopulateFailure(t *testing.T) {
	svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)})

	_, err := svc.Run(context.Background(), RunOptions{
		SwitchAddr: "192.168.188.161",
		Rules: inventory.GroupingConfig{
			Compose: map[string]string{"rack": ".rack_id"},
			Strict:  true,
		},
	})
	assertStage(t, err, StagePopulate)

	var ruleErr *inventory.GroupingRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected GroupingRuleError in chain, got %v", err)
	}
}

func TestRunCache(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	fetcher := &fakeFetcher{out: []byte(twoNeighbors)}
	svc := newTestService(fetcher, WithCache(cache))
	opts := RunOptions{SwitchAddr: "192.168.188.161", UseCache: true, CacheTimeout: time.Hour}

	first, err := svc.Run(ctx, opts)
	assertNoError(t, err)
	assertEqual(t, false, first.FromCache)

	fetcher.err = errors.New("switch unreachable")
	second, err := svc.Run(ctx, opts)
	assertNoError(t, err)
	assertEqual(t, true, second.FromCache)
	assertEqual(t, 1, fetcher.calls)
	assertEqual(t, first.Inventory.Snapshot(), second.Inventory.Snapshot())
	assertEqual(t, 1, second.BMCs)
	assertEqual(t, 1, second.Hosts)

	opts.RefreshCache = true
	_, err = svc.Run(ctx, opts)
	assertStage(t, err, StageFetch)
	assertEqual(t, 2, fetcher.calls)

	entry, err := cache.Get(ctx, "192.168.188.161", 0)
	assertNoError(t, err)
	assertEqual(t, "run-1", entry.RunID)
}

func TestRunCacheCountsByRole(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	// BMC and host port report the same management address
	shared := `{"lldp":[{"interface":[
	{"name":"swp1","port":[{"id":[{"value":"1c:a0:ef:aa:bb:c1"}]}],"chassis":[{"mgmt-ip":[{"value":"10.0.0.5"}]}]},
	{"name":"swp2","port":[{"id":[{"value":"1c:a0:ef:aa:bb:c0"}]}],"chassis":[{"mgmt-ip":[{"value":"10.0.0.5"}]}]}
]}]}`
	fetcher := &fakeFetcher{out: []byte(shared)}
	svc := newTestService(fetcher, WithCache(cache))
	opts := RunOptions{SwitchAddr: "192.168.188.161", UseCache: true}

	_, err := svc.Run(ctx, opts)
	assertNoError(t, err)

	cached, err := svc.Run(ctx, opts)
	assertNoError(t, err)
	assertEqual(t, true, cached.FromCache)
	assertEqual(t, true, cached.Inventory.HostVars("10.0.0.5")["is_bmc"])
	assertEqual(t, 0, cached.BMCs)
	assertEqual(t, 1, cached.Hosts)
}

func TestRunDropsUnreadableCacheEntry(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	broken := inventory.Snapshot{
		Groups: []inventory.GroupSnapshot{{Name: "bmcs", Hosts: []string{"10.0.0.5"}}},
	}
	assertNoError(t, cache.Put(ctx, repository.CacheEntry{Key: "192.168.188.161", RunID: "old", Snapshot: broken}))

	fetcher := &fakeFetcher{err: errors.New("switch unreachable")}
	svc := newTestService(fetcher, WithCache(cache))
	_, err := svc.Run(ctx, RunOptions{SwitchAddr: "192.168.188.161", UseCache: true})
	assertStage(t, err, StageFetch)
	assertEqual(t, 1, fetcher.calls)

	if _, err := cache.Get(ctx, "192.168.188.161", 0); !errors.Is(err, repository.ErrCacheMiss) {
		t.Fatalf("unreadable entry should be deleted, got %v", err)
	}
}

func TestRunCacheDisabled(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	fetcher := &fakeFetcher{out: []byte(twoNeighbors)}
	svc := newTestService(fetcher, WithCache(cache))

	_, err := svc.Run(ctx, RunOptions{SwitchAddr: "192.168.188.161"})
	assertNoError(t, err)

	if _, err := cache.Get(ctx, "192.168.188.161", 0); !errors.Is(err, repository.ErrCacheMiss) {
		t.Fatalf("cache must not be written when disabled, got %v", err)
	}
}

func TestRunVerify(t *testing.T) {
	t.Run("sets reachable", func(t *testing.T) {
		prober := &fakeProber{up: map[string]bool{"10.0.0.5": true}}
		svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)}, WithProber(prober))

		res, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161", Verify: true})
		assertNoError(t, err)
		assertEqual(t, true, res.Inventory.HostVars("10.0.0.5")[VarReachable])
		assertEqual(t, false, res.Inventory.HostVars("10.0.0.6")[VarReachable])
	})

	t.Run("prober failure is not fatal", func(t *testing.T) {
		prober := &fakeProber{err: errors.New("nmap not found")}
		svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)}, WithProber(prober))

		res, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161", Verify: true})
		assertNoError(t, err)
		if _, ok := res.Inventory.HostVars("10.0.0.5")[VarReachable]; ok {
			t.Fatal("reachable must not be set when the probe fails")
		}
	})
}

func TestRunEvents(t *testing.T) {
	bus := NewEventBus()
	ch := make(chan Event, 16)
	bus.Subscribe(ch)

	svc := newTestService(&fakeFetcher{out: []byte(twoNeighbors)}, WithEventBus(bus))
	_, err := svc.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
	assertNoError(t, err)

	failing := newTestService(&fakeFetcher{err: errors.New("boom")}, WithEventBus(bus))
	_, err = failing.Run(context.Background(), RunOptions{SwitchAddr: "192.168.188.161"})
	assertStage(t, err, StageFetch)

	close(ch)
	var got []EventType
	var last Event
	for ev := range ch {
		got = append(got, ev.Type)
		last = ev
	}
	assertEqual(t, []EventType{
		EventDiscoveryStarted, EventHostAdded, EventHostAdded, EventDiscoveryCompleted,
		EventDiscoveryStarted, EventDiscoveryFailed,
	}, got)
	assertEqual(t, "fetch", last.Payload["stage"])
}
