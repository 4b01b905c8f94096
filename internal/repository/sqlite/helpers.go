package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"lldpinventory/internal/inventory"
	"lldpinventory/internal/repository"
)

// ============================================================================
// Time Helpers
// ============================================================================

// Timestamps are stored as unix nanoseconds so ordering and age checks are
// plain integer comparisons.

func timeToUnix(t time.Time) int64 {
	return t.UnixNano()
}

func unixToTime(n int64) time.Time {
	return time.Unix(0, n)
}

// ============================================================================
// Cache Row Scanner
// ============================================================================

// cacheRow holds all columns from an inventory_cache query
type cacheRow struct {
	Key          string
	RunID        string
	SnapshotJSON []byte
	HostCount    int64
	CreatedAt    int64
}

// scanArgs MUST match cacheColumns order:
// key, run_id, snapshot, host_count, created_at
func (r *cacheRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Key,          // 1
		&r.RunID,        // 2
		&r.SnapshotJSON, // 3
		&r.HostCount,    // 4
		&r.CreatedAt,    // 5
	}
}

func (r *cacheRow) toEntry() (*repository.CacheEntry, error) {
	entry := &repository.CacheEntry{
		Key:       r.Key,
		RunID:     r.RunID,
		CreatedAt: unixToTime(r.CreatedAt),
	}
	if err := json.Unmarshal(r.SnapshotJSON, &entry.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return entry, nil
}

const cacheColumns = `key, run_id, snapshot, host_count, created_at`

// cacheInsertArgs returns: key, run_id, snapshot, host_count, created_at
func cacheInsertArgs(entry repository.CacheEntry) ([]interface{}, error) {
	data, err := marshalSnapshot(entry.Snapshot)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		entry.Key,
		entry.RunID,
		data,
		int64(len(entry.Snapshot.Hosts)),
		timeToUnix(entry.CreatedAt),
	}, nil
}

func marshalSnapshot(s inventory.Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}
