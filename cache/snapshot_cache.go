// Package cache holds the latest per-symbol analytics snapshots in
// Redis for the status API to read. It is purely a read-side
// convenience: the engine itself never reads a snapshot back, so a
// cache outage degrades the API, never engine correctness.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// VwapSnapshot is the latest VWAP observation for a symbol, as surfaced
// by the status API.
type VwapSnapshot struct {
	SymbolName string  `json:"symbol"`
	MinuteTsMs int64   `json:"minute_ts_ms"`
	Vwap       float64 `json:"vwap"`
}

// CorrelationSnapshot is the latest best-lag correlation result for a
// symbol, as surfaced by the status API.
type CorrelationSnapshot struct {
	SymbolName        string  `json:"symbol"`
	MinuteTsMs        int64   `json:"minute_ts_ms"`
	PeerSymbolName    string  `json:"peer_symbol"`
	R                 float64 `json:"r"`
	PeerEndMinuteTsMs int64   `json:"peer_end_minute_ts_ms"`
}

const snapshotTTL = 5 * time.Minute

// SnapshotCache stores the latest VWAP and correlation record per
// symbol. A disconnected cache (empty host, failed ping) is fully
// functional: writes become no-ops and reads always miss.
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache dials Redis and returns a cache backed by it. An
// empty host or a failed ping yields a disconnected cache; callers
// never treat that as a fatal error.
func NewSnapshotCache(host, port, password string) *SnapshotCache {
	if host == "" {
		return &SnapshotCache{}
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis at %s: %v", addr, err)
		return &SnapshotCache{}
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return &SnapshotCache{client: client}
}

func vwapKey(symbol string) string        { return "snapshot:vwap:" + symbol }
func correlationKey(symbol string) string { return "snapshot:correlation:" + symbol }

func (c *SnapshotCache) set(ctx context.Context, key string, value any) error {
	if c.client == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonBytes, snapshotTTL).Err()
}

func (c *SnapshotCache) get(ctx context.Context, key string, dest any) bool {
	if c.client == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// SetVwap caches the latest VWAP snapshot for a symbol. Errors are
// non-fatal; callers are expected to log and continue.
func (c *SnapshotCache) SetVwap(ctx context.Context, snap VwapSnapshot) error {
	return c.set(ctx, vwapKey(snap.SymbolName), snap)
}

// GetVwap returns the cached VWAP snapshot for a symbol, if present.
func (c *SnapshotCache) GetVwap(ctx context.Context, symbol string) (VwapSnapshot, bool) {
	var snap VwapSnapshot
	ok := c.get(ctx, vwapKey(symbol), &snap)
	return snap, ok
}

// SetCorrelation caches the latest correlation snapshot for a symbol.
func (c *SnapshotCache) SetCorrelation(ctx context.Context, snap CorrelationSnapshot) error {
	return c.set(ctx, correlationKey(snap.SymbolName), snap)
}

// GetCorrelation returns the cached correlation snapshot for a symbol,
// if present.
func (c *SnapshotCache) GetCorrelation(ctx context.Context, symbol string) (CorrelationSnapshot, bool) {
	var snap CorrelationSnapshot
	ok := c.get(ctx, correlationKey(symbol), &snap)
	return snap, ok
}

// Close closes the underlying Redis connection, if one was established.
func (c *SnapshotCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
