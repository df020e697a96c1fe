package cache

import (
	"context"

	"cryptoengine/engine"
)

// Sink adapts SnapshotCache to the engine.VwapSink/CorrelationSink
// collaborator contracts so the scheduler's two analytics workers can
// populate the API's read cache exactly like any other sink, without the
// engine package ever importing Redis.
type Sink struct {
	cache *SnapshotCache
}

// NewSink wraps cache for use as an engine.Sinks field. cache's
// underlying Redis client may be nil; writes then become no-ops.
func NewSink(cache *SnapshotCache) *Sink {
	return &Sink{cache: cache}
}

// LogVwap implements engine.VwapSink.
func (s *Sink) LogVwap(rec engine.VwapRecord) {
	_ = s.cache.SetVwap(context.Background(), VwapSnapshot{
		SymbolName: rec.SymbolID.Name(),
		MinuteTsMs: rec.MinuteTsMs,
		Vwap:       rec.Vwap,
	})
}

// LogCorrelation implements engine.CorrelationSink.
func (s *Sink) LogCorrelation(rec engine.CorrelationRecord) {
	_ = s.cache.SetCorrelation(context.Background(), CorrelationSnapshot{
		SymbolName:        rec.SymbolID.Name(),
		MinuteTsMs:        rec.MinuteTsMs,
		PeerSymbolName:    rec.PeerSymbolName,
		R:                 rec.R,
		PeerEndMinuteTsMs: rec.PeerEndMinuteTsMs,
	})
}
