// Command tradeengine is the composition root: it loads config, wires
// the engine, its collaborators (transport, sinks, cache, metrics,
// store, API), starts every goroutine, and performs a graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"cryptoengine/api"
	"cryptoengine/cache"
	"cryptoengine/config"
	"cryptoengine/engine"
	"cryptoengine/metrics"
	"cryptoengine/sinks"
	"cryptoengine/store"
	"cryptoengine/telemetry"
	"cryptoengine/transport"
)

func main() {
	cfg := config.LoadFromEnv()

	// runID namespaces this process's sink files and (optionally) its
	// Postgres rows, so successive runs against the same sink directory
	// or database never interleave under analysis.
	runID := uuid.NewString()
	log.Printf("▶️  Starting run %s", runID)

	eng, snapshotCache, closers := buildEngine(cfg, runID)
	defer closeAll(closers)

	mgr := transport.NewManager(cfg.TradingWSURL, engine.SymbolNames[:])
	apiServer := api.NewServer(eng, snapshotCache)

	// The API and metrics HTTP servers sit outside the engine's core
	// shutdown-join contract: they are read-only enrichments, not part of
	// the producer/consumer/scheduler pipeline, so they are fired and
	// left running until process exit rather than tracked in wg.
	go func() {
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			log.Printf("⚠️  API server stopped: %v", err)
		}
	}()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Printf("⚠️  Metrics server stopped: %v", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() { defer wg.Done(); eng.Run() }()
	go func() { defer wg.Done(); mgr.Run(&eng.Shutdown, eng.HandleFrame) }()
	go func() { defer wg.Done(); mgr.RunHealthMonitor(&eng.Shutdown) }()

	if sampler, err := telemetry.NewSampler(eng.Sinks.System); err == nil {
		wg.Add(1)
		go func() { defer wg.Done(); sampler.Run(&eng.Shutdown) }()
	} else {
		log.Printf("⚠️  Process telemetry sampler disabled: %v", err)
	}

	awaitShutdown(eng)
	wg.Wait()
	log.Println("✅ Shutdown complete")
}

// buildEngine constructs the Engine with its sink bundle and metrics
// observer, plus an optional Postgres store and Redis-backed snapshot
// cache when the corresponding config is present. Resource-allocation
// failures here are fatal; a reachable-but-down optional collaborator
// (Postgres, Redis) degrades instead.
func buildEngine(cfg *config.Config, runID string) (*engine.Engine, *cache.SnapshotCache, []closer) {
	var closers []closer

	runDir := filepath.Join(cfg.SinkDir, runID)

	fileSink, err := sinks.NewFileSink(filepath.Join(runDir, "raw"))
	if err != nil {
		log.Fatalf("create raw/latency sink: %v", err)
	}
	closers = append(closers, fileSink)

	csvSink, err := sinks.NewCSVSink(filepath.Join(runDir, "analytics"))
	if err != nil {
		log.Fatalf("create vwap/correlation sink: %v", err)
	}
	closers = append(closers, csvSink)

	telemetrySink, err := sinks.NewTelemetrySink(filepath.Join(runDir, "telemetry"))
	if err != nil {
		log.Fatalf("create telemetry sink: %v", err)
	}
	closers = append(closers, telemetrySink)

	snapshotCache := cache.NewSnapshotCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	closers = append(closers, snapshotCache)
	cacheSink := cache.NewSink(snapshotCache)

	bundle := engine.Sinks{
		TradeRaw:    fileSink,
		Latency:     fileSink,
		Vwap:        sinks.MultiVwapSink{csvSink, cacheSink},
		Correlation: sinks.MultiCorrelationSink{csvSink, cacheSink},
		Scheduler:   telemetrySink,
		System:      telemetrySink,
	}

	if cfg.DatabaseHost != "" {
		db, err := store.Connect(cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseUser, cfg.DatabasePassword, runID)
		if err != nil {
			log.Printf("⚠️  Durable store disabled: %v", err)
		} else {
			closers = append(closers, db)
			bundle.Vwap = sinks.MultiVwapSink{csvSink, cacheSink, db}
			bundle.Correlation = sinks.MultiCorrelationSink{csvSink, cacheSink, db}
			bundle.Scheduler = sinks.MultiSchedulerSink{telemetrySink, db}
			bundle.Latency = sinks.MultiLatencySink{fileSink, db}
		}
	}

	eng := engine.NewEngine(bundle, metrics.NewRegistry())
	return eng, snapshotCache, closers
}

func awaitShutdown(eng *engine.Engine) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	log.Println("🛑 Shutdown signal received, initiating graceful shutdown...")
	eng.RequestShutdown()
}

type closer interface {
	Close() error
}

func closeAll(closers []closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Printf("⚠️  Error closing resource: %v", err)
		}
	}
}
