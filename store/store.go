// Package store provides an optional durable mirror of the engine's
// sink records to Postgres via GORM. The engine's correctness never
// depends on this package: every write here is best-effort and errors
// are logged, never surfaced to the hot path.
package store

import (
	"fmt"
	"log"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver gorm.io/driver/postgres opens through

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cryptoengine/engine"
)

// Store holds the GORM connection and implements the engine sink
// collaborator contracts as durable table writes. Every row it writes
// is stamped with the run ID of the process that wrote it, so records
// from successive engine runs against the same database never
// interleave under analysis.
type Store struct {
	db    *gorm.DB
	runID string
}

// Connect opens a Postgres connection and auto-migrates the row types
// in models.go. runID tags every row this Store writes.
func Connect(host, port, dbname, user, password, runID string) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	// DriverName "postgres" routes GORM through database/sql's driver
	// registry instead of its default pgx-native path, so the
	// lib/pq-registered "postgres" driver above is what actually dials.
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&VwapPointRow{},
		&CorrelationRecordRow{},
		&SchedulerTickRow{},
		&LatencyRecordRow{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Println("✅ Database connection established and schema migrated")
	return &Store{db: db, runID: runID}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LogVwap implements engine.VwapSink.
func (s *Store) LogVwap(rec engine.VwapRecord) {
	row := VwapPointRow{RunID: s.runID, MinuteTsMs: rec.MinuteTsMs, Symbol: rec.SymbolID.Name(), Vwap: rec.Vwap}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("⚠️  Failed to persist VWAP point: %v", err)
	}
}

// LogCorrelation implements engine.CorrelationSink.
func (s *Store) LogCorrelation(rec engine.CorrelationRecord) {
	row := CorrelationRecordRow{
		RunID:             s.runID,
		MinuteTsMs:        rec.MinuteTsMs,
		Symbol:            rec.SymbolID.Name(),
		PeerSymbol:        rec.PeerSymbolName,
		R:                 rec.R,
		PeerEndMinuteTsMs: rec.PeerEndMinuteTsMs,
	}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("⚠️  Failed to persist correlation record: %v", err)
	}
}

// LogScheduler implements engine.SchedulerSink.
func (s *Store) LogScheduler(rec engine.SchedulerRecord) {
	row := SchedulerTickRow{RunID: s.runID, ScheduledMs: rec.ScheduledMs, ActualMs: rec.ActualMs, DriftNs: rec.DriftNs}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("⚠️  Failed to persist scheduler tick: %v", err)
	}
}

// LogLatency implements engine.LatencySink.
func (s *Store) LogLatency(rec engine.LatencyRecord) {
	row := LatencyRecordRow{
		RunID:        s.runID,
		Symbol:       rec.SymbolID.Name(),
		ExchangeTsMs: rec.ExchangeTsMs,
		ReceiveTsMs:  rec.ReceiveTsMs,
		ProcessTsMs:  rec.ProcessTsMs,
	}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("⚠️  Failed to persist latency record: %v", err)
	}
}
