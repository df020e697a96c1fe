package sinks

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"cryptoengine/engine"
)

// TelemetrySink implements the scheduler-drift and system-telemetry
// collaborator contracts as CSV appends, one row per tick/sample.
type TelemetrySink struct {
	schedMu sync.Mutex
	schedF  *os.File
	schedW  *csv.Writer

	sysMu sync.Mutex
	sysF  *os.File
	sysW  *csv.Writer
}

// NewTelemetrySink creates (or appends to) scheduler.csv and system.csv
// under dir.
func NewTelemetrySink(dir string) (*TelemetrySink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	schedF, schedNew, err := openAppend(filepath.Join(dir, "scheduler.csv"))
	if err != nil {
		return nil, err
	}
	schedW := csv.NewWriter(schedF)
	if schedNew {
		_ = schedW.Write([]string{"scheduled_ms", "actual_ms", "drift_ns"})
		schedW.Flush()
	}

	sysF, sysNew, err := openAppend(filepath.Join(dir, "system.csv"))
	if err != nil {
		_ = schedF.Close()
		return nil, err
	}
	sysW := csv.NewWriter(sysF)
	if sysNew {
		_ = sysW.Write([]string{"ts_ms", "cpu_pct", "memory_mb"})
		sysW.Flush()
	}

	return &TelemetrySink{schedF: schedF, schedW: schedW, sysF: sysF, sysW: sysW}, nil
}

// LogScheduler implements engine.SchedulerSink.
func (s *TelemetrySink) LogScheduler(rec engine.SchedulerRecord) {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	_ = s.schedW.Write([]string{
		strconv.FormatInt(rec.ScheduledMs, 10),
		strconv.FormatInt(rec.ActualMs, 10),
		strconv.FormatInt(rec.DriftNs, 10),
	})
	s.schedW.Flush()
}

// LogSystem implements engine.SystemSink.
func (s *TelemetrySink) LogSystem(rec engine.SystemRecord) {
	s.sysMu.Lock()
	defer s.sysMu.Unlock()
	_ = s.sysW.Write([]string{
		strconv.FormatInt(rec.TsMs, 10),
		strconv.FormatFloat(rec.CPUPct, 'f', 2, 64),
		strconv.FormatFloat(rec.MemoryMB, 'f', 2, 64),
	})
	s.sysW.Flush()
}

// Close flushes and closes both CSV files.
func (s *TelemetrySink) Close() error {
	s.schedW.Flush()
	s.sysW.Flush()
	if err := s.schedF.Close(); err != nil {
		return err
	}
	return s.sysF.Close()
}
