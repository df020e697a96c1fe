package sinks

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"cryptoengine/engine"
)

// CSVSink implements the VWAP and correlation collaborator contracts
// as CSV appends, flushed per record. NaN values serialize as the
// literal "NaN" via strconv.FormatFloat.
type CSVSink struct {
	vwapMu   sync.Mutex
	vwapFile *os.File
	vwapW    *csv.Writer

	corrMu   sync.Mutex
	corrFile *os.File
	corrW    *csv.Writer
}

// NewCSVSink creates (or appends to) vwap.csv and correlation.csv
// under dir, writing a header row for each if newly created.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	vwapFile, vwapNew, err := openAppend(filepath.Join(dir, "vwap.csv"))
	if err != nil {
		return nil, err
	}
	vwapW := csv.NewWriter(vwapFile)
	if vwapNew {
		_ = vwapW.Write([]string{"minute_ts_ms", "symbol", "vwap"})
		vwapW.Flush()
	}

	corrFile, corrNew, err := openAppend(filepath.Join(dir, "correlation.csv"))
	if err != nil {
		_ = vwapFile.Close()
		return nil, err
	}
	corrW := csv.NewWriter(corrFile)
	if corrNew {
		_ = corrW.Write([]string{"minute_ts_ms", "symbol", "peer_symbol", "r", "peer_end_minute_ts_ms"})
		corrW.Flush()
	}

	return &CSVSink{vwapFile: vwapFile, vwapW: vwapW, corrFile: corrFile, corrW: corrW}, nil
}

func openAppend(path string) (f *os.File, created bool, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		created = true
	}
	f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	return f, created, err
}

// LogVwap implements engine.VwapSink.
func (s *CSVSink) LogVwap(rec engine.VwapRecord) {
	s.vwapMu.Lock()
	defer s.vwapMu.Unlock()
	_ = s.vwapW.Write([]string{
		strconv.FormatInt(rec.MinuteTsMs, 10),
		rec.SymbolID.Name(),
		strconv.FormatFloat(rec.Vwap, 'f', -1, 64),
	})
	s.vwapW.Flush()
}

// LogCorrelation implements engine.CorrelationSink.
func (s *CSVSink) LogCorrelation(rec engine.CorrelationRecord) {
	s.corrMu.Lock()
	defer s.corrMu.Unlock()
	_ = s.corrW.Write([]string{
		strconv.FormatInt(rec.MinuteTsMs, 10),
		rec.SymbolID.Name(),
		rec.PeerSymbolName,
		strconv.FormatFloat(rec.R, 'f', -1, 64),
		strconv.FormatInt(rec.PeerEndMinuteTsMs, 10),
	})
	s.corrW.Flush()
}

// Close flushes and closes both CSV files.
func (s *CSVSink) Close() error {
	s.vwapW.Flush()
	s.corrW.Flush()
	if err := s.vwapFile.Close(); err != nil {
		return err
	}
	return s.corrFile.Close()
}
