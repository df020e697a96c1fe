package sinks

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cryptoengine/engine"
)

// FileSink implements the raw-trade and latency collaborator contracts
// as line-delimited durable appends, one file per symbol, flushed on
// every write.
type FileSink struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileSink creates a FileSink writing under dir, creating dir if it
// does not exist.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sink dir: %w", err)
	}
	return &FileSink{dir: dir, files: make(map[string]*os.File)}, nil
}

func (s *FileSink) fileFor(name string) (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[name]; ok {
		return f, nil
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	s.files[name] = f
	return f, nil
}

func (s *FileSink) appendLine(name, line string) {
	f, err := s.fileFor(name)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return
	}
	_ = f.Sync()
}

// LogTradeRaw implements engine.TradeRawSink.
func (s *FileSink) LogTradeRaw(symbolID engine.SymbolID, rawText string) {
	s.appendLine(symbolID.Name()+"_raw.log", rawText)
}

// LogLatency implements engine.LatencySink.
func (s *FileSink) LogLatency(rec engine.LatencyRecord) {
	networkLatencyMs := rec.ReceiveTsMs - rec.ExchangeTsMs
	processLatencyMs := rec.ProcessTsMs - rec.ReceiveTsMs
	totalLatencyMs := rec.ProcessTsMs - rec.ExchangeTsMs
	line := fmt.Sprintf("%d,%d,%d,%d,%d,%d", rec.ExchangeTsMs, rec.ReceiveTsMs, rec.ProcessTsMs,
		networkLatencyMs, processLatencyMs, totalLatencyMs)
	s.appendLine(rec.SymbolID.Name()+"_latency.log", line)
}

// Close flushes and closes every open file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
