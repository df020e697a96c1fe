package engine

// TradeRawSink durably appends a raw inbound frame for a symbol, per the
// log_trade_raw collaborator contract.
type TradeRawSink interface {
	LogTradeRaw(symbolID SymbolID, rawText string)
}

// LatencyRecord is the derived latency measurement logged for every
// successfully parsed trade.
type LatencyRecord struct {
	SymbolID      SymbolID
	ExchangeTsMs  int64
	ReceiveTsMs   int64
	ProcessTsMs   int64
}

// LatencySink durably appends a LatencyRecord, per the log_latency
// collaborator contract.
type LatencySink interface {
	LogLatency(rec LatencyRecord)
}

// VwapRecord is a single per-minute VWAP emission.
type VwapRecord struct {
	SymbolID   SymbolID
	MinuteTsMs int64
	Vwap       float64 // may be NaN
}

// VwapSink durably appends a VwapRecord, per the log_vwap collaborator
// contract.
type VwapSink interface {
	LogVwap(rec VwapRecord)
}

// CorrelationRecord is a single per-minute best-lag correlation
// emission for a source symbol.
type CorrelationRecord struct {
	SymbolID           SymbolID
	MinuteTsMs         int64
	PeerSymbolName     string
	R                  float64
	PeerEndMinuteTsMs  int64
}

// CorrelationSink durably appends a CorrelationRecord, per the
// log_correlation collaborator contract.
type CorrelationSink interface {
	LogCorrelation(rec CorrelationRecord)
}

// SchedulerRecord is a single tick's drift measurement.
type SchedulerRecord struct {
	ScheduledMs int64
	ActualMs    int64
	DriftNs     int64
}

// SchedulerSink durably appends a SchedulerRecord, per the
// log_scheduler collaborator contract.
type SchedulerSink interface {
	LogScheduler(rec SchedulerRecord)
}

// SystemRecord is a single process-telemetry sample.
type SystemRecord struct {
	TsMs      int64
	CPUPct    float64
	MemoryMB  float64
}

// SystemSink durably appends a SystemRecord, per the log_system
// collaborator contract.
type SystemSink interface {
	LogSystem(rec SystemRecord)
}

// Sinks bundles every collaborator contract the engine writes to. Any
// field left nil is treated as a no-op sink.
type Sinks struct {
	TradeRaw    TradeRawSink
	Latency     LatencySink
	Vwap        VwapSink
	Correlation CorrelationSink
	Scheduler   SchedulerSink
	System      SystemSink
}

func (s Sinks) logTradeRaw(symbolID SymbolID, rawText string) {
	if s.TradeRaw != nil {
		s.TradeRaw.LogTradeRaw(symbolID, rawText)
	}
}

func (s Sinks) logLatency(rec LatencyRecord) {
	if s.Latency != nil {
		s.Latency.LogLatency(rec)
	}
}

func (s Sinks) logVwap(rec VwapRecord) {
	if s.Vwap != nil {
		s.Vwap.LogVwap(rec)
	}
}

func (s Sinks) logCorrelation(rec CorrelationRecord) {
	if s.Correlation != nil {
		s.Correlation.LogCorrelation(rec)
	}
}

func (s Sinks) logScheduler(rec SchedulerRecord) {
	if s.Scheduler != nil {
		s.Scheduler.LogScheduler(rec)
	}
}
