package sinks

import "cryptoengine/engine"

// The Multi* types fan a single record out to several sink
// implementations — e.g. a CSV file and the optional Postgres store, or
// the CSV file and the read-side snapshot cache — so the composition
// root can compose collaborators independently instead of every sink
// type needing to know about every other one.

// MultiVwapSink fans LogVwap out to every wrapped sink.
type MultiVwapSink []engine.VwapSink

func (m MultiVwapSink) LogVwap(rec engine.VwapRecord) {
	for _, s := range m {
		if s != nil {
			s.LogVwap(rec)
		}
	}
}

// MultiCorrelationSink fans LogCorrelation out to every wrapped sink.
type MultiCorrelationSink []engine.CorrelationSink

func (m MultiCorrelationSink) LogCorrelation(rec engine.CorrelationRecord) {
	for _, s := range m {
		if s != nil {
			s.LogCorrelation(rec)
		}
	}
}

// MultiLatencySink fans LogLatency out to every wrapped sink.
type MultiLatencySink []engine.LatencySink

func (m MultiLatencySink) LogLatency(rec engine.LatencyRecord) {
	for _, s := range m {
		if s != nil {
			s.LogLatency(rec)
		}
	}
}

// MultiSchedulerSink fans LogScheduler out to every wrapped sink.
type MultiSchedulerSink []engine.SchedulerSink

func (m MultiSchedulerSink) LogScheduler(rec engine.SchedulerRecord) {
	for _, s := range m {
		if s != nil {
			s.LogScheduler(rec)
		}
	}
}
