package engine

// SymbolState bundles the per-symbol containers the processor and the
// two analytics workers mutate. Each container carries its own mutex;
// no operation ever holds two of them at once.
type SymbolState struct {
	Window  *TradeWindow
	History *VwapHistory
}

// NewSymbolState allocates a fresh TradeWindow/VwapHistory pair.
func NewSymbolState() *SymbolState {
	return &SymbolState{
		Window:  NewTradeWindow(WindowCapacity),
		History: NewVwapHistory(HistoryCapacity),
	}
}

// Processor dequeues raw messages, parses them, discards anything
// malformed, and on success updates the trade log sink, the latency
// sink, and the symbol's sliding window, in that order.
type Processor struct {
	ring    *MessageRing
	symbols [NSymbols]*SymbolState
	sinks   Sinks
	obs     Observer
}

// NewProcessor wires a Processor to the shared ring, per-symbol state
// table, and sink bundle.
func NewProcessor(ring *MessageRing, symbols [NSymbols]*SymbolState, sinks Sinks, obs Observer) *Processor {
	return &Processor{ring: ring, symbols: symbols, sinks: sinks, obs: obs}
}

// Run dequeues and processes messages until the ring reports shutdown
// (Pop returns ok == false). It is meant to run on its own goroutine for
// the process lifetime.
func (p *Processor) Run() {
	for {
		msg, ok := p.ring.Pop()
		if !ok {
			return
		}
		p.process(msg)
	}
}

// process handles one dequeued message synchronously, kept separate
// from Run's loop for direct testing.
func (p *Processor) process(msg RawMessage) {
	parsed, ok := ParseFrame(msg.RawText)
	if !ok {
		p.obs.ParseFailure()
		return
	}

	exchangeTsMs := parsed.ExchangeTsMs
	if !parsed.HasExchangeTs {
		// No exchange timestamp in the frame: fall back to wall time.
		exchangeTsMs = nowMs()
	}

	p.sinks.logTradeRaw(parsed.SymbolID, msg.RawText)

	processTsMs := nowMs()
	p.sinks.logLatency(LatencyRecord{
		SymbolID:     parsed.SymbolID,
		ExchangeTsMs: exchangeTsMs,
		ReceiveTsMs:  msg.ReceiveTsMs,
		ProcessTsMs:  processTsMs,
	})

	p.symbols[parsed.SymbolID].Window.AddTrade(exchangeTsMs, parsed.Price, parsed.Size)
}
