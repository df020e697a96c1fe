package engine

// VwapWorker is the first of the scheduler's two slaved analytics
// workers: once per tick it snapshots every symbol's current VWAP, in
// declaration order, appends it to that symbol's history, and emits a
// VwapRecord.
type VwapWorker struct {
	sched   *Scheduler
	symbols [NSymbols]*SymbolState
	sinks   Sinks
	obs     Observer
}

func newVwapWorker(sched *Scheduler, symbols [NSymbols]*SymbolState, sinks Sinks, obs Observer) *VwapWorker {
	return &VwapWorker{sched: sched, symbols: symbols, sinks: sinks, obs: obs}
}

// run waits on the scheduler's start barrier, does its per-tick work,
// then waits on the done barrier, repeating until the scheduler latches
// its stopping decision. The latched value — not the live shutdown
// flag — decides whether this tick runs, so this worker and the
// correlation worker always take the same branch on the same
// generation and the vwapPhaseDone handoff is never left half-done.
func (w *VwapWorker) run() {
	for {
		w.sched.start.Wait()
		if w.sched.stopping.Load() {
			w.sched.done.Wait()
			return
		}

		startNs := nowMonotonicNs()
		minuteMs := w.sched.currentMinuteMs.Load()
		w.tick(minuteMs)
		w.obs.WorkerDuration("vwap_worker", nowMonotonicNs()-startNs)

		// Hand off to the correlation worker: every history append for
		// this tick is now visible before it reads any history.
		w.sched.vwapPhaseDone <- struct{}{}

		w.sched.done.Wait()
	}
}

// tick snapshots and records every symbol's VWAP for the given minute,
// in symbol declaration order. An empty window yields NaN, which is
// appended and emitted like any other value.
func (w *VwapWorker) tick(minuteMs int64) {
	for i := 0; i < NSymbols; i++ {
		state := w.symbols[i]
		vwap := state.Window.SnapshotVWAP()
		state.History.Append(minuteMs, vwap)
		w.sinks.logVwap(VwapRecord{
			SymbolID:   SymbolID(i),
			MinuteTsMs: minuteMs,
			Vwap:       vwap,
		})
	}
}
