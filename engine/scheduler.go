package engine

import (
	"sync/atomic"
	"time"
)

// emaAlpha is the exponential-smoothing factor applied to the tick
// work-duration series.
const emaAlpha = 0.2

// maxEmaDurationNs clamps the compensation term so a single abnormally
// slow tick cannot push every future wakeup late indefinitely.
const maxEmaDurationNs int64 = 100_000_000

// Scheduler drives the minute-boundary cadence: it wakes once per
// minute, publishes the new minute to the two analytics workers via a
// start barrier, waits for them to finish via a done barrier, and
// compensates the next wakeup by an EMA of how long the last few ticks
// actually took to run, landing the work end on the boundary rather
// than the work start.
type Scheduler struct {
	symbols [NSymbols]*SymbolState
	sinks   Sinks
	obs     Observer
	shut    *ShutdownFlag

	start *cyclicBarrier
	done  *cyclicBarrier

	// vwapPhaseDone hands off, once per tick, from the VWAP worker to the
	// correlation worker: both are released together by the start
	// barrier, but every history append for the tick must happen-before
	// the correlation worker reads any history. Exactly one send and one
	// receive occur per tick that isn't cut short by shutdown.
	vwapPhaseDone chan struct{}

	// stopping is the single per-tick shutdown decision, latched by the
	// scheduler before it releases the start barrier. Both workers read
	// this latched value — never the live shutdown flag — after passing
	// the start barrier, so they cannot diverge on the same generation:
	// either both run the tick (and the vwapPhaseDone handoff has a
	// sender and a receiver) or both proceed straight to the done
	// barrier. Reading the live flag instead would let a signal landing
	// between the two workers' checks strand one side of the handoff
	// forever, wedging the done barrier.
	stopping atomic.Bool

	currentMinuteMs atomic.Int64

	vwapWorker        *VwapWorker
	correlationWorker *CorrelationWorker
}

// NewScheduler wires a Scheduler and its two slaved workers, sharing a
// start/done barrier pair of arity 3 (scheduler + 2 workers).
func NewScheduler(symbols [NSymbols]*SymbolState, sinks Sinks, obs Observer, shut *ShutdownFlag) *Scheduler {
	s := &Scheduler{
		symbols:       symbols,
		sinks:         sinks,
		obs:           obs,
		shut:          shut,
		start:         newCyclicBarrier(3),
		done:          newCyclicBarrier(3),
		vwapPhaseDone: make(chan struct{}),
	}
	s.vwapWorker = newVwapWorker(s, symbols, sinks, obs)
	s.correlationWorker = newCorrelationWorker(s, symbols, sinks, obs)
	return s
}

// Run is the scheduler loop, meant to run on its own goroutine for the
// process lifetime. It spawns the two analytics workers once, then
// drives them tick after tick until shutdown.
func (s *Scheduler) Run() {
	go s.vwapWorker.run()
	go s.correlationWorker.run()

	wallMs := nowMs()
	nextMinuteMs := floorToMinuteMs(wallMs) + MinuteMs
	var emaDurationNs int64

	for {
		if s.shut.Requested() {
			s.finalBarrierPass()
			return
		}

		targetWakeupNs := nowMonotonicNs() + (nextMinuteMs-wallMs)*int64(time.Millisecond) - emaDurationNs
		missed := absoluteSleepUntil(targetWakeupNs, s.shut)
		wallMs = nowMs()

		if s.shut.Requested() {
			s.finalBarrierPass()
			return
		}

		tickStartNs := nowMonotonicNs()
		scheduledMs := nextMinuteMs
		s.currentMinuteMs.Store(nextMinuteMs)

		s.start.Wait()
		s.done.Wait()

		tickDurationNs := nowMonotonicNs() - tickStartNs
		emaDurationNs = clampEmaDuration(int64(emaAlpha*float64(tickDurationNs) + (1-emaAlpha)*float64(emaDurationNs)))

		// actual_ms is measured at the done barrier (work end), not at
		// wakeup; drift is how far the work end landed from the boundary.
		actualMs := nowMs()

		rec := SchedulerRecord{
			ScheduledMs: scheduledMs,
			ActualMs:    actualMs,
			DriftNs:     (actualMs - scheduledMs) * int64(time.Millisecond),
		}
		s.sinks.logScheduler(rec)
		s.obs.SchedulerTick(rec, missed)
		s.obs.WorkerDuration("scheduler_tick", tickDurationNs)

		wallMs = nowMs()
		nextMinuteMs += MinuteMs
		if missed {
			// A tick or sleep ran long enough to blow past one or more
			// minute boundaries: resynchronize to the next boundary
			// strictly after now instead of running a burst of
			// back-to-back catch-up ticks.
			caughtUp := floorToMinuteMs(wallMs) + MinuteMs
			if caughtUp > nextMinuteMs {
				nextMinuteMs = caughtUp
			}
		}
	}
}

// finalBarrierPass latches the shutdown decision and runs one last pass
// through both barriers so neither worker is left blocked on a
// start/done call it already made before shutdown was observed. The
// latch is written before the start barrier releases, so both workers
// observe it on this generation and exit together.
func (s *Scheduler) finalBarrierPass() {
	s.stopping.Store(true)
	s.start.Wait()
	s.done.Wait()
}

func clampEmaDuration(ns int64) int64 {
	if ns < 0 {
		return 0
	}
	if ns > maxEmaDurationNs {
		return maxEmaDurationNs
	}
	return ns
}

// absoluteSleepUntil sleeps until the monotonic deadline targetNs,
// re-checking against the absolute target (rather than accumulating a
// fixed duration) so it cannot drift on repeated short wakeups. It
// returns early if shutdown is requested mid-sleep, and reports whether
// the deadline had already passed by the time this call started (a
// missed schedule: the tick fires immediately).
func absoluteSleepUntil(targetNs int64, shut *ShutdownFlag) (missed bool) {
	if nowMonotonicNs() > targetNs {
		missed = true
	}
	for {
		remaining := targetNs - nowMonotonicNs()
		if remaining <= 0 {
			return missed
		}
		if shut.Requested() {
			return missed
		}
		sleep := remaining
		const pollCap = int64(200 * time.Millisecond)
		if sleep > pollCap {
			sleep = pollCap
		}
		time.Sleep(time.Duration(sleep))
	}
}
