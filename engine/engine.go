package engine

import (
	"sync"
	"sync/atomic"
)

// ShutdownFlag is a single atomic, externally observable flag: the one
// piece of engine state a signal handler must be able to reach. It
// transitions monotonically false -> true and is read without a lock
// from every blocking wait in the system.
type ShutdownFlag struct {
	flag atomic.Bool
}

// Set transitions the flag to true. Safe to call more than once.
func (f *ShutdownFlag) Set() {
	f.flag.Store(true)
}

// Requested reports whether shutdown has been requested.
func (f *ShutdownFlag) Requested() bool {
	return f.flag.Load()
}

// Observer receives lightweight notifications the engine core emits on
// its hot paths, letting an optional metrics/telemetry layer instrument
// the engine without the engine package importing one. Any method may be
// called concurrently from any stage; implementations must not block.
type Observer interface {
	QueueDepth(depth int)
	QueueDropped(total int64)
	ParseFailure()
	SchedulerTick(rec SchedulerRecord, missedSchedule bool)
	WorkerDuration(worker string, durationNs int64)
}

// noopObserver implements Observer with no-ops, used when Engine is
// constructed without one.
type noopObserver struct{}

func (noopObserver) QueueDepth(int)                             {}
func (noopObserver) QueueDropped(int64)                         {}
func (noopObserver) ParseFailure()                              {}
func (noopObserver) SchedulerTick(SchedulerRecord, bool)        {}
func (noopObserver) WorkerDuration(string, int64)               {}

// Engine groups every piece of process-wide state the system needs —
// the per-symbol containers, the shared ring, the pipeline stages, and
// the shutdown flag — into one value constructed at startup and owned
// by main, threaded into each stage at spawn time.
type Engine struct {
	Ring     *MessageRing
	Symbols  [NSymbols]*SymbolState
	Sinks    Sinks
	Observer Observer

	Shutdown ShutdownFlag

	ingest    *Ingest
	processor *Processor
	scheduler *Scheduler
}

// NewEngine allocates per-symbol state, the shared ring, and the
// pipeline stages, wiring them together. obs may be nil.
func NewEngine(sinks Sinks, obs Observer) *Engine {
	if obs == nil {
		obs = noopObserver{}
	}
	e := &Engine{
		Ring:     NewMessageRing(QueueCapacity),
		Sinks:    sinks,
		Observer: obs,
	}
	for i := range e.Symbols {
		e.Symbols[i] = NewSymbolState()
	}
	e.ingest = NewIngest(e.Ring)
	e.processor = NewProcessor(e.Ring, e.Symbols, e.Sinks, e.Observer)
	e.scheduler = NewScheduler(e.Symbols, e.Sinks, e.Observer, &e.Shutdown)
	return e
}

// HandleFrame is the entry point the transport layer calls for every
// inbound frame; it is the ingest stage's Handle, exposed at Engine
// scope.
func (e *Engine) HandleFrame(frame RawFrame) {
	e.ingest.Handle(frame)
	e.Observer.QueueDepth(e.Ring.Len())
	if d := e.Ring.Dropped(); d > 0 {
		e.Observer.QueueDropped(d)
	}
}

// CurrentMinuteMs returns the minute timestamp the scheduler most
// recently published: always a multiple of 60 000 ms, strictly
// increasing across ticks. Zero until the scheduler's first tick wakes
// and publishes it, just before releasing the start barrier.
func (e *Engine) CurrentMinuteMs() int64 {
	return e.scheduler.currentMinuteMs.Load()
}

// Run starts the processor and scheduler (which in turn drives the two
// analytics workers through its barrier pairs) and blocks until both
// goroutines have exited following shutdown; the scheduler returns only
// after its final barrier pass has released the two workers. It is the engine's
// entire steady-state execution, meant to be called from its own
// goroutine or directly from main after the transport/ingest wiring is
// in place.
func (e *Engine) Run() {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		e.processor.Run()
	}()

	go func() {
		defer wg.Done()
		e.scheduler.Run()
	}()

	wg.Wait()
}

// RequestShutdown sets the shutdown flag and unblocks every waiter: the
// ring's condition variable and, transitively through the scheduler,
// the two analytics workers' barrier waits. Set the flag first, then
// signal all conditions; each worker observing the flag proceeds to the
// done barrier before exiting.
func (e *Engine) RequestShutdown() {
	e.Shutdown.Set()
	e.Ring.Close()
}
