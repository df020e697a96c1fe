package engine

import "sync"

// cyclicBarrier is a fixed-arity, reusable rendezvous point: once
// `arity` goroutines have called Wait, all of them are released and the
// barrier resets for its next use. sync.WaitGroup is single-use per
// generation and the wrong shape for "N parties all waiting for each
// other"; the scheduler and the two analytics workers rendezvous twice
// per tick on a pair of these, tick after tick, for the life of the
// process.
type cyclicBarrier struct {
	arity int

	mu      sync.Mutex
	cond    *sync.Cond
	count   int
	gen     uint64 // generation counter, guards against spurious wakeups
}

// newCyclicBarrier creates a barrier that releases every waiter once
// `arity` callers have arrived.
func newCyclicBarrier(arity int) *cyclicBarrier {
	b := &cyclicBarrier{arity: arity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until arity callers (across all goroutines) have called
// Wait for the current generation, then returns for all of them
// simultaneously.
func (b *cyclicBarrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.gen
	b.count++
	if b.count == b.arity {
		// Last arrival: release this generation and reset for the next.
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
