package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEngineHandleFrameUpdatesTradeWindow exercises the full
// ingest->ring->processor path: a single valid frame pushed through
// HandleFrame should show up in the named symbol's TradeWindow shortly
// after.
func TestEngineHandleFrameUpdatesTradeWindow(t *testing.T) {
	eng := NewEngine(Sinks{}, nil)

	go eng.processor.Run()
	defer eng.Ring.Close()

	eng.HandleFrame(RawFrame{Text: `{"instId":"BTC-USDT","px":"100","sz":"2","ts":"1000"}`})

	id, _ := LookupSymbol("BTC-USDT")
	require.Eventually(t, func() bool {
		return eng.Symbols[id].Window.Len() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 100.0, eng.Symbols[id].Window.SnapshotVWAP())
}

// TestEngineHandleFrameDiscardsMalformed checks a malformed frame never
// reaches any symbol's window, and a parse-failure notification fires.
func TestEngineHandleFrameDiscardsMalformed(t *testing.T) {
	obs := &countingObserver{}
	eng := NewEngine(Sinks{}, obs)

	go eng.processor.Run()
	defer eng.Ring.Close()

	eng.HandleFrame(RawFrame{Text: `not json at all`})

	require.Eventually(t, func() bool {
		return obs.parseFailures.Load() == 1
	}, time.Second, 5*time.Millisecond)

	for _, sym := range eng.Symbols {
		assert.Equal(t, 0, sym.Window.Len())
	}
}

// TestEngineRequestShutdownJoinsProcessor verifies RequestShutdown
// unblocks the processor's Run loop (via the ring's Close) without
// needing a full scheduler tick.
func TestEngineRequestShutdownJoinsProcessor(t *testing.T) {
	eng := NewEngine(Sinks{}, nil)

	done := make(chan struct{})
	go func() {
		eng.processor.Run()
		close(done)
	}()

	eng.RequestShutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor.Run did not return after RequestShutdown")
	}
}

// countingObserver counts ParseFailure calls; every other Observer
// method is a no-op, for tests that only care about the parse-failure
// path.
type countingObserver struct {
	noopObserver
	parseFailures atomic.Int64
}

func (o *countingObserver) ParseFailure() { o.parseFailures.Add(1) }
