package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCorrelationSink collects every emitted CorrelationRecord for
// inspection by tests.
type fakeCorrelationSink struct {
	records []CorrelationRecord
}

func (f *fakeCorrelationSink) LogCorrelation(rec CorrelationRecord) {
	f.records = append(f.records, rec)
}

// TestPearsonRSymmetry checks pearsonR(x, y) == pearsonR(y, x).
func TestPearsonRSymmetry(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	assert.InDelta(t, pearsonR(x, y), pearsonR(y, x), 1e-12)
}

// TestPearsonRScaleAndShiftInvariance checks r is invariant under a
// positive affine transform (a*x+b) of the first input.
func TestPearsonRScaleAndShiftInvariance(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{8, 3, 6, 2, 9, 1, 4, 7}

	scaled := make([]float64, len(x))
	for i, v := range x {
		scaled[i] = 3*v + 100
	}

	assert.InDelta(t, pearsonR(x, y), pearsonR(scaled, y), 1e-9)
}

// TestPearsonRNegativeScale checks a negative affine transform flips
// the sign of r but not its magnitude.
func TestPearsonRNegativeScale(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{8, 3, 6, 2, 9, 1, 4, 7}

	negated := make([]float64, len(x))
	for i, v := range x {
		negated[i] = -2*v + 5
	}

	assert.InDelta(t, -pearsonR(x, y), pearsonR(negated, y), 1e-9)
}

// TestPearsonRZeroVarianceIsNaN checks a constant vector (zero
// variance) yields NaN rather than a divide-by-zero panic.
func TestPearsonRZeroVarianceIsNaN(t *testing.T) {
	x := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	assert.True(t, math.IsNaN(pearsonR(x, y)))
}

// TestPearsonRSelfIdentity checks a vector correlated with itself is 1.
func TestPearsonRSelfIdentity(t *testing.T) {
	x := []float64{2, 4, 3, 9, 1, 7, 5, 6}
	assert.InDelta(t, 1.0, pearsonR(x, x), 1e-9)
}

// TestCorrelationWorkerSelfLag feeds a single symbol's history 16
// points of a repeating pattern so successive 8-point windows aren't
// degenerate: the best self-lag match is the exact repeat one pattern
// length back, with r == 1.
func TestCorrelationWorkerSelfLag(t *testing.T) {
	var symbols [NSymbols]*SymbolState
	for i := range symbols {
		symbols[i] = NewSymbolState()
	}

	pattern := []float64{1, 3, 2, 5, 4, 7, 6, 8}
	// Repeat the pattern twice: 16 points total. The most recent 8
	// points equal the 8 points exactly MovingAvgPoints(=8) minutes
	// earlier, so the self-lag search (which starts at minOffset=8 for
	// j==i) should find offset 8 with r == 1.
	minuteMs := int64(0)
	for rep := 0; rep < 2; rep++ {
		for _, v := range pattern {
			symbols[0].History.Append(minuteMs, v)
			minuteMs += MinuteMs
		}
	}

	sink := &fakeCorrelationSink{}
	worker := &CorrelationWorker{
		symbols: symbols,
		sinks:   Sinks{Correlation: sink},
	}

	worker.tick(minuteMs)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, SymbolID(0), rec.SymbolID)
	assert.Equal(t, "BTC-USDT", rec.PeerSymbolName)
	assert.InDelta(t, 1.0, rec.R, 1e-9)
}

// TestCorrelationWorkerInsufficientHistory checks that with fewer than
// MovingAvgPoints samples resident for every symbol, no correlation
// record is emitted this tick.
func TestCorrelationWorkerInsufficientHistory(t *testing.T) {
	var symbols [NSymbols]*SymbolState
	for i := range symbols {
		symbols[i] = NewSymbolState()
	}
	for i := 0; i < MovingAvgPoints-1; i++ {
		symbols[0].History.Append(int64(i)*MinuteMs, float64(i))
	}

	sink := &fakeCorrelationSink{}
	worker := &CorrelationWorker{
		symbols: symbols,
		sinks:   Sinks{Correlation: sink},
	}

	worker.tick(int64(MovingAvgPoints) * MinuteMs)
	assert.Empty(t, sink.records)
}
