package engine

import "math"

// CorrelationWorker is the scheduler's second slaved analytics worker:
// once per tick, for every source symbol, it searches every target
// symbol's recent VWAP history for the best-lag Pearson match and emits
// a record for the strongest one found, if any.
type CorrelationWorker struct {
	sched   *Scheduler
	symbols [NSymbols]*SymbolState
	sinks   Sinks
	obs     Observer
}

func newCorrelationWorker(sched *Scheduler, symbols [NSymbols]*SymbolState, sinks Sinks, obs Observer) *CorrelationWorker {
	return &CorrelationWorker{sched: sched, symbols: symbols, sinks: sinks, obs: obs}
}

// run mirrors VwapWorker.run, except it first waits for the VWAP
// worker's per-tick handoff so every history append is visible before
// this tick's lagged search begins. Like the VWAP worker it consults
// only the scheduler's latched stopping decision after the start
// barrier, guaranteeing the handoff always has both a sender and a
// receiver.
func (c *CorrelationWorker) run() {
	for {
		c.sched.start.Wait()
		if c.sched.stopping.Load() {
			c.sched.done.Wait()
			return
		}

		<-c.sched.vwapPhaseDone

		startNs := nowMonotonicNs()
		minuteMs := c.sched.currentMinuteMs.Load()
		c.tick(minuteMs)
		c.obs.WorkerDuration("correlation_worker", nowMonotonicNs()-startNs)

		c.sched.done.Wait()
	}
}

// tick runs the lagged correlation search for every source symbol, in
// declaration order. The scratch vectors live on the stack and are
// reused across symbols; nothing here allocates.
func (c *CorrelationWorker) tick(minuteMs int64) {
	var sourceBuf [MovingAvgPoints]VwapPoint
	var targetBuf [MovingAvgPoints]float64
	var sourceVals [MovingAvgPoints]float64

	for i := 0; i < NSymbols; i++ {
		if !c.symbols[i].History.GetRecent(MovingAvgPoints, sourceBuf[:]) {
			continue // insufficient source history this tick
		}
		for k := range sourceBuf {
			sourceVals[k] = sourceBuf[k].Vwap
		}

		bestValid := false
		var bestAbsR, bestR float64
		var bestPeerName string
		var bestPeerEndMs int64

		for j := 0; j < NSymbols; j++ {
			minOffset := 0
			if j == i {
				minOffset = MovingAvgPoints
			}

			history := c.symbols[j].History
			history.withLock(func() {
				size := history.sizeLocked()
				if size < MovingAvgPoints+minOffset {
					return
				}
				maxOffset := MaxLagMinutes
				if cand := size - MovingAvgPoints; cand < maxOffset {
					maxOffset = cand
				}

				for offset := minOffset; offset <= maxOffset; offset++ {
					for k := 0; k < MovingAvgPoints; k++ {
						targetBuf[k] = history.pointAtOffsetLocked(offset + (MovingAvgPoints - 1 - k)).Vwap
					}
					r := pearsonR(sourceVals[:], targetBuf[:MovingAvgPoints])
					if math.IsNaN(r) {
						continue
					}
					absR := math.Abs(r)
					if absR > bestAbsR {
						bestValid = true
						bestAbsR = absR
						bestR = r
						bestPeerName = SymbolID(j).Name()
						bestPeerEndMs = history.pointAtOffsetLocked(offset).MinuteTsMs
					}
				}
			})
		}

		if !bestValid {
			continue
		}
		c.sinks.logCorrelation(CorrelationRecord{
			SymbolID:          SymbolID(i),
			MinuteTsMs:        minuteMs,
			PeerSymbolName:    bestPeerName,
			R:                 bestR,
			PeerEndMinuteTsMs: bestPeerEndMs,
		})
	}
}

// pearsonR computes the Pearson correlation coefficient of two
// equal-length vectors, returning NaN if the denominator is zero.
func pearsonR(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for k := range x {
		sumX += x[k]
		sumY += y[k]
		sumXY += x[k] * y[k]
		sumXX += x[k] * x[k]
		sumYY += y[k] * y[k]
	}
	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
