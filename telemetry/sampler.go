package telemetry

import (
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"cryptoengine/engine"
)

const sampleInterval = 10 * time.Second

// Sampler periodically records process CPU and memory usage to a
// SystemSink. This is ambient telemetry, not part of the engine's
// correctness surface: sampling runs on its own cadence, distinct from
// the per-tick scheduler/VWAP/correlation records.
type Sampler struct {
	sink engine.SystemSink
	proc *process.Process
}

// NewSampler constructs a Sampler for the current process. Returns an
// error only if the current PID cannot be resolved by gopsutil, which
// in practice never happens on a running process.
func NewSampler(sink engine.SystemSink) (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Sampler{sink: sink, proc: proc}, nil
}

// Run samples CPU and memory on a fixed interval until shutdown is
// requested. Meant to run on its own goroutine for the process
// lifetime.
func (s *Sampler) Run(shut *engine.ShutdownFlag) {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		if shut.Requested() {
			return
		}
		<-ticker.C
		if shut.Requested() {
			return
		}
		s.sampleOnce()
	}
}

func (s *Sampler) sampleOnce() {
	cpuPct, err := cpu.Percent(0, false)
	if err != nil || len(cpuPct) == 0 {
		log.Printf("⚠️  Failed to sample CPU usage: %v", err)
		cpuPct = []float64{0}
	}

	memInfo, err := s.proc.MemoryInfo()
	var memoryMB float64
	if err != nil || memInfo == nil {
		log.Printf("⚠️  Failed to sample memory usage: %v", err)
	} else {
		memoryMB = float64(memInfo.RSS) / (1024 * 1024)
	}

	s.sink.LogSystem(engine.SystemRecord{
		TsMs:     time.Now().UnixMilli(),
		CPUPct:   cpuPct[0],
		MemoryMB: memoryMB,
	})
}
